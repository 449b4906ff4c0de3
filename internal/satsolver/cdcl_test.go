package satsolver

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/finiteproof/fmb/internal/dimacs"
)

func solveAll(problem [][]int) (soln map[int]int, ok bool) {
	c := NewCDCL()
	c.AddClauses(problem, false)
	if c.Solve() != StatusSAT {
		return nil, false
	}
	soln = make(map[int]int)
	for _, cls := range problem {
		for _, lit := range cls {
			v := lit
			if v < 0 {
				v = -v
			}
			if c.Assignment(v) == True {
				soln[v] = v
			} else if c.Assignment(v) == False {
				soln[v] = -v
			}
		}
	}
	return soln, true
}

func solutionIsValid(problem [][]int, soln map[int]int) bool {
clauseLoop:
	for _, cls := range problem {
		for _, lit := range cls {
			v := lit
			if v < 0 {
				v = -v
			}
			if signed, ok := soln[v]; ok && (signed > 0) == (lit > 0) {
				continue clauseLoop
			}
		}
		return false
	}
	return true
}

func TestExampleProblem(t *testing.T) {
	// (¬x ∨ ¬y) ∧ (¬y ∨ z) ∧ (x ∨ ¬z ∨ y) ∧ y
	problem := [][]int{
		{-1, -2},
		{-2, 3},
		{1, -3, 2},
		{2},
	}
	soln, ok := solveAll(problem)
	if !ok {
		t.Fatal("expected SAT")
	}
	if !solutionIsValid(problem, soln) {
		t.Fatalf("invalid solution: %v", soln)
	}
}

func TestUnsat(t *testing.T) {
	problem := [][]int{{1}, {-1}}
	c := NewCDCL()
	c.AddClauses(problem, false)
	if got := c.Solve(); got != StatusUNSAT {
		t.Fatalf("Solve() = %s, want UNSAT", got)
	}
}

func TestEnsureVarCountWidensAssignmentDomain(t *testing.T) {
	c := NewCDCL()
	c.EnsureVarCount(5)
	c.AddClauses([][]int{{1}}, false)
	if c.Solve() != StatusSAT {
		t.Fatal("expected SAT")
	}
	if c.Assignment(1) != True {
		t.Fatalf("Assignment(1) = %v, want True", c.Assignment(1))
	}
	if c.Assignment(4) != DontCare {
		t.Fatalf("Assignment(4) = %v, want DontCare (unconstrained var)", c.Assignment(4))
	}
}

func TestAssumptionsAndRetract(t *testing.T) {
	c := NewCDCL()
	c.AddClauses([][]int{{1, 2}}, false)
	c.AddAssumption(-1, false)
	c.AddAssumption(-2, false)
	if got := c.Solve(); got != StatusUNSAT {
		t.Fatalf("Solve() with contradictory assumptions = %s, want UNSAT", got)
	}
	c.RetractAllAssumptions()
	if got := c.Solve(); got != StatusSAT {
		t.Fatalf("Solve() after retract = %s, want SAT (permanent clause alone is satisfiable)", got)
	}
}

func TestAssumptionIdempotence(t *testing.T) {
	c1 := NewCDCL()
	c1.AddClauses([][]int{{1, 2}, {2, 3}}, false)
	c1.AddAssumption(1, false)
	status1 := c1.Solve()

	c2 := NewCDCL()
	c2.AddClauses([][]int{{1, 2}, {2, 3}}, false)
	c2.AddAssumption(1, false)
	c2.AddAssumption(1, false)
	status2 := c2.Solve()

	if status1 != status2 {
		t.Fatalf("add_assumption(L); add_assumption(L) should be observationally equivalent to add_assumption(L): got %s vs %s", status1, status2)
	}
}

func TestRandomized(t *testing.T) {
	for _, tt := range []struct {
		numVars    int
		numClauses int
		numSeeds   int
	}{
		{2, 2, 10},
		{3, 10, 50},
		{5, 10, 50},
	} {
		for seed := 0; seed < tt.numSeeds; seed++ {
			problem := makeRandomSat(int64(seed), tt.numVars, tt.numClauses)
			var b strings.Builder
			if err := dimacs.Write(&b, problem); err != nil {
				t.Fatal(err)
			}
			soln, ok := solveAll(problem)
			if !ok {
				t.Fatalf("[vars=%d,clauses=%d,seed=%d] got UNSAT:\n\n%s\n",
					tt.numVars, tt.numClauses, seed, b.String())
			}
			if !solutionIsValid(problem, soln) {
				t.Fatalf("[vars=%d,clauses=%d,seed=%d] got incorrect solution %v:\n\n%s\n",
					tt.numVars, tt.numClauses, seed, soln, b.String())
			}
		}
	}
}

func makeRandomSat(seed int64, numVars, numClauses int) [][]int {
	rng := rand.New(rand.NewSource(seed))
	assignment := make([]bool, numVars)
	for v := range assignment {
		if rng.Intn(2) == 1 {
			assignment[v] = true
		}
	}
	vars := make([]int, numVars)
	for v := range vars {
		vars[v] = v
	}
	problem := make([][]int, numClauses)
	for i := range problem {
		rng.Shuffle(len(vars), func(i, j int) {
			vars[i], vars[j] = vars[j], vars[i]
		})
		problem[i] = make([]int, rng.Intn(numVars)+1)
		fixed := rng.Intn(len(problem[i]))
		for j := range problem[i] {
			v := vars[j] + 1
			if j == fixed {
				if !assignment[v-1] {
					v = -v
				}
			} else if rng.Intn(2) == 1 {
				v = -v
			}
			problem[i][j] = v
		}
	}
	remap := make(map[int]int)
	for _, cls := range problem {
		for i, v := range cls {
			neg := false
			if v < 0 {
				neg = true
				v = -v
			}
			if x, ok := remap[v]; ok {
				v = x
			} else {
				x := len(remap) + 1
				remap[v] = x
				v = x
			}
			if neg {
				v = -v
			}
			cls[i] = v
		}
	}
	return problem
}

func TestAddClausesRejectsZeroLiteral(t *testing.T) {
	c := NewCDCL()
	err := c.AddClauses([][]int{{1, 2}, {0}, {-1, 0, 3}}, false)
	if err == nil {
		t.Fatal("AddClauses() error = nil, want an error for the two malformed clauses")
	}
	if !strings.Contains(err.Error(), "clause 1") || !strings.Contains(err.Error(), "clause 2") {
		t.Fatalf("AddClauses() error = %q, want it to name both offending clauses", err)
	}
}
