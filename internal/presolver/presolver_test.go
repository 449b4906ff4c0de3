package presolver

import (
	"testing"

	"github.com/finiteproof/fmb/internal/satsolver"
)

// TestScenarioUnitThenPureThenForcedImpure reproduces §8 scenario 5:
// {{A}, {¬A, B}, {¬B}} — first unit fixes A, second becomes watched on B
// (pure positive), third forces B impure and re-queues the watched
// clause; the inner solver ends up with all three and reports UNSAT.
func TestScenarioUnitThenPureThenForcedImpure(t *testing.T) {
	inner := satsolver.NewCDCL()
	ts := New(inner)

	if err := ts.AddClauses([][]int{{1}}, false); err != nil { // {A}
		t.Fatal(err)
	}
	if err := ts.AddClauses([][]int{{-1, 2}}, false); err != nil { // {¬A, B}
		t.Fatal(err)
	}
	if err := ts.AddClauses([][]int{{-2}}, false); err != nil { // {¬B}
		t.Fatal(err)
	}

	if got := ts.Solve(); got != satsolver.StatusUNSAT {
		t.Fatalf("Solve() = %s, want UNSAT", got)
	}
}

func TestPureLiteralNeverForwarded(t *testing.T) {
	inner := satsolver.NewCDCL()
	ts := New(inner)
	// B only ever appears positively: {A, B}, {¬A, B}. The first is
	// watched on A (pure positive) and the second on B (pure positive);
	// neither is forwarded, so the inner solver sees an empty clause set
	// and reports SAT trivially.
	if err := ts.AddClauses([][]int{{1, 2}}, false); err != nil {
		t.Fatal(err)
	}
	if err := ts.AddClauses([][]int{{-1, 2}}, false); err != nil {
		t.Fatal(err)
	}
	if got := ts.Solve(); got != satsolver.StatusSAT {
		t.Fatalf("Solve() = %s, want SAT", got)
	}
	if got := ts.Assignment(2); got != satsolver.True {
		t.Fatalf("Assignment(B) = %v, want True (pure positive)", got)
	}
}

func TestAssumptionIdempotence(t *testing.T) {
	inner := satsolver.NewCDCL()
	ts := New(inner)
	ts.AddClauses([][]int{{1, 2}}, false)
	ts.AddAssumption(1, false)
	status1 := ts.Solve()
	ts.AddAssumption(1, false) // duplicate, should be a no-op
	status2 := ts.Solve()
	if status1 != status2 {
		t.Fatalf("duplicate add_assumption changed status: %s -> %s", status1, status2)
	}
}

func TestRetractAllAssumptionsRestoresPermanentState(t *testing.T) {
	inner := satsolver.NewCDCL()
	ts := New(inner)
	ts.AddClauses([][]int{{1, 2}}, false)
	ts.AddAssumption(-1, false)
	ts.AddAssumption(-2, false)
	if got := ts.Solve(); got != satsolver.StatusUNSAT {
		t.Fatalf("Solve() with contradictory assumptions = %s, want UNSAT", got)
	}
	ts.RetractAllAssumptions()
	if got := ts.Solve(); got != satsolver.StatusSAT {
		t.Fatalf("Solve() after retract = %s, want SAT", got)
	}
}

func TestAssumptionOppositePureTriggersSweep(t *testing.T) {
	inner := satsolver.NewCDCL()
	ts := New(inner)
	// B pure positive across two clauses that both also mention a fresh
	// unseen variable, so sweeping B's clauses onto those fresh variables
	// should succeed and let the assumption ¬B go through.
	ts.AddClauses([][]int{{2, 3}}, false)  // B, C
	ts.AddClauses([][]int{{2, 4}}, false)  // B, D
	ts.AddAssumption(-2, false)            // assume ¬B
	if got := ts.Solve(); got != satsolver.StatusSAT {
		t.Fatalf("Solve() after sweeping assumption = %s, want SAT", got)
	}
}
