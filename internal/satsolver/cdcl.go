package satsolver

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// CDCL is the internal_cdcl backend: it accumulates permanent clauses and
// assumptions, and re-runs the core DPLL/CDCL search from scratch on each
// Solve() call. Reusing search state across Solve() calls (incremental
// SAT) is explicitly out of this core's scope (§1 Non-goals talk about
// reuse across FMB sizes; within one instance we keep it simple and
// correct rather than incremental).
type CDCL struct {
	varCount int
	clauses  [][]int
	// assumptions, in the order added, so retraction truly returns to the
	// pre-assumption permanent state and re-assumption (used by the
	// transparent pre-solver on sweep failure) can replay them in order.
	assumptions []int

	lastStatus Status
	lastSoln   map[int]int
}

// NewCDCL builds an internal_cdcl solver with an initially empty clause
// database.
func NewCDCL() *CDCL {
	return &CDCL{lastStatus: StatusUnknown}
}

func (s *CDCL) EnsureVarCount(n int) {
	if n > s.varCount {
		s.varCount = n
	}
}

// AddClauses validates and records clauses. onlyPropagate is honored at
// the contract level (no decisions are attributable to this batch in
// isolation) but since this backend only searches inside Solve(), there
// is nothing further to do here beyond recording the clauses.
//
// A literal of 0 would otherwise reach core.solve and panic there (0 is
// the DIMACS end-of-clause marker, never a valid literal); every
// offending clause in the batch is collected into a single aggregate
// error rather than failing on the first one, so a caller feeding a
// whole malformed batch sees every bad clause at once.
func (s *CDCL) AddClauses(clauses [][]int, onlyPropagate bool) error {
	var errs *multierror.Error
	for i, cls := range clauses {
		for _, lit := range cls {
			if lit == 0 {
				errs = multierror.Append(errs, fmt.Errorf("clause %d contains literal 0", i))
				break
			}
		}
	}
	if err := errs.ErrorOrNil(); err != nil {
		return err
	}
	for _, cls := range clauses {
		for _, lit := range cls {
			v := lit
			if v < 0 {
				v = -v
			}
			s.EnsureVarCount(v)
		}
	}
	s.clauses = append(s.clauses, clauses...)
	return nil
}

func (s *CDCL) AddAssumption(lit int, onlyPropagate bool) {
	for _, a := range s.assumptions {
		if a == lit {
			return // duplicate assumption: silently dropped
		}
		if a == -lit {
			// contradicts an existing assumption: force an
			// unsatisfiable inner state by recording both polarities,
			// which simplify() will refute as a direct contradiction.
			s.assumptions = append(s.assumptions, lit)
			return
		}
	}
	s.assumptions = append(s.assumptions, lit)
}

func (s *CDCL) RetractAllAssumptions() {
	s.assumptions = nil
}

func (s *CDCL) Solve() Status {
	problem := make([][]int, 0, len(s.clauses)+len(s.assumptions))
	problem = append(problem, s.clauses...)
	for _, a := range s.assumptions {
		problem = append(problem, []int{a})
	}
	if len(problem) == 0 {
		s.lastStatus = StatusSAT
		s.lastSoln = map[int]int{}
		return s.lastStatus
	}
	c := newCore(problem)
	if !c.solve() {
		s.lastStatus = StatusUNSAT
		s.lastSoln = nil
		return s.lastStatus
	}
	s.lastStatus = StatusSAT
	s.lastSoln = c.solution()
	return s.lastStatus
}

func (s *CDCL) Assignment(v int) AssnVal {
	if s.lastStatus != StatusSAT {
		return DontCare
	}
	signed, ok := s.lastSoln[v]
	if !ok {
		return DontCare
	}
	if signed > 0 {
		return True
	}
	return False
}

func (s *CDCL) Status() Status { return s.lastStatus }
