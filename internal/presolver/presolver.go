// Package presolver implements C4: the transparent pre-solver. It wraps
// an inner satsolver.Solver and exploits pure-literal and unit
// information to avoid forwarding clauses that are not yet known to
// matter, without ever altering the inner solver's own decision
// procedure — hence "transparent".
package presolver

import "github.com/finiteproof/fmb/internal/satsolver"

type varStatus int

const (
	statusUnseen varStatus = iota
	statusPure
	statusImpure
)

type varInfo struct {
	status  varStatus
	purePol bool // meaningful when status == statusPure

	hasUnit bool
	unitPol bool

	hasAssumed bool
	assumedPol bool
}

type clauseEntry struct {
	lits     []int
	watchVar int // 0 when not currently watched (queued, forwarded, or swept away)
}

type assumption struct {
	lit           int
	onlyPropagate bool
}

// TransparentSolver is the C4 transparent pre-solver. It implements
// satsolver.Solver so it can be used anywhere a bare Solver is expected
// (the "tagged variant" design note's transparent_wrapper(inner)).
type TransparentSolver struct {
	inner satsolver.Solver

	info map[int]*varInfo

	arena   []clauseEntry
	watched map[int][]int // var -> clause indices watched on it
	queue   []int         // clause indices awaiting drain()

	assumptionLog []assumption // in add order, for replay after forced impurity
}

// New wraps inner in a transparent pre-solver.
func New(inner satsolver.Solver) *TransparentSolver {
	return &TransparentSolver{
		inner:   inner,
		info:    make(map[int]*varInfo),
		watched: make(map[int][]int),
	}
}

func (s *TransparentSolver) getInfo(v int) *varInfo {
	vi, ok := s.info[v]
	if !ok {
		vi = &varInfo{status: statusUnseen}
		s.info[v] = vi
	}
	return vi
}

func (s *TransparentSolver) EnsureVarCount(n int) { s.inner.EnsureVarCount(n) }

// AddClauses queues clauses and drains the queue per §4.3's algorithm,
// forwarding to the inner solver only what purity can't shortcut.
func (s *TransparentSolver) AddClauses(clauses [][]int, onlyPropagate bool) error {
	for _, cls := range clauses {
		idx := len(s.arena)
		s.arena = append(s.arena, clauseEntry{lits: cls})
		s.queue = append(s.queue, idx)
	}
	var forwarded [][]int
	s.drain(&forwarded)
	if len(forwarded) == 0 {
		return nil
	}
	return s.inner.AddClauses(forwarded, onlyPropagate)
}

// drain processes the clause queue to a fixpoint, appending every clause
// that purity reasoning can't absorb to *forwarded.
func (s *TransparentSolver) drain(forwarded *[][]int) {
	for len(s.queue) > 0 {
		idx := s.queue[0]
		s.queue = s.queue[1:]
		cls := s.arena[idx].lits

		if len(cls) == 0 {
			*forwarded = append(*forwarded, cls)
			continue
		}

		if len(cls) == 1 {
			lit := cls[0]
			v, pol := absLit(lit)
			vi := s.getInfo(v)
			if vi.hasUnit && vi.unitPol != pol {
				*forwarded = append(*forwarded, cls)
				continue
			}
			if vi.status == statusPure && vi.purePol != pol {
				s.forceImpure(v) // the unit contradicts the pure polarity
			}
			if !vi.hasUnit {
				vi.hasUnit = true
				vi.unitPol = pol
				// A unit fact must reach the inner solver once, so that
				// later assumptions and other clauses are checked against
				// it soundly; only the *contradicting* repeat above needs
				// the explicit forward-for-refutation the spec calls out.
				*forwarded = append(*forwarded, cls)
			}
			continue
		}

		watchVar := 0
		for _, lit := range cls {
			v, pol := absLit(lit)
			vi := s.getInfo(v)
			if (vi.status == statusUnseen || (vi.status == statusPure && vi.purePol == pol)) &&
				!(vi.hasUnit && vi.unitPol != pol) && !(vi.hasAssumed && vi.assumedPol != pol) {
				watchVar = v
				if vi.status == statusUnseen {
					vi.status = statusPure
					vi.purePol = pol
				}
				break
			}
		}
		if watchVar != 0 {
			s.watchClause(idx, watchVar)
			continue
		}

		if s.trySweepForClause(idx, cls) {
			continue
		}

		// No literal qualifies and no sweep freed one: every literal's
		// variable becomes impure, their watched clauses are re-queued,
		// and this clause is forwarded.
		for _, lit := range cls {
			v, _ := absLit(lit)
			s.forceImpure(v)
		}
		*forwarded = append(*forwarded, cls)
	}
}

func (s *TransparentSolver) watchClause(idx, v int) {
	s.arena[idx].watchVar = v
	s.watched[v] = append(s.watched[v], idx)
}

// forceImpure transitions v to impure (if not already) and re-queues any
// clauses currently watched on it.
func (s *TransparentSolver) forceImpure(v int) {
	vi := s.getInfo(v)
	vi.status = statusImpure
	if cls, ok := s.watched[v]; ok {
		for _, ci := range cls {
			s.arena[ci].watchVar = 0
			s.queue = append(s.queue, ci)
		}
		delete(s.watched, v)
	}
}

// trySweepForClause attempts, for each pure variable appearing in cls, to
// sweep that variable's watched clauses elsewhere so it can flip to
// unseen and then host cls. Returns true if some variable was freed and
// cls is now watched.
func (s *TransparentSolver) trySweepForClause(idx int, cls []int) bool {
	for _, lit := range cls {
		v, pol := absLit(lit)
		vi := s.getInfo(v)
		if vi.status != statusPure || (vi.hasUnit && vi.unitPol != pol) || (vi.hasAssumed && vi.assumedPol != pol) {
			continue
		}
		if s.sweep(v) {
			vi.status = statusPure
			vi.purePol = pol
			s.watchClause(idx, v)
			return true
		}
	}
	return false
}

// sweep tries to re-home every clause watched on v onto some other
// variable in that clause (never back onto v — the forbidden_var rule).
// It only commits relocations if every watched clause can be relocated;
// on success v has no more watched clauses and flips back to unseen.
func (s *TransparentSolver) sweep(v int) bool {
	watched := s.watched[v]
	type relocation struct {
		idx    int
		newVar int
		newPol bool
	}
	relocations := make([]relocation, 0, len(watched))
	for _, ci := range watched {
		relocated := false
		for _, lit := range s.arena[ci].lits {
			v2, pol2 := absLit(lit)
			if v2 == v {
				continue // forbidden_var: never re-watch on the var being swept
			}
			vi2 := s.getInfo(v2)
			if (vi2.status == statusUnseen || (vi2.status == statusPure && vi2.purePol == pol2)) &&
				!(vi2.hasUnit && vi2.unitPol != pol2) && !(vi2.hasAssumed && vi2.assumedPol != pol2) {
				relocations = append(relocations, relocation{idx: ci, newVar: v2, newPol: pol2})
				relocated = true
				break
			}
		}
		if !relocated {
			return false
		}
	}
	for _, r := range relocations {
		s.arena[r.idx].watchVar = r.newVar
		s.watched[r.newVar] = append(s.watched[r.newVar], r.idx)
		vi2 := s.getInfo(r.newVar)
		if vi2.status == statusUnseen {
			vi2.status = statusPure
			vi2.purePol = r.newPol
		}
	}
	delete(s.watched, v)
	s.getInfo(v).status = statusUnseen
	return true
}

// AddAssumption follows §4.3's add_assumption algorithm.
func (s *TransparentSolver) AddAssumption(lit int, onlyPropagate bool) {
	v, pol := absLit(lit)
	vi := s.getInfo(v)

	if vi.hasAssumed {
		if vi.assumedPol == pol {
			return // duplicate: silently dropped
		}
		// Contradicts an existing assumption: force an immediately
		// unsatisfiable inner state.
		s.inner.AddAssumption(lit, onlyPropagate)
		s.inner.AddAssumption(-lit, onlyPropagate)
		vi.assumedPol = pol
		return
	}

	if vi.hasUnit || vi.status == statusUnseen || vi.status == statusImpure {
		s.inner.AddAssumption(lit, onlyPropagate)
		vi.hasAssumed = true
		vi.assumedPol = pol
		s.assumptionLog = append(s.assumptionLog, assumption{lit: lit, onlyPropagate: onlyPropagate})
		return
	}

	// vi.status == statusPure
	if vi.purePol == pol {
		return // matching polarity: the pure answer already agrees
	}

	if s.sweep(v) {
		s.inner.AddAssumption(lit, onlyPropagate)
		vi.hasAssumed = true
		vi.assumedPol = pol
		s.assumptionLog = append(s.assumptionLog, assumption{lit: lit, onlyPropagate: onlyPropagate})
		return
	}

	// Sweep failed: force impure, re-run the drain, retract all inner
	// assumptions, flush the newly forwarded clauses, then replay every
	// recorded assumption in order with only_propagate forced on all but
	// the newly-added last one.
	s.forceImpure(v)
	var forwarded [][]int
	s.drain(&forwarded)
	if len(forwarded) > 0 {
		s.inner.AddClauses(forwarded, false)
	}
	s.inner.RetractAllAssumptions()
	s.assumptionLog = append(s.assumptionLog, assumption{lit: lit, onlyPropagate: onlyPropagate})
	for i, a := range s.assumptionLog {
		op := true
		if i == len(s.assumptionLog)-1 {
			op = false
		}
		s.inner.AddAssumption(a.lit, op)
	}
	vi.hasAssumed = true
	vi.assumedPol = pol
}

// RetractAllAssumptions restores the pre-solver (and the inner solver) to
// the state they would be in had no assumption ever been made.
func (s *TransparentSolver) RetractAllAssumptions() {
	for _, a := range s.assumptionLog {
		v, _ := absLit(a.lit)
		if vi, ok := s.info[v]; ok {
			vi.hasAssumed = false
		}
	}
	s.assumptionLog = nil
	s.inner.RetractAllAssumptions()
}

func (s *TransparentSolver) Solve() satsolver.Status { return s.inner.Solve() }

func (s *TransparentSolver) Status() satsolver.Status { return s.inner.Status() }

// Assignment follows §4.3: assumed, then pure, then unit, then delegate.
// (Unit is folded in ahead of delegation even though §4.3's prose only
// spells out assumed/pure/delegate, since a unit fact is true in every
// model the inner solver could return — see DESIGN.md.)
func (s *TransparentSolver) Assignment(v int) satsolver.AssnVal {
	vi, ok := s.info[v]
	if !ok {
		return s.inner.Assignment(v)
	}
	if vi.hasAssumed {
		return boolAssn(vi.assumedPol)
	}
	if vi.status == statusPure {
		return boolAssn(vi.purePol)
	}
	if vi.hasUnit {
		return boolAssn(vi.unitPol)
	}
	return s.inner.Assignment(v)
}

func boolAssn(pol bool) satsolver.AssnVal {
	if pol {
		return satsolver.True
	}
	return satsolver.False
}

func absLit(lit int) (v int, positive bool) {
	if lit < 0 {
		return -lit, false
	}
	return lit, true
}
