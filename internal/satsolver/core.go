package satsolver

import (
	"container/heap"
	"sort"
)

// core is the watch-literal DPLL/CDCL search engine, adapted from the
// teacher's one-shot solver: the same simplify/watch-list/litHeap/BCP/
// resolveConflict algorithm, but driven from a full clause set built
// fresh for every Solve() call rather than constructed once for the
// process lifetime. The internal_cdcl backend (cdcl.go) is therefore
// non-incremental across Solve() calls even though its search loop is the
// original incremental BCP/backtrack core; this is an explicit
// simplification, see DESIGN.md.
type core struct {
	sourceVars []sourceVar
	simpleSat  assnVal
	simplified [][]int

	origVars []int

	assignments []assnVal
	watches     [][]int

	unassigned litHeap

	decisions    []decision
	implications []literal
	propIndex    int

	clauses []coreClause

	numDecisions    int64
	numImplications int64
}

type sourceVar struct {
	v    int
	assn assnVal
	i    int
}

type coreClause struct {
	lits []literal
}

type litHeap struct {
	watches [][]int
	lits    []litHeapItem
	m       map[literal]int
}

type litHeapItem struct {
	lit literal
	i   int
}

func (h *litHeap) Len() int { return len(h.lits) }

func (h *litHeap) Less(i, j int) bool {
	lit0, lit1 := h.lits[i].lit, h.lits[j].lit
	return len(h.watches[lit0]) > len(h.watches[lit1])
}

func (h *litHeap) Swap(i, j int) {
	e0, e1 := h.lits[i], h.lits[j]
	e0.i = j
	e1.i = i
	h.lits[i] = e1
	h.lits[j] = e0
	h.m[e0.lit] = j
	h.m[e1.lit] = i
}

func (h *litHeap) Push(x interface{}) {
	elt := x.(litHeapItem)
	h.m[elt.lit] = len(h.lits)
	elt.i = len(h.lits)
	h.lits = append(h.lits, elt)
}

func (h *litHeap) Pop() interface{} {
	elt := h.lits[len(h.lits)-1]
	h.lits = h.lits[:len(h.lits)-1]
	elt.i = -1
	delete(h.m, elt.lit)
	return elt
}

func newCore(problem [][]int) *core {
	c := simplify(problem)
	if c.simpleSat != unassigned {
		return c
	}
	vars := make(map[int]int)
	for _, cls := range c.simplified {
		for _, v := range cls {
			v = abs(v)
			if _, ok := vars[v]; !ok {
				c.origVars = append(c.origVars, v)
				vars[v] = 0
			}
		}
	}
	sort.Ints(c.origVars)
	for i, v := range c.origVars {
		vars[v] = i
	}
	for i, v := range c.sourceVars {
		if v.assn == unassigned {
			c.sourceVars[i].i = vars[v.v]
		}
	}
	c.watches = make([][]int, len(c.origVars)*2)
	c.assignments = make([]assnVal, len(c.origVars))
	c.clauses = make([]coreClause, len(c.simplified))
	for i, cls := range c.simplified {
		for j, v := range cls {
			neg := false
			if v < 0 {
				neg = true
				v = -v
			}
			lit := literal(vars[v]) << 1
			if neg {
				lit ^= 1
			}
			c.clauses[i].lits = append(c.clauses[i].lits, lit)
			if j < 2 {
				c.watches[lit] = append(c.watches[lit], i)
			}
		}
	}
	c.unassigned.watches = c.watches
	c.unassigned.m = make(map[literal]int)
	for lit, watches := range c.watches {
		if len(watches) > 0 {
			c.pushUnassigned(literal(lit))
		}
	}
	return c
}

// simplify performs unit propagation and duplicate/empty-clause cleanup
// on problem to a fixpoint, recording any vars it can assign directly.
func simplify(problem [][]int) *core {
	var c core
	vars := make(map[int]assnVal)
	c.simplified = make([][]int, len(problem))
	for i, cls := range problem {
		seen := make(map[int]struct{})
		var clause1 []int
		for _, v := range cls {
			if v == 0 {
				panic("zero var passed to core.solve")
			}
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			clause1 = append(clause1, v)
			vars[abs(v)] = unassigned
		}
		c.simplified[i] = clause1
	}
	changed := true
	for changed {
		if len(c.simplified) == 0 {
			c.simpleSat = assnTrue
			for v, assn := range vars {
				if assn == unassigned {
					vars[v] = assnTrue
				}
			}
			break
		}
		changed = false
		var i int
	clauseLoop:
		for _, cls := range c.simplified {
			if len(cls) == 0 {
				c.simpleSat = assnFalse
				return &c
			}
			if len(cls) == 1 {
				v := cls[0]
				assn := assnTrue
				if v < 0 {
					assn = assnFalse
					v = -v
				}
				if vars[v] != unassigned && vars[v] != assn {
					c.simpleSat = assnFalse
					return &c
				}
				vars[v] = assn
				changed = true
				continue clauseLoop
			}
			var j int
			for _, v := range cls {
				assn := vars[abs(v)]
				if assn == unassigned {
					cls[j] = v
					j++
					continue
				}
				changed = true
				if (assn == assnTrue) == (v > 0) {
					continue clauseLoop
				}
			}
			c.simplified[i] = cls[:j]
			i++
		}
		c.simplified = c.simplified[:i]
	}
	c.sourceVars = make([]sourceVar, 0, len(vars))
	for v, assn := range vars {
		c.sourceVars = append(c.sourceVars, sourceVar{v: v, assn: assn})
	}
	sort.Slice(c.sourceVars, func(i, j int) bool {
		return c.sourceVars[i].v < c.sourceVars[j].v
	})
	return &c
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

type literal uint32

func (l literal) assn() assnVal {
	return assnVal(l&1) + 1
}

type assnVal uint8

const (
	unassigned      assnVal = 0
	assnTrue        assnVal = 1
	assnFalse       assnVal = 2
	assnTrueSecond  assnVal = 5
	assnFalseSecond assnVal = 6
)

func (a assnVal) inv() assnVal { return a ^ 3 }

type decision struct {
	implicationIdx int
	lit            literal
}

// solve runs the DPLL/CDCL search. It returns false if the problem is
// unsatisfiable.
func (c *core) solve() bool {
	switch c.simpleSat {
	case assnTrue:
		return true
	case assnFalse:
		return false
	}

	for {
		lit, ok := c.popUnassigned()
		if !ok {
			return true
		}
		c.deleteUnassigned(lit ^ 1)
		v := lit >> 1
		c.assignments[v] = lit.assn()
		c.numDecisions++
		c.decisions = append(c.decisions, decision{
			implicationIdx: len(c.implications),
			lit:            lit,
		})
		c.propIndex = len(c.implications)
		c.implications = append(c.implications, lit)

		for !c.bcp() {
			if !c.resolveConflict() {
				return false
			}
		}
	}
}

// bcp performs boolean constraint propagation, returning false on
// conflict.
func (c *core) bcp() bool {
	for {
		imps := c.implications[c.propIndex:]
		if len(imps) == 0 {
			return true
		}
		c.propIndex = len(c.implications)
		for _, impliedLit := range imps {
			neg := impliedLit ^ 1
			watches := c.watches[neg]
		watchesLoop:
			for i := 0; i < len(watches); {
				clauseIdx := watches[i]
				cls := c.clauses[clauseIdx]
				if cls.lits[0] == neg {
					cls.lits[0], cls.lits[1] = cls.lits[1], cls.lits[0]
				} else if cls.lits[1] != neg {
					panic("bad watch var state")
				}
				lit0 := cls.lits[0]
				if c.assignments[lit0>>1]&3 == lit0.assn() {
					i++
					continue
				}
				for j := 2; j < len(cls.lits); j++ {
					lit := cls.lits[j]
					assn := c.assignments[lit>>1] & 3
					if assn == lit.assn().inv() {
						continue
					}
					c.watches[lit] = append(c.watches[lit], clauseIdx)
					if assn == unassigned {
						c.updateUnassigned(lit)
					}
					watches[i], watches[len(watches)-1] = watches[len(watches)-1], watches[i]
					watches = watches[:len(watches)-1]
					c.watches[neg] = watches
					cls.lits[1], cls.lits[j] = cls.lits[j], cls.lits[1]
					continue watchesLoop
				}
				i++
				otherWatch := cls.lits[0]
				v := int(otherWatch >> 1)
				if c.assignments[v] != unassigned {
					return false
				}
				c.assignments[v] = otherWatch.assn()
				c.deleteUnassigned(otherWatch)
				c.numImplications++
				c.implications = append(c.implications, otherWatch)
			}
		}
	}
}

// resolveConflict flips the most recently made decision that hasn't been
// tried both ways yet, rolling back invalidated implications.
func (c *core) resolveConflict() bool {
	di := -1
	var d decision
	for i := len(c.decisions) - 1; i >= 0; i-- {
		d = c.decisions[i]
		if c.assignments[d.lit>>1]&4 == 0 {
			di = i
			break
		}
	}
	if di == -1 {
		return false
	}
	for i := len(c.implications) - 1; i > d.implicationIdx; i-- {
		lit := c.implications[i]
		c.pushUnassigned(lit)
		c.assignments[lit>>1] = unassigned
	}
	c.implications = c.implications[:d.implicationIdx+1]
	c.implications[len(c.implications)-1] ^= 1
	c.decisions = c.decisions[:di+1]
	c.decisions[di].lit ^= 1
	c.assignments[d.lit>>1] ^= 5
	c.propIndex = d.implicationIdx
	return true
}

func (c *core) pushUnassigned(lit literal) {
	if _, ok := c.unassigned.m[lit]; ok {
		panic("push of literal that's already in the unassigned queue")
	}
	heap.Push(&c.unassigned, litHeapItem{lit: lit})
}

func (c *core) popUnassigned() (literal, bool) {
	if len(c.unassigned.lits) == 0 {
		return 0, false
	}
	e := heap.Pop(&c.unassigned).(litHeapItem)
	return e.lit, true
}

func (c *core) deleteUnassigned(lit literal) {
	i, ok := c.unassigned.m[lit]
	if !ok {
		panic("delete of nonexistent unassigned var")
	}
	heap.Remove(&c.unassigned, i)
}

func (c *core) updateUnassigned(lit literal) {
	if i, ok := c.unassigned.m[lit]; ok {
		heap.Fix(&c.unassigned, i)
	} else {
		heap.Push(&c.unassigned, litHeapItem{lit: lit})
	}
}

// solution returns the source-var assignment once solve() has succeeded.
func (c *core) solution() map[int]int {
	soln := make(map[int]int, len(c.sourceVars))
	for _, v := range c.sourceVars {
		assn := v.assn
		if assn == unassigned {
			assn = c.assignments[v.i] & 3
		}
		switch assn {
		case assnFalse:
			soln[v.v] = -v.v
		case assnTrue:
			soln[v.v] = v.v
		default:
			panic("incomplete solution")
		}
	}
	return soln
}
