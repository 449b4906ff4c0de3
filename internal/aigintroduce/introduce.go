// Package aigintroduce implements C8: the AIG definition introducer. It
// runs a two-pass reference-counting sweep over a set of formula roots and
// names any subformula whose occurrence count crosses a threshold, folding
// the remaining structure around the new name.
package aigintroduce

import (
	"fmt"

	"github.com/finiteproof/fmb/internal/aig"
	"github.com/finiteproof/fmb/internal/types"
)

const defaultThreshold = 4

// DefiningUnit is a minted `P(x⃗) ⇔ φ` formula unit: Symbol is the fresh
// predicate, Vars its arguments (φ's free variables in canonical order),
// and Body the (already folded) φ.
type DefiningUnit struct {
	Symbol types.FunctionSymbol
	Vars   []types.VarID
	Body   aig.NodeRef
}

// Introducer owns the node↔name registry across calls to Introduce, so
// repeated invocations over a growing formula set never mint the same
// name twice and never re-name an already-named node.
type Introducer struct {
	g         *aig.Graph
	threshold int
	prefix    string
	nextID    int

	named    map[uint32]types.FunctionSymbol
	freeVars map[uint32][]types.VarID
}

// New returns an introducer over g. threshold <= 0 uses the spec default
// of 4. prefix names the minted predicates ("def" if empty).
func New(g *aig.Graph, threshold int, prefix string) *Introducer {
	if threshold <= 0 {
		threshold = defaultThreshold
	}
	if prefix == "" {
		prefix = "def"
	}
	return &Introducer{
		g:         g,
		threshold: threshold,
		prefix:    prefix,
		named:     make(map[uint32]types.FunctionSymbol),
		freeVars:  make(map[uint32][]types.VarID),
	}
}

// Introduce runs the two-pass sweep over roots and returns the rewritten
// roots (any top-level node that crossed the threshold is folded into its
// fresh atom) alongside the newly minted defining units, in naming order.
func (in *Introducer) Introduce(roots []aig.NodeRef) ([]aig.NodeRef, []DefiningUnit) {
	leavesFirst := aig.TopoOrder(in.g, roots)
	rootFirst := make([]aig.NodeRef, len(leavesFirst))
	for i, r := range leavesFirst {
		rootFirst[len(leavesFirst)-1-i] = r
	}

	quantCtx := make(map[uint32]bool)
	for _, r := range rootFirst {
		idx := r.Index()
		switch in.g.Kind(r) {
		case aig.KindAnd:
			l, rr := in.g.Children(r)
			if quantCtx[idx] {
				quantCtx[l.Index()] = true
				quantCtx[rr.Index()] = true
			}
		case aig.KindQuant:
			_, _, child := in.g.QuantInfo(r)
			quantCtx[child.Index()] = true
		}
	}

	formulaRefCount := make(map[uint32]int)
	for _, r := range roots {
		formulaRefCount[r.Index()]++
	}

	var newUnits []DefiningUnit
	for _, r := range rootFirst {
		idx := r.Index()
		count := formulaRefCount[idx]
		kind := in.g.Kind(r)

		// A node reachable under a quantifier elsewhere is never named: the
		// same VarID could be bound by different enclosing quantifiers at
		// different occurrences, so a single global predicate over it
		// would not mean the same thing at each site.
		if count >= in.threshold && kind != aig.KindConst && kind != aig.KindAtom && !quantCtx[idx] {
			if _, already := in.named[idx]; !already {
				free := aig.FreeVars(in.g, r)
				sym := in.mint(len(free))
				in.named[idx] = sym
				in.freeVars[idx] = free
				newUnits = append(newUnits, DefiningUnit{
					Symbol: sym,
					Vars:   free,
					Body:   in.bodyFormula(r),
				})
			}
			count = 1 // upstream occurrences now see a single reference to the name
		}

		switch kind {
		case aig.KindAnd:
			l, rr := in.g.Children(r)
			formulaRefCount[l.Index()] += count
			formulaRefCount[rr.Index()] += count
		case aig.KindQuant:
			_, _, child := in.g.QuantInfo(r)
			formulaRefCount[child.Index()] += count
		}
	}

	rewrittenRoots := make([]aig.NodeRef, len(roots))
	for i, r := range roots {
		rewrittenRoots[i] = in.image(r)
	}
	return rewrittenRoots, newUnits
}

func (in *Introducer) mint(arity int) types.FunctionSymbol {
	in.nextID++
	return types.FunctionSymbol{Name: fmt.Sprintf("%s%d", in.prefix, in.nextID), Arity: arity}
}

// image rewrites every named node reachable from r (including r itself)
// into its fresh atom application, preserving r's own polarity.
func (in *Introducer) image(r aig.NodeRef) aig.NodeRef {
	idx := r.Index()
	if sym, ok := in.named[idx]; ok {
		lit := types.Literal{Positive: true, Pred: sym.Name, Args: varTerms(in.freeVars[idx])}
		atom := in.g.Atom(lit)
		if !r.Positive() {
			return atom.Neg()
		}
		return atom
	}
	switch in.g.Kind(r) {
	case aig.KindConst, aig.KindAtom:
		return r
	case aig.KindAnd:
		l, rr := in.g.Children(r)
		out := in.g.And(in.image(l), in.image(rr))
		if !r.Positive() {
			out = out.Neg()
		}
		return out
	case aig.KindQuant:
		kind, vars, child := in.g.QuantInfo(r)
		out := in.g.Quant(kind, vars, in.image(child))
		if !r.Positive() {
			out = out.Neg()
		}
		return out
	}
	return r
}

// bodyFormula builds the right-hand side of a freshly minted definition:
// like image, but never re-substitutes r's own top node (that would make
// the definition trivially self-referential).
func (in *Introducer) bodyFormula(r aig.NodeRef) aig.NodeRef {
	switch in.g.Kind(r) {
	case aig.KindAnd:
		l, rr := in.g.Children(r)
		return in.g.And(in.image(l), in.image(rr))
	case aig.KindQuant:
		kind, vars, child := in.g.QuantInfo(r)
		return in.g.Quant(kind, vars, in.image(child))
	default:
		return r
	}
}

func varTerms(vars []types.VarID) []types.Term {
	out := make([]types.Term, len(vars))
	for i, v := range vars {
		out[i] = types.Term{Var: v}
	}
	return out
}
