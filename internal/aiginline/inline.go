// Package aiginline implements C7: the AIG definition inliner. It keeps a
// literal-indexed map from atoms to the AIG of their definitions'
// right-hand side and rewrites formulas through it.
package aiginline

import (
	"github.com/finiteproof/fmb/internal/aig"
	"github.com/finiteproof/fmb/internal/types"
)

// RawUnit is a source formula unit that scan() considers as a candidate
// equivalence definition (or, when RHSFormula is the graph's True node, a
// single positive atom unit). Detecting the "iff" shape is a pre-AIG
// concern (the AIG has no biconditional node kind), so callers supply it
// already split into LHS/RHS.
type RawUnit struct {
	ID         string
	LHS        types.Literal // the unquantified defining atom
	RHSFormula aig.NodeRef
}

// Definition is the triple of §3: lhs, rhs, and the originating unit,
// plus the derived ActiveRHS (rhs with lhs's polarity folded in).
type Definition struct {
	LHSVars   []types.VarID
	RHS       aig.NodeRef
	ActiveRHS aig.NodeRef
	Origin    RawUnit
}

// Inliner is the literal-indexed rewrite engine of §4.5.
type Inliner struct {
	g    *aig.Graph
	hook aig.NormalizeHook

	defs map[types.FunctionSymbol]*Definition

	imageCache map[string]aig.NodeRef
	visiting   map[string]bool
}

// New builds an inliner over g. hook is the injected BDD-compression
// hook (nil uses the identity).
func New(g *aig.Graph, hook aig.NormalizeHook) *Inliner {
	if hook == nil {
		hook = aig.Identity
	}
	return &Inliner{
		g:          g,
		hook:       hook,
		defs:       make(map[types.FunctionSymbol]*Definition),
		imageCache: make(map[string]aig.NodeRef),
		visiting:   make(map[string]bool),
	}
}

// Scan collects candidate equivalence definitions from units, rejecting
// any whose lhs predicate/arity duplicates one already stored (one
// inlining rule per atom) or whose lhs isn't a simple, distinct-variable
// predicate application.
func (in *Inliner) Scan(units []RawUnit) {
	for _, u := range units {
		sym := types.FunctionSymbol{Name: u.LHS.Pred, Arity: len(u.LHS.Args)}
		if _, exists := in.defs[sym]; exists {
			continue
		}
		lhsVars := make([]types.VarID, len(u.LHS.Args))
		seenVars := make(map[types.VarID]bool, len(u.LHS.Args))
		malformed := false
		for i, a := range u.LHS.Args {
			if !a.IsVar() || seenVars[a.Var] {
				malformed = true
				break
			}
			seenVars[a.Var] = true
			lhsVars[i] = a.Var
		}
		if malformed {
			continue
		}
		activeRHS := u.RHSFormula
		if !u.LHS.Positive {
			activeRHS = activeRHS.Neg()
		}
		in.defs[sym] = &Definition{LHSVars: lhsVars, RHS: u.RHSFormula, ActiveRHS: activeRHS, Origin: u}
	}
}

// Warm eagerly computes and caches the image of every atom reachable from
// roots, so later Apply calls over the same formulas don't recompute.
// This corresponds to §4.5 steps 2-4 (build map, saturate, simplify);
// Apply itself always falls back to computing images on demand, so atoms
// outside roots still rewrite correctly (needed, for instance, by a
// one-off apply(aig(p(c))) query that was never part of any scanned
// formula).
func (in *Inliner) Warm(roots []aig.NodeRef) {
	for _, r := range aig.TopoOrder(in.g, roots) {
		if in.g.Kind(r) != aig.KindAtom {
			continue
		}
		lit := in.g.AtomLiteral(r)
		in.imageOfLiteral(lit)
	}
}

// imageOfLiteral computes (and memoizes) the fully-saturated, simplified
// image of lit under the current definition set. A visiting guard bounds
// recursive/self-referential definitions: a definition found to recurse
// into itself is treated as opaque (left un-rewritten further) rather
// than looped forever, since full termination analysis of an arbitrary
// definition set is out of scope.
func (in *Inliner) imageOfLiteral(lit types.Literal) (aig.NodeRef, bool) {
	key := lit.String()
	if v, ok := in.imageCache[key]; ok {
		return v, true
	}
	sym := types.FunctionSymbol{Name: lit.Pred, Arity: len(lit.Args)}
	def, ok := in.defs[sym]
	if !ok {
		return aig.NodeRef(0), false
	}
	if in.visiting[key] {
		return in.g.Atom(lit), true // cycle guard: stop expanding, keep the atom opaque
	}
	in.visiting[key] = true
	subst := make(map[types.VarID]types.Term, len(def.LHSVars))
	for i, v := range def.LHSVars {
		subst[v] = lit.Args[i]
	}
	instantiated := substituteAIG(in.g, def.ActiveRHS, subst)
	rewritten := in.rewriteViaImages(instantiated)
	if !lit.Positive {
		rewritten = rewritten.Neg()
	}
	delete(in.visiting, key)
	simplified := in.g.Compress(rewritten, in.hook)
	in.imageCache[key] = simplified
	return simplified, true
}

// rewriteViaImages recursively substitutes every rewritable atom
// occurrence in ref, which is how saturation (§4.5 step 3) is realized:
// an image that itself mentions a rewritable atom is expanded again
// through imageOfLiteral's own memoized recursion.
func (in *Inliner) rewriteViaImages(ref aig.NodeRef) aig.NodeRef {
	switch in.g.Kind(ref) {
	case aig.KindConst:
		return ref
	case aig.KindAtom:
		lit := in.g.AtomLiteral(ref)
		if !ref.Positive() {
			lit.Positive = false
		}
		if img, ok := in.imageOfLiteral(lit); ok {
			return img
		}
		return ref
	case aig.KindAnd:
		l, r := in.g.Children(ref)
		nl := in.rewriteViaImages(l)
		nr := in.rewriteViaImages(r)
		out := in.g.And(nl, nr)
		if !ref.Positive() {
			out = out.Neg()
		}
		return out
	case aig.KindQuant:
		kind, vars, child := in.g.QuantInfo(ref)
		nc := in.rewriteViaImages(child)
		out := in.g.Quant(kind, vars, nc)
		if !ref.Positive() {
			out = out.Neg()
		}
		return out
	}
	return ref
}

// Apply rewrites every inlinable atom occurrence in ref and compresses
// the result, converting back to the caller's AIG only if it changed.
func (in *Inliner) Apply(ref aig.NodeRef) aig.NodeRef {
	rewritten := in.rewriteViaImages(ref)
	if rewritten == ref {
		return ref
	}
	return in.g.Compress(rewritten, in.hook)
}

// substituteAIG applies a variable substitution to every atom reachable
// from ref, rebuilding And/Quant structure around the substituted atoms.
// Quantifier-bound variables shadow the substitution within their scope.
func substituteAIG(g *aig.Graph, ref aig.NodeRef, subst map[types.VarID]types.Term) aig.NodeRef {
	switch g.Kind(ref) {
	case aig.KindConst:
		return ref
	case aig.KindAtom:
		lit := g.AtomLiteral(ref)
		newLit := substituteLiteral(lit, subst)
		out := g.Atom(newLit)
		if !ref.Positive() {
			out = out.Neg()
		}
		return out
	case aig.KindAnd:
		l, r := g.Children(ref)
		nl := substituteAIG(g, l, subst)
		nr := substituteAIG(g, r, subst)
		out := g.And(nl, nr)
		if !ref.Positive() {
			out = out.Neg()
		}
		return out
	case aig.KindQuant:
		kind, vars, child := g.QuantInfo(ref)
		inner := subst
		for _, v := range vars {
			if _, shadowed := subst[v]; shadowed {
				inner = withoutVars(subst, vars)
				break
			}
		}
		nc := substituteAIG(g, child, inner)
		out := g.Quant(kind, vars, nc)
		if !ref.Positive() {
			out = out.Neg()
		}
		return out
	}
	return ref
}

func withoutVars(subst map[types.VarID]types.Term, vars []types.VarID) map[types.VarID]types.Term {
	bound := make(map[types.VarID]bool, len(vars))
	for _, v := range vars {
		bound[v] = true
	}
	out := make(map[types.VarID]types.Term, len(subst))
	for k, v := range subst {
		if !bound[k] {
			out[k] = v
		}
	}
	return out
}

func substituteLiteral(lit types.Literal, subst map[types.VarID]types.Term) types.Literal {
	if lit.IsEquality() {
		return types.Literal{
			Positive: lit.Positive,
			LHS:      substituteTerm(lit.LHS, subst),
			RHS:      substituteTerm(lit.RHS, subst),
		}
	}
	args := make([]types.Term, len(lit.Args))
	for i, a := range lit.Args {
		args[i] = substituteTerm(a, subst)
	}
	return types.Literal{Positive: lit.Positive, Pred: lit.Pred, Args: args}
}

func substituteTerm(t types.Term, subst map[types.VarID]types.Term) types.Term {
	if t.IsVar() {
		if r, ok := subst[t.Var]; ok {
			return r
		}
		return t
	}
	if len(t.Args) == 0 {
		return t
	}
	args := make([]types.Term, len(t.Args))
	for i, a := range t.Args {
		args[i] = substituteTerm(a, subst)
	}
	return types.Term{Func: t.Func, Args: args}
}
