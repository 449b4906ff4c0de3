package aig

import "github.com/finiteproof/fmb/internal/types"

// TopoOrder returns every node reachable from roots, leaves first (a node
// never appears before a child it depends on). Used by the definition
// introducer's two passes (§4.6).
func TopoOrder(g *Graph, roots []NodeRef) []NodeRef {
	visited := make(map[uint32]bool)
	var order []NodeRef
	var visit func(r NodeRef)
	visit = func(r NodeRef) {
		idx := r.Index()
		if visited[idx] {
			return
		}
		visited[idx] = true
		switch g.Kind(r) {
		case KindAnd:
			l, rr := g.Children(r)
			visit(l)
			visit(rr)
		case KindQuant:
			_, _, child := g.QuantInfo(r)
			visit(child)
		}
		order = append(order, refTo(idx))
	}
	for _, r := range roots {
		visit(r)
	}
	return order
}

// FreeVars returns the free variables of the formula rooted at r, in
// canonical (first-encountered, depth-first) order, used to name fresh
// predicate symbols in the definition introducer.
func FreeVars(g *Graph, r NodeRef) []types.VarID {
	seen := make(map[types.VarID]bool)
	var out []types.VarID
	var bound map[types.VarID]bool

	var walk func(r NodeRef)
	walk = func(r NodeRef) {
		switch g.Kind(r) {
		case KindConst:
			return
		case KindAtom:
			lit := g.AtomLiteral(r)
			args := lit.Args
			if lit.IsEquality() {
				args = []types.Term{lit.LHS, lit.RHS}
			}
			for _, a := range args {
				walkTermVars(a, func(v types.VarID) {
					if bound != nil && bound[v] {
						return
					}
					if !seen[v] {
						seen[v] = true
						out = append(out, v)
					}
				})
			}
		case KindAnd:
			l, rr := g.Children(r)
			walk(l)
			walk(rr)
		case KindQuant:
			_, vars, child := g.QuantInfo(r)
			saved := bound
			newBound := make(map[types.VarID]bool, len(vars))
			for k := range saved {
				newBound[k] = true
			}
			for _, v := range vars {
				newBound[v] = true
			}
			bound = newBound
			walk(child)
			bound = saved
		}
	}
	walk(r)
	return out
}

func walkTermVars(t types.Term, f func(types.VarID)) {
	if t.IsVar() {
		f(t.Var)
		return
	}
	for _, a := range t.Args {
		walkTermVars(a, f)
	}
}
