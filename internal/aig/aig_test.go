package aig

import (
	"testing"

	"github.com/finiteproof/fmb/internal/types"
)

func atomP(v int) types.Literal {
	return types.Literal{Positive: true, Pred: "p", Args: []types.Term{{Var: types.VarID(v)}}}
}

func TestHashConsingSharesStructurallyEqualAtoms(t *testing.T) {
	g := New()
	a1 := g.Atom(atomP(0))
	a2 := g.Atom(atomP(0))
	if a1 != a2 {
		t.Fatalf("two constructions of the same atom should hash-cons to the same ref: %v != %v", a1, a2)
	}
}

func TestNegationIsBitFlip(t *testing.T) {
	g := New()
	lit := atomP(0)
	pos := g.Atom(lit)
	lit.Positive = false
	neg := g.Atom(lit)
	if pos.Index() != neg.Index() {
		t.Fatalf("positive and negative atom refs should share the same node index")
	}
	if pos.Neg() != neg {
		t.Fatalf("Neg() should reproduce the negated reference")
	}
}

func TestAndCommutativeHashCons(t *testing.T) {
	g := New()
	a := g.Atom(atomP(0))
	b := g.Atom(atomP(1))
	ab := g.And(a, b)
	ba := g.And(b, a)
	if ab != ba {
		t.Fatalf("And should canonicalize child order: And(a,b)=%v And(b,a)=%v", ab, ba)
	}
}

func TestAndConstantFolding(t *testing.T) {
	g := New()
	a := g.Atom(atomP(0))
	if got := g.And(a, g.False()); got != g.False() {
		t.Fatalf("And(a, False) = %v, want False", got)
	}
	if got := g.And(a, g.True()); got != a {
		t.Fatalf("And(a, True) = %v, want a", got)
	}
	if got := g.And(a, a.Neg()); got != g.False() {
		t.Fatalf("And(a, ¬a) = %v, want False", got)
	}
}

func TestCompressIdempotent(t *testing.T) {
	g := New()
	a := g.Atom(atomP(0))
	b := g.Atom(atomP(1))
	ab := g.And(a, b)
	once := g.Compress(ab, nil)
	twice := g.Compress(once, nil)
	if once != twice {
		t.Fatalf("Compress is not idempotent: %v != %v", once, twice)
	}
}

func TestFreeVarsRespectsQuantifierBinding(t *testing.T) {
	g := New()
	p0 := g.Atom(atomP(0))
	p1 := g.Atom(atomP(1))
	body := g.And(p0, p1)
	bound := g.Quant(Exists, []types.VarID{0}, body)

	free := FreeVars(g, bound)
	if len(free) != 1 || free[0] != types.VarID(1) {
		t.Fatalf("FreeVars(exists X0. p(X0) & p(X1)) = %v, want [1]", free)
	}
}

func TestTopoOrderListsChildrenBeforeParents(t *testing.T) {
	g := New()
	a := g.Atom(atomP(0))
	b := g.Atom(atomP(1))
	ab := g.And(a, b)
	order := TopoOrder(g, []NodeRef{ab})
	pos := make(map[uint32]int, len(order))
	for i, r := range order {
		pos[r.Index()] = i
	}
	if pos[a.Index()] >= pos[ab.Index()] || pos[b.Index()] >= pos[ab.Index()] {
		t.Fatalf("children must be listed before their parent: %v", order)
	}
}
