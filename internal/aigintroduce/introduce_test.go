package aigintroduce

import (
	"testing"

	"github.com/finiteproof/fmb/internal/aig"
	"github.com/finiteproof/fmb/internal/types"
)

func pred(name string, args ...types.Term) types.Literal {
	return types.Literal{Positive: true, Pred: name, Args: args}
}

func varT(id int) types.Term { return types.Term{Var: types.VarID(id)} }

func TestIntroduceNamesNodeAtThreshold(t *testing.T) {
	g := aig.New()
	x := varT(0)

	a := g.Atom(pred("p", x))
	b := g.Atom(pred("q", x))
	shared := g.And(a, b) // p(x) & q(x), referenced below by two distinct parents

	c := g.Atom(pred("r", x))
	d := g.Atom(pred("t", x))
	r1 := g.And(shared, c)
	r2 := g.And(shared, d)

	in := New(g, 2, "s")
	rewritten, units := in.Introduce([]aig.NodeRef{r1, r2})

	if len(units) != 1 {
		t.Fatalf("expected exactly one defining unit, got %d", len(units))
	}
	def := units[0]
	if def.Symbol.Name != "s1" || def.Symbol.Arity != 1 {
		t.Fatalf("unexpected minted symbol: %+v", def.Symbol)
	}
	if len(def.Vars) != 1 || def.Vars[0] != types.VarID(0) {
		t.Fatalf("unexpected free vars: %v", def.Vars)
	}
	if def.Body != shared {
		t.Fatalf("definition body should be the original shared subformula unchanged (no further folding needed), got %v want %v", def.Body, shared)
	}

	wantAtom := g.Atom(pred("s1", x))
	wantR1 := g.And(wantAtom, c)
	wantR2 := g.And(wantAtom, d)
	if rewritten[0] != wantR1 || rewritten[1] != wantR2 {
		t.Fatalf("rewritten roots = %v, want [%v %v]", rewritten, wantR1, wantR2)
	}
}

func TestIntroduceLeavesBelowThresholdUnnamed(t *testing.T) {
	g := aig.New()
	x := varT(0)
	a := g.Atom(pred("p", x))
	b := g.Atom(pred("q", x))
	shared := g.And(a, b)
	r1 := g.And(shared, g.Atom(pred("r", x)))

	in := New(g, 4, "s")
	rewritten, units := in.Introduce([]aig.NodeRef{r1})

	if len(units) != 0 {
		t.Fatalf("expected no defining units below threshold, got %d", len(units))
	}
	if rewritten[0] != r1 {
		t.Fatalf("root should be unchanged when nothing was named")
	}
}

func TestIntroduceNeverNamesAtomsOrConstants(t *testing.T) {
	g := aig.New()
	x := varT(0)
	atom := g.Atom(pred("p", x))

	in := New(g, 1, "s") // threshold 1: an And node would qualify instantly
	// Each root is itself a bare atom or the constant, reachable many
	// times over; neither should ever be named.
	_, units := in.Introduce([]aig.NodeRef{atom, atom, atom, g.True(), g.True()})
	if len(units) != 0 {
		t.Fatalf("atoms and constants must never be named, got %d definitions", len(units))
	}
}

func TestIntroduceNamesNeverRenameAcrossCalls(t *testing.T) {
	g := aig.New()
	x := varT(0)
	a := g.Atom(pred("p", x))
	b := g.Atom(pred("q", x))
	shared := g.And(a, b)
	r1 := g.And(shared, g.Atom(pred("r", x)))
	r2 := g.And(shared, g.Atom(pred("t", x)))

	in := New(g, 2, "s")
	_, first := in.Introduce([]aig.NodeRef{r1, r2})
	if len(first) != 1 {
		t.Fatalf("expected one definition on first call, got %d", len(first))
	}
	// A second call reusing the same shared node must not mint a second
	// name for it.
	r3 := g.And(shared, g.Atom(pred("u", x)))
	_, second := in.Introduce([]aig.NodeRef{r3})
	if len(second) != 0 {
		t.Fatalf("expected no new definitions on second call (node already named), got %d", len(second))
	}
}
