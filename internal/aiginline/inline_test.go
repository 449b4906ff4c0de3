package aiginline

import (
	"testing"

	"github.com/finiteproof/fmb/internal/aig"
	"github.com/finiteproof/fmb/internal/types"
	"github.com/kr/pretty"
)

func pred(name string, args ...types.Term) types.Literal {
	return types.Literal{Positive: true, Pred: name, Args: args}
}

func varT(id int) types.Term { return types.Term{Var: types.VarID(id)} }

func constT(name string) types.Term { return types.Term{Func: name} }

// TestInlineComposesTwoDefinitions reproduces §8 scenario 6: p(x) ⇔
// q(x) ∧ r(x), q(x) ⇔ s(x), so apply(aig(p(c))) = aig(s(c) ∧ r(c)).
func TestInlineComposesTwoDefinitions(t *testing.T) {
	g := aig.New()
	x := varT(0)

	// p(x) ⇔ q(x) ∧ r(x)
	qX := g.Atom(pred("q", x))
	rX := g.Atom(pred("r", x))
	pDefRHS := g.And(qX, rX)

	// q(x) ⇔ s(x)
	sX := g.Atom(pred("s", x))

	in := New(g, nil)
	in.Scan([]RawUnit{
		{ID: "def_p", LHS: pred("p", x), RHSFormula: pDefRHS},
		{ID: "def_q", LHS: pred("q", x), RHSFormula: sX},
	})

	c := constT("c")
	pC := g.Atom(pred("p", c))

	got := in.Apply(pC)

	sC := g.Atom(pred("s", c))
	rC := g.Atom(pred("r", c))
	want := g.And(sC, rC)

	if got != want {
		t.Fatalf("apply(aig(p(c))) = %v, want %v (aig(s(c) & r(c)))\nimage cache:\n%s", got, want, pretty.Sprint(in.imageCache))
	}
}

func TestApplyLeavesUndefinedAtomsUnchanged(t *testing.T) {
	g := aig.New()
	x := varT(0)
	in := New(g, nil)
	in.Scan(nil)

	atom := g.Atom(pred("undefined", x))
	if got := in.Apply(atom); got != atom {
		t.Fatalf("Apply on an atom with no definition should be a no-op, got %v want %v", got, atom)
	}
}

func TestApplyPreservesNegationOfDefinedAtom(t *testing.T) {
	g := aig.New()
	x := varT(0)
	qX := g.Atom(pred("q", x))

	in := New(g, nil)
	in.Scan([]RawUnit{{ID: "def_p", LHS: pred("p", x), RHSFormula: qX}})

	c := constT("c")
	pC := g.Atom(pred("p", c))
	notPC := pC.Neg()

	got := in.Apply(notPC)
	want := g.Atom(pred("q", c)).Neg()
	if got != want {
		t.Fatalf("apply(~p(c)) = %v, want %v (~q(c))", got, want)
	}
}

func TestDuplicateLHSDefinitionIsRejected(t *testing.T) {
	g := aig.New()
	x := varT(0)
	qX := g.Atom(pred("q", x))
	rX := g.Atom(pred("r", x))

	in := New(g, nil)
	in.Scan([]RawUnit{
		{ID: "first", LHS: pred("p", x), RHSFormula: qX},
		{ID: "second", LHS: pred("p", x), RHSFormula: rX}, // rejected: p already has a rule
	})

	c := constT("c")
	pC := g.Atom(pred("p", c))
	got := in.Apply(pC)
	want := g.Atom(pred("q", c)) // from the first definition only
	if got != want {
		t.Fatalf("second definition of p should have been rejected: apply(p(c)) = %v, want %v", got, want)
	}
}

func TestSelfReferentialDefinitionDoesNotLoop(t *testing.T) {
	g := aig.New()
	x := varT(0)

	in := New(g, nil)
	// p(x) ⇔ p(x) & q(x): a (degenerate) self-referential rule must not
	// cause Apply to recurse forever.
	qX := g.Atom(pred("q", x))
	pX := g.Atom(pred("p", x))
	rhs := g.And(pX, qX)
	in.Scan([]RawUnit{{ID: "def_p", LHS: pred("p", x), RHSFormula: rhs}})

	c := constT("c")
	pC := g.Atom(pred("p", c))

	// The visiting guard must keep this terminating rather than recursing
	// forever through p's own definition.
	got := in.Apply(pC)
	want := g.And(g.Atom(pred("p", c)), g.Atom(pred("q", c)))
	if got != want {
		t.Fatalf("apply(p(c)) = %v, want %v (p(c) left opaque, q(c) expanded)", got, want)
	}
}
