package clause

import (
	"testing"

	"github.com/finiteproof/fmb/internal/types"
	"github.com/google/go-cmp/cmp"
)

func v(i int) types.Term { return types.Term{Var: types.VarID(i)} }

func fn(name string, args ...types.Term) types.Term {
	return types.Term{Func: name, Args: args}
}

func TestFlattenLiftsNestedTerm(t *testing.T) {
	// p(f(x)) -- one clause, one literal, nested functional argument.
	c := types.Clause{
		NumVars: 1,
		Literals: []types.Literal{
			{Positive: true, Pred: "p", Args: []types.Term{fn("f", v(0))}},
		},
	}
	got := Flatten(c)
	for _, lit := range got.Literals {
		if lit.IsEquality() {
			if !lit.LHS.IsVar() {
				for _, a := range lit.LHS.Args {
					if !a.IsVar() {
						t.Fatalf("equality LHS argument not a variable: %+v", got)
					}
				}
			}
			continue
		}
		for _, a := range lit.Args {
			if !a.IsVar() {
				t.Fatalf("non-equality literal argument not a variable: %+v", got)
			}
		}
	}
	if len(got.Literals) != 2 {
		t.Fatalf("expected a guard literal plus the rewritten atom, got %d literals: %+v", len(got.Literals), got)
	}
}

func TestFlattenNestedEqualityBothSidesLifted(t *testing.T) {
	// f(g(x)) = h(y)
	c := types.Clause{
		NumVars: 2,
		Literals: []types.Literal{
			{Positive: true, LHS: fn("f", fn("g", v(0))), RHS: fn("h", v(1))},
		},
	}
	got := Flatten(c)
	assertCanonicalEqualities(t, got)
}

// TestFlattenBothSidesFunctionalAfterLifting covers the §3 invariant
// directly: an equality whose two sides are both still functional once
// their own arguments are variables (f(x) = g(y), no nested recursion
// needed) must still end up as `t = Y`/`x = y`, not `t = u`.
func TestFlattenBothSidesFunctionalAfterLifting(t *testing.T) {
	c := types.Clause{
		NumVars: 2,
		Literals: []types.Literal{
			{Positive: true, LHS: fn("f", v(0)), RHS: fn("g", v(1))},
		},
	}
	got := Flatten(c)
	assertCanonicalEqualities(t, got)
}

// assertCanonicalEqualities fails t unless every equality literal in c is
// `t = x` (t functional) or `x = y`, per the §3 data-model invariant: at
// most one side may be a non-variable term.
func assertCanonicalEqualities(t *testing.T, c types.Clause) {
	t.Helper()
	for _, lit := range c.Literals {
		if !lit.IsEquality() {
			continue
		}
		if !lit.LHS.IsVar() && !lit.RHS.IsVar() {
			t.Fatalf("equality literal has a functional term on both sides: %+v", c)
		}
		checkSide := func(term types.Term) {
			if term.IsVar() {
				return
			}
			for _, a := range term.Args {
				if !a.IsVar() {
					t.Fatalf("equality side has a non-variable argument: %+v", c)
				}
			}
		}
		checkSide(lit.LHS)
		checkSide(lit.RHS)
	}
}

func TestFlattenIdempotent(t *testing.T) {
	c := types.Clause{
		NumVars: 1,
		Literals: []types.Literal{
			{Positive: true, Pred: "p", Args: []types.Term{fn("f", fn("g", v(0)))}},
		},
	}
	once := Flatten(c)
	twice := Flatten(once)
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("Flatten is not idempotent (-once +twice):\n%s", diff)
	}
}

func TestFlattenAlphaEquivalentClausesMatch(t *testing.T) {
	c1 := types.Clause{
		NumVars: 1,
		Literals: []types.Literal{
			{Positive: true, Pred: "p", Args: []types.Term{v(0)}},
		},
	}
	c2 := types.Clause{
		NumVars: 6,
		Literals: []types.Literal{
			{Positive: true, Pred: "p", Args: []types.Term{v(5)}},
		},
	}
	if diff := cmp.Diff(Flatten(c1), Flatten(c2)); diff != "" {
		t.Errorf("alpha-equivalent clauses should flatten identically (-c1 +c2):\n%s", diff)
	}
}
