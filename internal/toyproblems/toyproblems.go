// Package toyproblems bundles a handful of hand-written clause sets for
// exercising the finite model builder from the command line, since
// parsing a TPTP problem file is outside this module's scope (§1).
package toyproblems

import "github.com/finiteproof/fmb/internal/types"

func v(id int) types.Term { return types.Term{Var: types.VarID(id)} }

func c(name string) types.Term { return types.Term{Func: name} }

func f(name string, args ...types.Term) types.Term { return types.Term{Func: name, Args: args} }

func pos(pred string, args ...types.Term) types.Literal {
	return types.Literal{Positive: true, Pred: pred, Args: args}
}

func neg(pred string, args ...types.Term) types.Literal {
	return types.Literal{Positive: false, Pred: pred, Args: args}
}

func eq(lhs, rhs types.Term) types.Literal { return types.Literal{Positive: true, LHS: lhs, RHS: rhs} }

func neq(lhs, rhs types.Term) types.Literal { return types.Literal{Positive: false, LHS: lhs, RHS: rhs} }

func clause(numVars int, lits ...types.Literal) types.Clause {
	return types.Clause{Literals: lits, NumVars: numVars}
}

var problems = map[string][]types.Clause{
	// A non-empty unary predicate over an otherwise unconstrained domain:
	// satisfiable at size 1.
	"tiny-satisfiable": {
		clause(1, pos("p", v(0))),
	},

	// p holds of everything and of nothing: unsatisfiable at every size.
	"tiny-unsatisfiable": {
		clause(1, pos("p", v(0))),
		clause(1, neg("p", v(0))),
	},

	// A single unary involution (e(e(X)) = X) that moves the constant a
	// (e(a) != a): in a one-element domain e(a) = a is forced, so this
	// needs at least a 2-element domain to satisfy, exercising the
	// function block's totality clause.
	"involution-no-fixpoint": {
		clause(0, neq(f("e", c("a")), c("a"))),
		clause(1, eq(f("e", f("e", v(0))), v(0))),
	},

	// A minimal group-like signature: associativity of a binary op plus an
	// identity element, no inverses required — satisfiable by the trivial
	// one-element monoid.
	"monoid-identity": {
		clause(1, eq(f("mul", c("e"), v(0)), v(0))),
		clause(1, eq(f("mul", v(0), c("e")), v(0))),
		clause(3, eq(f("mul", f("mul", v(0), v(1)), v(2)), f("mul", v(0), f("mul", v(1), v(2))))),
	},
}

// Names returns the built-in problem names, unordered.
func Names() []string {
	out := make([]string, 0, len(problems))
	for name := range problems {
		out = append(out, name)
	}
	return out
}

// Lookup returns a fresh copy of the named problem's clause set.
func Lookup(name string) ([]types.Clause, bool) {
	clauses, ok := problems[name]
	if !ok {
		return nil, false
	}
	out := make([]types.Clause, len(clauses))
	copy(out, clauses)
	return out, true
}
