// Package clause implements C2: the clause flattener & normaliser. It
// rewrites an arbitrary clause into the canonical form required by the
// rest of the pipeline, where every literal argument position is a
// variable, and applies the left-to-right variable renaming that makes
// alpha-equivalent clauses compare equal.
package clause

import "github.com/finiteproof/fmb/internal/types"

// Flatten rewrites c into an equivalent clause where every non-equality
// literal's arguments are variables and every equality literal is either
// `t = x` (t functional, variable-argumented) or `x = y`.
//
// Nested terms are pulled out via fresh existentially bound variables:
// `p(f(x))` becomes `~(f(x) = Y) | p(Y)` with Y fresh, which is the
// standard Tseitin-style flattening for a disequality-guarded definition.
// An equality whose two sides are both still functional after their own
// arguments are lifted — `f(x) = g(y)` — has its right side hoisted into
// a fresh variable the same way, since `t = u` with both sides
// functional is not itself in `t = x`/`x = y` form.
func Flatten(c types.Clause) types.Clause {
	fresh := c.NumVars
	var out []types.Literal
	newVar := func() types.VarID {
		v := types.VarID(fresh)
		fresh++
		return v
	}

	var liftArgs func(args []types.Term) ([]types.Term, []types.Literal)
	liftArgs = func(args []types.Term) ([]types.Term, []types.Literal) {
		flatArgs := make([]types.Term, len(args))
		var guards []types.Literal
		for i, a := range args {
			if a.IsVar() {
				flatArgs[i] = a
				continue
			}
			nestedArgs, nestedGuards := liftArgs(a.Args)
			guards = append(guards, nestedGuards...)
			v := newVar()
			guards = append(guards, types.Literal{
				Positive: false,
				LHS:      types.Term{Func: a.Func, Args: nestedArgs},
				RHS:      types.Term{Var: v},
			})
			flatArgs[i] = types.Term{Var: v}
		}
		return flatArgs, guards
	}

	for _, lit := range c.Literals {
		if lit.IsEquality() {
			lhs, lhsGuards := liftSide(lit.LHS, newVar)
			rhs, rhsGuards := liftSide(lit.RHS, newVar)
			out = append(out, lhsGuards...)
			out = append(out, rhsGuards...)
			// liftSide only lifts a side's own arguments into variables; if
			// neither side was already a bare variable or constant, both are
			// still functional terms here (e.g. f(x) = g(y)), which isn't
			// the required `t = x`/`x = y` shape. Hoist the right side's
			// whole term into a fresh variable too, same as a constant.
			if !lhs.IsVar() && !rhs.IsVar() {
				v := newVar()
				out = append(out, types.Literal{Positive: false, LHS: rhs, RHS: types.Term{Var: v}})
				rhs = types.Term{Var: v}
			}
			out = append(out, types.Literal{Positive: lit.Positive, LHS: lhs, RHS: rhs})
			continue
		}
		flatArgs, guards := liftArgs(lit.Args)
		out = append(out, guards...)
		out = append(out, types.Literal{Positive: lit.Positive, Pred: lit.Pred, Args: flatArgs})
	}

	return canonicalizeVars(types.Clause{Literals: out, NumVars: fresh})
}

// liftSide flattens one side of an equality literal. A variable passes
// through unchanged; a functional term is flattened in place (its own
// arguments lifted) and returned directly, since `f(x)=y` is already the
// required shape — only its arguments, not the whole side, may need
// lifting. A bare constant (an arity-0 function, the degenerate case of
// "nested" with no arguments of its own) is guarded into a fresh variable
// too, so that after flattening the only zero-variable clauses left are
// purely propositional ones — every constant reaches the finite model
// builder through a variable the function block can ground.
func liftSide(t types.Term, newVar func() types.VarID) (types.Term, []types.Literal) {
	if t.IsVar() {
		return t, nil
	}
	if len(t.Args) == 0 {
		v := newVar()
		guard := types.Literal{Positive: false, LHS: t, RHS: types.Term{Var: v}}
		return types.Term{Var: v}, []types.Literal{guard}
	}
	var guards []types.Literal
	flatArgs := make([]types.Term, len(t.Args))
	for i, a := range t.Args {
		if a.IsVar() {
			flatArgs[i] = a
			continue
		}
		inner, innerGuards := liftSide(a, newVar)
		guards = append(guards, innerGuards...)
		v := newVar()
		guards = append(guards, types.Literal{Positive: false, LHS: inner, RHS: types.Term{Var: v}})
		flatArgs[i] = types.Term{Var: v}
	}
	return types.Term{Func: t.Func, Args: flatArgs}, guards
}

// canonicalizeVars renumbers variables so that the first variable
// encountered in left-to-right literal/argument order is 0, the second is
// 1, and so on. Two clauses that differ only in variable naming become
// literally equal after this pass.
func canonicalizeVars(c types.Clause) types.Clause {
	remap := make(map[types.VarID]types.VarID)
	next := types.VarID(0)
	assign := func(v types.VarID) types.VarID {
		if r, ok := remap[v]; ok {
			return r
		}
		remap[v] = next
		next++
		return remap[v]
	}
	var renameTerm func(t types.Term) types.Term
	renameTerm = func(t types.Term) types.Term {
		if t.IsVar() {
			return types.Term{Var: assign(t.Var)}
		}
		args := make([]types.Term, len(t.Args))
		for i, a := range t.Args {
			args[i] = renameTerm(a)
		}
		return types.Term{Func: t.Func, Args: args}
	}
	lits := make([]types.Literal, len(c.Literals))
	for i, lit := range c.Literals {
		if lit.IsEquality() {
			lits[i] = types.Literal{Positive: lit.Positive, LHS: renameTerm(lit.LHS), RHS: renameTerm(lit.RHS)}
			continue
		}
		args := make([]types.Term, len(lit.Args))
		for j, a := range lit.Args {
			args[j] = renameTerm(a)
		}
		lits[i] = types.Literal{Positive: lit.Positive, Pred: lit.Pred, Args: args}
	}
	return types.Clause{Literals: lits, NumVars: int(next)}
}
