package fmb

import (
	"github.com/finiteproof/fmb/internal/signature"
	"github.com/finiteproof/fmb/internal/types"
)

// variableBounds computes, for each variable of a flattened clause, the
// tightest per-position bound implied by every occurrence of that
// variable as a predicate/function argument or function result. A
// variable that only ever appears on both sides of a bare `x = y`
// equality (never as an argument anywhere) gets no information from this
// pass and is left at the full domain size — it still has a value, just
// not a tighter one than "any domain element".
func variableBounds(fc types.Clause, sig *signature.Signature, size int) []int {
	bounds := make([]int, fc.NumVars)
	for i := range bounds {
		bounds[i] = size
	}
	tighten := func(v types.VarID, b int) {
		if b < bounds[v] {
			bounds[v] = b
		}
	}
	for _, lit := range fc.Literals {
		if lit.IsEquality() {
			switch {
			case !lit.LHS.IsVar():
				sym := types.FunctionSymbol{Name: lit.LHS.Func, Arity: len(lit.LHS.Args)}
				for i, a := range lit.LHS.Args {
					tighten(a.Var, sig.ArgBound(sym, true, i+1, size))
				}
				if lit.RHS.IsVar() {
					tighten(lit.RHS.Var, sig.ResultBound(sym, size))
				}
			case !lit.RHS.IsVar():
				sym := types.FunctionSymbol{Name: lit.RHS.Func, Arity: len(lit.RHS.Args)}
				for i, a := range lit.RHS.Args {
					tighten(a.Var, sig.ArgBound(sym, true, i+1, size))
				}
				tighten(lit.LHS.Var, sig.ResultBound(sym, size))
			}
			continue
		}
		sym := types.FunctionSymbol{Name: lit.Pred, Arity: len(lit.Args)}
		for i, a := range lit.Args {
			tighten(a.Var, sig.ArgBound(sym, false, i+1, size))
		}
	}
	return bounds
}

// translateLiteral grounds lit under assignment (assignment[v] is the
// 1-based domain value for variable v) into a signed SAT literal. A bare
// `x = y` equality is decided entirely by the grounding itself — it
// carries no SAT variable — so trivialTrue/trivialFalse report that
// outcome instead of a literal.
func translateLiteral(lit types.Literal, assignment []int, predBlocks, funcBlocks map[types.FunctionSymbol]block, size int) (satLit int, trivialTrue, trivialFalse bool) {
	if lit.IsEquality() {
		if lit.LHS.IsVar() && lit.RHS.IsVar() {
			eq := assignment[lit.LHS.Var] == assignment[lit.RHS.Var]
			truth := eq == lit.Positive
			return 0, truth, !truth
		}
		var sym types.FunctionSymbol
		var args []types.Term
		var resultVar types.VarID
		if !lit.LHS.IsVar() {
			sym = types.FunctionSymbol{Name: lit.LHS.Func, Arity: len(lit.LHS.Args)}
			args = lit.LHS.Args
			resultVar = lit.RHS.Var
		} else {
			sym = types.FunctionSymbol{Name: lit.RHS.Func, Arity: len(lit.RHS.Args)}
			args = lit.RHS.Args
			resultVar = lit.LHS.Var
		}
		ds := make([]int, len(args))
		for i, a := range args {
			ds[i] = assignment[a.Var]
		}
		y := assignment[resultVar]
		return funcLit(funcBlocks, sym, ds, y, size, lit.Positive), false, false
	}
	sym := types.FunctionSymbol{Name: lit.Pred, Arity: len(lit.Args)}
	ds := make([]int, len(lit.Args))
	for i, a := range lit.Args {
		ds[i] = assignment[a.Var]
	}
	return predLit(predBlocks, sym, ds, size, lit.Positive), false, false
}

// instanceClauses grounds every variable assignment of fc in odometer
// order, collapsing each instance per the literal semantics above: an
// instance containing a definitely-true literal is trivially satisfied
// and dropped; a definitely-false literal is dropped from its instance's
// disjunction, leaving the rest. This also covers the already-ground
// case (fc.NumVars == 0): forEachGrounding calls its callback exactly
// once with an empty assignment, and every literal translates directly.
func instanceClauses(fc types.Clause, sig *signature.Signature, predBlocks, funcBlocks map[types.FunctionSymbol]block, size int) [][]int {
	bounds := variableBounds(fc, sig, size)
	var out [][]int
	forEachGrounding(bounds, func(assignment []int) {
		ground := make([]int, 0, len(fc.Literals))
		for _, lit := range fc.Literals {
			satLit, trivialTrue, trivialFalse := translateLiteral(lit, assignment, predBlocks, funcBlocks, size)
			if trivialTrue {
				return // whole instance satisfied, emit nothing
			}
			if trivialFalse {
				continue
			}
			ground = append(ground, satLit)
		}
		out = append(out, ground)
	})
	return out
}

// functionalityClauses emits, for every function symbol (arity 0
// included), the functionality ("at most one result value per argument
// tuple") half of the functional-definition family — §4.4.1 step 3 and
// §5 place this family before the symmetry axioms.
func functionalityClauses(sig *signature.Signature, funcBlocks map[types.FunctionSymbol]block, size int) [][]int {
	var out [][]int
	for _, sym := range sortedSymbols(sig.Functions()) {
		argBounds, resultBound := funcBounds(sig, sym, size)
		forEachGrounding(argBounds, func(ds []int) {
			for y := 1; y <= resultBound; y++ {
				for z := y + 1; z <= resultBound; z++ {
					out = append(out, []int{
						funcLit(funcBlocks, sym, ds, y, size, false),
						funcLit(funcBlocks, sym, ds, z, size, false),
					})
				}
			}
		})
	}
	return out
}

// totalityClauses emits, for every function symbol (arity 0 included),
// the totality ("at least one result value per argument tuple") half of
// the functional-definition family — §4.4.1 step 3 and §5 place this
// family after the symmetry axioms.
func totalityClauses(sig *signature.Signature, funcBlocks map[types.FunctionSymbol]block, size int) [][]int {
	var out [][]int
	for _, sym := range sortedSymbols(sig.Functions()) {
		argBounds, resultBound := funcBounds(sig, sym, size)
		forEachGrounding(argBounds, func(ds []int) {
			total := make([]int, 0, resultBound)
			for y := 1; y <= resultBound; y++ {
				total = append(total, funcLit(funcBlocks, sym, ds, y, size, true))
			}
			out = append(out, total)
		})
	}
	return out
}

// funcBounds returns sym's argument bounds and result bound at the given
// domain size, shared by functionalityClauses and totalityClauses so the
// two families ground the identical argument-tuple space.
func funcBounds(sig *signature.Signature, sym types.FunctionSymbol, size int) ([]int, int) {
	argBounds := make([]int, sym.Arity)
	for i := range argBounds {
		argBounds[i] = sig.ArgBound(sym, true, i+1, size)
	}
	return argBounds, sig.ResultBound(sym, size)
}

// symmetryAxiomClauses implements the least-number symmetry-breaking
// family of §4.4.3: the s-th constant to
// appear (in first-seen order) is restricted to domain values in [1..s],
// plus the canonicity clauses forbidding it from reusing a value not yet
// forced on an earlier constant. Once every constant has been given its
// axiom, the family cycles through the non-constant functions the same
// way, one per newly-introduced domain element, per the §9 Design Notes
// open question (preserved here: with zero constants the cycle never
// starts, matching the source's early return).
func symmetryAxiomClauses(sig *signature.Signature, funcBlocks map[types.FunctionSymbol]block, size int) [][]int {
	var out [][]int
	constants := sig.Constants()
	n := len(constants)

	constSym := func(i int) types.FunctionSymbol {
		return types.FunctionSymbol{Name: constants[i], Arity: 0}
	}

	for s := 1; s <= size; s++ {
		switch {
		case s <= n:
			sym := constSym(s - 1)
			if _, ok := funcBlocks[sym]; !ok {
				continue
			}
			for d := s + 1; d <= size; d++ {
				out = append(out, []int{funcLit(funcBlocks, sym, nil, d, size, false)})
			}
			// d=1 is always reachable with no earlier constant backing it
			// (every domain has a first element), so the canonicity clause
			// is vacuously true there and only emitted for d >= 2.
			for d := 2; d < s; d++ {
				cls := []int{funcLit(funcBlocks, sym, nil, d, size, false)}
				for j := 0; j < s-1; j++ {
					prev := constSym(j)
					if _, ok := funcBlocks[prev]; !ok {
						continue
					}
					cls = append(cls, funcLit(funcBlocks, prev, nil, d-1, size, true))
				}
				out = append(out, cls)
			}

		case n > 0:
			nonConst := nonConstantFunctions(sig)
			if len(nonConst) == 0 {
				continue
			}
			f := nonConst[(s/n)%len(nonConst)]
			elem := s % n
			if elem == 0 {
				elem = n
			}
			args := make([]int, f.Arity)
			for i := range args {
				args[i] = elem
			}
			cls := make([]int, 0, s)
			for y := 1; y <= s; y++ {
				cls = append(cls, funcLit(funcBlocks, f, args, y, size, true))
			}
			out = append(out, cls)
		}
	}
	return out
}

// nonConstantFunctions returns the signature's function symbols of arity
// >= 1, in the same deterministic order used elsewhere for emission.
func nonConstantFunctions(sig *signature.Signature) []types.FunctionSymbol {
	var out []types.FunctionSymbol
	for _, sym := range sortedSymbols(sig.Functions()) {
		if sym.Arity > 0 {
			out = append(out, sym)
		}
	}
	return out
}
