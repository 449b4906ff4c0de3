package fmb

import (
	"fmt"
	"sort"
	"strings"

	"github.com/finiteproof/fmb/internal/satsolver"
	"github.com/finiteproof/fmb/internal/signature"
	"github.com/finiteproof/fmb/internal/types"
)

// Model is a reconstructed finite interpretation: domain elements are the
// integers 1..Size, named "fmbN" in TPTP output per §4.4.4/§6.
type Model struct {
	Size int

	// Functions[sym] is a flattened array over the mixed-radix argument
	// tuples (same order as forEachGrounding), each entry the 1-based
	// domain value the function maps that tuple to. A 0-arity symbol's
	// array has exactly one entry.
	Functions map[types.FunctionSymbol][]int

	// Predicates[sym] is a flattened boolean array over the same ordering.
	Predicates map[types.FunctionSymbol][]bool
}

func domainName(d int) string { return fmt.Sprintf("fmb%d", d) }

func argTupleBounds(size, dims int) []int {
	bounds := make([]int, dims)
	for i := range bounds {
		bounds[i] = size
	}
	return bounds
}

// reconstructModel reads the satisfying assignment back out of solver
// into a Model, by re-deriving each symbol's grounded literal from the
// same block layout used to encode it.
func reconstructModel(sig *signature.Signature, predBlocks, funcBlocks map[types.FunctionSymbol]block, size int, solver satsolver.Solver) *Model {
	m := &Model{
		Size:       size,
		Functions:  make(map[types.FunctionSymbol][]int),
		Predicates: make(map[types.FunctionSymbol][]bool),
	}

	for sym, b := range predBlocks {
		n, _ := blockVolume(size, b.dims)
		vals := make([]bool, n)
		i := 0
		forEachGrounding(argTupleBounds(size, b.dims), func(ds []int) {
			lit := predLit(predBlocks, sym, ds, size, true)
			vals[i] = solver.Assignment(lit) == satsolver.True
			i++
		})
		m.Predicates[sym] = vals
	}

	for sym, b := range funcBlocks {
		argDims := b.dims - 1
		n, _ := blockVolume(size, argDims)
		vals := make([]int, n)
		i := 0
		forEachGrounding(argTupleBounds(size, argDims), func(ds []int) {
			for y := 1; y <= size; y++ {
				lit := funcLit(funcBlocks, sym, ds, y, size, true)
				if solver.Assignment(lit) == satsolver.True {
					vals[i] = y
					break
				}
			}
			i++
		})
		m.Functions[sym] = vals
	}

	return m
}

func sortedSyms(in map[types.FunctionSymbol][]int) []types.FunctionSymbol {
	out := make([]types.FunctionSymbol, 0, len(in))
	for sym := range in {
		out = append(out, sym)
	}
	return sortedSymbols(out)
}

func sortedBoolSyms(in map[types.FunctionSymbol][]bool) []types.FunctionSymbol {
	out := make([]types.FunctionSymbol, 0, len(in))
	for sym := range in {
		out = append(out, sym)
	}
	return sortedSymbols(out)
}

// Render writes m as a block of TPTP fof annotated formulas: the domain
// extensionality/distinctness axioms, then every function/constant
// definition, then every predicate fact (both polarities, since a finite
// model fixes every ground atom's truth value).
func (m *Model) Render() string {
	var sb strings.Builder

	names := make([]string, m.Size)
	for d := 1; d <= m.Size; d++ {
		names[d-1] = domainName(d)
	}

	fmt.Fprintf(&sb, "fof(fmb_domain, fi_domain, (\n    ! [X] : ( %s ) )).\n", domainDisjunction(names))
	if m.Size > 1 {
		fmt.Fprintf(&sb, "fof(fmb_distinct, fi_domain, (\n    %s )).\n", distinctConjunction(names))
	}

	for _, sym := range sortedSyms(m.Functions) {
		vals := m.Functions[sym]
		bounds := argTupleBounds(m.Size, sym.Arity)
		i := 0
		forEachGrounding(bounds, func(ds []int) {
			lhs := sym.Name
			if sym.Arity > 0 {
				args := make([]string, sym.Arity)
				for j, d := range ds {
					args[j] = domainName(d)
				}
				lhs = fmt.Sprintf("%s(%s)", sym.Name, strings.Join(args, ","))
			}
			fmt.Fprintf(&sb, "fof(fmb_func_%s_%d, fi_functors, ( %s = %s )).\n", sym.Name, i, lhs, domainName(vals[i]))
			i++
		})
	}

	for _, sym := range sortedBoolSyms(m.Predicates) {
		vals := m.Predicates[sym]
		bounds := argTupleBounds(m.Size, sym.Arity)
		i := 0
		forEachGrounding(bounds, func(ds []int) {
			atom := sym.Name
			if sym.Arity > 0 {
				args := make([]string, sym.Arity)
				for j, d := range ds {
					args[j] = domainName(d)
				}
				atom = fmt.Sprintf("%s(%s)", sym.Name, strings.Join(args, ","))
			}
			if !vals[i] {
				atom = "~" + atom
			}
			fmt.Fprintf(&sb, "fof(fmb_pred_%s_%d, fi_predicates, ( %s )).\n", sym.Name, i, atom)
			i++
		})
	}

	return sb.String()
}

func domainDisjunction(names []string) string {
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = fmt.Sprintf("X = %s", n)
	}
	return strings.Join(parts, " | ")
}

func distinctConjunction(names []string) string {
	var parts []string
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			parts = append(parts, fmt.Sprintf("%s != %s", names[i], names[j]))
		}
	}
	sort.Strings(parts) // deterministic output regardless of map iteration elsewhere
	return strings.Join(parts, " & ")
}
