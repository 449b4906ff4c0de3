package fmb

import (
	"sort"

	"github.com/finiteproof/fmb/internal/signature"
	"github.com/finiteproof/fmb/internal/types"
)

// maxVarNumbering bounds the propositional variable counter (§4.4.1 step
// 1, §7 OverflowError). It is well within the range a DIMACS int literal
// (and this solver's int-keyed maps) can represent.
const maxVarNumbering = 1 << 28

// block records where one symbol's variables begin and how many
// dimensions its encoding spans (arity for a predicate, arity+1 for a
// function, the extra dimension being the result value).
type block struct {
	offset int
	dims   int
}

// varIndex computes the mixed-radix offset of a grounding within a block:
// the index of p(d1,...,dk) is offset + Σ (di-1)*size^(k-i), a standard
// positional encoding over base `size` with the first dimension most
// significant.
func varIndex(b block, ds []int, size int) int {
	idx := 0
	for _, d := range ds {
		idx = idx*size + (d - 1)
	}
	return b.offset + idx
}

func blockVolume(size, dims int) (n int, overflow bool) {
	n = 1
	for i := 0; i < dims; i++ {
		n *= size
		if n > maxVarNumbering {
			return n, true
		}
	}
	return n, false
}

func sortedSymbols(syms []types.FunctionSymbol) []types.FunctionSymbol {
	out := append([]types.FunctionSymbol(nil), syms...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Arity < out[j].Arity
	})
	return out
}

// computeOffsets lays out the SAT-variable blocks for one size, in the
// deterministic predicates-then-functions, name-then-arity order §5
// requires. total is the next free variable number (one past the highest
// used); overflow reports whether any block's volume, or the running
// total, crossed maxVarNumbering.
func computeOffsets(sig *signature.Signature, size int) (predBlocks, funcBlocks map[types.FunctionSymbol]block, total int, overflow bool) {
	predBlocks = make(map[types.FunctionSymbol]block)
	funcBlocks = make(map[types.FunctionSymbol]block)
	total = 1

	for _, sym := range sortedSymbols(sig.Predicates()) {
		n, of := blockVolume(size, sym.Arity)
		if of || total > maxVarNumbering-n {
			return predBlocks, funcBlocks, total, true
		}
		predBlocks[sym] = block{offset: total, dims: sym.Arity}
		total += n
	}
	for _, sym := range sortedSymbols(sig.Functions()) {
		dims := sym.Arity + 1
		n, of := blockVolume(size, dims)
		if of || total > maxVarNumbering-n {
			return predBlocks, funcBlocks, total, true
		}
		funcBlocks[sym] = block{offset: total, dims: dims}
		total += n
	}
	return predBlocks, funcBlocks, total, false
}

func predLit(predBlocks map[types.FunctionSymbol]block, sym types.FunctionSymbol, ds []int, size int, positive bool) int {
	b := predBlocks[sym]
	v := varIndex(b, ds, size)
	if positive {
		return v
	}
	return -v
}

// funcLit encodes f(ds...)=y as a signed literal of the function's (a+1)
// dimensional block.
func funcLit(funcBlocks map[types.FunctionSymbol]block, sym types.FunctionSymbol, ds []int, y, size int, positive bool) int {
	b := funcBlocks[sym]
	full := append(append([]int(nil), ds...), y)
	v := varIndex(b, full, size)
	if positive {
		return v
	}
	return -v
}

// forEachGrounding calls f once per combination of assignment[i] in
// [1..bounds[i]], in odometer order (the last variable is fastest
// changing), copying the assignment slice for each call so f may retain
// it.
func forEachGrounding(bounds []int, f func(assignment []int)) {
	n := len(bounds)
	if n == 0 {
		f(nil)
		return
	}
	for _, b := range bounds {
		if b < 1 {
			return // a variable with no admissible value: no groundings at all
		}
	}
	assignment := make([]int, n)
	for i := range assignment {
		assignment[i] = 1
	}
	for {
		cp := append([]int(nil), assignment...)
		f(cp)
		i := n - 1
		for i >= 0 {
			assignment[i]++
			if assignment[i] <= bounds[i] {
				break
			}
			assignment[i] = 1
			i--
		}
		if i < 0 {
			return
		}
	}
}
