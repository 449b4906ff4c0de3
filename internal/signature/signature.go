// Package signature infers, for every function and predicate symbol
// occurring in a clause set, a conservative upper bound on the number of
// distinct domain elements that can occur in each argument position (and,
// for functions, the result position). This is component C1: sorted
// signature & bounds.
package signature

import (
	"github.com/finiteproof/fmb/internal/types"
	"github.com/hashicorp/go-set/v3"
)

// Bounds records the per-position upper bounds for one symbol. Result is
// the result-sort bound for a function (unused — always 0 — for a
// predicate); Args[i-1] is the argument-sort bound of argument i.
//
// Invariant: every Args entry, and a function's Result, is >= 1.
type Bounds struct {
	IsFunction bool
	Arity      int
	Result     int   // 0 for predicates
	Args       []int // len == Arity
}

func newBounds(arity int, isFunction bool) *Bounds {
	args := make([]int, arity)
	for i := range args {
		args[i] = 1
	}
	result := 0
	if isFunction {
		result = 1
	}
	return &Bounds{IsFunction: isFunction, Arity: arity, Result: result, Args: args}
}

// Signature maps every function/predicate symbol to its inferred bounds.
type Signature struct {
	funcs map[types.FunctionSymbol]*Bounds
	// ConstantOrder lists the 0-arity function symbols (constants) in the
	// order symmetry-breaking should consider them: first-seen order,
	// matching the clause-set scan.
	ConstantOrder []string
}

// Lookup returns the bounds for symbol sym (as a function if isFunction,
// else as a predicate of the same name/arity), or nil if unseen.
func (s *Signature) Lookup(sym types.FunctionSymbol, isFunction bool) *Bounds {
	b := s.funcs[sym]
	if b == nil || b.IsFunction != isFunction {
		return nil
	}
	return b
}

// ArgBound returns min(bound, size) for the i-th (1-based) argument of
// sym, defaulting to size if the symbol or position is unknown.
func (s *Signature) ArgBound(sym types.FunctionSymbol, isFunction bool, i int, size int) int {
	b := s.Lookup(sym, isFunction)
	if b == nil || i < 1 || i > len(b.Args) {
		return size
	}
	if b.Args[i-1] < size {
		return b.Args[i-1]
	}
	return size
}

// ResultBound returns min(bound, size) for a function's result position.
func (s *Signature) ResultBound(sym types.FunctionSymbol, size int) int {
	b := s.Lookup(sym, true)
	if b == nil || b.Result == 0 {
		return size
	}
	if b.Result < size {
		return b.Result
	}
	return size
}

// Functions returns every function symbol (arity >= 0) with inferred bounds.
func (s *Signature) Functions() []types.FunctionSymbol {
	var out []types.FunctionSymbol
	for sym, b := range s.funcs {
		if b.IsFunction {
			out = append(out, sym)
		}
	}
	return out
}

// Predicates returns every predicate symbol with inferred bounds.
func (s *Signature) Predicates() []types.FunctionSymbol {
	var out []types.FunctionSymbol
	for sym, b := range s.funcs {
		if !b.IsFunction {
			out = append(out, sym)
		}
	}
	return out
}

// Constants returns the 0-arity function symbols in first-seen order.
func (s *Signature) Constants() []string { return s.ConstantOrder }

// Infer runs the one-shot sort-inference pass described in §3: for every
// literal in the clause set, every syntactic position of every function or
// predicate application widens that position's bound to at least the
// number of *distinct* ground subterms/variable-slots observed filling it
// across the whole clause set, which is a safe conservative
// over-approximation (never under-counts, may over-count when the true
// sort is smaller).
func Infer(clauses []types.Clause) *Signature {
	sig := &Signature{funcs: make(map[types.FunctionSymbol]*Bounds)}
	seenConst := set.New[string](8)

	// witnesses[sym][i] counts distinct syntactic "slot fillers" seen in
	// argument position i (1-based; 0 is the result position of a
	// function literal's top-level equality).
	witnesses := make(map[types.FunctionSymbol]map[int]*set.Set[string])

	widen := func(sym types.FunctionSymbol, isFunction bool, pos int, key string) {
		b, ok := sig.funcs[sym]
		if !ok {
			b = newBounds(sym.Arity, isFunction)
			sig.funcs[sym] = b
			witnesses[sym] = make(map[int]*set.Set[string])
		}
		w, ok := witnesses[sym][pos]
		if !ok {
			w = set.New[string](4)
			witnesses[sym][pos] = w
		}
		w.Insert(key)
		n := w.Size()
		if pos == 0 {
			if n > b.Result {
				b.Result = n
			}
		} else if n > b.Args[pos-1] {
			b.Args[pos-1] = n
		}
	}

	var walkTerm func(t types.Term)
	walkTerm = func(t types.Term) {
		if t.IsVar() {
			return
		}
		sym := types.FunctionSymbol{Name: t.Func, Arity: len(t.Args)}
		if sym.Arity == 0 {
			if !seenConst.Contains(sym.Name) {
				seenConst.Insert(sym.Name)
				sig.ConstantOrder = append(sig.ConstantOrder, sym.Name)
			}
		}
		for i, a := range t.Args {
			widen(sym, true, i+1, slotKey(a))
			walkTerm(a)
		}
		// the function's own result position is widened where it appears
		// as the LHS of an equality; see below.
		if _, ok := sig.funcs[sym]; !ok {
			sig.funcs[sym] = newBounds(sym.Arity, true)
			witnesses[sym] = make(map[int]*set.Set[string])
		}
	}

	for _, c := range clauses {
		for _, lit := range c.Literals {
			if lit.IsEquality() {
				if !lit.LHS.IsVar() {
					sym := types.FunctionSymbol{Name: lit.LHS.Func, Arity: len(lit.LHS.Args)}
					walkTerm(lit.LHS)
					widen(sym, true, 0, slotKey(lit.RHS))
				} else {
					walkTerm(lit.LHS)
				}
				walkTerm(lit.RHS)
				continue
			}
			sym := types.FunctionSymbol{Name: lit.Pred, Arity: len(lit.Args)}
			for i, a := range lit.Args {
				widen(sym, false, i+1, slotKey(a))
				walkTerm(a)
			}
			if _, ok := sig.funcs[sym]; !ok {
				sig.funcs[sym] = newBounds(sym.Arity, false)
			}
		}
	}
	return sig
}

// slotKey produces a witness key for a term filling an argument/result
// slot: variables are distinguished by index, ground terms by their
// printed form, so two occurrences of the same constant don't inflate the
// bound but a genuinely new value does.
func slotKey(t types.Term) string {
	if t.IsVar() {
		return "v#" + itoa(int(t.Var))
	}
	return "t#" + t.String()
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
