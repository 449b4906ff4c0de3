// Package fmb implements C5, the finite model builder: a size-ascending
// search for a model of a clause set, encoding each candidate size as a
// SAT instance over per-symbol variable blocks.
package fmb

import (
	"fmt"

	"github.com/finiteproof/fmb/internal/clause"
	"github.com/finiteproof/fmb/internal/dimacs"
	"github.com/finiteproof/fmb/internal/fmbctx"
	"github.com/finiteproof/fmb/internal/presolver"
	"github.com/finiteproof/fmb/internal/satsolver"
	"github.com/finiteproof/fmb/internal/signature"
	"github.com/finiteproof/fmb/internal/types"
)

// Status is the outcome of a Run.
type Status int

const (
	StatusUnknown Status = iota
	StatusSatisfiable
	StatusUnsatisfiable
)

func (s Status) String() string {
	switch s {
	case StatusSatisfiable:
		return "satisfiable"
	case StatusUnsatisfiable:
		return "unsatisfiable"
	default:
		return "unknown"
	}
}

// Result is what Run returns on a clean termination (no error).
type Result struct {
	Status Status
	Size   int // the domain size the result pertains to
	Model  *Model
}

// Builder runs the FMB search loop described in §4.4.1 over a fixed
// clause set.
type Builder struct {
	ctx          *fmbctx.Context
	sig          *signature.Signature
	flat         []types.Clause
	maxModelSize int
}

// New builds a Builder. Sort/bound inference runs over the original
// (pre-flatten) clauses — Infer's witness counting is keyed to the
// clauses' own nested-term structure, and flattening's fresh guard
// variables would only dilute that signal. Each clause is flattened once
// up front; the search loop re-grounds the flattened forms at every
// candidate size.
//
// If flattening ever produces the empty clause, New returns immediately
// with a KindRefutationFound error (§7 "a flattened clause is the empty
// clause ⇒ immediate REFUTATION", modeled here as the "dedicated
// exceptional return channel" the design notes ask for rather than a
// panic/recover pair) — the loop never even starts.
func New(ctx *fmbctx.Context, clauses []types.Clause) (*Builder, error) {
	sig := signature.Infer(clauses)
	flat := make([]types.Clause, len(clauses))
	for i, c := range clauses {
		fc := clause.Flatten(c)
		if fc.IsEmpty() {
			return nil, fmbctx.New(fmbctx.KindRefutationFound, "clause %d flattens to the empty clause", i)
		}
		flat[i] = fc
	}
	b := &Builder{ctx: ctx, sig: sig, flat: flat}
	b.maxModelSize = computeMaxModelSize(ctx, sig, clauses)
	return b, nil
}

// computeMaxModelSize starts from the options' configured cap if set,
// otherwise from the largest size the variable-numbering space can still
// represent for this signature's widest symbol block (a backstop so the
// search loop always terminates even with no explicit bound). Either
// starting value is then tightened per §4.4.1:
//
//   - any clause that is a disjunction of positive equalities between
//     pairwise-distinct variables (a "distinct-variable equality clause"
//     of variable count k) forces, by pigeonhole, that the domain be
//     smaller than k: for domain size >= k a grounding can assign all k
//     variables distinct elements, falsifying every disjunct, so the
//     bound tightens to k-1 (see DESIGN.md for why this reading is used
//     over a literal "<= k", which §8's own worked example contradicts);
//   - if the problem is EPR (no function symbol of arity >= 1 — only
//     predicates and constants), the bound additionally clamps to the
//     number of constant symbols, since an EPR model's domain need never
//     exceed the number of named elements.
func computeMaxModelSize(ctx *fmbctx.Context, sig *signature.Signature, clauses []types.Clause) int {
	size := ctx.Options.MaxModelSize
	if size <= 0 {
		size = backstopMaxModelSize(sig)
	}

	for _, c := range clauses {
		if k, ok := distinctVarEqualityCount(c); ok && k-1 < size {
			size = k - 1
		}
	}

	if isEPR(sig) {
		if n := len(sig.Constants()); n > 0 && n < size {
			size = n
		}
	}

	if size < 1 {
		size = 1
	}
	return size
}

// backstopMaxModelSize returns the largest size the variable-numbering
// space can still represent for this signature's widest symbol block,
// found by binary search over blockVolume's monotone overflow predicate
// (a linear scan would need on the order of maxVarNumbering steps for a
// unary signature).
func backstopMaxModelSize(sig *signature.Signature) int {
	maxDims := 1
	for _, sym := range sig.Predicates() {
		if sym.Arity > maxDims {
			maxDims = sym.Arity
		}
	}
	for _, sym := range sig.Functions() {
		if sym.Arity+1 > maxDims {
			maxDims = sym.Arity + 1
		}
	}
	lo, hi := 1, maxVarNumbering
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if _, overflow := blockVolume(mid+1, maxDims); overflow {
			hi = mid - 1
		} else {
			lo = mid
		}
	}
	return lo
}

// isEPR reports whether the signature has no function symbol of arity
// >= 1 (constants, arity 0, don't count against EPR-ness).
func isEPR(sig *signature.Signature) bool {
	for _, sym := range sig.Functions() {
		if sym.Arity > 0 {
			return false
		}
	}
	return true
}

// distinctVarEqualityCount reports whether c's literals are entirely
// positive variable-to-variable equalities among pairwise-distinct
// variables, and if so how many distinct variables are referenced.
func distinctVarEqualityCount(c types.Clause) (int, bool) {
	if len(c.Literals) == 0 {
		return 0, false
	}
	seen := make(map[types.VarID]bool)
	for _, lit := range c.Literals {
		if !lit.IsEquality() || !lit.Positive {
			return 0, false
		}
		if !lit.LHS.IsVar() || !lit.RHS.IsVar() {
			return 0, false
		}
		if lit.LHS.Var == lit.RHS.Var {
			return 0, false
		}
		seen[lit.LHS.Var] = true
		seen[lit.RHS.Var] = true
	}
	return len(seen), true
}

// newSolver instantiates the configured SAT backend wrapped in the
// transparent pre-solver. The external backends are not compiled into
// this build (see satsolver.NewExternal); selecting one is reported as
// an unsupported-problem error rather than silently handed a nil inner
// solver.
func (b *Builder) newSolver(n int) (satsolver.Solver, error) {
	var inner satsolver.Solver
	switch b.ctx.Options.SATBackend {
	case satsolver.BackendInternalCDCL:
		inner = satsolver.NewCDCL()
	case satsolver.BackendExternalLingeling:
		s, err := satsolver.NewExternal("lingeling")
		if err != nil {
			return nil, fmbctx.New(fmbctx.KindUnsupportedProblem, "%v", err)
		}
		inner = s
	case satsolver.BackendExternalMiniSAT:
		s, err := satsolver.NewExternal("minisat")
		if err != nil {
			return nil, fmbctx.New(fmbctx.KindUnsupportedProblem, "%v", err)
		}
		inner = s
	default:
		return nil, fmbctx.New(fmbctx.KindUnsupportedProblem, "unknown sat backend %v", b.ctx.Options.SATBackend)
	}
	solver := presolver.New(inner)
	solver.EnsureVarCount(n)
	return solver, nil
}

// Run executes the §4.4.1 loop: try each domain size in ascending order,
// encode it as a SAT instance, and solve. SAT yields a model immediately.
// UNSAT at the configured ceiling yields Unsatisfiable if the caller's
// completeness predicate holds for this problem (i.e. exhausting sizes
// up to the ceiling is known to be a sound refutation procedure for it),
// Unknown otherwise. A deadline or variable-numbering overflow aborts
// with an error.
func (b *Builder) Run() (*Result, error) {
	for size := 1; size <= b.maxModelSize; size++ {
		if b.ctx.Deadline.Expired() {
			return nil, fmbctx.New(fmbctx.KindTimeLimit, "deadline exceeded before size %d", size)
		}

		predBlocks, funcBlocks, total, overflow := computeOffsets(b.sig, size)
		if overflow {
			return nil, fmbctx.New(fmbctx.KindOverflow, "variable numbering overflow at size %d", size)
		}

		solver, err := b.newSolver(total)
		if err != nil {
			return nil, err
		}

		pending := b.buildClauses(predBlocks, funcBlocks, size)
		if b.ctx.Options.EmitDIMACS && b.ctx.Options.DIMACSOut != nil {
			if err := b.emitDIMACS(size, pending); err != nil {
				return nil, fmbctx.New(fmbctx.KindAssertionViolation, "writing DIMACS dump at size %d: %v", size, err)
			}
		}
		if err := solver.AddClauses(pending, false); err != nil {
			return nil, fmbctx.New(fmbctx.KindAssertionViolation, "solver rejected clauses at size %d: %v", size, err)
		}

		if b.ctx.Deadline.Expired() {
			return nil, fmbctx.New(fmbctx.KindTimeLimit, "deadline exceeded while solving size %d", size)
		}

		switch solver.Solve() {
		case satsolver.StatusSAT:
			model := reconstructModel(b.sig, predBlocks, funcBlocks, size, solver)
			return &Result{Status: StatusSatisfiable, Size: size, Model: model}, nil
		case satsolver.StatusUNSAT:
			continue
		default:
			return &Result{Status: StatusUnknown, Size: size}, nil
		}
	}

	if b.ctx.Options.Complete() {
		return &Result{Status: StatusUnsatisfiable, Size: b.maxModelSize}, nil
	}
	return &Result{Status: StatusUnknown, Size: b.maxModelSize}, nil
}

// emitDIMACS writes the ground SAT instance built for one candidate size
// to the options' DIMACSOut, preceded by a comment line naming the size —
// the §6 "optional intermediate artefact" knob, wiring internal/dimacs's
// Write directly into the search loop instead of leaving it a
// parser/writer pair nothing in the pipeline calls.
func (b *Builder) emitDIMACS(size int, clauses [][]int) error {
	if _, err := fmt.Fprintf(b.ctx.Options.DIMACSOut, "c fmb ground instance at domain size %d\n", size); err != nil {
		return err
	}
	return dimacs.Write(b.ctx.Options.DIMACSOut, clauses)
}

// buildClauses assembles the clause families for one candidate size, in
// the §4.4.1 step 3 / §5 order: instance (including already-ground)
// clauses from every input clause, then the function block's
// functionality (uniqueness) axioms, then the least-number
// symmetry-breaking axioms (§4.4.3), then the function block's totality
// axioms.
func (b *Builder) buildClauses(predBlocks, funcBlocks map[types.FunctionSymbol]block, size int) [][]int {
	var out [][]int
	for _, fc := range b.flat {
		out = append(out, instanceClauses(fc, b.sig, predBlocks, funcBlocks, size)...)
	}
	out = append(out, functionalityClauses(b.sig, funcBlocks, size)...)
	out = append(out, symmetryAxiomClauses(b.sig, funcBlocks, size)...)
	out = append(out, totalityClauses(b.sig, funcBlocks, size)...)
	return out
}
