// Package aig implements C6: a hash-consed, polarity-tagged and-inverter
// graph used by the formula preprocessing pipeline (inlining and
// definition introduction).
package aig

import (
	"fmt"

	"github.com/finiteproof/fmb/internal/types"
)

// Kind is the tag of an AIG node.
type Kind int

const (
	KindConst Kind = iota
	KindAtom
	KindAnd
	KindQuant
)

// QuantKind distinguishes existential from universal quantifier nodes.
type QuantKind int

const (
	Exists QuantKind = iota
	Forall
)

type node struct {
	kind Kind

	atomLit types.Literal // positive-polarity canonical form

	left, right NodeRef // KindAnd children, each carrying its own polarity

	quantKind QuantKind
	vars      []types.VarID
	child     NodeRef
}

// NodeRef is a reference to a graph node with an explicit polarity bit in
// the low bit: negation is a bit flip, never an allocation.
type NodeRef uint32

// Index returns the underlying node index, stripping polarity.
func (r NodeRef) Index() uint32 { return uint32(r) >> 1 }

// Positive reports whether r references its node un-negated.
func (r NodeRef) Positive() bool { return uint32(r)&1 == 0 }

// Neg returns the negation of r (zero-cost bit flip).
func (r NodeRef) Neg() NodeRef { return r ^ 1 }

func refTo(idx uint32) NodeRef { return NodeRef(idx << 1) }

// Graph is an arena of hash-consed AIG nodes. Index 0 is always the
// boolean constant; True() and False() are its two polarities.
type Graph struct {
	nodes []node
	index map[string]uint32
}

// New returns an empty graph, pre-seeded with the constant node.
func New() *Graph {
	g := &Graph{index: make(map[string]uint32)}
	g.nodes = append(g.nodes, node{kind: KindConst})
	return g
}

// True is the constant-true reference.
func (g *Graph) True() NodeRef { return refTo(0) }

// False is the constant-false reference.
func (g *Graph) False() NodeRef { return g.True().Neg() }

func (g *Graph) intern(key string, build func() node) uint32 {
	if idx, ok := g.index[key]; ok {
		return idx
	}
	idx := uint32(len(g.nodes))
	g.nodes = append(g.nodes, build())
	g.index[key] = idx
	return idx
}

// Atom returns the AIG reference for literal lit, hash-consed on its
// positive-polarity form so that p(x) and ~p(x) share one node.
func (g *Graph) Atom(lit types.Literal) NodeRef {
	positive := lit
	positive.Positive = true
	key := "atom:" + positive.String()
	idx := g.intern(key, func() node { return node{kind: KindAtom, atomLit: positive} })
	ref := refTo(idx)
	if !lit.Positive {
		ref = ref.Neg()
	}
	return ref
}

// And returns the conjunction of a and b, applying the constant-folding
// shortcuts (⊥∧x=⊥, ⊤∧x=x) and canonicalizing child order so that
// And(a,b) and And(b,a) hash-cons to the same node.
func (g *Graph) And(a, b NodeRef) NodeRef {
	if a == g.False() || b == g.False() {
		return g.False()
	}
	if a == g.True() {
		return b
	}
	if b == g.True() {
		return a
	}
	if a == b {
		return a
	}
	if a == b.Neg() {
		return g.False()
	}
	if a > b {
		a, b = b, a
	}
	key := fmt.Sprintf("and:%d:%d", a, b)
	idx := g.intern(key, func() node { return node{kind: KindAnd, left: a, right: b} })
	return refTo(idx)
}

// Or returns the disjunction of a and b via De Morgan's law, which is how
// an AIG (whose only interior node kind is conjunction) represents
// disjunction at all.
func (g *Graph) Or(a, b NodeRef) NodeRef {
	return g.And(a.Neg(), b.Neg()).Neg()
}

// Quant returns a quantifier node over vars wrapping child.
func (g *Graph) Quant(kind QuantKind, vars []types.VarID, child NodeRef) NodeRef {
	key := fmt.Sprintf("q:%d:%v:%d", kind, vars, child)
	idx := g.intern(key, func() node {
		cp := make([]types.VarID, len(vars))
		copy(cp, vars)
		return node{kind: KindQuant, quantKind: kind, vars: cp, child: child}
	})
	return refTo(idx)
}

// Kind returns the node kind that r refers to.
func (g *Graph) Kind(r NodeRef) Kind { return g.nodes[r.Index()].kind }

// AtomLiteral returns the positive-polarity literal of an atom node. Panics if r
// does not reference an atom node.
func (g *Graph) AtomLiteral(r NodeRef) types.Literal {
	n := g.nodes[r.Index()]
	if n.kind != KindAtom {
		panic("aig: AtomLiteral on non-atom node")
	}
	return n.atomLit
}

// Children returns the two (polarity-tagged) children of an And node.
// Panics if r does not reference an And node.
func (g *Graph) Children(r NodeRef) (NodeRef, NodeRef) {
	n := g.nodes[r.Index()]
	if n.kind != KindAnd {
		panic("aig: Children on non-And node")
	}
	return n.left, n.right
}

// QuantInfo returns the quantifier kind, bound variables, and child of a
// Quant node. Panics if r does not reference one.
func (g *Graph) QuantInfo(r NodeRef) (QuantKind, []types.VarID, NodeRef) {
	n := g.nodes[r.Index()]
	if n.kind != KindQuant {
		panic("aig: QuantInfo on non-Quant node")
	}
	return n.quantKind, n.vars, n.child
}

// NormalizeHook is the injectable BDD-based normaliser the inliner
// applies after its own rewrite (§4.5 step 4). A real deployment swaps in
// a BDD package; the identity hook is the default here (on-the-fly AIG
// simplification beyond propagation of known names is out of scope).
type NormalizeHook func(g *Graph, r NodeRef) NodeRef

// Identity is the default NormalizeHook: no further simplification.
func Identity(_ *Graph, r NodeRef) NodeRef { return r }

// Compress applies hook to r. Because every constructor above already
// reduces to a canonical, hash-consed form, Compress(Compress(a)) ==
// Compress(a) holds for any hook that is itself idempotent (Identity
// trivially is).
func (g *Graph) Compress(r NodeRef, hook NormalizeHook) NodeRef {
	if hook == nil {
		hook = Identity
	}
	return hook(g, r)
}
