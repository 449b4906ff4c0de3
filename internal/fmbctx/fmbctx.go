// Package fmbctx threads the ambient state every component needs —
// options, a logger, and a deadline predicate — as an explicit struct
// rather than package-level globals (see the "Global singleton state"
// design note).
package fmbctx

import (
	"io"
	"time"

	"github.com/hashicorp/go-hclog"
)

// SATBackend selects which SAT solver contract implementation the finite
// model builder instantiates at each size.
type SATBackend int

const (
	BackendInternalCDCL SATBackend = iota
	BackendExternalLingeling
	BackendExternalMiniSAT
)

func (b SATBackend) String() string {
	switch b {
	case BackendInternalCDCL:
		return "internal_cdcl"
	case BackendExternalLingeling:
		return "external_lingeling"
	case BackendExternalMiniSAT:
		return "external_minisat"
	default:
		return "unknown"
	}
}

// Mode silences progress output when set to Spider (the "spider" mode
// machine-readable output convention).
type Mode int

const (
	ModeNormal Mode = iota
	ModeSpider
)

// ProofLevel controls how much proof/model detail is retained.
type ProofLevel int

const (
	ProofOff ProofLevel = iota
	ProofModel
	ProofFull
)

// Options is the options bundle from §6: a plain struct built by the
// CLI's flag parsing, not a global.
type Options struct {
	SATBackend    SATBackend
	Mode          Mode
	Proof         ProofLevel
	Complete      func() bool // completeness predicate over the problem
	MaxModelSize  int         // 0 means no explicit cap (fmb.New derives one from the signature)
	EmitDIMACS    bool        // dump each size's ground SAT instance to DIMACSOut
	DIMACSOut     io.Writer   // destination for EmitDIMACS; ignored if nil
	DefRefThresh  int         // AIG introducer's reference-count threshold, default 4
}

// DefaultOptions returns the option bundle used when the CLI supplies no
// overrides.
func DefaultOptions() Options {
	return Options{
		SATBackend:   BackendInternalCDCL,
		Mode:         ModeNormal,
		Proof:        ProofModel,
		Complete:     func() bool { return true },
		DefRefThresh: 4,
	}
}

// Deadline is an injected wall-clock predicate: Expired reports true once
// the cooperative cancellation point should trip.
type Deadline struct {
	at time.Time
}

// NoDeadline never expires.
func NoDeadline() Deadline { return Deadline{} }

// After returns a Deadline that expires at t.
func After(t time.Time) Deadline { return Deadline{at: t} }

// Expired reports whether the deadline has passed. A zero Deadline never
// expires.
func (d Deadline) Expired() bool {
	return !d.at.IsZero() && time.Now().After(d.at)
}

// Context is the explicit environment threaded into every component
// constructor in place of global state.
type Context struct {
	Options  Options
	Log      hclog.Logger
	Deadline Deadline
}

// New builds a Context from an options bundle. If opts.Mode is
// ModeSpider, logging is silenced (progress output suppressed).
func New(opts Options) *Context {
	log := hclog.New(&hclog.LoggerOptions{
		Name:  "fmb",
		Level: hclog.Debug,
	})
	if opts.Mode == ModeSpider {
		log = hclog.NewNullLogger()
	}
	return &Context{Options: opts, Log: log, Deadline: NoDeadline()}
}

// WithDeadline returns a shallow copy of c with the deadline replaced.
func (c *Context) WithDeadline(d Deadline) *Context {
	c2 := *c
	c2.Deadline = d
	return &c2
}
