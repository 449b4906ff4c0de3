package fmbctx

import (
	"errors"
	"fmt"
)

// ErrKind classifies the error kinds from §7. They are compared with
// errors.Is, not by type switch, so wrapping (e.g. via go-multierror)
// preserves identity.
type ErrKind int

const (
	KindOverflow ErrKind = iota
	KindUnsupportedProblem
	KindRefutationFound
	KindTimeLimit
	KindAssertionViolation
)

func (k ErrKind) String() string {
	switch k {
	case KindOverflow:
		return "overflow"
	case KindUnsupportedProblem:
		return "unsupported problem"
	case KindRefutationFound:
		return "refutation found"
	case KindTimeLimit:
		return "time limit"
	case KindAssertionViolation:
		return "assertion violation"
	default:
		return "unknown error kind"
	}
}

// Error is the concrete error type carrying an ErrKind plus detail.
type Error struct {
	Kind ErrKind
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind.String(), e.Msg)
}

// sentinels so errors.Is(err, ErrOverflow) works without allocating a
// fresh *Error per comparison.
var (
	ErrOverflow             = &Error{Kind: KindOverflow}
	ErrUnsupportedProblem   = &Error{Kind: KindUnsupportedProblem}
	ErrRefutationFound      = &Error{Kind: KindRefutationFound}
	ErrTimeLimit            = &Error{Kind: KindTimeLimit}
	ErrAssertionViolation   = &Error{Kind: KindAssertionViolation}
)

// Is implements the errors.Is contract by kind, so a *Error built with a
// specific Msg still matches its sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New builds a detailed error of the given kind.
func New(kind ErrKind, format string, args ...interface{}) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// KindOf extracts the ErrKind from err, if it (or something it wraps) is
// an *Error.
func KindOf(err error) (ErrKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
