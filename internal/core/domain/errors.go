package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies every failure surfaced by session operations.
type ErrorKind string

const (
	KindUnauthenticated ErrorKind = "unauthenticated"
	KindNotFound        ErrorKind = "not_found"
	KindTransport       ErrorKind = "transport"
	KindValidation      ErrorKind = "validation"
	KindConflict        ErrorKind = "conflict"
)

// Kind sentinels. Match with errors.Is; any *Error of the same kind matches.
var (
	ErrUnauthenticated = &Error{Kind: KindUnauthenticated}
	ErrNotFound        = &Error{Kind: KindNotFound}
	ErrTransport       = &Error{Kind: KindTransport}
	ErrValidation      = &Error{Kind: KindValidation}
	ErrConflict        = &Error{Kind: KindConflict}
)

// Error is a classified failure. Op names the operation that failed and Err
// keeps the upstream cause.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

// Wrap classifies err under kind. An err that is already an *Error keeps its
// own kind and only gains the outer operation name.
func Wrap(kind ErrorKind, op string, err error) error {
	var de *Error
	if errors.As(err, &de) {
		return &Error{Kind: de.Kind, Op: op, Err: err}
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// Errorf builds a classified error from a message.
func Errorf(kind ErrorKind, op, format string, args ...any) error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

func (e *Error) Error() string {
	switch {
	case e.Op == "" && e.Err == nil:
		return string(e.Kind)
	case e.Err == nil:
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	case e.Op == "":
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches kind sentinels: a bare target (no Op, no Err) matches any error
// of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Err == nil && t.Kind == e.Kind
}

// KindOf returns the kind of the outermost *Error in err's chain, or
// KindTransport for unclassified errors.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindTransport
}

// Message returns the innermost cause's text, without the operation and kind
// prefixes added along the way.
func Message(err error) string {
	for {
		de, ok := err.(*Error)
		if !ok || de.Err == nil {
			break
		}
		err = de.Err
	}
	if de, ok := err.(*Error); ok {
		return string(de.Kind)
	}
	return err.Error()
}
