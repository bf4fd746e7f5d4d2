// internal/fault/fault.go
package fault

import (
	"errors"
	"fmt"
)

// Kind classifies a failure by where it originated.
type Kind int

const (
	// Configuration covers invalid requests and settings. Fail fast.
	Configuration Kind = iota + 1
	// IO covers silent or broken links: no data, timeout, port closed.
	IO
	// Protocol covers device exceptions, unsupported functions and count mismatches.
	Protocol
	// Format covers malformed register groups and catalog rows.
	Format
)

func (k Kind) String() string {
	switch k {
	case Configuration:
		return "configuration"
	case IO:
		return "I/O"
	case Protocol:
		return "protocol"
	case Format:
		return "format"
	default:
		return "unknown"
	}
}

// Error is the single error type surfaced by the core packages.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Op == "" {
		return fmt.Sprintf("%s error: %s", e.Kind, msg)
	}
	return fmt.Sprintf("%s: %s error: %s", e.Op, e.Kind, msg)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, op, msg string, err error) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg, Err: err}
}

func Configurationf(op, format string, args ...any) *Error {
	return newError(Configuration, op, fmt.Sprintf(format, args...), nil)
}

func Formatf(op, format string, args ...any) *Error {
	return newError(Format, op, fmt.Sprintf(format, args...), nil)
}

// NewIO wraps a transport error that left the link silent.
func NewIO(op string, err error) *Error {
	return newError(IO, op, "did not receive any data from slave", err)
}

// NewProtocol wraps a device-side failure, keeping the transport text.
func NewProtocol(op string, err error) *Error {
	msg := "function not implemented"
	if err != nil {
		msg = err.Error()
	}
	return newError(Protocol, op, msg, err)
}

// CountMismatch reports a response whose item count differs from the request.
func CountMismatch(op string, want, got int) *Error {
	return newError(Protocol, op,
		fmt.Sprintf("number of items returned (%d) does not match number requested (%d)", got, want),
		nil)
}

// Is reports whether err carries a *Error of the given kind.
func Is(err error, kind Kind) bool {
	var fe *Error
	if !errors.As(err, &fe) {
		return false
	}
	return fe.Kind == kind
}

// KindOf returns the kind of err, or 0 when err is not a *Error.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return 0
}
