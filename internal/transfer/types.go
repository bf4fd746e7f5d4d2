// internal/transfer/types.go
package transfer

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/tamzrod/wclink/internal/dispatch"
)

// ErrBusy is returned when a run is started while another is in progress.
var ErrBusy = errors.New("transfer: run already in progress")

// ErrDeclined is returned when the operator refuses a confirmation.
var ErrDeclined = errors.New("transfer: declined by operator")

type State int

const (
	Idle State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "idle"
}

type Mode int

const (
	Download Mode = iota + 1
	Upload
)

func (m Mode) String() string {
	switch m {
	case Download:
		return "download"
	case Upload:
		return "upload"
	default:
		return "unknown"
	}
}

// Outcome is how a run ended.
type Outcome int

const (
	Completed Outcome = iota + 1
	Cancelled
	AbortedOnFailure
)

func (o Outcome) String() string {
	switch o {
	case Completed:
		return "completed"
	case Cancelled:
		return "cancelled"
	case AbortedOnFailure:
		return "aborted on failure"
	default:
		return "unknown"
	}
}

// ReinitChoice answers the reinitialize prompt that opens an upload.
type ReinitChoice int

const (
	ReinitCancel ReinitChoice = iota
	ReinitYes
	ReinitNo
)

// Failure is one failed dispatch.
type Failure struct {
	Label   string
	Request dispatch.Request
	Err     error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s: %v", f.Label, f.Err)
}

func (f Failure) Unwrap() error { return f.Err }

// Result summarizes one run.
//
// Completed counts register groups dispatched, Total the groups the map
// holds. Failures lists every failed dispatch in order.
type Result struct {
	SessionID uuid.UUID
	Mode      Mode
	Outcome   Outcome
	Completed int
	Total     int
	Failures  []Failure
}

// LastFailure returns the most recent failure, if any.
func (r Result) LastFailure() (Failure, bool) {
	if len(r.Failures) == 0 {
		return Failure{}, false
	}
	return r.Failures[len(r.Failures)-1], true
}

// Prompter is the operator side of an upload.
// Returning an error ends the run as cancelled.
type Prompter interface {
	ConfirmReinit(ctx context.Context) (ReinitChoice, error)
	ContinueAfterFailure(ctx context.Context, f Failure) (bool, error)
	ConfirmCommit(ctx context.Context) (bool, error)
}

// ProgressFunc receives one call per register group.
type ProgressFunc func(done, total int, label string)

// Executor runs a single request. *dispatch.Dispatcher satisfies it.
type Executor interface {
	Execute(ch dispatch.Channel, req dispatch.Request) dispatch.Result
}
