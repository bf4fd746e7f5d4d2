// internal/transfer/sequencer.go
package transfer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tamzrod/wclink/internal/dispatch"
	"github.com/tamzrod/wclink/internal/equation"
)

// Reserved coils, displayed addresses.
const (
	UnlockCoil  uint16 = 999
	ReinitCoil  uint16 = 25
	RestartCoil uint16 = 26
	CommitCoil  uint16 = 9999
)

const (
	DefaultSettle        = 2 * time.Second
	DefaultRestartSettle = 8 * time.Second
)

type Options struct {
	// SlaveID addresses the reserved coils and entries without their own id.
	SlaveID       uint8
	Settle        time.Duration
	RestartSettle time.Duration
	Progress      ProgressFunc
	Prompter      Prompter
	Logger        *slog.Logger
}

// Sequencer drives whole catalogs over one channel.
// One run at a time; requests never overlap.
type Sequencer struct {
	exec Executor
	ch   dispatch.Channel
	opts Options

	sleep func(ctx context.Context, d time.Duration) error

	mu      sync.Mutex
	running bool
}

func New(exec Executor, ch dispatch.Channel, opts Options) *Sequencer {
	if opts.SlaveID == 0 {
		opts.SlaveID = 1
	}
	if opts.Settle == 0 {
		opts.Settle = DefaultSettle
	}
	if opts.RestartSettle == 0 {
		opts.RestartSettle = DefaultRestartSettle
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Sequencer{
		exec:  exec,
		ch:    ch,
		opts:  opts,
		sleep: sleepCtx,
	}
}

func (s *Sequencer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return Running
	}
	return Idle
}

func (s *Sequencer) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrBusy
	}
	s.running = true
	return nil
}

func (s *Sequencer) end() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// session is the state of one run.
type session struct {
	result Result
	log    *slog.Logger
}

func (s *Sequencer) newSession(mode Mode, total int) *session {
	id := uuid.New()
	return &session{
		result: Result{SessionID: id, Mode: mode, Total: total},
		log:    s.opts.Logger.With("session", id.String(), "mode", mode.String(), "channel", s.ch.ID()),
	}
}

func (s *Sequencer) finish(ss *session, outcome Outcome) Result {
	ss.result.Outcome = outcome
	ss.log.Info("transfer finished",
		"outcome", outcome.String(),
		"completed", ss.result.Completed,
		"total", ss.result.Total,
		"failures", len(ss.result.Failures),
	)
	return ss.result
}

// tick advances progress by one register group.
func (s *Sequencer) tick(ss *session, label string) {
	ss.result.Completed++
	if s.opts.Progress != nil {
		s.opts.Progress(ss.result.Completed, ss.result.Total, label)
	}
}

// dispatch issues one request and records a failure in the session.
func (s *Sequencer) dispatch(ss *session, label string, req dispatch.Request) (dispatch.Result, *Failure) {
	res := s.exec.Execute(s.ch, req)
	if res.OK() {
		return res, nil
	}
	f := Failure{Label: label, Request: req, Err: res.Err}
	ss.result.Failures = append(ss.result.Failures, f)
	ss.log.Warn("dispatch failed", "item", label, "function", req.Function.String(), "address", int(req.Address)+1, "err", res.Err)
	return res, &f
}

func (s *Sequencer) slaveFor(e *equation.Entry) uint8 {
	if e.SlaveID != 0 {
		return e.SlaveID
	}
	return s.opts.SlaveID
}

// sleepCtx waits d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
