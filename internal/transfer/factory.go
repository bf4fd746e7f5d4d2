// internal/transfer/factory.go
package transfer

import (
	"context"

	"github.com/tamzrod/wclink/internal/dispatch"
)

// UnlockFactoryDefaults opens the factory registers for writing.
func (s *Sequencer) UnlockFactoryDefaults(ctx context.Context) error {
	return s.single(ctx, "unlock factory defaults", UnlockCoil, true)
}

// LockFactoryDefaults closes the factory registers again.
func (s *Sequencer) LockFactoryDefaults(ctx context.Context) error {
	return s.single(ctx, "lock factory defaults", UnlockCoil, false)
}

// CommitFactoryDefaults stores the current values as factory defaults.
// The prompter has to confirm first.
func (s *Sequencer) CommitFactoryDefaults(ctx context.Context) error {
	if s.opts.Prompter == nil {
		return ErrDeclined
	}
	ok, err := s.opts.Prompter.ConfirmCommit(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return ErrDeclined
	}
	return s.single(ctx, "commit factory defaults", CommitCoil, true)
}

func (s *Sequencer) single(ctx context.Context, label string, address uint16, v bool) error {
	if err := s.begin(); err != nil {
		return err
	}
	defer s.end()

	if err := ctx.Err(); err != nil {
		return err
	}

	req := dispatch.Request{
		SlaveID:  s.opts.SlaveID,
		Function: dispatch.WriteSingleCoil,
		Address:  address - 1,
		Quantity: 1,
		Bits:     []bool{v},
	}
	res := s.exec.Execute(s.ch, req)
	if !res.OK() {
		return Failure{Label: label, Request: req, Err: res.Err}
	}
	s.opts.Logger.Info(label, "channel", s.ch.ID(), "slave", int(s.opts.SlaveID))
	return s.sleep(ctx, s.opts.Settle)
}
