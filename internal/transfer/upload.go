// internal/transfer/upload.go
package transfer

import (
	"context"
	"fmt"
	"time"

	"github.com/tamzrod/wclink/internal/codec"
	"github.com/tamzrod/wclink/internal/dispatch"
	"github.com/tamzrod/wclink/internal/equation"
)

// Upload writes every entry of m to the device.
//
// Sequence:
//  1. ask whether to reinitialize (cancel ends the run with no writes)
//  2. unlock factory defaults
//  3. on reinit: pulse both reinit coils, then unlock again
//  4. write the entries
//  5. unlock and commit factory defaults, best effort
//
// A failed reserved-coil write or entry write asks the prompter. Continue
// moves on to the next step or the next entry; abort ends the run.
func (s *Sequencer) Upload(ctx context.Context, m *equation.Map) (Result, error) {
	if s.opts.Prompter == nil {
		return Result{}, fmt.Errorf("transfer: upload needs a prompter")
	}
	if err := m.Validate(); err != nil {
		return Result{}, err
	}
	if err := s.begin(); err != nil {
		return Result{}, err
	}
	defer s.end()

	ss := s.newSession(Upload, m.TotalItems())

	choice, err := s.opts.Prompter.ConfirmReinit(ctx)
	if err != nil || ctx.Err() != nil || choice == ReinitCancel {
		return s.finish(ss, Cancelled), nil
	}
	reinit := choice == ReinitYes
	ss.log.Info("transfer started", "entries", m.Len(), "items", ss.result.Total, "reinit", reinit)

	// ------------------------------------------------------------
	// PREAMBLE
	// ------------------------------------------------------------

	steps := []reservedStep{{"unlock factory defaults", UnlockCoil, true, s.opts.Settle}}
	if reinit {
		steps = append(steps,
			reservedStep{"reinitialize registers", ReinitCoil, false, s.opts.Settle},
			reservedStep{"restart device", RestartCoil, false, s.opts.RestartSettle},
			reservedStep{"unlock factory defaults", UnlockCoil, true, s.opts.Settle},
		)
	}

	for _, st := range steps {
		if outcome, stop := s.gatedCoil(ctx, ss, st); stop {
			return s.finish(ss, outcome), nil
		}
	}

	// ------------------------------------------------------------
	// ENTRIES
	// ------------------------------------------------------------

entries:
	for _, e := range m.Entries() {
		for i := 0; i < e.ElementCount(); i++ {
			if ctx.Err() != nil {
				return s.finish(ss, Cancelled), nil
			}

			req := WriteRequest(e, i, s.slaveFor(e))
			label := e.Label(i)

			_, f := s.dispatch(ss, label, req)
			s.tick(ss, label)

			if err := s.sleep(ctx, s.opts.Settle); err != nil {
				return s.finish(ss, Cancelled), nil
			}

			if f != nil {
				outcome, stop := s.gate(ctx, *f)
				if stop {
					return s.finish(ss, outcome), nil
				}
				// the rest of a failed array is skipped
				continue entries
			}
		}
	}

	// ------------------------------------------------------------
	// TRAILER
	// ------------------------------------------------------------

	s.coil(ss, "unlock factory defaults", UnlockCoil, true)
	_ = s.sleep(ctx, s.opts.Settle)
	s.coil(ss, "commit factory defaults", CommitCoil, true)
	_ = s.sleep(ctx, s.opts.Settle)

	return s.finish(ss, Completed), nil
}

type reservedStep struct {
	label   string
	address uint16 // displayed
	value   bool
	settle  time.Duration
}

// gatedCoil writes one reserved coil and asks the prompter on failure.
func (s *Sequencer) gatedCoil(ctx context.Context, ss *session, st reservedStep) (Outcome, bool) {
	if ctx.Err() != nil {
		return Cancelled, true
	}

	f := s.coil(ss, st.label, st.address, st.value)

	if err := s.sleep(ctx, st.settle); err != nil {
		return Cancelled, true
	}
	if f == nil {
		return 0, false
	}
	return s.gate(ctx, *f)
}

// coil writes a reserved coil on the configured slave.
func (s *Sequencer) coil(ss *session, label string, address uint16, v bool) *Failure {
	_, f := s.dispatch(ss, label, dispatch.Request{
		SlaveID:  s.opts.SlaveID,
		Function: dispatch.WriteSingleCoil,
		Address:  address - 1,
		Quantity: 1,
		Bits:     []bool{v},
	})
	return f
}

// gate asks whether to go on after f. It reports the outcome and true
// when the run has to stop.
func (s *Sequencer) gate(ctx context.Context, f Failure) (Outcome, bool) {
	cont, err := s.opts.Prompter.ContinueAfterFailure(ctx, f)
	switch {
	case err != nil || ctx.Err() != nil:
		return Cancelled, true
	case !cont:
		return AbortedOnFailure, true
	default:
		return 0, false
	}
}

// WriteRequest builds the write of element i of e.
func WriteRequest(e *equation.Entry, i int, slave uint8) dispatch.Request {
	var v float64
	if i < len(e.Values) {
		v = e.Values[i]
	}

	req := dispatch.Request{
		SlaveID:  slave,
		Address:  e.ProtocolAddress(i),
		Quantity: e.Type.RegistersPerElement(),
	}
	switch e.Type {
	case equation.Float:
		regs := codec.EncodeFloat(float32(v))
		req.Function = dispatch.WriteMultipleRegisters
		req.Registers = regs[:]
	case equation.Integer:
		req.Function = dispatch.WriteSingleRegister
		req.Registers = []uint16{codec.Word(v)}
	default:
		req.Function = dispatch.WriteSingleCoil
		req.Bits = []bool{v != 0}
	}
	return req
}

// WriteEntry writes one entry outside a catalog run.
func (s *Sequencer) WriteEntry(ctx context.Context, e *equation.Entry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if err := s.begin(); err != nil {
		return err
	}
	defer s.end()

	for i := 0; i < e.ElementCount(); i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		req := WriteRequest(e, i, s.slaveFor(e))
		if res := s.exec.Execute(s.ch, req); !res.OK() {
			return Failure{Label: e.Label(i), Request: req, Err: res.Err}
		}
	}
	return nil
}
