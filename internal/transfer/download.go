// internal/transfer/download.go
package transfer

import (
	"context"

	"github.com/tamzrod/wclink/internal/codec"
	"github.com/tamzrod/wclink/internal/dispatch"
	"github.com/tamzrod/wclink/internal/equation"
)

// Download reads every entry of m from the device into its value slots.
//
// Failed reads are recorded and the run moves on. Cancellation is honored
// before each dispatch and during settle delays; entries not reached keep
// their values.
func (s *Sequencer) Download(ctx context.Context, m *equation.Map) (Result, error) {
	if err := m.Validate(); err != nil {
		return Result{}, err
	}
	if err := s.begin(); err != nil {
		return Result{}, err
	}
	defer s.end()

	ss := s.newSession(Download, m.TotalItems())
	ss.log.Info("transfer started", "entries", m.Len(), "items", ss.result.Total)

	for _, e := range m.Entries() {
		for i := 0; i < e.ElementCount(); i++ {
			if ctx.Err() != nil {
				return s.finish(ss, Cancelled), nil
			}

			req := ReadRequest(e, i, s.slaveFor(e))
			label := e.Label(i)

			res, f := s.dispatch(ss, label, req)
			if f == nil {
				if err := store(e, i, res); err != nil {
					ss.result.Failures = append(ss.result.Failures, Failure{Label: label, Request: req, Err: err})
				}
			}
			s.tick(ss, label)

			if err := s.sleep(ctx, s.opts.Settle); err != nil {
				return s.finish(ss, Cancelled), nil
			}
		}
	}

	return s.finish(ss, Completed), nil
}

// ReadRequest builds the read of element i of e.
func ReadRequest(e *equation.Entry, i int, slave uint8) dispatch.Request {
	req := dispatch.Request{
		SlaveID:  slave,
		Address:  e.ProtocolAddress(i),
		Quantity: e.Type.RegistersPerElement(),
	}
	switch e.Type {
	case equation.Float, equation.Integer:
		req.Function = dispatch.ReadHoldingRegisters
	default:
		req.Function = dispatch.ReadCoils
	}
	return req
}

// store decodes a read result into value slot i of e.
func store(e *equation.Entry, i int, res dispatch.Result) error {
	if i >= len(e.Values) {
		grown := make([]float64, e.Quantity)
		copy(grown, e.Values)
		e.Values = grown
	}

	switch e.Type {
	case equation.Float:
		v, err := codec.FloatFromRegisters(res.Registers())
		if err != nil {
			return err
		}
		e.Values[i] = float64(v)
	case equation.Integer:
		e.Values[i] = float64(codec.DecodeInt(res.Raw, 0))
	default:
		if res.Bit(0) {
			e.Values[i] = 1
		} else {
			e.Values[i] = 0
		}
	}
	return nil
}

// ReadEntry reads one entry outside a catalog run.
func (s *Sequencer) ReadEntry(ctx context.Context, e *equation.Entry) error {
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
		req := ReadRequest(e, i, s.slaveFor(e))
		res := s.exec.Execute(s.ch, req)
		if !res.OK() {
			return Failure{Label: e.Label(i), Request: req, Err: res.Err}
		}
		if err := store(e, i, res); err != nil {
			return err
		}
	}
	return nil
}
