// internal/dispatch/dispatcher.go
package dispatch

import (
	"errors"
	"io"
	"net"
	"os"
	"syscall"

	"github.com/goburrow/modbus"
	"github.com/goburrow/serial"

	"github.com/tamzrod/wclink/internal/codec"
	"github.com/tamzrod/wclink/internal/fault"
	"github.com/tamzrod/wclink/internal/monitor"
)

const (
	minSlave = 1
	maxSlave = 247
)

// Dispatcher executes typed requests against a channel.
// It keeps no per-channel state and may be shared across channels.
type Dispatcher struct {
	Monitor *monitor.Monitor
}

func New(m *monitor.Monitor) *Dispatcher {
	return &Dispatcher{Monitor: m}
}

// Execute performs exactly one exchange.
// Success requires the channel to report exactly req.Quantity items.
func (d *Dispatcher) Execute(ch Channel, req Request) Result {
	req, err := normalize(req)
	if err != nil {
		return Result{Items: -1, Err: err}
	}

	ch.SetSlave(req.SlaveID)

	var (
		items int
		raw   []byte
	)

	switch req.Function {
	case ReadCoils:
		raw, err = ch.ReadBits(req.Address, req.Quantity)
		items = len(raw)
	case ReadDiscreteInputs:
		raw, err = ch.ReadInputBits(req.Address, req.Quantity)
		items = len(raw)
	case ReadHoldingRegisters:
		var regs []uint16
		regs, err = ch.ReadRegisters(req.Address, req.Quantity)
		items, raw = len(regs), codec.PackRegisters(regs)
	case ReadInputRegisters:
		var regs []uint16
		regs, err = ch.ReadInputRegisters(req.Address, req.Quantity)
		items, raw = len(regs), codec.PackRegisters(regs)
	case WriteSingleCoil:
		items, err = ch.WriteBit(req.Address, req.Bits[0])
	case WriteSingleRegister:
		items, err = ch.WriteRegister(req.Address, req.Registers[0])
	case WriteMultipleCoils:
		items, err = ch.WriteBits(req.Address, req.Bits)
	case WriteMultipleRegisters:
		items, err = ch.WriteRegisters(req.Address, req.Registers)
	}

	d.logRequest(ch, req)

	if err != nil {
		d.logFailure(ch, req, err)
		return Result{Items: -1, Err: classify(req.Function.String(), err)}
	}

	d.logResponse(ch, req, raw)

	if items != int(req.Quantity) {
		return Result{Items: items, Raw: raw, Err: fault.CountMismatch(req.Function.String(), int(req.Quantity), items)}
	}
	return Result{Items: items, Raw: raw}
}

// normalize validates req and applies the single-write quantity override.
func normalize(req Request) (Request, error) {
	op := req.Function.String()

	switch req.Function {
	case ReadCoils, ReadDiscreteInputs, ReadHoldingRegisters, ReadInputRegisters,
		WriteMultipleCoils, WriteMultipleRegisters:
	case WriteSingleCoil, WriteSingleRegister:
		req.Quantity = 1
	default:
		return req, fault.Configurationf(op, "unsupported function code %d", uint8(req.Function))
	}

	if req.SlaveID < minSlave || req.SlaveID > maxSlave {
		return req, fault.Configurationf(op, "slave id %d out of range %d..%d", req.SlaveID, minSlave, maxSlave)
	}
	if req.Quantity == 0 {
		return req, fault.Configurationf(op, "quantity must be > 0")
	}

	switch req.Function {
	case WriteSingleCoil, WriteMultipleCoils:
		if len(req.Bits) < int(req.Quantity) {
			return req, fault.Configurationf(op, "need %d coil values, got %d", req.Quantity, len(req.Bits))
		}
		req.Bits = req.Bits[:req.Quantity]
	case WriteSingleRegister, WriteMultipleRegisters:
		if len(req.Registers) < int(req.Quantity) {
			return req, fault.Configurationf(op, "need %d register values, got %d", req.Quantity, len(req.Registers))
		}
		req.Registers = req.Registers[:req.Quantity]
	}

	return req, nil
}

// ------------------------------------------------------------
// FAILURE CLASSIFICATION
// ------------------------------------------------------------

func classify(op string, err error) error {
	var me *modbus.ModbusError
	if errors.As(err, &me) {
		return fault.NewProtocol(op, err)
	}
	if isLinkError(err) {
		return fault.NewIO(op, err)
	}
	return fault.NewProtocol(op, err)
}

// isLinkError reports transport failures that left no usable response.
func isLinkError(err error) bool {
	if errors.Is(err, serial.ErrTimeout) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, os.ErrDeadlineExceeded) ||
		errors.Is(err, os.ErrClosed) ||
		errors.Is(err, syscall.EIO) {
		return true
	}

	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}

	var pe *os.PathError
	return errors.As(err, &pe)
}

// ------------------------------------------------------------
// MONITOR FEED
// ------------------------------------------------------------

func (d *Dispatcher) logRequest(ch Channel, req Request) {
	if d.Monitor == nil {
		return
	}
	crc := CRC16(requestADU(req))
	d.Monitor.LogFrame(ch.ID(), monitor.Request, req.SlaveID, uint8(req.Function), req.Address, req.Quantity, crc, crc)
}

func (d *Dispatcher) logResponse(ch Channel, req Request, raw []byte) {
	if d.Monitor == nil {
		return
	}

	var adu []byte
	if req.Function.IsWrite() {
		adu = writeResponseADU(req)
	} else {
		adu = readResponseADU(req, raw)
	}
	expected := CRC16(adu)
	actual := expected
	if r, ok := ch.(CRCReporter); ok {
		if e, a, seen := r.ResponseCRC(); seen {
			expected, actual = e, a
		}
	}

	d.Monitor.LogFrame(ch.ID(), monitor.Response, req.SlaveID, uint8(req.Function), req.Address, req.Quantity, expected, actual)
}

// logFailure records exception responses. A silent link logs no response.
func (d *Dispatcher) logFailure(ch Channel, req Request, err error) {
	if d.Monitor == nil {
		return
	}
	var me *modbus.ModbusError
	if !errors.As(err, &me) {
		return
	}

	adu := []byte{req.SlaveID, me.FunctionCode, me.ExceptionCode}
	expected := CRC16(adu)
	actual := expected
	if r, ok := ch.(CRCReporter); ok {
		if e, a, seen := r.ResponseCRC(); seen {
			expected, actual = e, a
		}
	}

	d.Monitor.LogFrame(ch.ID(), monitor.Response, req.SlaveID, me.FunctionCode, 0, 0, expected, actual)
}
