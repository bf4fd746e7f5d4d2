// internal/dispatch/types.go
package dispatch

import (
	"fmt"

	"github.com/tamzrod/wclink/internal/codec"
)

// FunctionCode is the Modbus function issued by one request.
type FunctionCode uint8

const (
	ReadCoils              FunctionCode = 1
	ReadDiscreteInputs     FunctionCode = 2
	ReadHoldingRegisters   FunctionCode = 3
	ReadInputRegisters     FunctionCode = 4
	WriteSingleCoil        FunctionCode = 5
	WriteSingleRegister    FunctionCode = 6
	WriteMultipleCoils     FunctionCode = 15
	WriteMultipleRegisters FunctionCode = 16
)

func (f FunctionCode) String() string {
	switch f {
	case ReadCoils:
		return "read coils"
	case ReadDiscreteInputs:
		return "read discrete inputs"
	case ReadHoldingRegisters:
		return "read holding registers"
	case ReadInputRegisters:
		return "read input registers"
	case WriteSingleCoil:
		return "write single coil"
	case WriteSingleRegister:
		return "write single register"
	case WriteMultipleCoils:
		return "write multiple coils"
	case WriteMultipleRegisters:
		return "write multiple registers"
	default:
		return fmt.Sprintf("function %d", uint8(f))
	}
}

// IsWrite reports whether f carries values to the device.
func (f FunctionCode) IsWrite() bool {
	switch f {
	case WriteSingleCoil, WriteSingleRegister, WriteMultipleCoils, WriteMultipleRegisters:
		return true
	}
	return false
}

// IsBit reports whether f addresses coils or discrete inputs.
func (f FunctionCode) IsBit() bool {
	switch f {
	case ReadCoils, ReadDiscreteInputs, WriteSingleCoil, WriteMultipleCoils:
		return true
	}
	return false
}

// Request describes one exchange. Address is the protocol (0-based) address.
type Request struct {
	SlaveID   uint8
	Function  FunctionCode
	Address   uint16
	Quantity  uint16
	Bits      []bool   // write coils
	Registers []uint16 // write registers
}

// Result is the outcome of one exchange.
//
// Items is the count reported by the channel, -1 when the transport failed.
// Raw holds read data: big-endian registers, or one byte per bit.
type Result struct {
	Items int
	Raw   []byte
	Err   error
}

func (r Result) OK() bool { return r.Err == nil }

// Registers decodes Raw as 16-bit registers.
func (r Result) Registers() []uint16 {
	return codec.UnpackRegisters(r.Raw)
}

// Bit returns the coil at offset i of a bit read.
func (r Result) Bit(i int) bool {
	return codec.DecodeBit(r.Raw, i)
}
