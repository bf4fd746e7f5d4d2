// internal/dispatch/frame.go
package dispatch

import (
	"fmt"
	"strings"

	"github.com/tamzrod/wclink/internal/codec"
)

// CRC16 is the Modbus RTU checksum (poly 0xA001, init 0xFFFF).
func CRC16(data []byte) uint16 {
	var crc uint16 = 0xFFFF
	for _, b := range data {
		crc ^= uint16(b)
		for i := 0; i < 8; i++ {
			if (crc & 0x0001) != 0 {
				crc = (crc >> 1) ^ 0xA001
			} else {
				crc >>= 1
			}
		}
	}
	return crc
}

// requestADU rebuilds the frame the transport puts on the wire, minus CRC.
func requestADU(req Request) []byte {
	adu := []byte{req.SlaveID, byte(req.Function), byte(req.Address >> 8), byte(req.Address)}

	switch req.Function {
	case WriteSingleCoil:
		v := uint16(0x0000)
		if len(req.Bits) > 0 && req.Bits[0] {
			v = 0xFF00
		}
		adu = append(adu, byte(v>>8), byte(v))
	case WriteSingleRegister:
		var v uint16
		if len(req.Registers) > 0 {
			v = req.Registers[0]
		}
		adu = append(adu, byte(v>>8), byte(v))
	case WriteMultipleCoils:
		data := codec.PackBits(req.Bits)
		adu = append(adu, byte(req.Quantity>>8), byte(req.Quantity), byte(len(data)))
		adu = append(adu, data...)
	case WriteMultipleRegisters:
		data := codec.PackRegisters(req.Registers)
		adu = append(adu, byte(req.Quantity>>8), byte(req.Quantity), byte(len(data)))
		adu = append(adu, data...)
	default:
		adu = append(adu, byte(req.Quantity>>8), byte(req.Quantity))
	}
	return adu
}

// readResponseADU rebuilds a read response frame from the returned data.
func readResponseADU(req Request, raw []byte) []byte {
	data := raw
	if req.Function.IsBit() {
		bits := make([]bool, len(raw))
		for i, b := range raw {
			bits[i] = b != 0
		}
		data = codec.PackBits(bits)
	}
	adu := []byte{req.SlaveID, byte(req.Function), byte(len(data))}
	return append(adu, data...)
}

// writeResponseADU rebuilds the echo a device sends for a successful write.
func writeResponseADU(req Request) []byte {
	switch req.Function {
	case WriteSingleCoil, WriteSingleRegister:
		return requestADU(req)
	default:
		return []byte{req.SlaveID, byte(req.Function), byte(req.Address >> 8), byte(req.Address), byte(req.Quantity >> 8), byte(req.Quantity)}
	}
}

// Preview renders the request header the way operators read it off a
// bus analyzer. Single writes have no quantity field.
func Preview(req Request) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%.2x  %.2x  %.2x %.2x", req.SlaveID, uint8(req.Function), byte(req.Address>>8), byte(req.Address))
	switch req.Function {
	case WriteSingleCoil, WriteSingleRegister:
	default:
		fmt.Fprintf(&sb, "  %.2x %.2x", byte(req.Quantity>>8), byte(req.Quantity))
	}
	return sb.String()
}
