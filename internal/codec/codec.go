// internal/codec/codec.go
package codec

import (
	"encoding/binary"
	"math"

	"github.com/tamzrod/wclink/internal/fault"
)

// Register counts per element on the wire.
const (
	FloatRegisters = 2
	WordRegisters  = 1
)

// DecodeInt returns register offset of buf as a big-endian unsigned 16-bit value.
func DecodeInt(buf []byte, offset int) int32 {
	i := offset * 2
	if i < 0 || i+1 >= len(buf) {
		return 0
	}
	return int32(binary.BigEndian.Uint16(buf[i:]))
}

// DecodeBit reports whether byte offset of buf is non-zero.
func DecodeBit(buf []byte, offset int) bool {
	if offset < 0 || offset >= len(buf) {
		return false
	}
	return buf[offset] != 0
}

// DecodeFloat interprets b as a big-endian IEEE-754 single precision pattern.
//
// Normalized values are assembled from their sign, exponent and mantissa
// fields. Zero, subnormal, NaN and Inf patterns take the direct bit
// reinterpretation.
func DecodeFloat(b []byte) (float32, error) {
	if len(b) != 4 {
		return 0, fault.Formatf("decode float", "need 4 bytes, got %d", len(b))
	}

	raw := binary.BigEndian.Uint32(b)

	exp := int((raw >> 23) & 0xff)
	if exp == 0 || exp == 0xff {
		return math.Float32frombits(raw), nil
	}

	sign := 1.0
	if raw&0x80000000 != 0 {
		sign = -1.0
	}

	// bit 22 weighs 2^-1, bit 0 weighs 2^-23
	var fraction float64
	for i := 0; i < 23; i++ {
		if raw&(1<<uint(22-i)) != 0 {
			fraction += math.Ldexp(1, -(i + 1))
		}
	}

	return float32(sign * math.Ldexp(1+fraction, exp-127)), nil
}

// EncodeFloat splits v into its register pair, low word first.
func EncodeFloat(v float32) [2]uint16 {
	raw := math.Float32bits(v)
	return [2]uint16{uint16(raw), uint16(raw >> 16)}
}

// FloatFromRegisters decodes a low-word-first register pair.
func FloatFromRegisters(regs []uint16) (float32, error) {
	if len(regs) != FloatRegisters {
		return 0, fault.Formatf("decode float", "need %d registers, got %d", FloatRegisters, len(regs))
	}
	var b [4]byte
	binary.BigEndian.PutUint16(b[0:], regs[1])
	binary.BigEndian.PutUint16(b[2:], regs[0])
	return DecodeFloat(b[:])
}
