// internal/codec/pack.go
package codec

import "golang.org/x/exp/constraints"

// PackBits lays bits out LSB first, one coil per bit.
func PackBits(bits []bool) []byte {
	n := (len(bits) + 7) / 8
	out := make([]byte, n)
	for i, v := range bits {
		if v {
			out[i/8] |= 1 << uint(i%8)
		}
	}
	return out
}

// UnpackBits expands qty coils from a packed response.
func UnpackBits(b []byte, qty int) []bool {
	out := make([]bool, qty)
	for i := 0; i < qty && i/8 < len(b); i++ {
		out[i] = b[i/8]&(1<<uint(i%8)) != 0
	}
	return out
}

// BitBytes expands packed coils into one byte per coil (0 or 1),
// the layout DecodeBit reads.
func BitBytes(b []byte, qty int) []byte {
	out := make([]byte, qty)
	for i, v := range UnpackBits(b, qty) {
		if v {
			out[i] = 1
		}
	}
	return out
}

func PackRegisters(regs []uint16) []byte {
	out := make([]byte, len(regs)*2)
	for i, r := range regs {
		out[2*i] = byte(r >> 8)
		out[2*i+1] = byte(r)
	}
	return out
}

func UnpackRegisters(b []byte) []uint16 {
	out := make([]uint16, len(b)/2)
	for i := range out {
		out[i] = uint16(b[2*i])<<8 | uint16(b[2*i+1])
	}
	return out
}

// Word truncates a numeric cell toward zero and narrows it to one register.
// Callers keep v within -32768..65535; equation.Entry.Validate does.
func Word[T constraints.Integer | constraints.Float](v T) uint16 {
	return uint16(int64(v))
}
