// internal/codec/codec_test.go
package codec

import (
	"encoding/binary"
	"math"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/tamzrod/wclink/internal/fault"
)

func TestDecodeFloatMatchesIEEE(t *testing.T) {
	patterns := []uint32{
		0x3f800000, // 1
		0xbf800000, // -1
		0x40490fdb, // pi
		0x00800000, // smallest normal
		0x7f7fffff, // largest finite
		0x20000041,
		0xc2f6e979,
		0x3eaaaaab,
	}

	for _, p := range patterns {
		var b [4]byte
		binary.BigEndian.PutUint32(b[:], p)

		got, err := DecodeFloat(b[:])
		assert.NilError(t, err)
		assert.Equal(t, math.Float32bits(got), p, "pattern %08x", p)
	}
}

func TestDecodeFloatSweep(t *testing.T) {
	// walk the normalized range with a stride that touches every exponent
	for p := uint32(0x00800000); p < 0x7f800000; p += 0x000fffc3 {
		for _, sign := range []uint32{0, 0x80000000} {
			raw := p | sign
			var b [4]byte
			binary.BigEndian.PutUint32(b[:], raw)
			got, err := DecodeFloat(b[:])
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Float32bits(got) != raw {
				t.Fatalf("pattern %08x decoded to %08x", raw, math.Float32bits(got))
			}
		}
	}
}

func TestDecodeFloatLength(t *testing.T) {
	for _, b := range [][]byte{nil, {1, 2, 3}, {1, 2, 3, 4, 5}} {
		_, err := DecodeFloat(b)
		if !fault.Is(err, fault.Format) {
			t.Fatalf("len %d: expected format error, got %v", len(b), err)
		}
	}
}

func TestEncodeFloatRoundTrip(t *testing.T) {
	values := []float32{0, 1, -1, 0.5, 3.14159, -273.15, 1e-30, 6.02e23, math.MaxFloat32, math.SmallestNonzeroFloat32}

	for _, v := range values {
		regs := EncodeFloat(v)
		got, err := FloatFromRegisters(regs[:])
		assert.NilError(t, err)
		assert.Equal(t, got, v)
	}
}

func TestEncodeFloatWordOrder(t *testing.T) {
	regs := EncodeFloat(1)
	assert.Equal(t, regs, [2]uint16{0x0000, 0x3f80})
}

func TestFloatFromRegistersLowWordFirst(t *testing.T) {
	got, err := FloatFromRegisters([]uint16{0x0041, 0x2000})
	assert.NilError(t, err)
	assert.Equal(t, math.Float32bits(got), uint32(0x20000041))

	_, err = FloatFromRegisters([]uint16{1})
	assert.Assert(t, fault.Is(err, fault.Format))
}

func TestDecodeIntAndBit(t *testing.T) {
	buf := []byte{0x01, 0x02, 0xff, 0xfe}

	assert.Equal(t, DecodeInt(buf, 0), int32(0x0102))
	assert.Equal(t, DecodeInt(buf, 1), int32(0xfffe))
	assert.Equal(t, DecodeInt(buf, 2), int32(0))

	bits := []byte{0, 1, 7}
	assert.Assert(t, !DecodeBit(bits, 0))
	assert.Assert(t, DecodeBit(bits, 1))
	assert.Assert(t, DecodeBit(bits, 2))
}

func TestPackUnpack(t *testing.T) {
	bits := []bool{true, false, true, true, false, false, false, false, true}
	packed := PackBits(bits)
	assert.DeepEqual(t, packed, []byte{0x0d, 0x01})
	assert.DeepEqual(t, UnpackBits(packed, len(bits)), bits)
	assert.DeepEqual(t, BitBytes([]byte{0x05}, 3), []byte{1, 0, 1})

	regs := []uint16{0x1234, 0xabcd}
	assert.DeepEqual(t, UnpackRegisters(PackRegisters(regs)), regs)
}

func TestWordTruncates(t *testing.T) {
	assert.Equal(t, Word(12.9), uint16(12))
	assert.Equal(t, Word(-1.7), uint16(0xffff))
	assert.Equal(t, Word(40000), uint16(40000))
	assert.Equal(t, Word(-32768.0), uint16(0x8000))
	assert.Equal(t, Word(65535.0), uint16(0xffff))
}

func TestFormatDisplay(t *testing.T) {
	cases := []struct {
		name    string
		regs    []uint16
		hex     bool
		isFloat bool
		want    string
	}{
		{"int decimal", []uint16{42}, false, false, "42"},
		{"int hex", []uint16{42, 0xbeef}, true, false, "0x002a 0xbeef"},
		{"float", []uint16{0x0000, 0x3fc0}, false, true, "1.5000000000"},
		{"float hex", []uint16{0x0000, 0x3fc0}, true, true, "0x00003fc0"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, FormatDisplay(tc.regs, tc.hex, tc.isFloat), tc.want)
		})
	}
}
