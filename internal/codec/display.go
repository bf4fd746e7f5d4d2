// internal/codec/display.go
package codec

import (
	"fmt"
	"strconv"
	"strings"
)

// Decimal places used when rendering floats.
const (
	DisplayPrecision = 10
	CatalogPrecision = 6
)

// FormatDisplay renders a register group for an operator.
//
// Integers print one value per register, decimal or 0x%04x. Floats print
// the decoded value, or the registers concatenated as hex.
func FormatDisplay(regs []uint16, hexMode, isFloat bool) string {
	if isFloat {
		if hexMode {
			var sb strings.Builder
			sb.WriteString("0x")
			for _, r := range regs {
				fmt.Fprintf(&sb, "%04x", r)
			}
			return sb.String()
		}
		v, err := FloatFromRegisters(regs)
		if err != nil {
			return ""
		}
		return FormatFloat(float64(v), DisplayPrecision)
	}

	parts := make([]string, len(regs))
	for i, r := range regs {
		if hexMode {
			parts[i] = fmt.Sprintf("0x%04x", r)
		} else {
			parts[i] = strconv.Itoa(int(r))
		}
	}
	return strings.Join(parts, " ")
}

func FormatFloat(v float64, precision int) string {
	return strconv.FormatFloat(v, 'f', precision, 64)
}
