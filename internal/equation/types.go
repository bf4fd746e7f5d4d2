// internal/equation/types.go
package equation

import (
	"fmt"
	"strings"

	"github.com/tamzrod/wclink/internal/fault"
)

// Integer cells hold one register, signed or unsigned.
const (
	MinInteger = -32768
	MaxInteger = 65535
)

// DataType selects the wire representation of an entry.
type DataType int

const (
	Coil DataType = iota
	Integer
	Float
)

func (t DataType) String() string {
	switch t {
	case Float:
		return "float"
	case Integer:
		return "int"
	default:
		return "coil"
	}
}

// ParseDataType follows the catalog's loose type column: any cell
// mentioning "float" or "int" picks that type, everything else is a coil.
func ParseDataType(s string) DataType {
	s = strings.ToLower(s)
	switch {
	case strings.Contains(s, "float"):
		return Float
	case strings.Contains(s, "int"):
		return Integer
	default:
		return Coil
	}
}

// RegistersPerElement is the register span of one value.
func (t DataType) RegistersPerElement() uint16 {
	if t == Float {
		return 2
	}
	return 1
}

type Mode int

const (
	ReadOnly Mode = iota
	ReadWrite
)

func (m Mode) String() string {
	if m == ReadWrite {
		return "RW"
	}
	return "R"
}

func ParseMode(s string) Mode {
	if strings.Contains(strings.ToUpper(s), "W") {
		return ReadWrite
	}
	return ReadOnly
}

// Entry is one named parameter. Address is the displayed (1-based) address.
type Entry struct {
	Name     string
	SlaveID  uint8
	Address  uint16
	Type     DataType
	Scale    float64
	Mode     Mode
	Quantity int
	Values   []float64
}

// ElementCount is the number of register groups the entry spans.
// Only floats carry arrays.
func (e *Entry) ElementCount() int {
	if e.Type == Float {
		return e.Quantity
	}
	return 1
}

// ProtocolAddress is the 0-based wire address of element i.
func (e *Entry) ProtocolAddress(i int) uint16 {
	return e.Address - 1 + uint16(i)*e.Type.RegistersPerElement()
}

// Label names element i for progress and prompts.
func (e *Entry) Label(i int) string {
	if e.ElementCount() > 1 {
		return fmt.Sprintf("%s[%d]", e.Name, i+1)
	}
	return e.Name
}

// Validate rejects entries no transfer can address.
func (e *Entry) Validate() error {
	if msg := e.problem(); msg != "" {
		return fault.Configurationf("validate entry", "%s: %s", e.Name, msg)
	}
	return nil
}

func (e *Entry) problem() string {
	if e.Quantity <= 0 {
		return fmt.Sprintf("quantity %d must be > 0", e.Quantity)
	}
	if e.Address == 0 {
		return "address must be 1..65535"
	}
	last := int(e.Address) - 1 + e.ElementCount()*int(e.Type.RegistersPerElement())
	if last > 0x10000 {
		return fmt.Sprintf("%d elements from address %d run past 65535", e.ElementCount(), e.Address)
	}
	if e.Type == Integer {
		for i, v := range e.Values {
			if v < MinInteger || v > MaxInteger {
				return fmt.Sprintf("value %d (%g) outside %d..%d", i+1, v, MinInteger, MaxInteger)
			}
		}
	}
	return ""
}
