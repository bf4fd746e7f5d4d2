// internal/equation/csv.go
package equation

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/tamzrod/wclink/internal/codec"
	"github.com/tamzrod/wclink/internal/fault"
)

// CommentMarker starts a row that carries no parameter.
const CommentMarker = "*"

// Column layout: Name,Slave,Address,Type,Scale,RW,Qty,Value1..N
const (
	colName = iota
	colSlave
	colAddress
	colType
	colScale
	colMode
	colQuantity
	colValues
)

// Read loads a catalog. Comment rows and blank lines are skipped.
func Read(r io.Reader) (*Map, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	m := NewMap()
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "equation: read csv")
		}
		if len(rec) == 0 || strings.HasPrefix(strings.TrimSpace(rec[colName]), CommentMarker) {
			continue
		}

		line, _ := cr.FieldPos(0)
		e, err := ParseRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		m.Append(e)
	}
	return m, nil
}

// ParseRecord validates and converts one catalog row.
func ParseRecord(rec []string) (*Entry, error) {
	const op = "parse equation row"

	if len(rec) <= colValues {
		return nil, fault.Formatf(op, "need at least %d columns, got %d", colValues+1, len(rec))
	}

	name := strings.TrimSpace(rec[colName])

	slave, err := strconv.ParseUint(strings.TrimSpace(rec[colSlave]), 10, 8)
	if err != nil {
		return nil, fault.Formatf(op, "%s: slave %q: %v", name, rec[colSlave], err)
	}
	addr, err := strconv.ParseUint(strings.TrimSpace(rec[colAddress]), 10, 16)
	if err != nil || addr == 0 {
		return nil, fault.Formatf(op, "%s: address %q must be 1..65535", name, rec[colAddress])
	}
	scale, err := parseCell(rec[colScale])
	if err != nil {
		return nil, fault.Formatf(op, "%s: scale %q: %v", name, rec[colScale], err)
	}
	qty, err := strconv.Atoi(strings.TrimSpace(rec[colQuantity]))
	if err != nil || qty <= 0 {
		return nil, fault.Formatf(op, "%s: quantity %q must be > 0", name, rec[colQuantity])
	}

	// saved rows end with one separator; blank cells before it count
	cells := rec[colValues:]
	if len(cells) > qty && strings.TrimSpace(cells[len(cells)-1]) == "" {
		cells = cells[:len(cells)-1]
	}
	if len(cells) < qty {
		return nil, fault.Formatf(op, "%s: %d value cells for quantity %d", name, len(cells), qty)
	}

	e := &Entry{
		Name:     name,
		SlaveID:  uint8(slave),
		Address:  uint16(addr),
		Type:     ParseDataType(rec[colType]),
		Scale:    scale,
		Mode:     ParseMode(rec[colMode]),
		Quantity: qty,
		Values:   make([]float64, qty),
	}

	for i := 0; i < qty; i++ {
		v, err := parseCell(cells[i])
		if err != nil {
			return nil, fault.Formatf(op, "%s: value %d %q: %v", name, i+1, cells[i], err)
		}
		if e.Type != Float {
			v = math.Trunc(v)
		}
		e.Values[i] = v
	}
	if msg := e.problem(); msg != "" {
		return nil, fault.Formatf(op, "%s: %s", name, msg)
	}
	return e, nil
}

// parseCell reads a numeric cell. Empty cells read as zero.
func parseCell(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

// Write saves m in the layout Read accepts.
func Write(w io.Writer, m *Map) error {
	cw := csv.NewWriter(w)

	for _, e := range m.Entries() {
		rec := []string{
			e.Name,
			strconv.Itoa(int(e.SlaveID)),
			strconv.Itoa(int(e.Address)),
			e.Type.String(),
			strconv.FormatFloat(e.Scale, 'g', -1, 64),
			e.Mode.String(),
			strconv.Itoa(e.Quantity),
		}
		for i := 0; i < e.Quantity; i++ {
			var v float64
			if i < len(e.Values) {
				v = e.Values[i]
			}
			rec = append(rec, FormatValue(e.Type, v))
		}
		rec = append(rec, "")

		if err := cw.Write(rec); err != nil {
			return errors.Wrap(err, "equation: write csv")
		}
	}

	cw.Flush()
	return errors.Wrap(cw.Error(), "equation: flush csv")
}

// FormatValue renders a value cell for its type.
func FormatValue(t DataType, v float64) string {
	switch t {
	case Float:
		return codec.FormatFloat(v, codec.CatalogPrecision)
	default:
		return strconv.FormatInt(int64(v), 10)
	}
}
