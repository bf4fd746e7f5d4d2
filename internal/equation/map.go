// internal/equation/map.go
package equation

import "github.com/tamzrod/wclink/internal/fault"

// Map is the ordered parameter catalog of one transfer.
type Map struct {
	entries []*Entry
}

func NewMap(entries ...*Entry) *Map {
	return &Map{entries: entries}
}

func (m *Map) Append(e *Entry) { m.entries = append(m.entries, e) }

// Entries returns the entries in catalog order. The pointers are shared.
func (m *Map) Entries() []*Entry { return m.entries }

func (m *Map) Len() int { return len(m.entries) }

// TotalItems is the number of register groups a full transfer touches.
func (m *Map) TotalItems() int {
	n := 0
	for _, e := range m.entries {
		n += e.ElementCount()
	}
	return n
}

// Find returns the first entry with the given name.
func (m *Map) Find(name string) (*Entry, bool) {
	for _, e := range m.entries {
		if e.Name == name {
			return e, true
		}
	}
	return nil, false
}

// Validate checks every entry before a transfer dispatches anything.
func (m *Map) Validate() error {
	for i, e := range m.entries {
		if e == nil {
			return fault.Configurationf("validate map", "entry %d is nil", i)
		}
		if err := e.Validate(); err != nil {
			return err
		}
	}
	return nil
}
