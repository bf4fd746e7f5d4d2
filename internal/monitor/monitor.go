// internal/monitor/monitor.go
package monitor

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Direction of a logged frame relative to the master.
type Direction int

const (
	Request Direction = iota
	Response
)

func (d Direction) String() string {
	if d == Response {
		return "<< Resp"
	}
	return "Req >>"
}

// Entry is one logged frame. Entries are never modified once appended.
type Entry struct {
	Channel     int
	Direction   Direction
	Slave       uint8
	Function    uint8
	Address     uint16 // protocol address, 0-based
	Count       uint16
	ExpectedCRC uint16
	ActualCRC   uint16
	At          time.Time
}

// IsException reports whether the frame carries an exception function code.
func (e Entry) IsException() bool { return e.Function > 127 }

// CRCMismatch reports whether the observed CRC differs from the computed one.
func (e Entry) CRCMismatch() bool { return e.ExpectedCRC != e.ActualCRC }

func (e Entry) FunctionText() string {
	if e.IsException() {
		return fmt.Sprintf("Exception(%d)", e.Function-128)
	}
	return fmt.Sprintf("%d", e.Function)
}

// AddressText shows the displayed (1-based) address. Blank for exceptions.
func (e Entry) AddressText() string {
	if e.IsException() {
		return ""
	}
	return fmt.Sprintf("%d", int(e.Address)+1)
}

func (e Entry) CountText() string {
	if e.IsException() {
		return ""
	}
	return fmt.Sprintf("%d", e.Count)
}

func (e Entry) CRCText() string {
	if e.CRCMismatch() {
		return fmt.Sprintf("%04x (%04x)", e.ExpectedCRC, e.ActualCRC)
	}
	return fmt.Sprintf("%04x", e.ExpectedCRC)
}

// Monitor is the append-only bus log shared by every channel.
//
// Memory grows until Clear is called.
type Monitor struct {
	mu      sync.Mutex
	entries []Entry
	raw     strings.Builder
	now     func() time.Time
}

func New() *Monitor {
	return &Monitor{now: time.Now}
}

// LogFrame appends one frame row.
func (m *Monitor) LogFrame(channel int, dir Direction, slave, function uint8, address, count, expectedCRC, actualCRC uint16) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	e := Entry{
		Channel:     channel,
		Direction:   dir,
		Slave:       slave,
		Function:    function,
		Address:     address,
		Count:       count,
		ExpectedCRC: expectedCRC,
		ActualCRC:   actualCRC,
		At:          m.now(),
	}
	if e.IsException() {
		e.Address, e.Count = 0, 0
	}
	m.entries = append(m.entries, e)
}

// LogRawBytes appends b to the raw dump as hex pairs. A newline starts
// a fresh line first.
func (m *Monitor) LogRawBytes(channel int, b []byte, newline bool) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if newline && m.raw.Len() > 0 {
		m.raw.WriteByte('\n')
	}
	if newline {
		fmt.Fprintf(&m.raw, "[%d] ", channel)
	}
	for _, c := range b {
		fmt.Fprintf(&m.raw, "%02x ", c)
	}
}

// Entries returns a snapshot of the frame log.
func (m *Monitor) Entries() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

func (m *Monitor) Raw() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.raw.String()
}

func (m *Monitor) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Clear drops every entry and the raw dump.
func (m *Monitor) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = nil
	m.raw.Reset()
}
