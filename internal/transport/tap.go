// internal/transport/tap.go
package transport

import (
	"encoding/binary"
	"encoding/hex"
	"strings"
	"sync"

	"github.com/tamzrod/wclink/internal/dispatch"
	"github.com/tamzrod/wclink/internal/monitor"
)

const (
	sendingPrefix  = "modbus: sending "
	receivedPrefix = "modbus: received "
)

// frameTap receives the RTU handler's log lines and copies the frames
// into the monitor's raw stream.
type frameTap struct {
	channel int
	mon     *monitor.Monitor

	mu       sync.Mutex
	seen     bool
	expected uint16
	actual   uint16
}

func (t *frameTap) Write(p []byte) (int, error) {
	for _, line := range strings.Split(string(p), "\n") {
		t.line(line)
	}
	return len(p), nil
}

func (t *frameTap) line(line string) {
	var (
		frame    []byte
		received bool
	)
	switch {
	case strings.HasPrefix(line, sendingPrefix):
		frame = parseHex(strings.TrimPrefix(line, sendingPrefix))
	case strings.HasPrefix(line, receivedPrefix):
		frame = parseHex(strings.TrimPrefix(line, receivedPrefix))
		received = true
	default:
		return
	}
	if len(frame) == 0 {
		return
	}

	if t.mon != nil {
		t.mon.LogRawBytes(t.channel, frame, true)
	}

	if received && len(frame) >= 4 {
		n := len(frame) - 2
		t.mu.Lock()
		t.seen = true
		t.expected = dispatch.CRC16(frame[:n])
		t.actual = binary.LittleEndian.Uint16(frame[n:])
		t.mu.Unlock()
	}
}

func (t *frameTap) reset() {
	t.mu.Lock()
	t.seen = false
	t.mu.Unlock()
}

func (t *frameTap) lastCRC() (expected, actual uint16, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.expected, t.actual, t.seen
}

// parseHex reads "01 03 00 04" style dumps. Anything else yields nil.
func parseHex(s string) []byte {
	s = strings.Trim(strings.TrimSpace(s), "[]")
	b, err := hex.DecodeString(strings.Join(strings.Fields(s), ""))
	if err != nil {
		return nil
	}
	return b
}
