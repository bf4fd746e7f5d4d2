// internal/transport/transport_test.go
package transport

import (
	"errors"
	"testing"

	"github.com/goburrow/modbus"

	"github.com/tamzrod/wclink/internal/dispatch"
	"github.com/tamzrod/wclink/internal/monitor"
)

// ------------------------------------------------------------
// FAKES
// ------------------------------------------------------------

type fakeClient struct {
	modbus.Client

	lastAddr  uint16
	lastQty   uint16
	lastValue uint16
	lastData  []byte

	resp []byte
	err  error
}

func (f *fakeClient) ReadCoils(addr, qty uint16) ([]byte, error) {
	f.lastAddr, f.lastQty = addr, qty
	return f.resp, f.err
}

func (f *fakeClient) ReadHoldingRegisters(addr, qty uint16) ([]byte, error) {
	f.lastAddr, f.lastQty = addr, qty
	return f.resp, f.err
}

func (f *fakeClient) WriteSingleCoil(addr, value uint16) ([]byte, error) {
	f.lastAddr, f.lastValue = addr, value
	return []byte{byte(value >> 8), byte(value)}, f.err
}

func (f *fakeClient) WriteMultipleRegisters(addr, qty uint16, value []byte) ([]byte, error) {
	f.lastAddr, f.lastQty, f.lastData = addr, qty, value
	return []byte{byte(qty >> 8), byte(qty)}, f.err
}

type nopCloser struct{ closed bool }

func (n *nopCloser) Close() error { n.closed = true; return nil }

func newTestChannel(id int, fc *fakeClient, slaves *[]uint8) *Channel {
	return &Channel{
		id:     id,
		slave:  1,
		apply:  func(s uint8) { *slaves = append(*slaves, s) },
		client: fc,
		closer: &nopCloser{},
		tap:    &frameTap{channel: id},
	}
}

// ------------------------------------------------------------
// TESTS
// ------------------------------------------------------------

func TestChannelAppliesSlavePerCall(t *testing.T) {
	var slaves []uint8
	fc := &fakeClient{resp: []byte{0x00, 0x2a}}
	ch := newTestChannel(1, fc, &slaves)

	ch.SetSlave(5)
	if _, err := ch.ReadRegisters(4, 1); err != nil {
		t.Fatalf("read: %v", err)
	}
	ch.SetSlave(6)
	if _, err := ch.ReadRegisters(4, 1); err != nil {
		t.Fatalf("read: %v", err)
	}

	if len(slaves) != 2 || slaves[0] != 5 || slaves[1] != 6 {
		t.Fatalf("unexpected slave sequence %v", slaves)
	}
}

func TestChannelConversions(t *testing.T) {
	var slaves []uint8
	fc := &fakeClient{resp: []byte{0x05}}
	ch := newTestChannel(1, fc, &slaves)

	bits, err := ch.ReadBits(0, 3)
	if err != nil {
		t.Fatalf("read bits: %v", err)
	}
	if len(bits) != 3 || bits[0] != 1 || bits[1] != 0 || bits[2] != 1 {
		t.Fatalf("unexpected bits %v", bits)
	}

	n, err := ch.WriteBit(998, true)
	if err != nil || n != 1 || fc.lastValue != 0xFF00 {
		t.Fatalf("write bit: n=%d err=%v value=%04x", n, err, fc.lastValue)
	}

	n, err = ch.WriteRegisters(4, []uint16{0x0000, 0x3f80})
	if err != nil || n != 2 {
		t.Fatalf("write registers: n=%d err=%v", n, err)
	}
	if string(fc.lastData) != string([]byte{0x00, 0x00, 0x3f, 0x80}) {
		t.Fatalf("unexpected payload % x", fc.lastData)
	}
}

func TestChannelErrorReportsNegativeCount(t *testing.T) {
	var slaves []uint8
	fc := &fakeClient{err: errors.New("serial: timeout")}
	ch := newTestChannel(1, fc, &slaves)

	n, err := ch.WriteBit(24, false)
	if err == nil || n != -1 {
		t.Fatalf("expected -1 and error, got %d %v", n, err)
	}
}

func TestFrameTapFeedsMonitor(t *testing.T) {
	mon := monitor.New()
	tap := &frameTap{channel: 2, mon: mon}

	tap.Write([]byte("modbus: sending 01 03 00 00 00 01 84 0a\n"))
	tap.Write([]byte("modbus: received 01 03 02 00 2a 39 9b\n"))
	tap.Write([]byte("unrelated line\n"))

	if got, want := mon.Raw(), "[2] 01 03 00 00 00 01 84 0a \n[2] 01 03 02 00 2a 39 9b "; got != want {
		t.Fatalf("raw: got %q want %q", got, want)
	}

	exp, act, ok := tap.lastCRC()
	if !ok {
		t.Fatalf("expected response crc to be recorded")
	}
	if exp != dispatch.CRC16([]byte{0x01, 0x03, 0x02, 0x00, 0x2a}) || act != 0x9b39 {
		t.Fatalf("unexpected crc pair %04x %04x", exp, act)
	}

	tap.reset()
	if _, _, ok := tap.lastCRC(); ok {
		t.Fatalf("reset must clear the recorded crc")
	}
}

func TestBuildRejectsTooManyChannels(t *testing.T) {
	cfgs := make([]Config, MaxChannels+1)
	if _, _, err := Build(cfgs, nil); err == nil {
		t.Fatalf("expected error for %d channels", len(cfgs))
	}
}

func TestBuildClosesOnFailure(t *testing.T) {
	saved := opener
	defer func() { opener = saved }()

	var closers []*nopCloser
	opener = func(cfg Config, _ *monitor.Monitor) (*Channel, error) {
		if cfg.ID == 3 {
			return nil, errors.New("open /dev/ttyUSB2: no such file or directory")
		}
		c := &nopCloser{}
		closers = append(closers, c)
		return &Channel{id: cfg.ID, closer: c, apply: func(uint8) {}}, nil
	}

	_, _, err := Build([]Config{{ID: 1, Port: "a"}, {ID: 2, Port: "b"}, {ID: 3, Port: "c"}}, nil)
	if err == nil {
		t.Fatalf("expected build error")
	}
	for i, c := range closers {
		if !c.closed {
			t.Fatalf("channel %d left open", i+1)
		}
	}
}

func TestBuildRegistry(t *testing.T) {
	saved := opener
	defer func() { opener = saved }()

	opener = func(cfg Config, _ *monitor.Monitor) (*Channel, error) {
		return &Channel{id: cfg.ID, closer: &nopCloser{}, apply: func(uint8) {}}, nil
	}

	reg, closeAll, err := Build([]Config{{ID: 4}, {ID: 1}}, nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer closeAll()

	ids := reg.IDs()
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 4 {
		t.Fatalf("unexpected ids %v", ids)
	}
	if _, err := reg.Get(2); err == nil {
		t.Fatalf("expected error for unknown channel")
	}
}
