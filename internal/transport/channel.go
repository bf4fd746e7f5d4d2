// internal/transport/channel.go
package transport

import (
	"encoding/binary"
	"errors"
	"io"
	"log"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/goburrow/modbus"

	"github.com/tamzrod/wclink/internal/codec"
	"github.com/tamzrod/wclink/internal/dispatch"
	"github.com/tamzrod/wclink/internal/monitor"
)

var _ dispatch.Channel = (*Channel)(nil)

// Config describes one serial link.
type Config struct {
	ID       int
	Port     string
	BaudRate int
	DataBits int
	Parity   string // "N", "E" or "O"
	StopBits int
	Timeout  time.Duration
}

// Channel is one RTU link. Each call locks the channel while it pushes the
// selected slave id to the shared handler and runs, so calls never
// interleave on the wire. SetSlave and the call after it are separate
// steps: a channel takes one caller at a time.
type Channel struct {
	id int

	mu     sync.Mutex
	slave  uint8
	apply  func(uint8)
	client modbus.Client
	closer io.Closer
	tap    *frameTap
}

// Open connects the serial port and returns a ready channel.
// When mon is non-nil the raw frames are copied into it.
func Open(cfg Config, mon *monitor.Monitor) (*Channel, error) {
	if cfg.Port == "" {
		return nil, errors.New("transport: port required")
	}

	h := modbus.NewRTUClientHandler(portAddress(cfg.Port))
	h.BaudRate = cfg.BaudRate
	h.DataBits = cfg.DataBits
	h.Parity = cfg.Parity
	h.StopBits = cfg.StopBits
	h.Timeout = cfg.Timeout
	h.SlaveId = 1

	tap := &frameTap{channel: cfg.ID, mon: mon}
	h.Logger = log.New(tap, "", 0)

	if err := h.Connect(); err != nil {
		return nil, err
	}

	return &Channel{
		id:     cfg.ID,
		slave:  1,
		apply:  func(id uint8) { h.SlaveId = id },
		client: modbus.NewClient(h),
		closer: h,
		tap:    tap,
	}, nil
}

func (c *Channel) ID() int { return c.id }

func (c *Channel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closer.Close()
}

func (c *Channel) SetSlave(id uint8) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.slave = id
}

// ResponseCRC reports the CRC pair of the last frame received.
func (c *Channel) ResponseCRC() (expected, actual uint16, ok bool) {
	if c.tap == nil {
		return 0, 0, false
	}
	return c.tap.lastCRC()
}

// begin locks the channel and pushes the active slave id to the handler.
func (c *Channel) begin() {
	c.mu.Lock()
	c.apply(c.slave)
	if c.tap != nil {
		c.tap.reset()
	}
}

func (c *Channel) ReadBits(addr, count uint16) ([]byte, error) {
	c.begin()
	defer c.mu.Unlock()

	b, err := c.client.ReadCoils(addr, count)
	if err != nil {
		return nil, err
	}
	return codec.BitBytes(b, bitCount(b, count)), nil
}

func (c *Channel) ReadInputBits(addr, count uint16) ([]byte, error) {
	c.begin()
	defer c.mu.Unlock()

	b, err := c.client.ReadDiscreteInputs(addr, count)
	if err != nil {
		return nil, err
	}
	return codec.BitBytes(b, bitCount(b, count)), nil
}

func (c *Channel) ReadRegisters(addr, count uint16) ([]uint16, error) {
	c.begin()
	defer c.mu.Unlock()

	b, err := c.client.ReadHoldingRegisters(addr, count)
	if err != nil {
		return nil, err
	}
	return codec.UnpackRegisters(b), nil
}

func (c *Channel) ReadInputRegisters(addr, count uint16) ([]uint16, error) {
	c.begin()
	defer c.mu.Unlock()

	b, err := c.client.ReadInputRegisters(addr, count)
	if err != nil {
		return nil, err
	}
	return codec.UnpackRegisters(b), nil
}

func (c *Channel) WriteBit(addr uint16, v bool) (int, error) {
	c.begin()
	defer c.mu.Unlock()

	value := uint16(0x0000)
	if v {
		value = 0xFF00
	}
	if _, err := c.client.WriteSingleCoil(addr, value); err != nil {
		return -1, err
	}
	return 1, nil
}

func (c *Channel) WriteRegister(addr, v uint16) (int, error) {
	c.begin()
	defer c.mu.Unlock()

	if _, err := c.client.WriteSingleRegister(addr, v); err != nil {
		return -1, err
	}
	return 1, nil
}

func (c *Channel) WriteBits(addr uint16, v []bool) (int, error) {
	c.begin()
	defer c.mu.Unlock()

	res, err := c.client.WriteMultipleCoils(addr, uint16(len(v)), codec.PackBits(v))
	if err != nil {
		return -1, err
	}
	return echoedQuantity(res), nil
}

func (c *Channel) WriteRegisters(addr uint16, v []uint16) (int, error) {
	c.begin()
	defer c.mu.Unlock()

	res, err := c.client.WriteMultipleRegisters(addr, uint16(len(v)), codec.PackRegisters(v))
	if err != nil {
		return -1, err
	}
	return echoedQuantity(res), nil
}

// bitCount caps count at the number of coils the packed response holds.
func bitCount(b []byte, count uint16) int {
	if n := len(b) * 8; n < int(count) {
		return n
	}
	return int(count)
}

func echoedQuantity(res []byte) int {
	if len(res) < 2 {
		return 0
	}
	return int(binary.BigEndian.Uint16(res))
}

// portAddress maps COM names to the device namespace on Windows.
func portAddress(port string) string {
	if runtime.GOOS == "windows" && strings.HasPrefix(strings.ToUpper(port), "COM") {
		return `\\.\` + port
	}
	return port
}
