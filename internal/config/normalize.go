// internal/config/normalize.go
package config

import (
	"strings"
	"time"

	"github.com/tamzrod/wclink/internal/transport"
)

// Defaults match the analyzer's factory serial settings.
const (
	DefaultBaudRate        = 9600
	DefaultDataBits        = 8
	DefaultParity          = "N"
	DefaultStopBits        = 1
	DefaultTimeoutMs       = 1000
	DefaultSlaveID         = 1
	DefaultSettleMs        = 2000
	DefaultRestartSettleMs = 8000
	DefaultTemplatesDir    = "."
)

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	for i := range cfg.Channels {
		ch := &cfg.Channels[i]

		if ch.BaudRate == 0 {
			ch.BaudRate = DefaultBaudRate
		}
		if ch.DataBits == 0 {
			ch.DataBits = DefaultDataBits
		}
		ch.Parity = strings.ToUpper(ch.Parity)
		if ch.Parity == "" {
			ch.Parity = DefaultParity
		}
		if ch.StopBits == 0 {
			ch.StopBits = DefaultStopBits
		}
		if ch.TimeoutMs == 0 {
			ch.TimeoutMs = DefaultTimeoutMs
		}
	}

	if cfg.Transfer.SlaveID == 0 {
		cfg.Transfer.SlaveID = DefaultSlaveID
	}
	if cfg.Transfer.SettleMs == 0 {
		cfg.Transfer.SettleMs = DefaultSettleMs
	}
	if cfg.Transfer.RestartSettleMs == 0 {
		cfg.Transfer.RestartSettleMs = DefaultRestartSettleMs
	}
	if cfg.TemplatesDir == "" {
		cfg.TemplatesDir = DefaultTemplatesDir
	}
}

// Transport converts a normalized channel entry for transport.Open.
func (ch ChannelConfig) Transport() transport.Config {
	return transport.Config{
		ID:       ch.ID,
		Port:     ch.Port,
		BaudRate: ch.BaudRate,
		DataBits: ch.DataBits,
		Parity:   ch.Parity,
		StopBits: ch.StopBits,
		Timeout:  time.Duration(ch.TimeoutMs) * time.Millisecond,
	}
}

// Settle is the post-dispatch delay.
func (t TransferConfig) Settle() time.Duration {
	return time.Duration(t.SettleMs) * time.Millisecond
}

// RestartSettle is the delay after the coil that restarts the device.
func (t TransferConfig) RestartSettle() time.Duration {
	return time.Duration(t.RestartSettleMs) * time.Millisecond
}
