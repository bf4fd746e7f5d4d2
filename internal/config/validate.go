// internal/config/validate.go
package config

import (
	"fmt"
	"strings"

	"github.com/tamzrod/wclink/internal/catalog"
	"github.com/tamzrod/wclink/internal/transport"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
// Zero values are accepted where Normalize supplies a default.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	// ------------------------------------------------------------
	// CHANNELS
	// ------------------------------------------------------------

	if len(cfg.Channels) == 0 {
		return fmt.Errorf("at least one channel required")
	}
	if len(cfg.Channels) > transport.MaxChannels {
		return fmt.Errorf("%d channels configured, max %d", len(cfg.Channels), transport.MaxChannels)
	}

	channels := make(map[int]bool)
	ports := make(map[string]int)

	for _, ch := range cfg.Channels {
		if ch.ID < 1 || ch.ID > transport.MaxChannels {
			return fmt.Errorf("channel id %d out of range 1..%d", ch.ID, transport.MaxChannels)
		}
		if channels[ch.ID] {
			return fmt.Errorf("duplicate channel id %d", ch.ID)
		}
		channels[ch.ID] = true

		if strings.TrimSpace(ch.Port) == "" {
			return fmt.Errorf("channel %d: port required", ch.ID)
		}
		if prev, used := ports[ch.Port]; used {
			return fmt.Errorf("channel %d: port %q already used by channel %d", ch.ID, ch.Port, prev)
		}
		ports[ch.Port] = ch.ID

		if ch.BaudRate < 0 {
			return fmt.Errorf("channel %d: baud_rate must be > 0", ch.ID)
		}
		switch ch.DataBits {
		case 0, 7, 8:
		default:
			return fmt.Errorf("channel %d: data_bits must be 7 or 8", ch.ID)
		}
		switch strings.ToUpper(ch.Parity) {
		case "", "N", "E", "O":
		default:
			return fmt.Errorf("channel %d: parity must be N, E or O", ch.ID)
		}
		switch ch.StopBits {
		case 0, 1, 2:
		default:
			return fmt.Errorf("channel %d: stop_bits must be 1 or 2", ch.ID)
		}
		if ch.TimeoutMs < 0 {
			return fmt.Errorf("channel %d: timeout_ms must be >= 0", ch.ID)
		}
	}

	// ------------------------------------------------------------
	// LOOPS
	// ------------------------------------------------------------

	loops := make(map[int]bool)
	pipes := 0

	for _, l := range cfg.Loops {
		if loops[l.Index] {
			return fmt.Errorf("duplicate loop index %d", l.Index)
		}
		loops[l.Index] = true

		if !channels[l.Channel] {
			return fmt.Errorf("loop %d: channel %d not configured", l.Index, l.Channel)
		}
		if _, err := catalog.ParseVariant(l.Variant); err != nil {
			return fmt.Errorf("loop %d: %w", l.Index, err)
		}
		if l.Pipes < 0 {
			return fmt.Errorf("loop %d: pipes must be >= 0", l.Index)
		}
		pipes += l.Pipes
	}

	if pipes > catalog.MaxPipe {
		return fmt.Errorf("%d pipes configured, max %d", pipes, catalog.MaxPipe)
	}

	// ------------------------------------------------------------
	// TRANSFER
	// ------------------------------------------------------------

	if cfg.Transfer.SlaveID > 247 {
		return fmt.Errorf("transfer: slave_id %d out of range 1..247", cfg.Transfer.SlaveID)
	}
	if cfg.Transfer.SettleMs < 0 || cfg.Transfer.RestartSettleMs < 0 {
		return fmt.Errorf("transfer: settle delays must be >= 0")
	}

	return nil
}
