// internal/config/config.go
package config

type Config struct {
	Channels     []ChannelConfig `yaml:"channels"`
	Loops        []LoopConfig    `yaml:"loops"`
	Transfer     TransferConfig  `yaml:"transfer"`
	TemplatesDir string          `yaml:"templates_dir"`
}

// ---- CHANNEL ----

type ChannelConfig struct {
	ID        int    `yaml:"id"`
	Port      string `yaml:"port"`
	BaudRate  int    `yaml:"baud_rate"`
	DataBits  int    `yaml:"data_bits"`
	Parity    string `yaml:"parity"` // N, E, O
	StopBits  int    `yaml:"stop_bits"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

// ---- LOOP ----

// LoopConfig binds one measurement loop to a channel and a product family.
type LoopConfig struct {
	Index   int    `yaml:"index"`
	Channel int    `yaml:"channel"`
	Variant string `yaml:"variant"` // eea, razor
	Pipes   int    `yaml:"pipes"`
}

// ---- TRANSFER ----

type TransferConfig struct {
	SlaveID         uint8 `yaml:"slave_id"` // reserved coils
	SettleMs        int   `yaml:"settle_ms"`
	RestartSettleMs int   `yaml:"restart_settle_ms"`
}

// Loop returns the loop with the given index.
func (c *Config) Loop(index int) (LoopConfig, bool) {
	for _, l := range c.Loops {
		if l.Index == index {
			return l, true
		}
	}
	return LoopConfig{}, false
}

// Channel returns the channel with the given id.
func (c *Config) Channel(id int) (ChannelConfig, bool) {
	for _, ch := range c.Channels {
		if ch.ID == id {
			return ch, true
		}
	}
	return ChannelConfig{}, false
}
