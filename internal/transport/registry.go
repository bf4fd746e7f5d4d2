// internal/transport/registry.go
package transport

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/tamzrod/wclink/internal/monitor"
)

// MaxChannels is the number of serial links one installation drives.
const MaxChannels = 6

// Registry holds the open channels keyed by channel id.
type Registry struct {
	channels map[int]*Channel
}

// Get returns the channel with the given id.
func (r *Registry) Get(id int) (*Channel, error) {
	ch, ok := r.channels[id]
	if !ok {
		return nil, errors.Errorf("transport: channel %d not open", id)
	}
	return ch, nil
}

// IDs lists the open channel ids in ascending order.
func (r *Registry) IDs() []int {
	ids := make([]int, 0, len(r.channels))
	for id := range r.channels {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// opener is swapped in tests.
var opener = Open

// Build opens one channel per config entry.
// On any failure the channels opened so far are closed again.
func Build(cfgs []Config, mon *monitor.Monitor) (*Registry, func() error, error) {
	if len(cfgs) > MaxChannels {
		return nil, nil, errors.Errorf("transport: %d channels configured, max %d", len(cfgs), MaxChannels)
	}

	reg := &Registry{channels: make(map[int]*Channel, len(cfgs))}
	var closers []func() error

	closeAll := func() error {
		var last error
		for _, fn := range closers {
			if err := fn(); err != nil {
				last = err
			}
		}
		return last
	}

	for _, c := range cfgs {
		if _, dup := reg.channels[c.ID]; dup {
			_ = closeAll()
			return nil, nil, errors.Errorf("transport: duplicate channel id %d", c.ID)
		}
		ch, err := opener(c, mon)
		if err != nil {
			_ = closeAll()
			return nil, nil, errors.Wrapf(err, "transport: open channel %d (%s)", c.ID, c.Port)
		}
		reg.channels[c.ID] = ch
		closers = append(closers, ch.Close)
	}

	return reg, closeAll, nil
}
