package multistrip

import "github.com/smazurov/multistrip/internal/busses"

const (
	// MaxChannels is the capacity of the channel registry.
	MaxChannels = 3
	// DisabledPin marks a channel (or the enable line) as unused.
	DisabledPin = -1
)

// Profile is the set of bus parameters applied while a channel's line is at
// one level. A zero Length means the length has not been learned yet and the
// bus keeps its current pixel count.
type Profile struct {
	Type       busses.Type       `json:"type"`
	ColorOrder busses.ColorOrder `json:"color_order"`
	Length     uint16            `json:"length"`
}

func profileOf(cfg busses.Config) Profile {
	return Profile{Type: cfg.Type, ColorOrder: cfg.ColorOrder, Length: cfg.Length}
}

// Channel binds one input line to one bus and carries the low and high profiles.
type Channel struct {
	Pin        int        `json:"pin"`
	Bus        int        `json:"bus"`
	KnownState bool       `json:"state"`
	Profiles   [2]Profile `json:"profiles"`
}

// Enabled reports whether the channel has a line assigned.
func (c *Channel) Enabled() bool {
	return c.Pin >= 0
}

// Profile returns the profile for a line state.
func (c *Channel) Profile(state bool) Profile {
	return c.Profiles[slot(state)]
}

func (c *Channel) setProfile(state bool, p Profile) {
	c.Profiles[slot(state)] = p
}

func slot(state bool) int {
	if state {
		return 1
	}
	return 0
}

// Registry is the fixed-capacity channel table plus the optional enable line.
// Only the first count channels are active.
type Registry struct {
	Channels  [MaxChannels]Channel
	EnablePin int
	count     int
}

// defaultPins are the factory line assignments for the three channels.
var defaultPins = [MaxChannels]int{15, 12, DisabledPin}

// NewRegistry returns a registry with count active channels and factory
// defaults: identity bus mapping, SK6812 RGBW/GRB while low and
// WS2812 RGB/BRG while high.
func NewRegistry(count int) Registry {
	if count <= 0 || count > MaxChannels {
		count = MaxChannels
	}
	r := Registry{EnablePin: DisabledPin, count: count}
	for i := range r.Channels {
		r.Channels[i] = Channel{
			Pin: defaultPins[i],
			Bus: i,
			Profiles: [2]Profile{
				{Type: busses.TypeSK6812RGBW, ColorOrder: busses.OrderGRB},
				{Type: busses.TypeWS2812RGB, ColorOrder: busses.OrderBRG},
			},
		}
		if i >= count {
			r.Channels[i].Pin = DisabledPin
		}
	}
	return r
}

// Count is the number of active channels.
func (r *Registry) Count() int {
	return r.count
}

// Active returns the active channels as a slice backed by the registry.
func (r *Registry) Active() []Channel {
	return r.Channels[:r.count]
}

// Pins returns the active channel pins in channel order.
func (r *Registry) Pins() []int {
	out := make([]int, r.count)
	for i := range out {
		out[i] = r.Channels[i].Pin
	}
	return out
}

// setPins assigns channel pins from pins, leaving channels beyond len(pins) untouched.
func (r *Registry) setPins(pins []int) {
	for i := 0; i < r.count && i < len(pins); i++ {
		r.Channels[i].Pin = pins[i]
	}
}
