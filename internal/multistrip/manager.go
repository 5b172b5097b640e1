// Package multistrip switches LED bus parameters at runtime according to
// external input lines, so one set of driver channels can serve different
// strip hardware depending on a switch or relay position.
//
// Each channel samples one GPIO line and controls one bus of the bus table.
// When the line changes level the bus is rebuilt from the channel's profile
// for that level and every later bus is shifted so the shared pixel stream
// stays contiguous.
package multistrip

import (
	"log/slog"
	"time"

	"github.com/smazurov/multistrip/internal/busses"
	"github.com/smazurov/multistrip/internal/events"
	"github.com/smazurov/multistrip/internal/pins"
)

const (
	// Owner tags every pin this subsystem holds.
	Owner pins.Owner = "multistrip"
	// DefaultSampleInterval is the minimum time between two line samples.
	DefaultSampleInterval = 250 * time.Millisecond
)

// Usermod is the set of hooks a host drives the subsystem through.
type Usermod interface {
	Initialize() bool
	PeriodicPoll()
	SerializeConfig() *Section
	DeserializeConfig(*Section) bool
	Shutdown()
}

var _ Usermod = (*Manager)(nil)

// BusTable is the ordered bus table the subsystem reconfigures.
type BusTable interface {
	Bus(index int) (busses.Config, bool)
	Replace(index int, cfg busses.Config) error
}

// PinGateway allocates and releases GPIO lines under an owner tag.
type PinGateway interface {
	AllocateMultiple(reqs []pins.Request, owner pins.Owner) error
	Allocate(pin int, mode pins.Mode, owner pins.Owner) error
	DeallocateMultiple(pins []int, owner pins.Owner) error
	Deallocate(pin int, owner pins.Owner) error
}

// Lines reads and drives allocated GPIO lines.
type Lines interface {
	Read(pin int) (bool, error)
	Write(pin int, high bool) error
}

// Options configures a Manager.
type Options struct {
	Busses BusTable
	Pins   PinGateway
	Lines  Lines
	Events *events.Bus
	Logger *slog.Logger

	// Channels is the number of active channels, 1..MaxChannels.
	Channels int
	// Now overrides the clock used for sample pacing.
	Now func() time.Time
}

// Manager implements Usermod. It is not safe for concurrent use; the host
// serialises calls to its hooks.
type Manager struct {
	busses BusTable
	pins   PinGateway
	lines  Lines
	events *events.Bus
	logger *slog.Logger
	now    func() time.Time

	reg            Registry
	enabled        bool
	sampleInterval time.Duration
	lastSample     time.Time
	initDone       bool
	setupRan       bool
	enableClaimed  bool
	lastErr        *Error
}

// NewManager creates a manager with factory defaults.
func NewManager(opts Options) *Manager {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		busses:         opts.Busses,
		pins:           opts.Pins,
		lines:          opts.Lines,
		events:         opts.Events,
		logger:         logger,
		now:            now,
		reg:            NewRegistry(opts.Channels),
		enabled:        true,
		sampleInterval: DefaultSampleInterval,
	}
}

// Initialize claims the channel lines, powers the strips through the enable
// line if one is configured and applies each channel's current state to its
// bus. It returns false if the channel lines could not be allocated, in which
// case no bus is touched. Once Initialize has run, pin changes loaded by
// DeserializeConfig re-run it, whether or not this attempt succeeded.
func (m *Manager) Initialize() bool {
	m.setupRan = true
	reqs := make([]pins.Request, 0, m.reg.Count())
	for _, ch := range m.reg.Active() {
		if !ch.Enabled() {
			continue
		}
		reqs = append(reqs, pins.Request{Pin: ch.Pin, Mode: pins.Input})
	}
	if err := m.pins.AllocateMultiple(reqs, Owner); err != nil {
		m.fail(newError(AllocationFailure, -1, -1, err))
		m.logger.Warn("Failed to allocate channel pins", "pins", m.reg.Pins(), "error", err)
		return false
	}

	if m.reg.EnablePin >= 0 {
		if err := m.pins.Allocate(m.reg.EnablePin, pins.Output, Owner); err != nil {
			m.fail(newError(OptionalAllocationFailure, -1, -1, err))
			m.logger.Warn("Failed to allocate enable pin, assuming external power control",
				"pin", m.reg.EnablePin, "error", err)
		} else {
			m.enableClaimed = true
			m.driveEnable(true)
		}
	}

	for i, ch := range m.reg.Active() {
		if !ch.Enabled() {
			continue
		}
		m.construct(i, ch.KnownState, events.ReasonInit)
	}

	m.initDone = true
	m.logger.Info("Multi-strip initialized",
		"channels", m.reg.Count(),
		"pins", m.reg.Pins(),
		"enable_pin", m.reg.EnablePin,
		"enable_claimed", m.enableClaimed)
	return true
}

// Shutdown cuts strip power through the enable line. Pins stay allocated.
func (m *Manager) Shutdown() {
	if m.enableClaimed {
		m.driveEnable(false)
	}
	m.logger.Info("Multi-strip shut down")
}

func (m *Manager) driveEnable(high bool) {
	if err := m.lines.Write(m.reg.EnablePin, high); err != nil {
		m.logger.Warn("Failed to drive enable pin", "pin", m.reg.EnablePin, "high", high, "error", err)
	}
}

func (m *Manager) fail(err *Error) {
	m.lastErr = err
}

// Status is a point-in-time view of the subsystem.
type Status struct {
	Enabled        bool          `json:"enabled"`
	Initialized    bool          `json:"initialized"`
	SampleInterval time.Duration `json:"sample_interval"`
	EnablePin      int           `json:"enable_pin"`
	EnableClaimed  bool          `json:"enable_claimed"`
	Channels       []Channel     `json:"channels"`
	LastError      string        `json:"last_error,omitempty"`
}

// Status returns a copy of the current channel registry and flags.
func (m *Manager) Status() Status {
	st := Status{
		Enabled:        m.enabled,
		Initialized:    m.initDone,
		SampleInterval: m.sampleInterval,
		EnablePin:      m.reg.EnablePin,
		EnableClaimed:  m.enableClaimed,
		Channels:       append([]Channel(nil), m.reg.Active()...),
	}
	if m.lastErr != nil {
		st.LastError = m.lastErr.Error()
	}
	return st
}

// Initialized reports whether Initialize has completed since the last pin change.
func (m *Manager) Initialized() bool {
	return m.initDone
}

func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
