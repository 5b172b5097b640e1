package multistrip

import (
	"slices"
	"time"

	"github.com/smazurov/multistrip/internal/busses"
	"github.com/smazurov/multistrip/internal/events"
)

// SectionName is the key the persisted section is stored under.
const SectionName = "MultiStripType"

// Section is the persisted form of the subsystem's settings. Every field is
// optional on load; a nil field leaves the current value in place.
//
// Per-channel profile arrays hold two entries per channel, low then high.
// Pin holds one entry per channel followed by the enable pin.
type Section struct {
	Enabled          *bool    `toml:"enabled,omitempty" json:"enabled,omitempty"`
	SampleIntervalMs *uint16  `toml:"sampleIntervalMs,omitempty" json:"sampleIntervalMs,omitempty"`
	Type             []int    `toml:"type,omitempty" json:"type,omitempty"`
	Color            []int    `toml:"color,omitempty" json:"color,omitempty"`
	Length           []uint16 `toml:"length,omitempty" json:"length,omitempty"`
	Pin              []int    `toml:"pin,omitempty" json:"pin,omitempty"`
	Map              []int    `toml:"map,omitempty" json:"map,omitempty"`
	State            []bool   `toml:"ch,omitempty" json:"ch,omitempty"`
}

// SerializeConfig captures the current settings, channel profiles, mapping
// and last known states.
func (m *Manager) SerializeConfig() *Section {
	enabled := m.enabled
	interval := uint16(m.sampleInterval / time.Millisecond)
	n := m.reg.Count()

	s := &Section{
		Enabled:          &enabled,
		SampleIntervalMs: &interval,
		Type:             make([]int, 0, 2*n),
		Color:            make([]int, 0, 2*n),
		Length:           make([]uint16, 0, 2*n),
		Pin:              make([]int, 0, n+1),
		Map:              make([]int, 0, n),
		State:            make([]bool, 0, n),
	}
	for _, ch := range m.reg.Active() {
		for _, p := range ch.Profiles {
			s.Type = append(s.Type, int(p.Type))
			s.Color = append(s.Color, int(p.ColorOrder))
			s.Length = append(s.Length, p.Length)
		}
		s.Pin = append(s.Pin, ch.Pin)
		s.Map = append(s.Map, ch.Bus)
		s.State = append(s.State, ch.KnownState)
	}
	s.Pin = append(s.Pin, m.reg.EnablePin)
	return s
}

// DeserializeConfig applies a persisted section. It returns false when s is
// nil, leaving every setting at its current value.
//
// If the channel or enable pins differ from the active ones and the
// subsystem has been initialized before, the enable line is driven low, all
// held pins are released and Initialize runs again with the new pins.
func (m *Manager) DeserializeConfig(s *Section) bool {
	if s == nil {
		m.fail(newError(MissingConfig, -1, -1, nil))
		m.logger.Info("Multi-strip: no configuration found, using defaults")
		return false
	}

	if s.Enabled != nil {
		m.enabled = *s.Enabled
	}
	if s.SampleIntervalMs != nil {
		m.sampleInterval = time.Duration(*s.SampleIntervalMs) * time.Millisecond
	}

	if !m.setupRan {
		m.snapshotBusses()
	}

	active := m.reg.Active()
	for i := range active {
		p := &active[i].Profiles
		for st := range p {
			idx := 2*i + st
			if s.Type != nil && idx < len(s.Type) {
				p[st].Type = busses.Type(s.Type[idx])
			}
			if s.Color != nil && idx < len(s.Color) {
				p[st].ColorOrder = busses.ColorOrder(s.Color[idx])
			}
			if s.Length != nil && idx < len(s.Length) {
				p[st].Length = s.Length[idx]
			}
		}
	}

	oldPins := m.reg.Pins()
	oldEnable := m.reg.EnablePin
	newPins := slices.Clone(oldPins)
	newEnable := oldEnable
	if s.Pin != nil {
		copy(newPins, s.Pin)
		if len(s.Pin) == m.reg.Count()+1 {
			newEnable = s.Pin[m.reg.Count()]
		}
	}

	for i := range active {
		if s.Map != nil && i < len(s.Map) {
			active[i].Bus = s.Map[i]
		}
		if s.State != nil && i < len(s.State) {
			active[i].KnownState = s.State[i]
		}
	}

	m.warnSharedBusses()

	changed := !slices.Equal(oldPins, newPins) || oldEnable != newEnable
	if changed && m.setupRan {
		m.logger.Info("Multi-strip pins changed, re-acquiring",
			"old_pins", oldPins, "new_pins", newPins,
			"old_enable_pin", oldEnable, "new_enable_pin", newEnable)
		m.releasePins(oldPins, oldEnable)
		m.reg.setPins(newPins)
		m.reg.EnablePin = newEnable
		ok := m.Initialize()
		m.events.Publish(events.PinsReassignedEvent{
			OldPins:     oldPins,
			NewPins:     newPins,
			OldEnable:   oldEnable,
			NewEnable:   newEnable,
			Initialized: ok,
			Timestamp:   timestamp(m.now()),
		})
	} else {
		m.reg.setPins(newPins)
		m.reg.EnablePin = newEnable
	}

	return true
}

// snapshotBusses copies each channel's live bus into both of its profiles,
// so a section written before any transition has sensible values for both states.
func (m *Manager) snapshotBusses() {
	active := m.reg.Active()
	for i := range active {
		cfg, ok := m.busses.Bus(active[i].Bus)
		if !ok {
			continue
		}
		p := profileOf(cfg)
		active[i].Profiles = [2]Profile{p, p}
	}
}

// releasePins cuts strip power and gives back every pin held for the given
// assignment. Polling stops until Initialize succeeds again.
func (m *Manager) releasePins(channelPins []int, enablePin int) {
	if m.enableClaimed {
		m.driveEnable(false)
	}
	if err := m.pins.DeallocateMultiple(channelPins, Owner); err != nil {
		m.logger.Warn("Failed to release channel pins", "pins", channelPins, "error", err)
	}
	if m.enableClaimed {
		if err := m.pins.Deallocate(enablePin, Owner); err != nil {
			m.logger.Warn("Failed to release enable pin", "pin", enablePin, "error", err)
		}
	}
	m.enableClaimed = false
	m.initDone = false
}

// warnSharedBusses logs every bus targeted by more than one enabled channel.
// Such channels overwrite each other's profiles on every switch.
func (m *Manager) warnSharedBusses() {
	seen := make(map[int]int)
	for i, ch := range m.reg.Active() {
		if !ch.Enabled() {
			continue
		}
		if prev, ok := seen[ch.Bus]; ok {
			m.logger.Warn("Multi-strip channels share a bus", "bus", ch.Bus, "channels", []int{prev, i})
			continue
		}
		seen[ch.Bus] = i
	}
}
