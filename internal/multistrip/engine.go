package multistrip

import (
	"github.com/smazurov/multistrip/internal/busses"
	"github.com/smazurov/multistrip/internal/events"
)

// switchChannel records the bus's live parameters into the profile for the
// state being left, then rebuilds the bus for the entering state.
//
// The capture makes both profiles follow whatever was last running on the
// bus rather than stay at their configured values. Whether that is wanted
// is still open with product; see DESIGN.md.
func (m *Manager) switchChannel(ch int, state bool) {
	c := &m.reg.Channels[ch]
	cur, ok := m.busses.Bus(c.Bus)
	if !ok {
		m.missingBus(ch, c.Bus)
		return
	}
	if m.initDone {
		c.setProfile(!state, profileOf(cur))
	}
	m.apply(ch, state, cur, events.ReasonChannel)
}

// construct rebuilds a channel's bus for state without capturing the live
// parameters first. Used on initialization.
func (m *Manager) construct(ch int, state bool, reason string) {
	c := &m.reg.Channels[ch]
	cur, ok := m.busses.Bus(c.Bus)
	if !ok {
		m.missingBus(ch, c.Bus)
		return
	}
	m.apply(ch, state, cur, reason)
}

func (m *Manager) apply(ch int, state bool, cur busses.Config, reason string) {
	c := &m.reg.Channels[ch]
	p := c.Profile(state)

	length := p.Length
	if length == 0 {
		length = cur.Length
	}
	next := busses.Config{
		Type:       p.Type,
		Pins:       cur.Pins,
		Start:      cur.Start,
		Length:     length,
		ColorOrder: p.ColorOrder,
		Reversed:   cur.Reversed,
		Skip:       cur.Skip,
	}

	if err := m.busses.Replace(c.Bus, next); err != nil {
		m.fail(newError(ReplaceFailure, ch, c.Bus, err))
		m.logger.Warn("Failed to replace bus", "channel", ch, "bus", c.Bus, "error", err)
		return
	}

	m.logger.Debug("Bus reconfigured",
		"channel", ch,
		"bus", c.Bus,
		"state", state,
		"type", next.Type.String(),
		"color_order", next.ColorOrder.String(),
		"length", next.Length)
	m.publishBus(c.Bus, next, reason)

	m.shiftDownstream(c.Bus, next.Start, next.Length)
}

func (m *Manager) missingBus(ch, bus int) {
	m.fail(newError(MissingBus, ch, bus, busses.ErrNoBus))
	m.logger.Debug("Channel bus does not exist, skipping", "channel", ch, "bus", bus)
}

func (m *Manager) publishBus(index int, cfg busses.Config, reason string) {
	m.events.Publish(events.BusReconfiguredEvent{
		Bus:        index,
		Reason:     reason,
		StripType:  uint8(cfg.Type),
		ColorOrder: uint8(cfg.ColorOrder),
		Start:      cfg.Start,
		Length:     cfg.Length,
		Timestamp:  timestamp(m.now()),
	})
}
