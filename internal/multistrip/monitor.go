package multistrip

import "github.com/smazurov/multistrip/internal/events"

// PeriodicPoll samples every channel line once the sample interval has
// elapsed and switches the bus of each channel whose level changed.
// It is a no-op while disabled or before initialization has succeeded.
func (m *Manager) PeriodicPoll() {
	if !m.enabled || !m.initDone {
		return
	}
	now := m.now()
	if now.Sub(m.lastSample) <= m.sampleInterval {
		return
	}
	m.lastSample = now

	for i := range m.reg.Active() {
		c := &m.reg.Channels[i]
		if !c.Enabled() {
			continue
		}

		state, err := m.lines.Read(c.Pin)
		if err != nil {
			m.logger.Debug("Failed to read channel pin", "channel", i, "pin", c.Pin, "error", err)
			continue
		}
		if activeLow {
			state = !state
		}
		if state == c.KnownState {
			continue
		}

		m.logger.Info("Channel state changed", "channel", i, "bus", c.Bus, "pin", c.Pin, "state", state)

		m.switchChannel(i, state)
		// Recorded even if the switch failed, so a missing bus is not retried every cycle.
		c.KnownState = state

		m.events.Publish(events.ChannelStateChangedEvent{
			Channel:   i,
			Bus:       c.Bus,
			Pin:       c.Pin,
			State:     state,
			Timestamp: timestamp(now),
		})
	}
}

// LineLevel returns the electrical level a channel line must have to read as state.
func LineLevel(state bool) bool {
	return state != activeLow
}
