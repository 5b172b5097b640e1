// Package collectors feeds the metrics package from runtime sources.
package collectors

import (
	"log/slog"
	"sync"

	"github.com/smazurov/multistrip/internal/events"
	"github.com/smazurov/multistrip/internal/metrics"
)

// EventCollector turns domain events into metric updates.
type EventCollector struct {
	bus    *events.Bus
	logger *slog.Logger

	mu     sync.Mutex
	unsubs []func()
}

// NewEventCollector creates a collector for bus. Nothing is recorded until Start.
func NewEventCollector(bus *events.Bus, logger *slog.Logger) *EventCollector {
	return &EventCollector{bus: bus, logger: logger}
}

// Start subscribes to channel, bus and pin events.
func (c *EventCollector) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.unsubs != nil {
		return
	}

	c.unsubs = []func(){
		c.bus.Subscribe(func(e events.ChannelStateChangedEvent) {
			metrics.SetChannelState(e.Channel, e.State)
		}),
		c.bus.Subscribe(func(e events.BusReconfiguredEvent) {
			metrics.SetBus(e.Bus, e.Reason, e.StripType, e.Start, e.Length)
		}),
		c.bus.Subscribe(func(e events.PinsReassignedEvent) {
			metrics.AddPinReassignment(e.Initialized)
		}),
	}
	c.logger.Debug("Metrics event collector started")
}

// Stop unsubscribes from the event bus.
func (c *EventCollector) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, unsub := range c.unsubs {
		unsub()
	}
	c.unsubs = nil
}
