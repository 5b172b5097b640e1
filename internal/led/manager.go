package led

import (
	"log/slog"
	"sync"

	"github.com/smazurov/multistrip/internal/events"
)

// Manager shows the multi-strip state on the status LED: solid while the
// channel lines are held, blinking while they are not.
type Manager struct {
	controller  Controller
	eventBus    *events.Bus
	logger      *slog.Logger
	mu          sync.Mutex
	unsubscribe func()
	initialized bool
}

// NewManager creates a manager. Nothing is shown until Start.
func NewManager(controller Controller, eventBus *events.Bus, logger *slog.Logger) *Manager {
	return &Manager{
		controller: controller,
		eventBus:   eventBus,
		logger:     logger,
	}
}

// Start shows the given initialization state and follows pin reassignments.
func (m *Manager) Start(initialized bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unsubscribe != nil {
		return
	}

	m.initialized = initialized
	m.update()
	m.unsubscribe = m.eventBus.Subscribe(func(e events.PinsReassignedEvent) {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.initialized = e.Initialized
		m.update()
	})
	m.logger.Info("LED manager started", "initialized", initialized)
}

// Stop unsubscribes and switches the status LED off.
func (m *Manager) Stop() {
	m.mu.Lock()
	unsubscribe := m.unsubscribe
	m.unsubscribe = nil
	m.mu.Unlock()
	if unsubscribe == nil {
		return
	}
	// Outside mu: a handler still running needs it to finish.
	unsubscribe()

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.controller.Set(StatusLED, false, "none"); err != nil {
		m.logger.Warn("Failed to switch status LED off", "error", err)
	}
	m.logger.Info("LED manager stopped")
}

// update sets the LED pattern. Caller holds mu.
func (m *Manager) update() {
	pattern := "blink"
	if m.initialized {
		pattern = "solid"
	}
	if err := m.controller.Set(StatusLED, true, pattern); err != nil {
		m.logger.Warn("Failed to set status LED", "pattern", pattern, "error", err)
		return
	}
	m.logger.Debug("Status LED updated", "pattern", pattern)
}

// GetController returns the underlying LED controller.
func (m *Manager) GetController() Controller {
	return m.controller
}
