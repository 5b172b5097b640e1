// Package pins arbitrates exclusive ownership of GPIO lines between the
// subsystems of the controller.
package pins

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Owner tags every allocation with the subsystem that holds it.
type Owner string

var (
	// ErrPinInUse is returned when a pin is already held by any owner.
	ErrPinInUse = errors.New("pin already allocated")
	// ErrInvalidPin is returned for negative or out-of-range pin numbers.
	ErrInvalidPin = errors.New("invalid pin")
	// ErrNotOwner is returned when releasing a pin held by another owner.
	ErrNotOwner = errors.New("pin not owned by caller")
)

// Request names one pin of a batch allocation.
type Request struct {
	Pin  int
	Mode Mode
}

// Manager is the pin ownership gateway. It keeps an owner per allocated
// pin and claims lines on the driver on behalf of that owner.
type Manager struct {
	mu     sync.Mutex
	driver Driver
	owners map[int]Owner
	maxPin int
	logger *slog.Logger
}

// NewManager creates a gateway over driver. Pins above maxPin are rejected;
// maxPin <= 0 disables the upper bound.
func NewManager(driver Driver, maxPin int, logger *slog.Logger) *Manager {
	return &Manager{
		driver: driver,
		owners: make(map[int]Owner),
		maxPin: maxPin,
		logger: logger,
	}
}

func (m *Manager) validPin(pin int) bool {
	return pin >= 0 && (m.maxPin <= 0 || pin <= m.maxPin)
}

// AllocateMultiple claims every requested pin for owner or none of them.
func (m *Manager) AllocateMultiple(reqs []Request, owner Owner) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[int]bool, len(reqs))
	for _, r := range reqs {
		if !m.validPin(r.Pin) {
			return fmt.Errorf("allocate pin %d: %w", r.Pin, ErrInvalidPin)
		}
		if seen[r.Pin] {
			return fmt.Errorf("allocate pin %d twice in one batch: %w", r.Pin, ErrPinInUse)
		}
		seen[r.Pin] = true
		if holder, held := m.owners[r.Pin]; held {
			return fmt.Errorf("allocate pin %d (held by %s): %w", r.Pin, holder, ErrPinInUse)
		}
	}

	claimed := make([]int, 0, len(reqs))
	for _, r := range reqs {
		if err := m.driver.Claim(r.Pin, r.Mode); err != nil {
			for _, pin := range claimed {
				if relErr := m.driver.Release(pin); relErr != nil {
					m.logger.Warn("Failed to roll back pin claim", "pin", pin, "error", relErr)
				}
				delete(m.owners, pin)
			}
			return fmt.Errorf("claim pin %d: %w", r.Pin, err)
		}
		m.owners[r.Pin] = owner
		claimed = append(claimed, r.Pin)
	}

	m.logger.Debug("Pins allocated", "owner", owner, "pins", claimed)
	return nil
}

// Allocate claims a single pin for owner.
func (m *Manager) Allocate(pin int, mode Mode, owner Owner) error {
	return m.AllocateMultiple([]Request{{Pin: pin, Mode: mode}}, owner)
}

// DeallocateMultiple releases every listed pin held by owner. Negative pins
// are skipped; pins held by someone else are left alone and reported.
func (m *Manager) DeallocateMultiple(pins []int, owner Owner) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for _, pin := range pins {
		if pin < 0 {
			continue
		}
		holder, held := m.owners[pin]
		if !held {
			continue
		}
		if holder != owner {
			errs = append(errs, fmt.Errorf("release pin %d (held by %s): %w", pin, holder, ErrNotOwner))
			continue
		}
		if err := m.driver.Release(pin); err != nil {
			errs = append(errs, fmt.Errorf("release pin %d: %w", pin, err))
		}
		delete(m.owners, pin)
	}

	m.logger.Debug("Pins released", "owner", owner, "pins", pins)
	return errors.Join(errs...)
}

// Deallocate releases a single pin held by owner.
func (m *Manager) Deallocate(pin int, owner Owner) error {
	return m.DeallocateMultiple([]int{pin}, owner)
}

// OwnerOf returns the owner of pin and whether it is allocated.
func (m *Manager) OwnerOf(pin int) (Owner, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	owner, ok := m.owners[pin]
	return owner, ok
}

// Read samples an allocated line.
func (m *Manager) Read(pin int) (bool, error) {
	if _, ok := m.OwnerOf(pin); !ok {
		return false, fmt.Errorf("read pin %d: not allocated", pin)
	}
	return m.driver.Read(pin)
}

// Write drives an allocated output line.
func (m *Manager) Write(pin int, high bool) error {
	if _, ok := m.OwnerOf(pin); !ok {
		return fmt.Errorf("write pin %d: not allocated", pin)
	}
	return m.driver.Write(pin, high)
}

// Close releases all lines on the driver.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.owners = make(map[int]Owner)
	return m.driver.Close()
}
