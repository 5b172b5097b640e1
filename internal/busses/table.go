// Package busses holds the ordered table of logical LED output buses that
// share one physical pixel data stream.
package busses

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"sync"
)

// MaxPins is the largest number of physical pins a single bus may use.
const MaxPins = 5

var (
	// ErrNoBus is returned when an index does not address an existing bus.
	ErrNoBus = errors.New("no bus at index")
	// ErrInvalidConfig is returned when a bus configuration fails validation.
	ErrInvalidConfig = errors.New("invalid bus configuration")
)

// Config describes one bus. It is a value type; the table never hands out
// references to its own entries.
type Config struct {
	Type       Type       `toml:"type" json:"type"`
	Pins       []int      `toml:"pins" json:"pins"`
	Start      uint16     `toml:"start" json:"start"`
	Length     uint16     `toml:"length" json:"length"`
	ColorOrder ColorOrder `toml:"color_order" json:"color_order"`
	Reversed   bool       `toml:"reversed" json:"reversed"`
	Skip       uint8      `toml:"skip" json:"skip"`
}

// End returns the first pixel offset after this bus.
func (c Config) End() int {
	return int(c.Start) + int(c.Length)
}

// Validate checks the configuration is usable by a driver.
func (c Config) Validate() error {
	if len(c.Pins) == 0 || len(c.Pins) > MaxPins {
		return fmt.Errorf("%w: %d pins, want 1..%d", ErrInvalidConfig, len(c.Pins), MaxPins)
	}
	for _, p := range c.Pins {
		if p < 0 {
			return fmt.Errorf("%w: negative pin %d", ErrInvalidConfig, p)
		}
	}
	if c.Type.TwoWire() && len(c.Pins) < 2 {
		return fmt.Errorf("%w: %s needs data and clock pins", ErrInvalidConfig, c.Type)
	}
	if c.Length == 0 {
		return fmt.Errorf("%w: zero length", ErrInvalidConfig)
	}
	if int(c.Skip) >= int(c.Length) {
		return fmt.Errorf("%w: skip %d not below length %d", ErrInvalidConfig, c.Skip, c.Length)
	}
	if c.End() > math.MaxUint16 {
		return fmt.Errorf("%w: ends at %d, past pixel %d", ErrInvalidConfig, c.End(), math.MaxUint16)
	}
	return nil
}

func (c Config) clone() Config {
	c.Pins = slices.Clone(c.Pins)
	return c
}

// Table is an ordered sequence of buses supporting lookup and atomic
// replacement by index. Readers always observe a whole configuration.
type Table struct {
	mu     sync.RWMutex
	busses []Config
	logger *slog.Logger
}

// NewTable creates a table from the given configurations in order.
func NewTable(logger *slog.Logger, cfgs ...Config) (*Table, error) {
	t := &Table{
		busses: make([]Config, 0, len(cfgs)),
		logger: logger,
	}
	for i, cfg := range cfgs {
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("bus %d: %w", i, err)
		}
		t.busses = append(t.busses, cfg.clone())
	}
	return t, nil
}

// Bus returns a copy of the bus at index, or false if none exists.
func (t *Table) Bus(index int) (Config, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if index < 0 || index >= len(t.busses) {
		return Config{}, false
	}
	return t.busses[index].clone(), true
}

// Replace swaps the bus at index for cfg in one step.
func (t *Table) Replace(index int, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("replace bus %d: %w", index, err)
	}

	t.mu.Lock()
	if index < 0 || index >= len(t.busses) {
		t.mu.Unlock()
		return fmt.Errorf("replace bus %d: %w", index, ErrNoBus)
	}
	old := t.busses[index]
	t.busses[index] = cfg.clone()
	t.mu.Unlock()

	if t.logger != nil {
		t.logger.Debug("Bus replaced",
			"bus", index,
			"type", cfg.Type.String(),
			"color_order", cfg.ColorOrder.String(),
			"start", cfg.Start,
			"length", cfg.Length,
			"old_type", old.Type.String(),
			"old_length", old.Length)
	}
	return nil
}

// Len returns the number of buses.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.busses)
}

// Snapshot returns copies of all buses in order.
func (t *Table) Snapshot() []Config {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Config, len(t.busses))
	for i, b := range t.busses {
		out[i] = b.clone()
	}
	return out
}

// TotalLength is the pixel count of the whole chain.
func (t *Table) TotalLength() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	total := 0
	for _, b := range t.busses {
		total += int(b.Length)
	}
	return total
}

// CheckContiguity verifies every bus starts where the previous one ends.
func (t *Table) CheckContiguity() (int, bool) {
	return CheckContiguity(t.Snapshot())
}

// CheckContiguity returns the first index whose start does not equal the
// previous bus's start plus length. The bool is true when none violates it.
func CheckContiguity(cfgs []Config) (int, bool) {
	for i := 1; i < len(cfgs); i++ {
		if int(cfgs[i].Start) != cfgs[i-1].End() {
			return i, false
		}
	}
	return -1, true
}
