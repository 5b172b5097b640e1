package led

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
)

const sysfsLEDPath = "/sys/class/leds"

// sysfs implements Controller using the Linux sysfs LED interface.
type sysfs struct {
	root string
	leds map[string]string // LED type -> sysfs name
}

func newSysfs(root string, leds map[string]string) *sysfs {
	return &sysfs{root: root, leds: leds}
}

// Set controls an LED's state and optional pattern.
func (s *sysfs) Set(ledType string, enabled bool, pattern string) error {
	name, ok := s.leds[ledType]
	if !ok {
		return fmt.Errorf("LED type %q not supported on this board", ledType)
	}

	ledPath := filepath.Join(s.root, name)
	if _, err := os.Stat(ledPath); err != nil {
		return fmt.Errorf("LED %q not found at %s: %w", ledType, ledPath, err)
	}

	if pattern != "" {
		trigger := pattern
		switch pattern {
		case "solid":
			// Manual control; brightness below keeps it lit.
			trigger = "none"
		case "blink":
			trigger = "timer"
		}
		if err := os.WriteFile(filepath.Join(ledPath, "trigger"), []byte(trigger), 0o644); err != nil {
			return fmt.Errorf("failed to set LED trigger: %w", err)
		}
	}

	brightness := "0"
	if enabled {
		brightness = "1"
	}
	if err := os.WriteFile(filepath.Join(ledPath, "brightness"), []byte(brightness), 0o644); err != nil {
		return fmt.Errorf("failed to set LED brightness: %w", err)
	}
	return nil
}

// Available returns the LED types supported by this controller, sorted.
func (s *sysfs) Available() []string {
	types := make([]string, 0, len(s.leds))
	for ledType := range s.leds {
		types = append(types, ledType)
	}
	slices.Sort(types)
	return types
}

// Patterns returns the patterns supported by this controller.
func (s *sysfs) Patterns() []string {
	return []string{"solid", "blink", "heartbeat"}
}
