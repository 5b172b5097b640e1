// Package led drives a board LED as a status indicator for the strip controller.
package led

// StatusLED is the LED type every board mapping provides for status display.
const StatusLED = "status"

// Controller abstracts LED hardware control across different SBC boards.
type Controller interface {
	// Set switches an LED on or off. A non-empty pattern ("solid", "blink",
	// "heartbeat" or a raw kernel trigger) also changes its trigger.
	Set(ledType string, enabled bool, pattern string) error

	// Available returns the LED types supported by this controller.
	Available() []string

	// Patterns returns the patterns supported by this controller.
	Patterns() []string
}
