package led

import "log/slog"

// noop implements Controller for systems without LED support.
type noop struct {
	logger *slog.Logger
}

func newNoop(logger *slog.Logger) *noop {
	return &noop{logger: logger}
}

// Set logs the request and does nothing else.
func (n *noop) Set(ledType string, enabled bool, pattern string) error {
	n.logger.Debug("LED control not available (no-op)",
		"led_type", ledType,
		"enabled", enabled,
		"pattern", pattern)
	return nil
}

func (n *noop) Available() []string {
	return []string{}
}

func (n *noop) Patterns() []string {
	return []string{}
}
