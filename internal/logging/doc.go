// Package logging provides structured logging with per-module log levels.
//
// # Overview
//
// Records go through log/slog to every output that is available:
//   - the systemd journal, when journald is reachable
//   - stdout, when a terminal, pipe or file is attached
//   - an in-memory ring buffer, always, served by GET /api/logs and
//     forwarded to SSE clients through SetLogCallback
//
// # Usage
//
// Initialize once at startup, then fetch a logger per module:
//
//	logging.Initialize(logging.Config{
//		Level:  "info",
//		Format: "text",
//		Modules: map[string]string{
//			"multistrip": "debug",
//			"api":        "warn",
//		},
//	})
//
//	logger := logging.GetLogger("multistrip")
//	logger.Info("Channel state changed", "channel", 0, "bus", 0, "state", true)
//
// Loggers fetched before Initialize keep text output but follow the
// configured levels. SetLevel changes one module at runtime.
//
// # Modules
//
//	multistrip  channel sampling, bus switching, persistence
//	pins        GPIO line ownership
//	busses      bus table replacement
//	controller  tick loop, reloads, saves
//	config      option loading and file watching
//	api         HTTP handlers
//	http        request logging
//	led         status LED
//	metrics     event collector
//	main        startup and shutdown
//
// # Viewing Logs
//
//	journalctl -t multistrip -f
//	journalctl -t multistrip MODULE=multistrip CHANNEL=1
//	journalctl -t multistrip -p warning
//
// # Configuration
//
//	[logging]
//	level = "info"
//	format = "text"
//	multistrip = "debug"
//	pins = "warn"
package logging
