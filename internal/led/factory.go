package led

import (
	"log/slog"
	"os"
	"strings"
)

const deviceTreeModelPath = "/proc/device-tree/model"

// New creates a controller for the detected board, or a no-op controller
// when the board has no known LEDs.
func New(logger *slog.Logger) Controller {
	return forModel(detectBoard(), sysfsLEDPath, logger)
}

func forModel(model, root string, logger *slog.Logger) Controller {
	logger.Info("Detecting board for status LED", "board_model", model)

	switch {
	case strings.Contains(model, "NanoPC-T6"):
		return newSysfs(root, map[string]string{
			StatusLED: "sys_led",
			"user":    "usr_led",
		})
	case strings.Contains(model, "Orange Pi"):
		return newSysfs(root, map[string]string{
			StatusLED: "green_led",
			"blue":    "blue_led",
		})
	case strings.Contains(model, "Raspberry Pi"):
		return newSysfs(root, map[string]string{
			StatusLED: "ACT",
		})
	default:
		logger.Info("No LED support detected, using no-op controller", "board_model", model)
		return newNoop(logger)
	}
}

// detectBoard reads the device tree model to identify the board.
func detectBoard() string {
	data, err := os.ReadFile(deviceTreeModelPath)
	if err != nil {
		return "unknown"
	}
	// Device tree strings are NUL terminated.
	return strings.TrimRight(string(data), "\x00")
}
