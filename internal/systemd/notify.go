// Package systemd reports service state to systemd through sd_notify.
package systemd

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
)

// Notifier sends readiness, status and watchdog messages to the service
// manager. Every call is a no-op when the process was not started by systemd.
type Notifier struct {
	logger *slog.Logger
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewNotifier creates a notifier.
func NewNotifier(logger *slog.Logger) *Notifier {
	return &Notifier{logger: logger}
}

func (n *Notifier) send(state string) bool {
	sent, err := daemon.SdNotify(false, state)
	if err != nil {
		n.logger.Debug("sd_notify failed", "state", state, "error", err)
	}
	return sent
}

// Ready reports that startup finished and starts the watchdog keepalive if
// the unit has WatchdogSec set.
func (n *Notifier) Ready(ctx context.Context) {
	if n.send(daemon.SdNotifyReady) {
		n.logger.Info("Notified systemd of readiness")
	}

	interval, err := daemon.SdWatchdogEnabled(false)
	if err != nil || interval <= 0 {
		return
	}
	ctx, n.cancel = context.WithCancel(ctx)
	n.wg.Add(1)
	go n.watchdog(ctx, interval/2)
	n.logger.Info("Systemd watchdog enabled", "interval", interval)
}

func (n *Notifier) watchdog(ctx context.Context, every time.Duration) {
	defer n.wg.Done()
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n.send(daemon.SdNotifyWatchdog)
		}
	}
}

// Status sets the free-form status line shown by systemctl status.
func (n *Notifier) Status(msg string) {
	n.send("STATUS=" + msg)
}

// Stopping reports that shutdown began and stops the watchdog keepalive.
func (n *Notifier) Stopping() {
	if n.cancel != nil {
		n.cancel()
		n.wg.Wait()
		n.cancel = nil
	}
	n.send(daemon.SdNotifyStopping)
}
