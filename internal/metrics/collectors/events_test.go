package collectors

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/smazurov/multistrip/internal/events"
	"github.com/smazurov/multistrip/internal/metrics/exporters"
)

func scrape(t *testing.T) string {
	t.Helper()
	w := httptest.NewRecorder()
	exporters.HTTPHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	return w.Body.String()
}

func waitFor(t *testing.T, want string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if strings.Contains(scrape(t), want) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("metric %q not exported", want)
}

func TestEventCollector(t *testing.T) {
	bus := events.New()
	c := NewEventCollector(bus, slog.New(slog.NewTextHandler(io.Discard, nil)))
	c.Start()
	c.Start()
	defer c.Stop()

	bus.Publish(events.ChannelStateChangedEvent{Channel: 42, State: true})
	waitFor(t, `multistrip_channel_state{channel="42"} 1`)

	bus.Publish(events.BusReconfiguredEvent{Bus: 41, Reason: events.ReasonShift, StripType: 22, Start: 40, Length: 10})
	waitFor(t, `multistrip_bus_start{bus="41"} 40`)
	waitFor(t, `multistrip_bus_replacements_total{bus="41",reason="shift"} 1`)
}

func TestEventCollectorStop(t *testing.T) {
	bus := events.New()
	c := NewEventCollector(bus, slog.New(slog.NewTextHandler(io.Discard, nil)))
	c.Start()
	c.Stop()
	c.Stop()

	bus.Publish(events.ChannelStateChangedEvent{Channel: 43, State: true})
	time.Sleep(50 * time.Millisecond)

	if strings.Contains(scrape(t), `channel="43"`) {
		t.Error("event recorded after Stop")
	}
}
