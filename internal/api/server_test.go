package api

import (
	"bufio"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/smazurov/multistrip/internal/api/models"
	"github.com/smazurov/multistrip/internal/busses"
	"github.com/smazurov/multistrip/internal/events"
	"github.com/smazurov/multistrip/internal/logging"
	"github.com/smazurov/multistrip/internal/multistrip"
)

type mockController struct {
	status  multistrip.Status
	busses  []busses.Config
	saveErr error
	saves   int
}

func (m *mockController) Status() multistrip.Status { return m.status }
func (m *mockController) Busses() []busses.Config   { return m.busses }
func (m *mockController) Save() error {
	m.saves++
	return m.saveErr
}

func newMockController() *mockController {
	reg := multistrip.NewRegistry(2)
	reg.Channels[0].KnownState = true
	reg.Channels[0].Profiles[1].Length = 40
	return &mockController{
		status: multistrip.Status{
			Enabled:        true,
			Initialized:    true,
			SampleInterval: 250 * time.Millisecond,
			EnablePin:      4,
			EnableClaimed:  true,
			Channels:       reg.Active(),
		},
		busses: []busses.Config{
			{Type: busses.TypeSK6812RGBW, Pins: []int{16}, Start: 0, Length: 40},
			{Type: busses.TypeWS2812RGB, Pins: []int{17}, Start: 40, Length: 10, ColorOrder: busses.OrderBRG},
		},
	}
}

func newTestServer(t *testing.T, ctl *mockController, bus *events.Bus) *Server {
	t.Helper()
	return NewServer(&Options{
		AuthUsername: "admin",
		AuthPassword: "secret",
		Controller:   ctl,
		EventBus:     bus,
		PrometheusHandler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("multistrip_initialized 1\n"))
		}),
	})
}

func do(t *testing.T, s *Server, method, path, body string, auth bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth {
		req.SetBasicAuth("admin", "secret")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestHealthWithoutAuth(t *testing.T) {
	s := newTestServer(t, newMockController(), events.New())
	rec := do(t, s, http.MethodGet, "/api/health", "", false)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := decode[models.HealthData](t, rec); got.Status != "ok" {
		t.Errorf("health = %+v", got)
	}
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t, newMockController(), events.New())

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Bearer abc", http.StatusUnauthorized},
		{"bad base64", "Basic !!!", http.StatusUnauthorized},
		{"wrong password", "Basic " + base64.StdEncoding.EncodeToString([]byte("admin:nope")), http.StatusUnauthorized},
		{"valid", "Basic " + base64.StdEncoding.EncodeToString([]byte("admin:secret")), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/busses", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
			if tt.want == http.StatusUnauthorized && rec.Header().Get("WWW-Authenticate") == "" {
				t.Error("missing WWW-Authenticate header")
			}
		})
	}
}

func TestListBusses(t *testing.T) {
	ctl := newMockController()
	s := newTestServer(t, ctl, events.New())

	rec := do(t, s, http.MethodGet, "/api/busses", "", true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	got := decode[models.BusListData](t, rec)
	if got.Count != 2 || !got.Contiguous {
		t.Fatalf("unexpected list: %+v", got)
	}
	b := got.Busses[1]
	if b.Index != 1 || b.Start != 40 || b.TypeName != "ws2812_rgb" || b.OrderName != "BRG" {
		t.Errorf("bus 1 = %+v", b)
	}

	ctl.busses[1].Start = 45
	got = decode[models.BusListData](t, do(t, s, http.MethodGet, "/api/busses", "", true))
	if got.Contiguous || got.Gap != 1 {
		t.Errorf("gap not reported: %+v", got)
	}
}

func TestListChannels(t *testing.T) {
	s := newTestServer(t, newMockController(), events.New())

	rec := do(t, s, http.MethodGet, "/api/channels", "", true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	got := decode[models.ChannelListData](t, rec)
	if !got.Initialized || got.SampleIntervalMs != 250 || got.EnablePin != 4 || !got.EnableClaimed {
		t.Errorf("unexpected status: %+v", got)
	}
	if len(got.Channels) != 2 {
		t.Fatalf("channels = %d, want 2", len(got.Channels))
	}
	ch := got.Channels[0]
	if ch.Pin != 15 || ch.Bus != 0 || !ch.State || !ch.Enabled {
		t.Errorf("channel 0 = %+v", ch)
	}
	if ch.Low.TypeName != "sk6812_rgbw" || ch.High.TypeName != "ws2812_rgb" || ch.High.Length != 40 {
		t.Errorf("channel 0 profiles = %+v / %+v", ch.Low, ch.High)
	}
}

func TestSaveConfig(t *testing.T) {
	ctl := newMockController()
	s := newTestServer(t, ctl, events.New())

	if rec := do(t, s, http.MethodPost, "/api/config/save", "", true); rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if ctl.saves != 1 {
		t.Errorf("saves = %d, want 1", ctl.saves)
	}

	ctl.saveErr = errors.New("read-only file system")
	if rec := do(t, s, http.MethodPost, "/api/config/save", "", true); rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestMetricsWithoutAuth(t *testing.T) {
	s := newTestServer(t, newMockController(), events.New())
	rec := do(t, s, http.MethodGet, "/metrics", "", false)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "multistrip_initialized") {
		t.Errorf("metrics: %d %q", rec.Code, rec.Body.String())
	}
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, newMockController(), events.New())
	rec := do(t, s, http.MethodOptions, "/api/busses", "", false)
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS header")
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); got != "GET, OPTIONS, POST, PUT" {
		t.Errorf("allowed methods = %q, want the registered ones", got)
	}
}

func TestCORSOnResponses(t *testing.T) {
	s := newTestServer(t, newMockController(), events.New())
	rec := do(t, s, http.MethodGet, "/api/health", "", false)
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS header on API response")
	}
	if rec.Header().Get("Access-Control-Allow-Methods") == "" {
		t.Error("missing allowed methods on API response")
	}
}

func TestRequestLevel(t *testing.T) {
	tests := []struct {
		method string
		status int
		want   slog.Level
	}{
		{http.MethodGet, http.StatusOK, slog.LevelDebug},
		{http.MethodPost, http.StatusOK, slog.LevelInfo},
		{http.MethodPut, http.StatusOK, slog.LevelInfo},
		{http.MethodGet, http.StatusUnauthorized, slog.LevelWarn},
		{http.MethodPut, http.StatusUnprocessableEntity, slog.LevelWarn},
		{http.MethodPost, http.StatusInternalServerError, slog.LevelError},
	}
	for _, tt := range tests {
		if got := requestLevel(tt.method, tt.status); got != tt.want {
			t.Errorf("requestLevel(%s, %d) = %v, want %v", tt.method, tt.status, got, tt.want)
		}
	}
}

func TestSaveIsLogged(t *testing.T) {
	logging.Initialize(logging.Config{Level: "info", BufferSize: 50})
	s := newTestServer(t, newMockController(), events.New())

	do(t, s, http.MethodGet, "/api/busses", "", true)
	do(t, s, http.MethodPost, "/api/config/save", "", true)

	got := decode[models.LogsData](t, do(t, s, http.MethodGet, "/api/logs?module=http", "", true))
	if got.Count != 1 {
		t.Fatalf("http entries = %+v, want only the save", got.Entries)
	}
	if got.Entries[0].Attributes["operation"] != "save-config" {
		t.Errorf("entry = %+v, want operation save-config", got.Entries[0])
	}
}

func TestLogs(t *testing.T) {
	logging.Initialize(logging.Config{Level: "debug", BufferSize: 50})
	logging.GetLogger("multistrip").Info("Channel state changed", "channel", 0)
	logging.GetLogger("multistrip").Info("Bus reconfigured", "bus", 1)
	logging.GetLogger("pins").Info("Pin allocated", "pin", 15)

	s := newTestServer(t, newMockController(), events.New())

	got := decode[models.LogsData](t, do(t, s, http.MethodGet, "/api/logs?module=multistrip&limit=1", "", true))
	if got.Count != 1 || got.Entries[0].Message != "Bus reconfigured" {
		t.Errorf("filtered logs = %+v", got)
	}

	got = decode[models.LogsData](t, do(t, s, http.MethodGet, "/api/logs?module=nothing", "", true))
	if got.Count != 0 || got.Entries == nil {
		t.Errorf("empty result should be an empty list: %+v", got)
	}
}

func TestSetLogLevel(t *testing.T) {
	logging.Initialize(logging.Config{Level: "info"})
	s := newTestServer(t, newMockController(), events.New())

	rec := do(t, s, http.MethodPut, "/api/logs/busses/level", `{"level":"debug"}`, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if got := decode[models.LogLevelData](t, rec); got.Module != "busses" || got.Level != "debug" {
		t.Errorf("response = %+v", got)
	}

	rec = do(t, s, http.MethodPut, "/api/logs/busses/level", `{"level":"loud"}`, true)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}

func TestEventsStream(t *testing.T) {
	bus := events.New()
	s := newTestServer(t, newMockController(), bus)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	creds := base64.StdEncoding.EncodeToString([]byte("admin:secret"))
	lines := make(chan string, 10)
	errs := make(chan error, 1)
	go func() {
		resp, err := http.Get(ts.URL + "/api/events?auth=" + creds)
		if err != nil {
			errs <- err
			return
		}
		defer resp.Body.Close()
		if !strings.Contains(resp.Header.Get("Content-Type"), "text/event-stream") {
			errs <- errors.New("content type " + resp.Header.Get("Content-Type"))
			return
		}
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	// The handler subscribes after the request arrives; keep publishing until a
	// frame comes through.
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
	timeout := time.After(3 * time.Second)
	for {
		select {
		case err := <-errs:
			t.Fatal(err)
		case <-ticker.C:
			bus.Publish(events.ChannelStateChangedEvent{Channel: 1, Bus: 1, Pin: 12, State: true})
		case line := <-lines:
			if line == "event: channel-state-changed" {
				return
			}
		case <-timeout:
			t.Fatal("no channel-state-changed frame received")
		}
	}
}
