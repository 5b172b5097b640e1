package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"
)

type testConfig struct {
	Name  string `toml:"name"`
	Value int    `toml:"value"`
}

func loadTestConfig(path string) (testConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return testConfig{}, err
	}
	var cfg testConfig
	err = toml.Unmarshal(data, &cfg)
	return cfg, err
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// startWatcher writes initial to a temp file and starts a watcher on it.
func startWatcher(t *testing.T, initial string, opts ...WatcherOption[testConfig]) (*Watcher[testConfig], string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "strips.toml")
	if initial != "" {
		if err := os.WriteFile(path, []byte(initial), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	opts = append([]WatcherOption[testConfig]{WithDebounce[testConfig](50 * time.Millisecond)}, opts...)
	w := NewConfigWatcher(path, loadTestConfig, newTestLogger(), opts...)
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := w.Stop(); err != nil {
			t.Errorf("watcher.Stop failed: %v", err)
		}
	})

	// Let the watcher settle.
	time.Sleep(100 * time.Millisecond)
	return w, path
}

func write(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func waitConfig(t *testing.T, ch <-chan testConfig) testConfig {
	t.Helper()
	select {
	case cfg := <-ch:
		return cfg
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for config reload")
		return testConfig{}
	}
}

func TestConfigWatcher_BasicReload(t *testing.T) {
	received := make(chan testConfig, 1)
	w, path := startWatcher(t, "name = \"initial\"\nvalue = 1\n")
	w.OnReload(func(cfg testConfig) { received <- cfg })

	write(t, path, "name = \"updated\"\nvalue = 42\n")

	cfg := waitConfig(t, received)
	if cfg.Name != "updated" || cfg.Value != 42 {
		t.Errorf("got %+v, want name=updated, value=42", cfg)
	}
}

func TestConfigWatcher_AtomicReplace(t *testing.T) {
	received := make(chan testConfig, 1)
	w, path := startWatcher(t, "value = 1\n")
	w.OnReload(func(cfg testConfig) { received <- cfg })

	tmp := filepath.Join(filepath.Dir(path), ".strips.toml.tmp")
	write(t, tmp, "value = 7\n")
	if err := os.Rename(tmp, path); err != nil {
		t.Fatal(err)
	}

	if cfg := waitConfig(t, received); cfg.Value != 7 {
		t.Errorf("got value %d, want 7", cfg.Value)
	}
}

func TestConfigWatcher_FileCreatedLater(t *testing.T) {
	received := make(chan testConfig, 1)
	w, path := startWatcher(t, "")
	w.OnReload(func(cfg testConfig) { received <- cfg })

	write(t, path, "value = 3\n")

	if cfg := waitConfig(t, received); cfg.Value != 3 {
		t.Errorf("got value %d, want 3", cfg.Value)
	}
}

func TestConfigWatcher_IgnoresSiblings(t *testing.T) {
	var count atomic.Int32
	w, path := startWatcher(t, "value = 1\n")
	w.OnReload(func(testConfig) { count.Add(1) })

	write(t, filepath.Join(filepath.Dir(path), "other.toml"), "value = 2\n")
	time.Sleep(200 * time.Millisecond)

	if got := count.Load(); got != 0 {
		t.Errorf("expected no reload for a sibling file, got %d", got)
	}
}

func TestConfigWatcher_MultipleHandlers(t *testing.T) {
	var mu sync.Mutex
	var configs []testConfig
	w, path := startWatcher(t, "name = \"test\"\nvalue = 1\n")
	for range 3 {
		w.OnReload(func(cfg testConfig) {
			mu.Lock()
			configs = append(configs, cfg)
			mu.Unlock()
		})
	}

	write(t, path, "name = \"new\"\nvalue = 2\n")
	time.Sleep(300 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(configs) != 3 {
		t.Fatalf("expected 3 handlers called, got %d", len(configs))
	}
	for i, cfg := range configs {
		if cfg.Name != "new" || cfg.Value != 2 {
			t.Errorf("handler %d got wrong config: %+v", i, cfg)
		}
	}
}

func TestConfigWatcher_Unsubscribe(t *testing.T) {
	var count1, count2 atomic.Int32
	w, path := startWatcher(t, "value = 1\n")
	w.OnReload(func(testConfig) { count1.Add(1) })
	unsub := w.OnReload(func(testConfig) { count2.Add(1) })

	write(t, path, "value = 10\n")
	time.Sleep(300 * time.Millisecond)
	unsub()
	unsub()

	write(t, path, "value = 20\n")
	time.Sleep(300 * time.Millisecond)

	if got := count1.Load(); got != 2 {
		t.Errorf("handler1: expected 2 calls, got %d", got)
	}
	if got := count2.Load(); got != 1 {
		t.Errorf("handler2: expected 1 call, got %d", got)
	}
}

func TestConfigWatcher_ErrorHandler(t *testing.T) {
	errs := make(chan error, 1)
	received := make(chan testConfig, 1)
	w, path := startWatcher(t, "value = 1\n", WithErrorHandler[testConfig](func(err error) { errs <- err }))
	w.OnReload(func(cfg testConfig) { received <- cfg })

	write(t, path, "invalid toml [[[")

	select {
	case <-errs:
	case <-received:
		t.Fatal("config handler should not be called on error")
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for error handler")
	}
}

func TestConfigWatcher_Debounce(t *testing.T) {
	var count, last atomic.Int32
	w, path := startWatcher(t, "value = 0\n", WithDebounce[testConfig](200*time.Millisecond))
	w.OnReload(func(cfg testConfig) {
		count.Add(1)
		last.Store(int32(cfg.Value))
	})

	for i := 1; i <= 5; i++ {
		write(t, path, fmt.Sprintf("value = %d\n", i))
		time.Sleep(50 * time.Millisecond)
	}
	time.Sleep(500 * time.Millisecond)

	if got := count.Load(); got != 1 {
		t.Errorf("expected 1 debounced call, got %d", got)
	}
	if got := last.Load(); got != 5 {
		t.Errorf("expected final value 5, got %d", got)
	}
}

func TestConfigWatcher_ConcurrentSubscribe(t *testing.T) {
	w, path := startWatcher(t, "name = \"test\"\n", WithDebounce[testConfig](10*time.Millisecond))

	var wg sync.WaitGroup
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unsub := w.OnReload(func(testConfig) {})
			time.Sleep(time.Millisecond)
			unsub()
		}()
	}

	for i := range 10 {
		write(t, path, fmt.Sprintf("value = %d\n", i))
		time.Sleep(20 * time.Millisecond)
	}
	wg.Wait()
}

func TestConfigWatcher_Stop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "strips.toml")
	write(t, path, "value = 1\n")

	var count atomic.Int32
	w := NewConfigWatcher(path, loadTestConfig, newTestLogger(), WithDebounce[testConfig](50*time.Millisecond))
	w.OnReload(func(testConfig) { count.Add(1) })
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	time.Sleep(100 * time.Millisecond)

	if err := w.Stop(); err != nil {
		t.Fatal(err)
	}

	write(t, path, "value = 99\n")
	time.Sleep(200 * time.Millisecond)

	if got := count.Load(); got != 0 {
		t.Errorf("expected 0 calls after stop, got %d", got)
	}
}

func TestConfigWatcher_StopBeforeStart(t *testing.T) {
	w := NewConfigWatcher(filepath.Join(t.TempDir(), "x.toml"), loadTestConfig, newTestLogger())
	if err := w.Stop(); err != nil {
		t.Errorf("Stop before Start = %v, want nil", err)
	}
}
