package multistrip

import (
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/smazurov/multistrip/internal/busses"
	"github.com/smazurov/multistrip/internal/pins"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// recordingTable counts replacements on top of a real table.
type recordingTable struct {
	*busses.Table
	replaced []int
}

func (r *recordingTable) Replace(index int, cfg busses.Config) error {
	r.replaced = append(r.replaced, index)
	return r.Table.Replace(index, cfg)
}

func (r *recordingTable) count(index int) int {
	n := 0
	for _, i := range r.replaced {
		if i == index {
			n++
		}
	}
	return n
}

// fakePins records gateway calls and can be told to fail.
type fakePins struct {
	failBatch  bool
	failSingle bool

	batches   [][]pins.Request
	singles   []int
	released  []int
	batchRels [][]int
}

func (f *fakePins) AllocateMultiple(reqs []pins.Request, _ pins.Owner) error {
	f.batches = append(f.batches, reqs)
	if f.failBatch {
		return errors.New("batch refused")
	}
	return nil
}

func (f *fakePins) Allocate(pin int, _ pins.Mode, _ pins.Owner) error {
	f.singles = append(f.singles, pin)
	if f.failSingle {
		return errors.New("pin refused")
	}
	return nil
}

func (f *fakePins) DeallocateMultiple(p []int, _ pins.Owner) error {
	f.batchRels = append(f.batchRels, append([]int(nil), p...))
	return nil
}

func (f *fakePins) Deallocate(pin int, _ pins.Owner) error {
	f.released = append(f.released, pin)
	return nil
}

// fakeLines is a set of line levels with a read log.
type fakeLines struct {
	levels map[int]bool
	reads  []int
	writes map[int][]bool
}

func newFakeLines() *fakeLines {
	return &fakeLines{levels: make(map[int]bool), writes: make(map[int][]bool)}
}

func (f *fakeLines) Read(pin int) (bool, error) {
	f.reads = append(f.reads, pin)
	return f.levels[pin], nil
}

func (f *fakeLines) Write(pin int, high bool) error {
	f.writes[pin] = append(f.writes[pin], high)
	f.levels[pin] = high
	return nil
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

type harness struct {
	table *recordingTable
	pins  *fakePins
	lines *fakeLines
	clock *fakeClock
	mgr   *Manager
}

func newHarness(t *testing.T, channels int, cfgs ...busses.Config) *harness {
	t.Helper()

	table, err := busses.NewTable(newTestLogger(), cfgs...)
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	h := &harness{
		table: &recordingTable{Table: table},
		pins:  &fakePins{},
		lines: newFakeLines(),
		clock: &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	h.mgr = NewManager(Options{
		Busses:   h.table,
		Pins:     h.pins,
		Lines:    h.lines,
		Logger:   newTestLogger(),
		Channels: channels,
		Now:      h.clock.Now,
	})
	return h
}

// poll advances past the sample interval and polls once.
func (h *harness) poll() {
	h.clock.advance(h.mgr.sampleInterval + time.Millisecond)
	h.mgr.PeriodicPoll()
}

func bus(t busses.Type, order busses.ColorOrder, start, length uint16, pin int) busses.Config {
	return busses.Config{Type: t, ColorOrder: order, Start: start, Length: length, Pins: []int{pin}}
}

func u16(v uint16) *uint16 { return &v }

func boolp(v bool) *bool { return &v }
