package store

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/smazurov/multistrip/internal/busses"
	"github.com/smazurov/multistrip/internal/multistrip"
)

func setupTestFile(t *testing.T) (*File, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "nested", "strips.toml")
	return New(path), path
}

func TestNew(t *testing.T) {
	f := New("")
	if f.Path() != DefaultPath {
		t.Errorf("expected default path %q, got %q", DefaultPath, f.Path())
	}
	if f.Document().Version != 1 {
		t.Errorf("expected version 1, got %d", f.Document().Version)
	}
	if f.Section() != nil {
		t.Error("new store should have no section")
	}
}

func TestLoadNonExistentFile(t *testing.T) {
	f, _ := setupTestFile(t)

	if err := f.Load(); err != nil {
		t.Errorf("Load should not error on non-existent file, got: %v", err)
	}
	if len(f.Busses()) != 0 {
		t.Errorf("expected no busses, got %d", len(f.Busses()))
	}
}

func TestSaveAndLoad(t *testing.T) {
	f, path := setupTestFile(t)

	enabled := true
	interval := uint16(100)
	f.SetBusses([]busses.Config{
		{Type: busses.TypeWS2812RGB, Pins: []int{16}, Start: 0, Length: 30, ColorOrder: busses.OrderBRG},
		{Type: busses.TypeAPA102, Pins: []int{18, 19}, Start: 30, Length: 10, Reversed: true, Skip: 1},
	})
	f.SetSection(&multistrip.Section{
		Enabled:          &enabled,
		SampleIntervalMs: &interval,
		Type:             []int{30, 22},
		Color:            []int{0, 2},
		Length:           []uint16{30, 40},
		Pin:              []int{15, -1},
		Map:              []int{0},
		State:            []bool{true},
	})

	if err := f.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("strips file not created: %v", err)
	}

	loaded, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	got := loaded.Busses()
	if len(got) != 2 {
		t.Fatalf("expected 2 busses, got %d", len(got))
	}
	if got[1].Type != busses.TypeAPA102 || !slices.Equal(got[1].Pins, []int{18, 19}) || !got[1].Reversed || got[1].Skip != 1 {
		t.Errorf("bus 1 mismatch: %+v", got[1])
	}

	s := loaded.Section()
	if s == nil {
		t.Fatal("section lost")
	}
	if s.Enabled == nil || !*s.Enabled {
		t.Error("enabled lost")
	}
	if s.SampleIntervalMs == nil || *s.SampleIntervalMs != 100 {
		t.Errorf("sampleIntervalMs = %v, want 100", s.SampleIntervalMs)
	}
	if !slices.Equal(s.Pin, []int{15, -1}) {
		t.Errorf("pin = %v, want [15 -1]", s.Pin)
	}
	if !slices.Equal(s.Length, []uint16{30, 40}) {
		t.Errorf("length = %v, want [30 40]", s.Length)
	}
	if !slices.Equal(s.State, []bool{true}) {
		t.Errorf("ch = %v, want [true]", s.State)
	}
}

func TestParse(t *testing.T) {
	data := []byte(`
[[bus]]
type = 22
pins = [16]
start = 0
length = 30
color_order = 2

[[bus]]
type = 30
pins = [17]
start = 30
length = 10

[MultiStripType]
pin = [5, 6, 7]
map = [0, 1]
`)

	doc, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if doc.Version != 1 {
		t.Errorf("expected version defaulted to 1, got %d", doc.Version)
	}
	if len(doc.Busses) != 2 || doc.Busses[1].Start != 30 {
		t.Errorf("busses = %+v", doc.Busses)
	}
	if doc.MultiStrip == nil {
		t.Fatal("section missing")
	}
	if !slices.Equal(doc.MultiStrip.Pin, []int{5, 6, 7}) {
		t.Errorf("pin = %v", doc.MultiStrip.Pin)
	}
	if doc.MultiStrip.Enabled != nil || doc.MultiStrip.Type != nil {
		t.Error("absent keys should decode as nil")
	}
}

func TestParseNoSection(t *testing.T) {
	doc, err := Parse([]byte("version = 2\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if doc.MultiStrip != nil {
		t.Error("expected no section")
	}
	if doc.Version != 2 {
		t.Errorf("expected version 2, got %d", doc.Version)
	}
}

func TestLoadInvalid(t *testing.T) {
	f, path := setupTestFile(t)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("[[bus]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := f.Load(); err == nil {
		t.Error("expected parse error")
	}
}

func TestBussesReturnsCopy(t *testing.T) {
	f := New("")
	f.SetBusses([]busses.Config{{Type: busses.TypeWS2812RGB, Pins: []int{1}, Length: 1}})

	got := f.Busses()
	got[0].Length = 99
	if f.Busses()[0].Length != 1 {
		t.Error("Busses exposed internal slice")
	}
}
