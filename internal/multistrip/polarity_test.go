package multistrip

import (
	"testing"

	"github.com/smazurov/multistrip/internal/busses"
)

func TestLineLevel(t *testing.T) {
	if LineLevel(true) == LineLevel(false) {
		t.Fatal("LineLevel maps both states to one level")
	}
	if got := LineLevel(true); got != !activeLow {
		t.Errorf("LineLevel(true) = %v with activeLow = %v", got, activeLow)
	}
}

func TestPollHonoursPolarity(t *testing.T) {
	h := newHarness(t, 1,
		bus(busses.TypeWS2812RGB, busses.OrderBRG, 0, 30, 16),
		bus(busses.TypeWS2812RGB, busses.OrderRGB, 30, 10, 17),
	)
	h.lines.levels[15] = LineLevel(false)
	h.mgr.DeserializeConfig(singleChannelSection(40))
	h.mgr.Initialize()

	h.poll()
	if h.mgr.reg.Channels[0].KnownState {
		t.Fatal("idle line read as high state")
	}

	h.lines.levels[15] = LineLevel(true)
	h.poll()
	if !h.mgr.reg.Channels[0].KnownState {
		t.Fatal("active line not read as high state")
	}
	if b0, _ := h.table.Bus(0); b0.Type != busses.TypeSK6812RGBW {
		t.Errorf("bus 0 type = %s, want sk6812_rgbw", b0.Type)
	}
}
