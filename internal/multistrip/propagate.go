package multistrip

import (
	"fmt"
	"math"

	"github.com/smazurov/multistrip/internal/busses"
	"github.com/smazurov/multistrip/internal/events"
)

// shiftDownstream moves every bus after index so it starts where its
// predecessor ends. Only start offsets change. It stops at the first index
// with no bus, if a start would pass the last addressable pixel, or if a
// replacement is refused.
func (m *Manager) shiftDownstream(index int, start, length uint16) {
	for i := index + 1; ; i++ {
		next, ok := m.busses.Bus(i)
		if !ok {
			return
		}

		end := int(start) + int(length)
		if end > math.MaxUint16 {
			err := fmt.Errorf("%w: start %d past pixel %d", busses.ErrInvalidConfig, end, math.MaxUint16)
			m.fail(newError(ReplaceFailure, -1, i, err))
			m.logger.Warn("Failed to shift bus", "bus", i, "start", end, "error", err)
			return
		}

		next.Start = uint16(end)
		if err := m.busses.Replace(i, next); err != nil {
			m.fail(newError(ReplaceFailure, -1, i, err))
			m.logger.Warn("Failed to shift bus", "bus", i, "start", next.Start, "error", err)
			return
		}
		m.publishBus(i, next, events.ReasonShift)

		start, length = next.Start, next.Length
	}
}
