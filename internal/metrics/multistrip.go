// Package metrics provides Prometheus metrics for channel lines and the bus table.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "multistrip"

var (
	channelState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "channel",
		Name:      "state",
		Help:      "Last sampled line level per channel (1 = high)",
	}, []string{"channel"})

	channelSwitches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "channel",
		Name:      "switches_total",
		Help:      "Line level changes seen per channel",
	}, []string{"channel"})

	busStart = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "bus",
		Name:      "start",
		Help:      "First pixel offset of the bus",
	}, []string{"bus"})

	busLength = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "bus",
		Name:      "length",
		Help:      "Pixel count of the bus",
	}, []string{"bus"})

	busType = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "bus",
		Name:      "strip_type",
		Help:      "Strip type id currently configured on the bus",
	}, []string{"bus"})

	busReplacements = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "bus",
		Name:      "replacements_total",
		Help:      "Bus replacements by cause (init, channel, shift)",
	}, []string{"bus", "reason"})

	pinReassignments = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "pins",
		Name:      "reassignments_total",
		Help:      "Pin assignment changes applied after initialization",
	})

	initialized = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "initialized",
		Help:      "1 while channel lines are held and buses are managed",
	})
)

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// SetChannelState records a sampled level change for a channel.
func SetChannelState(channel int, high bool) {
	label := strconv.Itoa(channel)
	channelState.WithLabelValues(label).Set(boolValue(high))
	channelSwitches.WithLabelValues(label).Inc()
}

// SetBus records a bus replacement and the resulting layout.
func SetBus(bus int, reason string, stripType uint8, start, length uint16) {
	label := strconv.Itoa(bus)
	busStart.WithLabelValues(label).Set(float64(start))
	busLength.WithLabelValues(label).Set(float64(length))
	busType.WithLabelValues(label).Set(float64(stripType))
	busReplacements.WithLabelValues(label, reason).Inc()
}

// AddPinReassignment counts one pin change and records whether the
// subsystem came back up.
func AddPinReassignment(ok bool) {
	pinReassignments.Inc()
	initialized.Set(boolValue(ok))
}

// SetInitialized records whether the subsystem is running.
func SetInitialized(ok bool) {
	initialized.Set(boolValue(ok))
}
