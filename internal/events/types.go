package events

// Event type constants for kelindar/event.
const (
	TypeChannelStateChanged uint32 = iota + 1
	TypeBusReconfigured
	TypePinsReassigned
	TypeLogEntry
)

// Reasons carried by BusReconfiguredEvent.
const (
	ReasonInit    = "init"
	ReasonChannel = "channel"
	ReasonShift   = "shift"
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// ChannelStateChangedEvent is published when a channel's input line settles
// at a new level and its bus has been switched to the matching profile.
type ChannelStateChangedEvent struct {
	Channel   int    `json:"channel" example:"0" doc:"Channel index"`
	Bus       int    `json:"bus" example:"0" doc:"Bus index the channel controls"`
	Pin       int    `json:"pin" example:"15" doc:"GPIO line sampled"`
	State     bool   `json:"state" example:"true" doc:"New line state (after polarity correction)"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for ChannelStateChangedEvent.
func (e ChannelStateChangedEvent) Type() uint32 { return TypeChannelStateChanged }

// BusReconfiguredEvent is published after every bus replacement, both for the
// switched bus itself and for each downstream bus whose start was shifted.
type BusReconfiguredEvent struct {
	Bus        int    `json:"bus" example:"1" doc:"Bus index"`
	Reason     string `json:"reason" example:"shift" doc:"init, channel or shift"`
	StripType  uint8  `json:"strip_type" example:"30" doc:"Strip type id"`
	ColorOrder uint8  `json:"color_order" example:"0" doc:"Color order id"`
	Start      uint16 `json:"start" example:"30" doc:"First pixel offset"`
	Length     uint16 `json:"length" example:"10" doc:"Pixel count"`
	Timestamp  string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for BusReconfiguredEvent.
func (e BusReconfiguredEvent) Type() uint32 { return TypeBusReconfigured }

// PinsReassignedEvent is published when a configuration edit changed the
// channel or enable pins and the subsystem re-acquired its lines.
type PinsReassignedEvent struct {
	OldPins     []int  `json:"old_pins" doc:"Previous channel pins"`
	NewPins     []int  `json:"new_pins" doc:"New channel pins"`
	OldEnable   int    `json:"old_enable_pin" example:"-1" doc:"Previous enable pin"`
	NewEnable   int    `json:"new_enable_pin" example:"4" doc:"New enable pin"`
	Initialized bool   `json:"initialized" doc:"Whether re-initialization succeeded"`
	Timestamp   string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for PinsReassignedEvent.
func (e PinsReassignedEvent) Type() uint32 { return TypePinsReassigned }

// LogEntryEvent represents a log entry for SSE streaming.
type LogEntryEvent struct {
	Timestamp  string         `json:"timestamp" example:"2025-01-09T10:30:00.123Z" doc:"Log timestamp"`
	Level      string         `json:"level" example:"info" doc:"Log level"`
	Module     string         `json:"module" example:"multistrip" doc:"Source module"`
	Message    string         `json:"message" doc:"Log message"`
	Attributes map[string]any `json:"attributes,omitempty" doc:"Structured log attributes"`
}

// Type returns the event type identifier for LogEntryEvent.
func (e LogEntryEvent) Type() uint32 { return TypeLogEntry }
