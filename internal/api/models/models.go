package models

// Health check models
type HealthData struct {
	Status  string `json:"status" example:"ok" doc:"Service status"`
	Message string `json:"message" example:"API is healthy" doc:"Status message"`
}

type HealthResponse struct {
	Body HealthData
}

// Version models
type VersionData struct {
	Version   string `json:"version" example:"dev" doc:"Application version"`
	GitCommit string `json:"git_commit" example:"abc1234" doc:"Git commit SHA"`
	BuildDate string `json:"build_date" example:"2024-12-15 14:30" doc:"Build timestamp"`
	Modified  bool   `json:"modified" doc:"Built from a tree with uncommitted changes"`
	GoVersion string `json:"go_version" example:"go1.24.0" doc:"Go compiler version"`
	Platform  string `json:"platform" example:"linux/arm64" doc:"Platform"`
}

type VersionResponse struct {
	Body VersionData
}

// Bus models
type BusData struct {
	Index      int    `json:"index" example:"0" doc:"Position in the bus table"`
	Type       uint8  `json:"type" example:"30" doc:"Strip type id"`
	TypeName   string `json:"type_name" example:"sk6812_rgbw" doc:"Strip type name"`
	ColorOrder uint8  `json:"color_order" example:"0" doc:"Color order id"`
	OrderName  string `json:"color_order_name" example:"GRB" doc:"Color order name"`
	Pins       []int  `json:"pins" doc:"Physical output pins"`
	Start      uint16 `json:"start" example:"0" doc:"First pixel offset"`
	Length     uint16 `json:"length" example:"30" doc:"Pixel count"`
	Reversed   bool   `json:"reversed" example:"false" doc:"Pixel order reversed"`
	Skip       uint8  `json:"skip" example:"0" doc:"Leading pixels skipped"`
}

type BusListData struct {
	Busses     []BusData `json:"busses" doc:"Bus table in order"`
	Count      int       `json:"count" example:"2" doc:"Number of busses"`
	Contiguous bool      `json:"contiguous" example:"true" doc:"Whether every bus starts where the previous one ends"`
	Gap        int       `json:"gap_at,omitempty" example:"2" doc:"First bus index that breaks contiguity"`
}

type BusListResponse struct {
	Body BusListData
}

// Channel models
type ProfileData struct {
	Type       uint8  `json:"type" example:"22" doc:"Strip type id"`
	TypeName   string `json:"type_name" example:"ws2812_rgb" doc:"Strip type name"`
	ColorOrder uint8  `json:"color_order" example:"2" doc:"Color order id"`
	OrderName  string `json:"color_order_name" example:"BRG" doc:"Color order name"`
	Length     uint16 `json:"length" example:"30" doc:"Pixel count, 0 keeps the bus length"`
}

type ChannelData struct {
	Index   int         `json:"index" example:"0" doc:"Channel index"`
	Pin     int         `json:"pin" example:"15" doc:"Input line, -1 when disabled"`
	Bus     int         `json:"bus" example:"0" doc:"Controlled bus index"`
	Enabled bool        `json:"enabled" example:"true" doc:"Whether the channel has a line assigned"`
	State   bool        `json:"state" example:"false" doc:"Last known line state"`
	Low     ProfileData `json:"low" doc:"Profile applied while the line is low"`
	High    ProfileData `json:"high" doc:"Profile applied while the line is high"`
}

type ChannelListData struct {
	Enabled          bool          `json:"enabled" example:"true" doc:"Whether sampling is enabled"`
	Initialized      bool          `json:"initialized" example:"true" doc:"Whether the channel lines are held"`
	SampleIntervalMs int64         `json:"sample_interval_ms" example:"250" doc:"Minimum time between samples"`
	EnablePin        int           `json:"enable_pin" example:"-1" doc:"Strip power line, -1 when absent"`
	EnableClaimed    bool          `json:"enable_claimed" example:"false" doc:"Whether the power line is held"`
	LastError        string        `json:"last_error,omitempty" doc:"Most recent recoverable error"`
	Channels         []ChannelData `json:"channels" doc:"Active channels"`
}

type ChannelListResponse struct {
	Body ChannelListData
}

// Save models
type SaveData struct {
	Message string `json:"message" example:"Strips file saved" doc:"Result"`
}

type SaveResponse struct {
	Body SaveData
}

// Log models
type LogsRequest struct {
	Limit  int    `query:"limit" minimum:"0" maximum:"1000" default:"100" doc:"Most recent entries to return, 0 for all"`
	Module string `query:"module" example:"multistrip" doc:"Only entries from this module"`
}

type LogEntryData struct {
	Timestamp  string         `json:"timestamp" example:"2025-01-09T10:30:00.123Z" doc:"Log timestamp"`
	Level      string         `json:"level" example:"info" doc:"Log level"`
	Module     string         `json:"module" example:"multistrip" doc:"Source module"`
	Message    string         `json:"message" doc:"Log message"`
	Attributes map[string]any `json:"attributes,omitempty" doc:"Structured log attributes"`
}

type LogsData struct {
	Entries []LogEntryData `json:"entries" doc:"Log entries, oldest first"`
	Count   int            `json:"count" example:"10" doc:"Number of entries returned"`
}

type LogsResponse struct {
	Body LogsData
}

type LogLevelRequest struct {
	Module string `path:"module" example:"multistrip" doc:"Logger module"`
	Body   struct {
		Level string `json:"level" enum:"debug,info,warn,error" example:"debug" doc:"New level"`
	}
}

type LogLevelData struct {
	Module string `json:"module" example:"multistrip" doc:"Logger module"`
	Level  string `json:"level" example:"debug" doc:"Applied level"`
}

type LogLevelResponse struct {
	Body LogLevelData
}
