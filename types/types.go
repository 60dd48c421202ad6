package types

// ---- Link state (retained) ----

// Link is the reported state of a wireless link.
type Link string

const (
	LinkUp       Link = "up"
	LinkDown     Link = "down"
	LinkDegraded Link = "degraded"
)

// LinkState is published retained on link/<name>.
type LinkState struct {
	Link  Link   `json:"link"`
	TS    int64  `json:"ts_ms"`
	Error string `json:"error,omitempty"` // machine-readable short code
}

// ---- Telemetry payloads ----

// PowerSample is one power-monitor reading (integer units, MCU-friendly).
type PowerSample struct {
	BusMilliVolts    int32 `json:"bus_mv"`
	ShuntMicroVolts  int32 `json:"shunt_uv"`
	CurrentMicroAmps int32 `json:"current_ua"`
	PowerMicroWatts  int32 `json:"power_uw"`
	BatteryPercent   uint8 `json:"battery_pct"`
	TS               int64 `json:"ts_ms"`
}

// ---- Service configuration ----

type TelemetryConfig struct {
	IntervalMs uint32 `json:"interval_ms"` // >0; default applied if zero
}

type UplinkConfig struct {
	ServerIP   string `json:"server_ip,omitempty"` // dotted decimal
	ServerPort uint16 `json:"server_port,omitempty"`
}

// ---- Generic replies ----

type OKReply struct {
	OK bool `json:"ok"`
}

type ErrorReply struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}
