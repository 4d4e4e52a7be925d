package session

import "encoding/json"

// EventKind is the recorder's integer event taxonomy. The engine treats it
// as an opaque tag; it never affects ordering or playback semantics.
type EventKind int

// Recorded event kinds, matching the capture agent's numbering.
const (
	KindFullSnapshot EventKind = 0 // complete serialized DOM
	KindMutation     EventKind = 1 // incremental DOM change
	KindMouseMove    EventKind = 2
	KindInteraction  EventKind = 3 // click, focus, blur
	KindScroll       EventKind = 4
	KindViewport     EventKind = 5 // resize
	KindInput        EventKind = 6 // form field change
	KindMeta         EventKind = 7 // page URL, dimensions
	KindCustom       EventKind = 8
)

func (k EventKind) String() string {
	switch k {
	case KindFullSnapshot:
		return "full-snapshot"
	case KindMutation:
		return "mutation"
	case KindMouseMove:
		return "mouse-move"
	case KindInteraction:
		return "interaction"
	case KindScroll:
		return "scroll"
	case KindViewport:
		return "viewport"
	case KindInput:
		return "input"
	case KindMeta:
		return "meta"
	case KindCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// RecordedEvent is one unit of the primary replay stream.
//
// TimestampMs is absolute epoch milliseconds. Zero means the recorder never
// stamped the event (missing field in the export); negative values are
// corrupt. Both are rejected by Normalize.
//
// Payload is kept as raw JSON. The engine never interprets it; it is handed
// verbatim to the renderer.
type RecordedEvent struct {
	Kind        EventKind       `json:"kind"`
	Payload     json.RawMessage `json:"payload,omitempty"`
	TimestampMs int64           `json:"timestamp"`
}

// clone returns a deep copy. RawMessage aliases the decoder's backing
// buffer, so the bytes are copied too.
func (e RecordedEvent) clone() RecordedEvent {
	c := e
	if e.Payload != nil {
		c.Payload = append(json.RawMessage(nil), e.Payload...)
	}
	return c
}

// SignalType classifies a behavioral signal.
type SignalType string

// Behavioral signal types emitted by the capture agent. Types outside this
// set may appear in exports; the correlator drops them.
const (
	SignalRageClick SignalType = "rage_click"
	SignalDeadClick SignalType = "dead_click"
)

// Signal is one behavioral observation (rage click, dead click, ...).
// Data is opaque detail (selector, coordinates) passed through to markers.
type Signal struct {
	Type        SignalType      `json:"type"`
	TimestampMs int64           `json:"timestamp"`
	Data        json.RawMessage `json:"data,omitempty"`
}

// SessionMetadata is written once by the recording agent when the session
// opens. It is owned by the session-fetch layer; the engine reads it and
// never writes it.
//
// StartedAtMs may disagree with the first event's timestamp (the agent
// stamps it before the first snapshot is captured); timeline reconciliation
// resolves the conflict.
type SessionMetadata struct {
	StartedAtMs int64    `json:"startedAt"`
	DeviceType  string   `json:"deviceType,omitempty"`
	Signals     []Signal `json:"signals,omitempty"`
}

// TelemetryEvent is one console entry or one network request observation.
// Console entries carry Level; network observations carry Status. A status
// of 0 records a request that never completed (aborted, DNS failure).
type TelemetryEvent struct {
	TimestampMs int64  `json:"timestamp"`
	Level       string `json:"level,omitempty"`
	Status      int    `json:"status,omitempty"`
	Message     string `json:"message,omitempty"`
}

// Telemetry groups the out-of-band streams captured alongside the session.
type Telemetry struct {
	Console []TelemetryEvent `json:"console,omitempty"`
	Network []TelemetryEvent `json:"network,omitempty"`
}

// ConsoleLevelError is the console level that produces an error marker.
const ConsoleLevelError = "error"
