package timeline

import (
	"fmt"
	"sort"

	"github.com/moviola/moviola/internal/session"
)

// MarkerType classifies a timeline marker.
type MarkerType string

// Marker types surfaced on the replay timeline.
const (
	MarkerError        MarkerType = "error"
	MarkerNetworkError MarkerType = "network-error"
	MarkerRageClick    MarkerType = "rage-click"
	MarkerDeadClick    MarkerType = "dead-click"
)

// Marker is a clickable point-in-time annotation on the replay timeline.
//
// TimestampMs is the offset from the reconciled session start, never
// negative: telemetry stamped before time zero (clock skew between capture
// hooks) clamps to 0 rather than rendering off the left edge of the bar.
type Marker struct {
	TimestampMs int64      `json:"timestamp"`
	Type        MarkerType `json:"type"`
	Label       string     `json:"label"`
	Details     string     `json:"details,omitempty"`
}

// Correlate projects telemetry and behavioral signals onto the reconciled
// timeline:
//
//   - console entries at level "error" become error markers
//   - network observations with status >= 400, or status 0 (the request
//     never completed), become network-error markers
//   - rage_click and dead_click signals become their marker types; any
//     other signal type is dropped
//
// The result is sorted ascending by offset. The sort is stable, so markers
// sharing an offset keep source order: console, then network, then signals.
// Correlate is pure; callers cache the result for the life of the session.
func Correlate(telemetry session.Telemetry, signals []session.Signal, startMs int64) []Marker {
	markers := make([]Marker, 0, len(telemetry.Console)+len(telemetry.Network)+len(signals))

	for _, entry := range telemetry.Console {
		if entry.Level != session.ConsoleLevelError {
			continue
		}
		markers = append(markers, Marker{
			TimestampMs: offset(entry.TimestampMs, startMs),
			Type:        MarkerError,
			Label:       entry.Message,
		})
	}

	for _, request := range telemetry.Network {
		if request.Status != 0 && request.Status < 400 {
			continue
		}
		details := "request never completed"
		if request.Status > 0 {
			details = fmt.Sprintf("status %d", request.Status)
		}
		markers = append(markers, Marker{
			TimestampMs: offset(request.TimestampMs, startMs),
			Type:        MarkerNetworkError,
			Label:       request.Message,
			Details:     details,
		})
	}

	for _, sig := range signals {
		var markerType MarkerType
		switch sig.Type {
		case session.SignalRageClick:
			markerType = MarkerRageClick
		case session.SignalDeadClick:
			markerType = MarkerDeadClick
		default:
			continue
		}
		markers = append(markers, Marker{
			TimestampMs: offset(sig.TimestampMs, startMs),
			Type:        markerType,
			Label:       string(sig.Type),
			Details:     string(sig.Data),
		})
	}

	sort.SliceStable(markers, func(i, j int) bool {
		return markers[i].TimestampMs < markers[j].TimestampMs
	})
	return markers
}

// offset rebases an absolute timestamp onto the session clock. The result
// may be negative only inside this call; it clamps before anything sees it.
func offset(timestampMs, startMs int64) int64 {
	off := timestampMs - startMs
	if off < 0 {
		return 0
	}
	return off
}

// Nearest returns the marker closest to the given offset. Ties resolve to
// the earlier marker. ok is false when the list is empty.
func Nearest(markers []Marker, offsetMs int64) (Marker, bool) {
	if len(markers) == 0 {
		return Marker{}, false
	}
	best := markers[0]
	bestDist := distance(best.TimestampMs, offsetMs)
	for _, m := range markers[1:] {
		if d := distance(m.TimestampMs, offsetMs); d < bestDist {
			best, bestDist = m, d
		}
	}
	return best, true
}

// FilterType returns the markers of one type, preserving order.
func FilterType(markers []Marker, markerType MarkerType) []Marker {
	var out []Marker
	for _, m := range markers {
		if m.Type == markerType {
			out = append(out, m)
		}
	}
	return out
}

func distance(a, b int64) int64 {
	if a > b {
		return a - b
	}
	return b - a
}
