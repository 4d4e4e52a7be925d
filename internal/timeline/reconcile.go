// Package timeline establishes the session's authoritative clock and
// projects out-of-band telemetry onto it as markers.
//
// Every capture source stamps its own timestamps independently: the event
// recorder, the metadata writer, the console hook, and the network hook do
// not share a clock edge. Reconcile picks the single earliest instant across
// all of them as time zero; Correlate then expresses everything else as a
// non-negative offset from it. Both functions are pure. They run once per
// loaded session and their outputs are immutable afterward.
package timeline

import "github.com/moviola/moviola/internal/session"

// Source identifies which capture input supplied the reconciled start.
type Source string

// Reconciliation sources, in scan order.
const (
	SourceEvents    Source = "events"
	SourceMetadata  Source = "metadata"
	SourceConsole   Source = "console"
	SourceNetwork   Source = "network"
	SourceWallClock Source = "wall-clock"
)

// Reconciliation is the result of establishing time zero for a session.
type Reconciliation struct {
	// StartMs is the reconciled session start, absolute epoch milliseconds.
	StartMs int64
	// Source names the capture input that supplied StartMs.
	Source Source
}

// Reconcile computes the session's true start instant: the minimum across
// the first normalized event, the metadata start stamp, and the earliest
// console and network telemetry timestamps. Only positive candidates count;
// a source that never stamped anything cannot win.
//
// A session with no events anchors on the wall clock so that telemetry-only
// input still yields usable marker offsets. Events must already be
// normalized; the first element is taken as the earliest.
func Reconcile(events []session.RecordedEvent, metadata session.SessionMetadata, telemetry session.Telemetry, clock session.Clock) Reconciliation {
	var result Reconciliation
	if len(events) > 0 {
		result = Reconciliation{StartMs: events[0].TimestampMs, Source: SourceEvents}
	} else {
		result = Reconciliation{StartMs: clock.NowMs(), Source: SourceWallClock}
	}

	if metadata.StartedAtMs > 0 && metadata.StartedAtMs < result.StartMs {
		result = Reconciliation{StartMs: metadata.StartedAtMs, Source: SourceMetadata}
	}
	if min, ok := earliest(telemetry.Console); ok && min < result.StartMs {
		result = Reconciliation{StartMs: min, Source: SourceConsole}
	}
	if min, ok := earliest(telemetry.Network); ok && min < result.StartMs {
		result = Reconciliation{StartMs: min, Source: SourceNetwork}
	}
	return result
}

// ReconcileStart is Reconcile reduced to the value the engine consumes.
func ReconcileStart(events []session.RecordedEvent, metadata session.SessionMetadata, telemetry session.Telemetry, clock session.Clock) int64 {
	return Reconcile(events, metadata, telemetry, clock).StartMs
}

func earliest(items []session.TelemetryEvent) (int64, bool) {
	var min int64
	for _, item := range items {
		if item.TimestampMs <= 0 {
			continue
		}
		if min == 0 || item.TimestampMs < min {
			min = item.TimestampMs
		}
	}
	return min, min > 0
}
