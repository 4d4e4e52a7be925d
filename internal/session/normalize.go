package session

import (
	"errors"
	"fmt"
	"sort"
)

// InvalidEventError reports a recorded event that cannot be placed on the
// timeline. Index refers to the event's position in the raw capture, before
// any reordering.
type InvalidEventError struct {
	Index       int
	TimestampMs int64
}

func (e *InvalidEventError) Error() string {
	if e.TimestampMs == 0 {
		return fmt.Sprintf("event %d: missing timestamp", e.Index)
	}
	return fmt.Sprintf("event %d: negative timestamp %d", e.Index, e.TimestampMs)
}

// IsInvalidEvent checks if an error is an InvalidEventError.
func IsInvalidEvent(err error) bool {
	var invalidErr *InvalidEventError
	return errors.As(err, &invalidErr)
}

// Normalize validates, deep-copies, and orders a raw capture for replay.
//
// The sort is stable: events sharing a timestamp keep their capture order,
// so a full snapshot always precedes a mutation recorded in the same
// millisecond. The returned slice and its payloads are fresh copies; the
// caller's array is never modified and never aliased.
//
// Every event must carry a positive timestamp. Zero (missing) or negative
// (corrupt) timestamps fail the whole capture with *InvalidEventError:
// replaying around a hole would silently misplace everything after it.
//
// Empty and single-element inputs are valid. They normalize to themselves
// and have no replayable extent (Duration reports 0).
func Normalize(events []RecordedEvent) ([]RecordedEvent, error) {
	for i, ev := range events {
		if ev.TimestampMs <= 0 {
			return nil, &InvalidEventError{Index: i, TimestampMs: ev.TimestampMs}
		}
	}

	out := make([]RecordedEvent, len(events))
	for i, ev := range events {
		out[i] = ev.clone()
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TimestampMs < out[j].TimestampMs
	})
	return out, nil
}

// Duration returns the replay extent of a normalized sequence: the distance
// from first to last event in milliseconds. Sequences with fewer than two
// events report 0.
func Duration(events []RecordedEvent) int64 {
	if len(events) < 2 {
		return 0
	}
	return events[len(events)-1].TimestampMs - events[0].TimestampMs
}
