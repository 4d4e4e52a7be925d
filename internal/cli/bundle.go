package cli

import (
	"fmt"
	"os"

	"github.com/moviola/moviola/internal/session"
	"github.com/moviola/moviola/internal/timeline"
)

// loadBundleFile reads and strictly decodes a session bundle, mapping
// filesystem and decode failures to the right exit codes: a missing or
// unreadable path is a command error, a bundle that does not decode is a
// validation failure.
func loadBundleFile(path string) (*session.Bundle, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("session bundle not found: %s", path))
	}

	bundle, err := session.LoadBundle(path)
	if err != nil {
		return nil, WrapExitError(ExitFailure, "invalid session bundle", err)
	}
	return bundle, nil
}

// correlatedBundle holds one bundle run through the engine's load pipeline:
// normalization, timeline reconciliation, and marker correlation. The same
// computation the player performs on LoadSession, without a renderer.
type correlatedBundle struct {
	Bundle     *session.Bundle
	Events     []session.RecordedEvent
	DurationMs int64
	Start      timeline.Reconciliation
	Markers    []timeline.Marker
}

// correlate runs the offline pipeline over a decoded bundle. A bundle whose
// events fail normalization is a validation failure, not a command error.
func correlate(bundle *session.Bundle, clock session.Clock) (*correlatedBundle, error) {
	normalized, err := session.Normalize(bundle.Events)
	if err != nil {
		return nil, WrapExitError(ExitFailure, "invalid event stream", err)
	}

	start := timeline.Reconcile(normalized, bundle.Metadata, bundle.Telemetry, clock)
	return &correlatedBundle{
		Bundle:     bundle,
		Events:     normalized,
		DurationMs: session.Duration(normalized),
		Start:      start,
		Markers:    timeline.Correlate(bundle.Telemetry, bundle.Metadata.Signals, start.StartMs),
	}, nil
}
