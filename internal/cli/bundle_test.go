package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moviola/moviola/internal/session"
	"github.com/moviola/moviola/internal/timeline"
)

func TestLoadBundleFile(t *testing.T) {
	bundle, err := loadBundleFile("testdata/session.json")
	require.NoError(t, err)
	assert.Len(t, bundle.Events, 3)
	assert.Equal(t, int64(1000), bundle.Metadata.StartedAtMs)
	assert.Len(t, bundle.Telemetry.Console, 2)
}

func TestLoadBundleFileMissing(t *testing.T) {
	_, err := loadBundleFile("testdata/missing.json")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestLoadBundleFileMalformed(t *testing.T) {
	_, err := loadBundleFile("testdata/not_json.json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestCorrelate(t *testing.T) {
	bundle, err := loadBundleFile("testdata/session.json")
	require.NoError(t, err)

	cb, err := correlate(bundle, session.SystemClock{})
	require.NoError(t, err)

	// Normalization sorts the out-of-order export.
	require.Len(t, cb.Events, 3)
	assert.Equal(t, int64(1000), cb.Events[0].TimestampMs)
	assert.Equal(t, int64(3000), cb.Events[2].TimestampMs)

	assert.Equal(t, int64(2000), cb.DurationMs)
	assert.Equal(t, int64(900), cb.Start.StartMs)
	assert.Equal(t, timeline.SourceConsole, cb.Start.Source)
	assert.Len(t, cb.Markers, 3)
}

func TestCorrelateInvalidEvents(t *testing.T) {
	bundle, err := loadBundleFile("testdata/invalid_events.json")
	require.NoError(t, err)

	_, err = correlate(bundle, session.SystemClock{})
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var invalid *session.InvalidEventError
	assert.ErrorAs(t, err, &invalid)
}
