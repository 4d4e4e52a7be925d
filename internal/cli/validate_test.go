package cli

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateValidBundle(t *testing.T) {
	out, err := execute(t, "validate", "testdata/session.json")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Bundle valid")
}

func TestValidateValidBundleJSON(t *testing.T) {
	out, err := execute(t, "validate", "testdata/session.json", "--format", "json")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestValidateMissingFile(t *testing.T) {
	_, err := execute(t, "validate", "testdata/missing.json")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestValidateNegativeTimestamp(t *testing.T) {
	out, err := execute(t, "validate", "testdata/invalid_events.json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, out, ErrCodeSchema)
}

func TestValidateUnknownField(t *testing.T) {
	// Definitions are closed: a field the engine does not understand is a
	// schema violation, not silently dropped data.
	out, err := execute(t, "validate", "testdata/unknown_field.json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ Validation failed")
}

func TestValidateNotJSON(t *testing.T) {
	_, err := execute(t, "validate", "testdata/not_json.json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestValidateErrorsAsJSON(t *testing.T) {
	out, err := execute(t, "validate", "testdata/invalid_events.json", "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.NotEmpty(t, resp.Error.Code)

	payload, merr := json.Marshal(resp.Data)
	require.NoError(t, merr)
	var result ValidationResult
	require.NoError(t, json.Unmarshal(payload, &result))
	assert.False(t, result.Valid)
	assert.NotEmpty(t, result.Errors)
}

func TestValidateBundleLayers(t *testing.T) {
	// A schema-valid document that still fails normalization would report
	// through the third layer; a schema violation stops at the first.
	raw, err := os.ReadFile("testdata/invalid_events.json")
	require.NoError(t, err)

	errs := validateBundle(raw, &OutputFormatter{Format: "text", Writer: os.Stderr})
	require.NotEmpty(t, errs)
	assert.Equal(t, ErrCodeSchema, errs[0].Code)
}

func TestValidateSchemaEmbeds(t *testing.T) {
	// The embedded schema itself must compile.
	assert.NotEmpty(t, bundleSchema)
	errs := validateSchema([]byte(`{"events": [], "metadata": {"startedAt": 0}, "telemetry": {}}`))
	assert.Empty(t, errs)
}

func TestPathStrings(t *testing.T) {
	assert.Equal(t, []string{"events", "0"}, pathStrings([]string{"#Bundle", "events", "0"}))
	assert.Equal(t, []string{"events"}, pathStrings([]string{"events"}))
	assert.Empty(t, pathStrings(nil))
}
