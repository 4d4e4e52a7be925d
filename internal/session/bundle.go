package session

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Bundle is a session export: the three capture inputs in one JSON
// document. It is the interchange form accepted by the CLI and the
// conformance harness; the engine itself takes the three parts separately
// and never reads or writes files.
type Bundle struct {
	Events    []RecordedEvent `json:"events"`
	Metadata  SessionMetadata `json:"metadata"`
	Telemetry Telemetry       `json:"telemetry"`
}

// DecodeBundle reads a bundle from r. Decoding is strict: unknown fields
// fail immediately, so exporter schema drift surfaces as an error instead
// of silently dropped data.
func DecodeBundle(r io.Reader) (*Bundle, error) {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()

	var bundle Bundle
	if err := decoder.Decode(&bundle); err != nil {
		return nil, fmt.Errorf("failed to decode session bundle: %w", err)
	}
	return &bundle, nil
}

// LoadBundle reads a bundle from a file.
func LoadBundle(path string) (*Bundle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open session bundle: %w", err)
	}
	defer f.Close()

	bundle, err := DecodeBundle(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return bundle, nil
}
