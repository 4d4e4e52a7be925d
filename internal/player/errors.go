package player

import (
	"errors"
	"fmt"
)

// ReplayError represents a playback operation the engine refused or could
// not complete.
//
// Replay errors include:
//   - Invalid phase: the operation is not legal in the current phase
//   - No session: no renderer is loaded to execute the operation
//   - Renderer failed: the wrapped renderer rejected a command
//   - Seek exhausted: recovery gave up after the retry budget
//   - Invalid speed: multiplier outside the configured bounds
//
// ReplayError includes structured fields for diagnostics; the phase is the
// one observed when the operation was rejected, which by contract is also
// the phase after it.
type ReplayError struct {
	// Code identifies the error category.
	Code ReplayErrorCode

	// Message is a human-readable description.
	Message string

	// Op names the operation that failed (play, pause, seek, ...).
	Op string

	// Phase is the playback phase at the time of the failure.
	Phase Phase

	// Err is the underlying renderer error, when there is one.
	Err error
}

// ReplayErrorCode categorizes replay errors.
type ReplayErrorCode string

const (
	// ErrCodeInvalidPhase indicates the operation is illegal in the current phase.
	ErrCodeInvalidPhase ReplayErrorCode = "INVALID_PHASE"

	// ErrCodeNoSession indicates no renderer is loaded.
	ErrCodeNoSession ReplayErrorCode = "NO_SESSION"

	// ErrCodeRendererFailed indicates the renderer rejected a command.
	ErrCodeRendererFailed ReplayErrorCode = "RENDERER_FAILED"

	// ErrCodeSeekExhausted indicates seek recovery ran out of retries.
	ErrCodeSeekExhausted ReplayErrorCode = "SEEK_EXHAUSTED"

	// ErrCodeInvalidSpeed indicates a speed multiplier outside the bounds.
	ErrCodeInvalidSpeed ReplayErrorCode = "INVALID_SPEED"
)

// Error implements the error interface.
func (e *ReplayError) Error() string {
	if e.Op != "" && e.Phase != "" {
		return fmt.Sprintf("%s: %s (op=%s, phase=%s)", e.Code, e.Message, e.Op, e.Phase)
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s (op=%s)", e.Code, e.Message, e.Op)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying renderer error for errors.Is/As.
func (e *ReplayError) Unwrap() error {
	return e.Err
}

// IsInvalidPhase returns true if the error is a phase rejection.
// Uses errors.As to handle wrapped errors.
func IsInvalidPhase(err error) bool {
	var re *ReplayError
	if errors.As(err, &re) {
		return re.Code == ErrCodeInvalidPhase
	}
	return false
}

// IsNoSession returns true if the error reports a missing renderer.
// Uses errors.As to handle wrapped errors.
func IsNoSession(err error) bool {
	var re *ReplayError
	if errors.As(err, &re) {
		return re.Code == ErrCodeNoSession
	}
	return false
}

// IsRendererFailure returns true if the error wraps a renderer rejection.
// Uses errors.As to handle wrapped errors.
func IsRendererFailure(err error) bool {
	var re *ReplayError
	if errors.As(err, &re) {
		return re.Code == ErrCodeRendererFailed
	}
	return false
}

// IsSeekExhausted returns true if the error reports abandoned seek recovery.
// Uses errors.As to handle wrapped errors.
func IsSeekExhausted(err error) bool {
	var re *ReplayError
	if errors.As(err, &re) {
		return re.Code == ErrCodeSeekExhausted
	}
	return false
}

// IsInvalidSpeed returns true if the error reports an out-of-bounds speed.
// Uses errors.As to handle wrapped errors.
func IsInvalidSpeed(err error) bool {
	var re *ReplayError
	if errors.As(err, &re) {
		return re.Code == ErrCodeInvalidSpeed
	}
	return false
}

// NewInvalidPhaseError creates a ReplayError for an illegal operation.
func NewInvalidPhaseError(op string, phase Phase) *ReplayError {
	return &ReplayError{
		Code:    ErrCodeInvalidPhase,
		Message: fmt.Sprintf("operation %s is not legal in phase %s", op, phase),
		Op:      op,
		Phase:   phase,
	}
}

// NewNoSessionError creates a ReplayError for operations without a renderer.
func NewNoSessionError(op string, phase Phase) *ReplayError {
	return &ReplayError{
		Code:    ErrCodeNoSession,
		Message: "no session renderer is loaded",
		Op:      op,
		Phase:   phase,
	}
}

// NewRendererError wraps a renderer rejection.
func NewRendererError(op string, phase Phase, err error) *ReplayError {
	return &ReplayError{
		Code:    ErrCodeRendererFailed,
		Message: "renderer rejected the command",
		Op:      op,
		Phase:   phase,
		Err:     err,
	}
}

// NewSeekExhaustedError creates a ReplayError for abandoned recovery.
func NewSeekExhaustedError(targetMs, restingMs int64, attempts int) *ReplayError {
	return &ReplayError{
		Code:    ErrCodeSeekExhausted,
		Message: fmt.Sprintf("seek to %dms abandoned after %d attempts, resting at %dms", targetMs, attempts, restingMs),
		Op:      "seek",
		Phase:   PhasePaused,
	}
}

// NewInvalidSpeedError creates a ReplayError for an out-of-bounds multiplier.
func NewInvalidSpeedError(multiplier, min, max float64) *ReplayError {
	return &ReplayError{
		Code:    ErrCodeInvalidSpeed,
		Message: fmt.Sprintf("speed %v outside [%v, %v]", multiplier, min, max),
		Op:      "set-speed",
	}
}
