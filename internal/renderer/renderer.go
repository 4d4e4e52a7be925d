// Package renderer defines the contract between the replay engine and the
// component that visually reconstructs a session from recorded events, and
// provides a headless reference implementation.
//
// The engine never depends on a concrete renderer. Everything it needs is
// the narrow Renderer interface below; production embeds a DOM
// reconstruction component behind it, tests use a scripted fake, and the
// terminal player uses Headless. Renderers are single-use: one instance per
// loaded session, destroyed on teardown.
package renderer

import (
	"github.com/moviola/moviola/internal/session"
)

// Event names the notifications a renderer emits.
type Event string

// Renderer event stream.
const (
	// EventContentLoaded fires once the renderer has ingested the event
	// sequence and can accept playback commands.
	EventContentLoaded Event = "content-loaded"
	// EventProgress fires periodically during playback.
	EventProgress Event = "progress"
	// EventPlay and EventPause fire on playback state changes the renderer
	// initiates or confirms, including reaching the end of the session.
	EventPlay  Event = "play"
	EventPause Event = "pause"
)

// Config is the renderer's complete construction-time configuration. There
// is no ambient or global renderer state; behavior not set here does not
// change after construction.
type Config struct {
	// Autoplay starts playback as soon as content is loaded. The engine
	// always constructs renderers with this off so that playback state has
	// exactly one owner.
	Autoplay bool
	// SpeedOptions advertises the multipliers a UI should offer. Renderers
	// treat it as advisory and accept any positive multiplier.
	SpeedOptions []float64
	// ShowMouseTrail draws the pointer path during replay.
	ShowMouseTrail bool
	// MouseTrailColor styles the trail (CSS color value).
	MouseTrailColor string
}

// Renderer reconstructs a session visually. Implementations must tolerate
// calls from multiple goroutines and must not invoke listeners while
// holding internal locks.
//
// On registers a listener. The fraction argument is the renderer's playback
// position in [0, 1] at the moment of the event; only EventProgress is
// driven by it, the other events carry it as context. Listener registration
// may fail (a renderer mid-teardown refuses new listeners).
type Renderer interface {
	Play() error
	Pause() error
	Goto(ms int64) error
	SetSpeed(multiplier float64) error
	Destroy() error
	On(event Event, fn func(fraction float64)) error
}

// Factory constructs a renderer for one normalized event sequence. The
// engine calls it exactly once per loaded session with two or more events.
type Factory interface {
	New(events []session.RecordedEvent, cfg Config) (Renderer, error)
}
