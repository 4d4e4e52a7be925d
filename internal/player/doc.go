// Package player implements the replay state machine at the center of the
// engine.
//
// The Player owns the playback lifecycle of one loaded session: it
// normalizes the capture, reconciles the timeline, correlates markers, and
// drives an opaque renderer through play, pause, seek, and speed changes
// with defined failure semantics.
//
// ARCHITECTURE:
//
// Phase Machine:
// Playback is always in exactly one phase (idle, initializing, ready,
// playing, paused, seeking, faulted, no-events). Every phase change goes
// through a legal-transition table; operations attempted from the wrong
// phase return INVALID_PHASE and change nothing. Transitions are recorded
// with a monotonic seq from the logical clock, so a playback trace is
// reproducible and comparable.
//
// Locking Discipline:
// One mutex guards all player state. Renderer calls are never made while
// holding it: renderers may emit events synchronously from inside a call,
// and those listeners re-enter the player. Operations therefore validate
// under the lock, release it around the renderer call, and revalidate
// against the session token before committing.
//
// Session Token:
// Every load draws a fresh token. Deferred work (listener attachment, seek
// retries, highlight decay) and renderer listeners capture the token they
// were created under and drop themselves when it no longer matches the live
// session. A torn-down session cannot mutate its successor.
//
// Seek Recovery:
// A failed renderer goto does not fault playback permanently. The seek path
// retries at target+skip, a bounded number of times, each attempt scheduled
// asynchronously. Exhaustion degrades to paused at the last position the
// renderer actually reached. See seek.go.
//
// Everything observable leaves through two channels: State()/Markers()
// snapshots, and the seq-stamped update feed the UI drains.
package player
