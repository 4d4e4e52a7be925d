// Package session defines the session replay data model and the
// normalization that turns a raw capture into a replayable sequence.
//
// A session arrives as three independently captured inputs: the primary
// recorded-event stream (DOM snapshots, mutations, inputs, scrolls), the
// session metadata written by the recording agent, and out-of-band telemetry
// (console entries, network requests, behavioral signals). The capture path
// makes no ordering or completeness guarantees, so nothing downstream may
// touch the raw arrays directly.
//
// ARCHITECTURE:
//
// Normalize is the single entry point from raw capture to engine input.
// It deep-copies, validates, and stable-sorts the event stream so that:
//   - downstream components can rely on ascending timestamp order
//   - same-timestamp events keep their capture order (snapshot before the
//     mutation that follows it)
//   - mutations by the renderer can never reach caller-owned memory
//
// All timestamps are absolute epoch milliseconds (int64). Relative offsets
// only exist downstream, after timeline reconciliation.
//
// The Clock interface is the package's only time source. Production code
// uses SystemClock; tests freeze time through testutil.
package session
