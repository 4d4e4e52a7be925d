// Package harness provides conformance testing for the replay engine.
//
// The harness loads scenario files, drives a real Player through a scripted
// renderer, and validates the resulting trace, transition history, and final
// state as executable contract tests.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	session:
//	  events: [1000, 3000]
//	  metadata:
//	    startedAt: 900
//	    signals:
//	      - type: rage_click
//	        timestamp: 2000
//	  console:
//	    - timestamp: 950
//	      level: error
//	      message: "boom"
//	renderer:
//	  goto_failures: 1
//	steps:
//	  - op: play
//	    expect: { phase: playing }
//	  - op: seek
//	    ms: 3000
//	    expect: { phase: faulted, position: 3000 }
//	  - op: pump
//	assertions:
//	  - type: phase
//	    phase: playing
//	  - type: goto_targets
//	    targets: [3000, 3100]
//
// Session events are given as timestamps; the fixture expands them into a
// recorded sequence whose first event is a full snapshot.
//
// # Steps
//
// Steps drive the engine (play, pause, seek, skip_forward, skip_backward,
// set_speed, marker_click), emit scripted renderer events (progress,
// emit_play, emit_pause, emit_loaded), or pump the deferred-work scheduler
// (pump, drain). A step without an expect clause must succeed; a step that
// probes a rejection declares the expected error code.
//
// # Assertion Types
//
//   - phase, position, speed: final playback state
//   - trace_contains: a state update with the given phase (and optionally
//     position) appeared
//   - trace_order: state updates passed through phases in the given order
//   - transitions: the transition history reasons match exactly
//   - transition_count: a transition reason occurred exactly N times
//   - goto_targets: the renderer saw exactly these goto targets
//   - marker_count: correlated marker count, optionally per type
//   - reconciliation: the timeline start source (and optionally instant)
//   - highlighted: whether a marker highlight is active at the end
//
// # Deterministic Execution
//
// Every scenario runs on deterministic seams so traces are identical across
// runs and comparable against golden files:
//
//   - Fixed session token (from session_token, or a shared default)
//   - Manual scheduler: deferred work runs only when a step pumps it
//   - Scripted renderer with per-method failure scripting
//   - Frozen wall clock for event-free reconciliation
//
// # Usage
//
// Load and run a scenario:
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/seek_recovery.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if !result.Pass {
//	    for _, msg := range result.Errors {
//	        log.Println(msg)
//	    }
//	}
package harness
