package cli

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/moviola/moviola/internal/session"
)

// InspectResult summarizes one session bundle.
type InspectResult struct {
	Path        string         `json:"path"`
	Events      int            `json:"events"`
	EventKinds  map[string]int `json:"event_kinds,omitempty"`
	DurationMs  int64          `json:"duration_ms"`
	StartMs     int64          `json:"start_ms"`
	StartSource string         `json:"start_source"`
	Console     int            `json:"console"`
	Network     int            `json:"network"`
	Signals     int            `json:"signals"`
	Markers     int            `json:"markers"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <session.json>",
		Short: "Summarize a session bundle",
		Long: `Summarize an exported session bundle.

Runs the bundle through the engine's load pipeline (normalization, timeline
reconciliation, marker correlation) and reports event counts by kind, the
reconciled start instant and which capture source supplied it, the replay
duration, and the telemetry/marker totals.

Examples:
  moviola inspect ./session.json
  moviola inspect ./session.json --format json
  moviola inspect ./session.json --verbose`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runInspect(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	bundle, err := loadBundleFile(path)
	if err != nil {
		return inspectError(formatter, err)
	}
	formatter.VerboseLog("Decoded bundle %s: %d raw event(s)", path, len(bundle.Events))

	cb, err := correlate(bundle, session.SystemClock{})
	if err != nil {
		return inspectError(formatter, err)
	}

	result := InspectResult{
		Path:        path,
		Events:      len(cb.Events),
		EventKinds:  countKinds(cb.Events),
		DurationMs:  cb.DurationMs,
		StartMs:     cb.Start.StartMs,
		StartSource: string(cb.Start.Source),
		Console:     len(bundle.Telemetry.Console),
		Network:     len(bundle.Telemetry.Network),
		Signals:     len(bundle.Metadata.Signals),
		Markers:     len(cb.Markers),
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	return outputInspectText(formatter, result)
}

// countKinds tallies normalized events by kind name.
func countKinds(events []session.RecordedEvent) map[string]int {
	if len(events) == 0 {
		return nil
	}
	kinds := make(map[string]int)
	for _, event := range events {
		kinds[event.Kind.String()]++
	}
	return kinds
}

func outputInspectText(formatter *OutputFormatter, result InspectResult) error {
	w := formatter.Writer
	// Locale-aware count formatting: production bundles run to hundreds of
	// thousands of events, and 1,284,551 reads better than 1284551.
	p := message.NewPrinter(language.English)

	fmt.Fprintf(w, "Session: %s\n", result.Path)
	p.Fprintf(w, "Events:   %d (duration %s)\n", result.Events, formatOffset(result.DurationMs))
	for _, kind := range sortedKinds(result.EventKinds) {
		p.Fprintf(w, "  %-14s %d\n", kind, result.EventKinds[kind])
	}
	fmt.Fprintf(w, "Start:    %d (source: %s)\n", result.StartMs, result.StartSource)
	p.Fprintf(w, "Console:  %d entries\n", result.Console)
	p.Fprintf(w, "Network:  %d requests\n", result.Network)
	p.Fprintf(w, "Signals:  %d\n", result.Signals)
	p.Fprintf(w, "Markers:  %d\n", result.Markers)

	if result.Events == 0 {
		fmt.Fprintln(w, "Note: bundle has no replayable events")
	}
	return nil
}

// sortedKinds returns kind names in sorted order so text output is stable.
func sortedKinds(kinds map[string]int) []string {
	names := make([]string, 0, len(kinds))
	for name := range kinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// inspectError reports a pipeline failure in the configured format and
// preserves the exit code carried by err.
func inspectError(formatter *OutputFormatter, err error) error {
	code := ErrCodeGeneric
	switch GetExitCode(err) {
	case ExitCommandError:
		code = ErrCodeNotFound
	case ExitFailure:
		code = ErrCodeBadBundle
	}
	var invalid *session.InvalidEventError
	if errors.As(err, &invalid) {
		code = ErrCodeInvalidEvents
	}
	_ = formatter.Error(code, err.Error(), nil)
	return err
}
