package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/moviola/moviola/internal/session"
	"github.com/moviola/moviola/internal/timeline"
)

// MarkersOptions holds flags for the markers command.
type MarkersOptions struct {
	*RootOptions
	Type string // optional marker type filter
}

// MarkersResult holds the correlated marker list for output.
type MarkersResult struct {
	Path    string            `json:"path"`
	StartMs int64             `json:"start_ms"`
	Markers []timeline.Marker `json:"markers"`
}

// markerTypes are the filter values the --type flag accepts.
var markerTypes = []timeline.MarkerType{
	timeline.MarkerError,
	timeline.MarkerNetworkError,
	timeline.MarkerRageClick,
	timeline.MarkerDeadClick,
}

// NewMarkersCommand creates the markers command.
func NewMarkersCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MarkersOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "markers <session.json>",
		Short: "List a bundle's timeline markers",
		Long: `List the timeline markers correlated from a session bundle.

Console errors, failed network requests, and rage/dead-click signals are
projected onto the reconciled session clock and listed in timeline order.

Examples:
  moviola markers ./session.json
  moviola markers ./session.json --type network-error
  moviola markers ./session.json --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMarkers(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Type, "type", "", "filter by marker type (error|network-error|rage-click|dead-click)")

	return cmd
}

func runMarkers(opts *MarkersOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if opts.Type != "" && !isMarkerType(opts.Type) {
		return NewExitError(ExitCommandError,
			fmt.Sprintf("unknown marker type %q: must be one of %v", opts.Type, markerTypes))
	}

	bundle, err := loadBundleFile(path)
	if err != nil {
		return inspectError(formatter, err)
	}

	cb, err := correlate(bundle, session.SystemClock{})
	if err != nil {
		return inspectError(formatter, err)
	}

	markers := cb.Markers
	if opts.Type != "" {
		markers = timeline.FilterType(markers, timeline.MarkerType(opts.Type))
	}
	formatter.VerboseLog("Correlated %d marker(s), %d after filter", len(cb.Markers), len(markers))

	result := MarkersResult{
		Path:    path,
		StartMs: cb.Start.StartMs,
		Markers: markers,
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	return outputMarkersText(formatter, result)
}

func isMarkerType(value string) bool {
	for _, t := range markerTypes {
		if string(t) == value {
			return true
		}
	}
	return false
}

func outputMarkersText(formatter *OutputFormatter, result MarkersResult) error {
	w := formatter.Writer

	if len(result.Markers) == 0 {
		fmt.Fprintln(w, "No markers.")
		return nil
	}

	fmt.Fprintf(w, "%-10s  %-14s  %-40s  %s\n", "OFFSET", "TYPE", "LABEL", "DETAILS")
	for _, m := range result.Markers {
		fmt.Fprintf(w, "%-10s  %-14s  %-40s  %s\n",
			formatOffset(m.TimestampMs), m.Type, truncate(m.Label, 40), m.Details)
	}
	fmt.Fprintf(w, "\n%d marker(s)\n", len(result.Markers))
	return nil
}

// formatOffset renders a millisecond offset as m:ss.mmm.
func formatOffset(ms int64) string {
	minutes := ms / 60000
	seconds := (ms % 60000) / 1000
	millis := ms % 1000
	return fmt.Sprintf("%d:%02d.%03d", minutes, seconds, millis)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
