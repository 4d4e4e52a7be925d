package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/moviola/moviola/internal/player"
	"github.com/moviola/moviola/internal/renderer"
	"github.com/moviola/moviola/internal/tui"
)

// PlayOptions holds flags for the play command.
type PlayOptions struct {
	*RootOptions
	Speed float64 // initial playback multiplier
}

// NewPlayCommand creates the play command.
func NewPlayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "play <session.json>",
		Short: "Replay a session bundle in the terminal",
		Long: `Replay an exported session bundle interactively.

Loads the bundle into the replay engine with the headless renderer and opens
the terminal player. Keys: space = play/pause, ←/→ = skip ±10s, ↑/↓ =
double/halve speed, tab/shift-tab = select marker, enter = jump to marker,
q = quit.

Engine tunables are read from MOVIOLA_* environment variables.

Examples:
  moviola play ./session.json
  moviola play ./session.json --speed 2`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(opts, args[0], cmd)
		},
	}

	cmd.Flags().Float64Var(&opts.Speed, "speed", 1, "initial playback speed multiplier")

	return cmd
}

func runPlay(opts *PlayOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg, err := player.ConfigFromEnv()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid MOVIOLA_* configuration", err)
	}

	bundle, err := loadBundleFile(path)
	if err != nil {
		return inspectError(formatter, err)
	}

	p, err := buildPlayer(cfg, opts.Verbose, cmd.ErrOrStderr())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to build player", err)
	}
	defer p.Close()

	if err := p.LoadSession(bundle.Events, bundle.Metadata, bundle.Telemetry); err != nil {
		_ = formatter.Error(ErrCodeInvalidEvents, err.Error(), nil)
		return WrapExitError(ExitFailure, "failed to load session", err)
	}

	if p.State().Phase == player.PhaseNoEvents {
		fmt.Fprintln(cmd.OutOrStdout(), "Session has no replayable events.")
		return nil
	}

	if opts.Speed != 1 {
		if err := p.SetSpeed(opts.Speed); err != nil {
			return WrapExitError(ExitCommandError, "invalid --speed", err)
		}
	}

	formatter.VerboseLog("Session %s loaded, starting player", p.SessionToken())
	if err := tui.Run(p, cfg); err != nil {
		return WrapExitError(ExitCommandError, "terminal player failed", err)
	}
	return nil
}

// buildPlayer wires the engine for interactive replay. Engine logs are
// discarded unless verbose: the TUI owns the terminal, and slog output
// would tear the alternate screen.
func buildPlayer(cfg player.Config, verbose bool, errWriter io.Writer) (*player.Player, error) {
	logWriter := io.Discard
	level := slog.LevelInfo
	if verbose {
		logWriter = errWriter
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{Level: level}))

	return player.New(renderer.HeadlessFactory{},
		player.WithConfig(cfg),
		player.WithLogger(logger),
	)
}
