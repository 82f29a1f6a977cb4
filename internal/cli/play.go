package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/roach88/ruleboard/internal/engine"
	"github.com/roach88/ruleboard/internal/level"
	"github.com/roach88/ruleboard/internal/store"
	"github.com/roach88/ruleboard/internal/tui"
)

// PlayOptions holds flags for the play command.
type PlayOptions struct {
	*RootOptions
	Database  string
	TimeLimit time.Duration
}

// NewPlayCommand creates the play command.
func NewPlayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "play <level>",
		Short: "Play a level in the terminal",
		Long: `Play a level interactively.

Keys: arrows or WASD move, z undo, p pause/resume, r restart, ? help, q quit.
With --db the whole trial is written to the trial log.

Examples:
  ruleboard play levels/corridor.yaml
  ruleboard play levels/corridor.yaml --db trials.db --time-limit 2m`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite trial log")
	cmd.Flags().DurationVar(&opts.TimeLimit, "time-limit", 0, "override the level's time limit (0 keeps it)")

	return cmd
}

func runPlay(ctx context.Context, opts *PlayOptions, path string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	out := opts.formatter(cmd)

	def, err := level.LoadFile(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load level", err)
	}

	// The terminal belongs to the UI while playing.
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sess, err := engine.New(def, sessionOptions(logger, opts.TimeLimit, nil)...)
	if err != nil {
		return WrapExitError(ExitFailure, "invalid level", err)
	}

	var modelOpts []tui.Option
	var rec *store.Recorder
	if db := opts.database(opts.Database); db != "" {
		st, err := store.Open(db)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer st.Close()
		rec, err = store.NewRecorder(ctx, st, sess)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to register session", err)
		}
		modelOpts = append(modelOpts, tui.WithSink(rec))
	}

	model := tui.New(ctx, sess, modelOpts...)
	program := tea.NewProgram(model,
		tea.WithContext(ctx),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
		tea.WithAltScreen(),
	)
	if _, err := program.Run(); err != nil {
		return WrapExitError(ExitCommandError, "terminal UI failed", err)
	}
	if err := model.Err(); err != nil {
		return WrapExitError(ExitCommandError, "failed to write trial log", err)
	}

	if rec != nil {
		if err := rec.Finish(ctx, sess); err != nil {
			return WrapExitError(ExitCommandError, "failed to write trial log", err)
		}
	}

	sum := sess.Summary()
	if out.JSON() {
		return out.Encode(CLIResponse{Status: "ok", Data: sum, SessionID: sess.ID()})
	}
	fmt.Fprintf(out.Writer, "%s: %s after %d moves (%d undos, %d restarts) in %s\n",
		sum.LevelID, sum.Outcome, sum.Moves, sum.Undos, sum.Restarts,
		(time.Duration(sum.ElapsedMillis) * time.Millisecond).String())
	return nil
}
