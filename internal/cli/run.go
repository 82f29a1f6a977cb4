package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/ruleboard/internal/analytics"
	"github.com/roach88/ruleboard/internal/engine"
	"github.com/roach88/ruleboard/internal/level"
	"github.com/roach88/ruleboard/internal/store"
	"github.com/roach88/ruleboard/internal/tui"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Moves     string
	Database  string
	TimeLimit time.Duration

	// IDGenerator allows overriding the session ID generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	IDGenerator engine.IDGenerator
}

// RunResult is the output of the run command.
type RunResult struct {
	Snapshot engine.StateSnapshot `json:"snapshot"`
	Summary  engine.Summary       `json:"summary"`
	Records  []analytics.Record   `json:"records"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <level>",
		Short: "Apply a move script to a level",
		Long: `Apply a scripted command stream to a level and print the final state.

Moves are either compact letters (u d l r to move, z undo, p pause/resume,
R restart) or comma separated words (up,right,undo,restart).

With --db every command and record is written to the trial log, so the run
can be replayed and traced later.

Examples:
  ruleboard run levels/corridor.yaml --moves urrd
  ruleboard run levels/corridor.yaml --moves up,right,undo --format json
  ruleboard run levels/corridor.yaml --moves urrdz --db trials.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLevel(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Moves, "moves", "m", "", "move script")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite trial log")
	cmd.Flags().DurationVar(&opts.TimeLimit, "time-limit", 0, "override the level's time limit (0 keeps it)")

	return cmd
}

// sessionOptions builds the engine options shared by run and play.
func sessionOptions(logger *slog.Logger, limit time.Duration, gen engine.IDGenerator) []engine.Option {
	opts := []engine.Option{engine.WithLogger(logger)}
	if limit > 0 {
		opts = append(opts, engine.WithTimeLimit(limit))
	}
	if gen != nil {
		opts = append(opts, engine.WithIDGenerator(gen))
	}
	return opts
}

func runLevel(ctx context.Context, opts *RunOptions, path string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	out := opts.formatter(cmd)

	steps, err := parseMoves(opts.Moves)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --moves", err)
	}

	def, err := level.LoadFile(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load level", err)
	}

	logger := opts.logger(cmd.ErrOrStderr())
	sess, err := engine.New(def, sessionOptions(logger, opts.TimeLimit, opts.IDGenerator)...)
	if err != nil {
		return WrapExitError(ExitFailure, "invalid level", err)
	}

	var rec *store.Recorder
	if db := opts.database(opts.Database); db != "" {
		st, err := store.Open(db)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				logger.Error("error closing database", "error", closeErr)
			}
		}()
		rec, err = store.NewRecorder(ctx, st, sess)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to register session", err)
		}
		out.VerboseLog("recording session %s to %s", sess.ID(), db)
	}

	result := RunResult{Records: []analytics.Record{}}
	for _, s := range steps {
		o := sess.Apply(s.resolve(sess))
		if o.Record != nil {
			result.Records = append(result.Records, *o.Record)
		}
		if rec != nil {
			if err := rec.Observe(ctx, sess, o); err != nil {
				return WrapExitError(ExitCommandError, "failed to write trial log", err)
			}
		}
	}
	if rec != nil {
		if err := rec.Finish(ctx, sess); err != nil {
			return WrapExitError(ExitCommandError, "failed to write trial log", err)
		}
	}

	result.Snapshot = sess.Snapshot()
	result.Summary = sess.Summary()

	if out.JSON() {
		return out.Encode(CLIResponse{Status: "ok", Data: result, SessionID: sess.ID()})
	}
	return outputRunText(out, result)
}

func outputRunText(out *OutputFormatter, result RunResult) error {
	w := out.Writer
	snap := result.Snapshot

	fmt.Fprintf(w, "Level %s (%dx%d)\n\n", snap.LevelID, snap.Width, snap.Height)
	fmt.Fprintln(w, tui.Grid(snap))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Rules: %s\n", strings.Join(tui.RuleLines(snap), ", "))
	fmt.Fprintf(w, "State: %s  Moves: %d  Outcome: %s\n", snap.State, snap.MoveCount, result.Summary.Outcome)

	if out.Verbose {
		fmt.Fprintln(w)
		for _, r := range result.Records {
			fmt.Fprintf(w, "  %s\n", formatRecord(r))
		}
	}
	return nil
}

// formatRecord is the one-line text form of a record.
func formatRecord(r analytics.Record) string {
	line := fmt.Sprintf("[%d] %-14s %-7s moves=%d elapsed=%dms", r.Index, r.Tag, r.Command, r.MoveCount, r.ElapsedMillis)
	if r.RuleDelta.Effect != "none" && r.RuleDelta.Effect != "" {
		line += " rules=" + string(r.RuleDelta.Effect)
	}
	if len(r.Removed) > 0 {
		line += fmt.Sprintf(" removed=%v", r.Removed)
	}
	return line
}
