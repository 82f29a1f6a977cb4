package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/ruleboard/internal/engine"
	"github.com/roach88/ruleboard/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	Session  string // specific session to replay (empty = all)
}

// SessionReplay is the replay outcome of one stored session.
type SessionReplay struct {
	SessionID     string `json:"session_id"`
	LevelID       string `json:"level_id"`
	Commands      int    `json:"commands"`
	Records       int    `json:"records"`
	Deterministic bool   `json:"deterministic"`
	Error         string `json:"error,omitempty"`
}

// ReplayResult is the output of the replay command.
type ReplayResult struct {
	Sessions  []SessionReplay `json:"sessions"`
	Total     int             `json:"total"`
	Diverged  int             `json:"diverged"`
	Identical bool            `json:"identical"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay stored sessions and verify determinism",
		Long: `Replay the command stream of stored sessions against the stored level and
compare the regenerated analytics records with the logged ones.

Exit codes:
  0 - Every replay reproduced its records exactly
  1 - At least one replay diverged
  2 - Command error (missing database, unknown session)

Examples:
  ruleboard replay --db trials.db
  ruleboard replay --db trials.db --session 0190a5c2-...
  ruleboard replay --db trials.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite trial log")
	cmd.Flags().StringVar(&opts.Session, "session", "", "replay a single session")

	return cmd
}

// openStore opens the trial log named by the flag or config.
func openStore(root *RootOptions, flag string) (*store.Store, error) {
	db := root.database(flag)
	if db == "" {
		return nil, NewExitError(ExitCommandError, "no database: pass --db or set db in config")
	}
	st, err := store.Open(db)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

func runReplay(ctx context.Context, opts *ReplayOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	out := opts.formatter(cmd)
	logger := opts.logger(cmd.ErrOrStderr())

	st, err := openStore(opts.RootOptions, opts.Database)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	var sessions []store.SessionRow
	if opts.Session != "" {
		row, err := st.ReadSession(ctx, opts.Session)
		if errors.Is(err, sql.ErrNoRows) {
			return NewExitError(ExitCommandError, fmt.Sprintf("session not found: %s", opts.Session))
		}
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read session", err)
		}
		sessions = []store.SessionRow{row}
	} else {
		sessions, err = st.ListSessions(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list sessions", err)
		}
	}

	result := ReplayResult{Sessions: make([]SessionReplay, 0, len(sessions)), Total: len(sessions)}
	for _, row := range sessions {
		r := replaySession(ctx, st, row, logger)
		if !r.Deterministic {
			result.Diverged++
		}
		result.Sessions = append(result.Sessions, r)
	}
	result.Identical = result.Diverged == 0

	if out.JSON() {
		resp := CLIResponse{Status: "ok", Data: result}
		if !result.Identical {
			resp.Status = "error"
			resp.Error = &CLIError{
				Code:    CodeReplayDiverged,
				Message: fmt.Sprintf("%d session(s) diverged", result.Diverged),
			}
		}
		if err := out.Encode(resp); err != nil {
			return err
		}
	} else {
		outputReplayText(out, result)
	}

	if !result.Identical {
		return NewExitError(ExitFailure, fmt.Sprintf("%d session(s) diverged", result.Diverged))
	}
	return nil
}

// replaySession re-executes one session with its original ID so the
// regenerated records carry the same session identity.
func replaySession(ctx context.Context, st *store.Store, row store.SessionRow, logger *slog.Logger) SessionReplay {
	r := SessionReplay{SessionID: row.ID, LevelID: row.LevelID}

	rows, err := st.ReadCommands(ctx, row.ID)
	if err != nil {
		r.Error = fmt.Sprintf("read commands: %v", err)
		return r
	}
	want, err := st.ReadRecords(ctx, row.ID)
	if err != nil {
		r.Error = fmt.Sprintf("read records: %v", err)
		return r
	}
	r.Commands = len(rows)
	r.Records = len(want)

	cmds := make([]engine.TimedCommand, len(rows))
	for i, c := range rows {
		cmds[i] = c.Timed()
	}

	_, got, err := engine.Replay(row.Level, cmds,
		engine.WithIDGenerator(engine.NewFixedGenerator(row.ID)),
		engine.WithLogger(logger),
	)
	if err != nil {
		r.Error = err.Error()
		return r
	}
	if err := engine.VerifyRecords(want, got); err != nil {
		r.Error = err.Error()
		return r
	}
	r.Deterministic = true
	return r
}

func outputReplayText(out *OutputFormatter, result ReplayResult) {
	w := out.Writer
	if result.Total == 0 {
		fmt.Fprintln(w, "No sessions to replay.")
		return
	}
	for _, s := range result.Sessions {
		if s.Deterministic {
			fmt.Fprintf(w, "✓ %s (%s): %d commands, %d records\n", s.SessionID, s.LevelID, s.Commands, s.Records)
			continue
		}
		fmt.Fprintf(w, "✗ %s (%s): %s\n", s.SessionID, s.LevelID, s.Error)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Replay Summary: %d identical, %d diverged, %d total\n",
		result.Total-result.Diverged, result.Diverged, result.Total)
}
