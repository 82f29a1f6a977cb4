package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/ruleboard/internal/analytics"
	"github.com/roach88/ruleboard/internal/engine"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	Session  string
	Tag      string
}

// TraceResult is the output of the trace command.
type TraceResult struct {
	SessionID string             `json:"session_id"`
	LevelID   string             `json:"level_id"`
	Records   []analytics.Record `json:"records"`
	Summary   *engine.Summary    `json:"summary,omitempty"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show the analytics records of a stored session",
		Long: `Print the analytics records logged for a session, optionally filtered by
tag, followed by the end-of-trial summary when one was written.

Exit codes:
  0 - Success
  2 - Command error (missing database, unknown session or tag)

Examples:
  ruleboard trace --db trials.db --session 0190a5c2-...
  ruleboard trace --db trials.db --session 0190a5c2-... --tag push_text
  ruleboard trace --db trials.db --session 0190a5c2-... --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite trial log")
	cmd.Flags().StringVar(&opts.Session, "session", "", "session ID (required)")
	cmd.Flags().StringVar(&opts.Tag, "tag", "", "only records with this tag")
	_ = cmd.MarkFlagRequired("session")

	return cmd
}

func runTrace(ctx context.Context, opts *TraceOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	out := opts.formatter(cmd)

	var tag analytics.Tag
	if opts.Tag != "" {
		t, err := analytics.ParseTag(opts.Tag)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid --tag", err)
		}
		tag = t
	}

	st, err := openStore(opts.RootOptions, opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	row, err := st.ReadSession(ctx, opts.Session)
	if errors.Is(err, sql.ErrNoRows) {
		if out.JSON() {
			_ = out.Error(CodeNotFound, fmt.Sprintf("session not found: %s", opts.Session), nil)
		}
		return NewExitError(ExitCommandError, fmt.Sprintf("session not found: %s", opts.Session))
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read session", err)
	}

	var records []analytics.Record
	if tag != "" {
		records, err = st.ReadRecordsByTag(ctx, row.ID, tag)
	} else {
		records, err = st.ReadRecords(ctx, row.ID)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read records", err)
	}

	result := TraceResult{SessionID: row.ID, LevelID: row.LevelID, Records: records}
	sum, err := st.ReadSummary(ctx, row.ID)
	switch {
	case err == nil:
		result.Summary = &sum
	case !errors.Is(err, sql.ErrNoRows):
		return WrapExitError(ExitCommandError, "failed to read summary", err)
	}

	if out.JSON() {
		return out.Encode(CLIResponse{Status: "ok", Data: result, SessionID: row.ID})
	}

	w := out.Writer
	fmt.Fprintf(w, "Session %s (level %s): %d records\n", row.ID, row.LevelID, len(records))
	for _, r := range records {
		fmt.Fprintf(w, "  %s\n", formatRecord(r))
	}
	if result.Summary != nil {
		s := result.Summary
		fmt.Fprintf(w, "Outcome: %s  Moves: %d  Undos: %d  Pauses: %d  Restarts: %d  Elapsed: %dms\n",
			s.Outcome, s.Moves, s.Undos, s.Pauses, s.Restarts, s.ElapsedMillis)
	}
	return nil
}
