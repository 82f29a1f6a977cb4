package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/roach88/ruleboard/internal/analytics"
	"github.com/roach88/ruleboard/internal/engine"
	"github.com/roach88/ruleboard/internal/ir"
	"github.com/roach88/ruleboard/internal/level"
)

// SessionRow is a stored session header.
type SessionRow struct {
	ID            string
	Seq           int64
	LevelID       string
	Level         *level.Definition
	LevelHash     string
	EngineVersion string
	ModelVersion  string
}

// CommandRow is one stored command-stream entry.
type CommandRow struct {
	Seq     int
	Command ir.Command
	Offset  time.Duration
	Changed bool
}

// Timed converts the row to the form engine.Replay consumes.
func (r CommandRow) Timed() engine.TimedCommand {
	return engine.TimedCommand{Command: r.Command, Offset: r.Offset}
}

// ReadSession returns one session header.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadSession(ctx context.Context, id string) (SessionRow, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, seq, level_id, level, level_hash, engine_version, model_version
		FROM sessions
		WHERE id = ?
	`, id)
	return scanSession(row)
}

// ListSessions returns every session in insertion order.
//
// Returns empty slice (not nil) if the log is empty.
func (s *Store) ListSessions(ctx context.Context) ([]SessionRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seq, level_id, level, level_hash, engine_version, model_version
		FROM sessions
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []SessionRow{}
	for rows.Next() {
		sr, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// ReadCommands returns a session's command stream ordered by seq.
//
// Returns empty slice (not nil) if the session has no commands.
func (s *Store) ReadCommands(ctx context.Context, sessionID string) ([]CommandRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, command, offset_ns, changed
		FROM commands
		WHERE session_id = ?
		ORDER BY seq ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query commands: %w", err)
	}
	defer rows.Close()

	cmds := []CommandRow{}
	for rows.Next() {
		var (
			row    CommandRow
			text   string
			offset int64
		)
		if err := rows.Scan(&row.Seq, &text, &offset, &row.Changed); err != nil {
			return nil, fmt.Errorf("scan command: %w", err)
		}
		cmd, err := ir.ParseCommand(text)
		if err != nil {
			return nil, fmt.Errorf("command %d: %w", row.Seq, err)
		}
		row.Command = cmd
		row.Offset = time.Duration(offset)
		cmds = append(cmds, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate commands: %w", err)
	}
	return cmds, nil
}

// LastCommandSeq returns the highest command seq of a session, or 0.
func (s *Store) LastCommandSeq(ctx context.Context, sessionID string) (int, error) {
	var seq sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT MAX(seq) FROM commands WHERE session_id = ?
	`, sessionID).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("last command seq: %w", err)
	}
	if !seq.Valid {
		return 0, nil
	}
	return int(seq.Int64), nil
}

// ReadRecords returns a session's analytics records ordered by index.
//
// Returns empty slice (not nil) if the session has no records.
func (s *Store) ReadRecords(ctx context.Context, sessionID string) ([]analytics.Record, error) {
	return s.queryRecords(ctx, `
		SELECT body FROM records
		WHERE session_id = ?
		ORDER BY seq ASC
	`, sessionID)
}

// ReadRecordsByTag returns a session's records carrying tag, ordered by index.
func (s *Store) ReadRecordsByTag(ctx context.Context, sessionID string, tag analytics.Tag) ([]analytics.Record, error) {
	return s.queryRecords(ctx, `
		SELECT body FROM records
		WHERE session_id = ? AND tag = ?
		ORDER BY seq ASC
	`, sessionID, string(tag))
}

func (s *Store) queryRecords(ctx context.Context, query string, args ...any) ([]analytics.Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	recs := []analytics.Record{}
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec, err := unmarshalRecord(body)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return recs, nil
}

// ReadSummary returns a session's summary.
// Returns sql.ErrNoRows if the session was never summarized.
func (s *Store) ReadSummary(ctx context.Context, sessionID string) (engine.Summary, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `
		SELECT body FROM summaries WHERE session_id = ?
	`, sessionID).Scan(&body)
	if err != nil {
		return engine.Summary{}, err
	}
	return unmarshalSummary(body)
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (SessionRow, error) {
	var (
		sr        SessionRow
		levelJSON string
	)
	err := row.Scan(&sr.ID, &sr.Seq, &sr.LevelID, &levelJSON, &sr.LevelHash, &sr.EngineVersion, &sr.ModelVersion)
	if err != nil {
		if err == sql.ErrNoRows {
			return SessionRow{}, err
		}
		return SessionRow{}, fmt.Errorf("scan session: %w", err)
	}
	def, err := unmarshalLevel(levelJSON)
	if err != nil {
		return SessionRow{}, err
	}
	sr.Level = def
	return sr, nil
}
