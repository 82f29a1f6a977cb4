package store

import (
	"context"
	"fmt"

	"github.com/roach88/ruleboard/internal/analytics"
	"github.com/roach88/ruleboard/internal/engine"
	"github.com/roach88/ruleboard/internal/ir"
	"github.com/roach88/ruleboard/internal/level"
)

// WriteSession registers a session and the level it plays.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - writing the same session
// twice is silently ignored.
func (s *Store) WriteSession(ctx context.Context, id string, def *level.Definition) error {
	levelJSON, err := marshalLevel(def)
	if err != nil {
		return fmt.Errorf("write session: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions
		(id, seq, level_id, level, level_hash, engine_version, model_version)
		VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM sessions), ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		id,
		def.ID,
		levelJSON,
		ir.BytesHash(ir.DomainLevel, []byte(levelJSON)),
		ir.EngineVersion,
		ir.ModelVersion,
	)
	if err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// WriteCommand appends one command-stream entry. seq numbers the session's
// commands from 1 in the order they were applied.
//
// Note: The session must exist (foreign key constraint).
func (s *Store) WriteCommand(ctx context.Context, sessionID string, row CommandRow) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO commands
		(session_id, seq, command, offset_ns, changed)
		VALUES (?, ?, ?, ?, ?)
	`,
		sessionID,
		row.Seq,
		row.Command.String(),
		int64(row.Offset),
		row.Changed,
	)
	if err != nil {
		return fmt.Errorf("write command %d: %w", row.Seq, err)
	}
	return nil
}

// WriteRecords appends analytics records in a single transaction, keyed by
// their index. Records already present are ignored.
func (s *Store) WriteRecords(ctx context.Context, sessionID string, recs []analytics.Record) error {
	if len(recs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write records: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	for _, rec := range recs {
		body, err := marshalRecord(rec)
		if err != nil {
			return fmt.Errorf("write records: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO records
			(session_id, seq, tag, command, move_count, elapsed_ms, rule_effect, body, body_hash)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(session_id, seq) DO NOTHING
		`,
			sessionID,
			rec.Index,
			string(rec.Tag),
			rec.Command,
			rec.MoveCount,
			rec.ElapsedMillis,
			string(rec.RuleDelta.Effect),
			body,
			ir.BytesHash(ir.DomainRecord, []byte(body)),
		)
		if err != nil {
			return fmt.Errorf("write record %d: %w", rec.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write records: commit: %w", err)
	}
	return nil
}

// WriteSummary stores or replaces the session's summary. A session that is
// summarized more than once (e.g. after a late resume) keeps the latest.
func (s *Store) WriteSummary(ctx context.Context, sum engine.Summary) error {
	body, err := marshalSummary(sum)
	if err != nil {
		return fmt.Errorf("write summary: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO summaries (session_id, outcome, body)
		VALUES (?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET outcome = excluded.outcome, body = excluded.body
	`, sum.SessionID, sum.Outcome, body)
	if err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}
