package store

import (
	"context"
	"fmt"

	"github.com/roach88/ruleboard/internal/engine"
)

// Recorder streams one session into the trial log.
//
// Call Observe after every command and Finish once at the end. Recorder
// drains the session's record buffer; nothing else should.
type Recorder struct {
	store     *Store
	sessionID string
	seq       int
}

// NewRecorder registers sess and returns a recorder for it.
func NewRecorder(ctx context.Context, st *Store, sess *engine.Session) (*Recorder, error) {
	if err := st.WriteSession(ctx, sess.ID(), sess.Level()); err != nil {
		return nil, err
	}
	last, err := st.LastCommandSeq(ctx, sess.ID())
	if err != nil {
		return nil, err
	}
	return &Recorder{store: st, sessionID: sess.ID(), seq: last}, nil
}

// SessionID returns the session being recorded.
func (r *Recorder) SessionID() string {
	return r.sessionID
}

// Observe logs one applied command and the records it produced.
func (r *Recorder) Observe(ctx context.Context, sess *engine.Session, out engine.Outcome) error {
	r.seq++
	row := CommandRow{Seq: r.seq, Command: out.Command, Offset: out.Offset, Changed: out.Changed}
	if err := r.store.WriteCommand(ctx, r.sessionID, row); err != nil {
		return fmt.Errorf("observe: %w", err)
	}
	if err := r.store.WriteRecords(ctx, r.sessionID, sess.DrainRecords()); err != nil {
		return fmt.Errorf("observe: %w", err)
	}
	return nil
}

// Finish flushes pending records and stores the summary.
func (r *Recorder) Finish(ctx context.Context, sess *engine.Session) error {
	if err := r.store.WriteRecords(ctx, r.sessionID, sess.DrainRecords()); err != nil {
		return fmt.Errorf("finish: %w", err)
	}
	if err := r.store.WriteSummary(ctx, sess.Summary()); err != nil {
		return fmt.Errorf("finish: %w", err)
	}
	return nil
}
