package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/ruleboard/internal/engine"
	"github.com/roach88/ruleboard/internal/store"
	"github.com/roach88/ruleboard/internal/testutil"
)

// Run executes a scenario and returns the result.
//
// Each run gets a fresh session on a fake clock with a fixed session ID, and
// an in-memory trial log. Assertions read the trace back from that log, so
// a scenario checks the stored records, not just the session's buffer.
//
// Returns an error only for setup failures (bad level, store errors).
// Assertion failures are reported in Result.Errors with Pass=false.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a caller-supplied context for store operations.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	def, err := scenario.Definition()
	if err != nil {
		return nil, fmt.Errorf("load level: %w", err)
	}
	steps, err := scenario.Steps()
	if err != nil {
		return nil, err
	}

	clock := testutil.NewFakeClock()
	sess, err := engine.New(def,
		engine.WithClock(clock),
		engine.WithIDGenerator(testutil.NewFixedIDGenerator(scenario.SessionID)),
		engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	st, err := store.OpenContext(ctx, store.MemoryPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	rec, err := store.NewRecorder(ctx, st, sess)
	if err != nil {
		return nil, fmt.Errorf("register session: %w", err)
	}

	for _, step := range steps {
		if step.Wait > 0 {
			clock.Advance(step.Wait)
			continue
		}
		out := sess.Apply(step.Command)
		if err := rec.Observe(ctx, sess, out); err != nil {
			return nil, err
		}
	}
	if err := rec.Finish(ctx, sess); err != nil {
		return nil, err
	}

	result := NewResult()
	trace, err := st.ReadRecords(ctx, sess.ID())
	if err != nil {
		return nil, fmt.Errorf("read trace: %w", err)
	}
	result.Trace = trace
	result.Summary, err = st.ReadSummary(ctx, sess.ID())
	if err != nil {
		return nil, fmt.Errorf("read summary: %w", err)
	}
	result.Final = sess.Snapshot()
	result.board = sess.Board()
	result.rules = sess.Rules()

	for i, assertion := range scenario.Assertions {
		if err := evaluate(ctx, st, sess.ID(), result, assertion); err != nil {
			result.AddError(fmt.Sprintf("assertion %d (%s): %v", i, assertion.Type, err))
		}
	}
	return result, nil
}
