package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ruleboard/internal/analytics"
	"github.com/roach88/ruleboard/internal/engine"
	"github.com/roach88/ruleboard/internal/ir"
	"github.com/roach88/ruleboard/internal/level"
	"github.com/roach88/ruleboard/internal/rules"
	"github.com/roach88/ruleboard/internal/testutil"
)

func testLevel() *level.Definition {
	end := 2
	return &level.Definition{
		ID:               "corridor",
		Width:            5,
		Height:           3,
		TimeLimitSeconds: 60,
		Elements: []level.Element{
			{Type: "text_sun", X: 0, Y: 0},
			{Type: "text_is", X: 1, Y: 0},
			{Type: "text_you", X: 2, Y: 0},
			{Type: "text_wall", X: 0, Y: 1},
			{Type: "text_is", X: 1, Y: 1},
			{Type: "text_stop", X: 2, Y: 1},
			{Type: "sun", X: 0, Y: 2},
			{Type: "wall", X: 3, Y: 0, YEnd: &end},
		},
		Rules: []level.RuleSpec{{Subject: "wall", Predicate: "stop"}},
	}
}

func TestWriteSession_RoundTrip(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	def := testLevel()

	require.NoError(t, s.WriteSession(ctx, "s-1", def))
	require.NoError(t, s.WriteSession(ctx, "s-1", def), "duplicate session is ignored")
	require.NoError(t, s.WriteSession(ctx, "s-2", def))

	got, err := s.ReadSession(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Seq)
	assert.Equal(t, "corridor", got.LevelID)
	assert.Equal(t, def, got.Level)
	assert.Len(t, got.LevelHash, 64)
	assert.Equal(t, ir.EngineVersion, got.EngineVersion)

	list, err := s.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "s-1", list[0].ID)
	assert.Equal(t, "s-2", list[1].ID)
	assert.Equal(t, list[0].LevelHash, list[1].LevelHash)

	_, err = s.ReadSession(ctx, "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestListSessions_Empty(t *testing.T) {
	s := openTemp(t)

	list, err := s.ListSessions(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestWriteCommand_RequiresSession(t *testing.T) {
	s := openTemp(t)

	err := s.WriteCommand(context.Background(), "nope", CommandRow{Seq: 1, Command: ir.Move(ir.Up)})

	assert.Error(t, err, "foreign key enforced")
}

func TestCommands_RoundTrip(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	require.NoError(t, s.WriteSession(ctx, "s-1", testLevel()))

	want := []CommandRow{
		{Seq: 1, Command: ir.Move(ir.Right), Offset: 1500 * time.Millisecond, Changed: true},
		{Seq: 2, Command: ir.Meta(ir.CommandPause), Offset: 2 * time.Second, Changed: true},
		{Seq: 3, Command: ir.Meta(ir.CommandResume), Offset: 9*time.Second + 17, Changed: true},
		{Seq: 4, Command: ir.Meta(ir.CommandUndo), Offset: 10 * time.Second},
	}
	// Written out of order; read back by seq.
	for _, i := range []int{2, 0, 3, 1} {
		require.NoError(t, s.WriteCommand(ctx, "s-1", want[i]))
	}

	got, err := s.ReadCommands(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	last, err := s.LastCommandSeq(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, 4, last)

	last, err = s.LastCommandSeq(ctx, "other")
	require.NoError(t, err)
	assert.Zero(t, last)

	assert.Equal(t, engine.TimedCommand{Command: ir.Move(ir.Right), Offset: 1500 * time.Millisecond}, got[0].Timed())
}

func TestRecords_RoundTrip(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	require.NoError(t, s.WriteSession(ctx, "s-1", testLevel()))

	recs := []analytics.Record{
		analytics.Build(analytics.State{}, analytics.State{Rules: []ir.Rule{ir.Is("SUN", "YOU")}, MoveCount: 1},
			ir.Move(ir.Left), analytics.MoveDetail{Moved: true}, analytics.Meta{Index: 1, Elapsed: time.Second}),
		analytics.Build(analytics.State{}, analytics.State{}, ir.Meta(ir.CommandPause),
			analytics.MoveDetail{}, analytics.Meta{Index: 2}),
	}
	require.NoError(t, s.WriteRecords(ctx, "s-1", recs))
	require.NoError(t, s.WriteRecords(ctx, "s-1", recs[:1]), "rewrites are ignored")
	require.NoError(t, s.WriteRecords(ctx, "s-1", nil))

	got, err := s.ReadRecords(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, recs, got)
	assert.Equal(t, rules.EffectCreated, got[0].RuleDelta.Effect)

	paused, err := s.ReadRecordsByTag(ctx, "s-1", analytics.TagPause)
	require.NoError(t, err)
	require.Len(t, paused, 1)
	assert.Equal(t, 2, paused[0].Index)
}

func TestSummary_Upsert(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	require.NoError(t, s.WriteSession(ctx, "s-1", testLevel()))

	_, err := s.ReadSummary(ctx, "s-1")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	first := engine.Summary{SessionID: "s-1", LevelID: "corridor", Outcome: engine.OutcomeOpen, Moves: 2}
	require.NoError(t, s.WriteSummary(ctx, first))
	second := first
	second.Outcome = engine.OutcomeWon
	second.Won = true
	require.NoError(t, s.WriteSummary(ctx, second))

	got, err := s.ReadSummary(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, second, got)
}

func TestRecorder_ReplaysFromLog(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	clock := testutil.NewFakeClock()

	sess, err := engine.New(testLevel(),
		engine.WithClock(clock),
		engine.WithIDGenerator(testutil.NewFixedIDGenerator("trial-7")))
	require.NoError(t, err)

	rec, err := NewRecorder(ctx, s, sess)
	require.NoError(t, err)
	assert.Equal(t, "trial-7", rec.SessionID())

	for _, cmd := range []ir.Command{
		ir.Move(ir.Right), ir.Move(ir.Right), ir.Move(ir.Right),
		ir.Meta(ir.CommandPause), ir.Meta(ir.CommandResume), ir.Meta(ir.CommandUndo),
		ir.Move(ir.Right), ir.Move(ir.Up),
	} {
		clock.Advance(700 * time.Millisecond)
		require.NoError(t, rec.Observe(ctx, sess, sess.Apply(cmd)))
	}
	require.NoError(t, rec.Finish(ctx, sess))

	stored, err := s.ReadSession(ctx, "trial-7")
	require.NoError(t, err)
	cmds, err := s.ReadCommands(ctx, "trial-7")
	require.NoError(t, err)
	require.Len(t, cmds, 8)
	assert.False(t, cmds[2].Changed, "third move hits the wall")

	want, err := s.ReadRecords(ctx, "trial-7")
	require.NoError(t, err)

	timed := make([]engine.TimedCommand, len(cmds))
	for i, c := range cmds {
		timed[i] = c.Timed()
	}
	_, got, err := engine.Replay(stored.Level, timed)
	require.NoError(t, err)
	assert.NoError(t, engine.VerifyRecords(want, got))

	sum, err := s.ReadSummary(ctx, "trial-7")
	require.NoError(t, err)
	assert.Equal(t, sess.Summary(), sum)
}
