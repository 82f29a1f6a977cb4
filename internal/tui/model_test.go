package tui

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ruleboard/internal/analytics"
	"github.com/roach88/ruleboard/internal/engine"
	"github.com/roach88/ruleboard/internal/ir"
	"github.com/roach88/ruleboard/internal/level"
	"github.com/roach88/ruleboard/internal/rules"
	"github.com/roach88/ruleboard/internal/testutil"
)

type fakeSink struct {
	outcomes []engine.Outcome
	records  int
	err      error
}

func (s *fakeSink) Observe(_ context.Context, sess *engine.Session, out engine.Outcome) error {
	s.outcomes = append(s.outcomes, out)
	s.records += len(sess.DrainRecords())
	return s.err
}

func newSession(t *testing.T) *engine.Session {
	t.Helper()
	def := &level.Definition{
		ID:     "walkway",
		Width:  4,
		Height: 2,
		Elements: []level.Element{
			{Type: "TEXT_PUMPKIN", X: 0, Y: 0},
			{Type: "TEXT_IS", X: 1, Y: 0},
			{Type: "TEXT_YOU", X: 2, Y: 0},
			{Type: "PUMPKIN", X: 0, Y: 1},
		},
	}
	sess, err := engine.New(def,
		engine.WithClock(testutil.NewFakeClock()),
		engine.WithIDGenerator(testutil.NewFixedIDGenerator("")),
		engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	require.NoError(t, err)
	return sess
}

func press(s string) tea.KeyMsg {
	switch s {
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestGrid(t *testing.T) {
	sess := newSession(t)
	assert.Equal(t, "PIY.\np...", Grid(sess.Snapshot()))
	assert.Equal(t, []string{"PUMPKIN IS YOU"}, RuleLines(sess.Snapshot()))
}

func TestKeyCommands(t *testing.T) {
	k := defaultKeys()
	tests := []struct {
		key    string
		paused bool
		want   ir.Command
	}{
		{"right", false, ir.Move(ir.Right)},
		{"d", false, ir.Move(ir.Right)},
		{"w", false, ir.Move(ir.Up)},
		{"a", false, ir.Move(ir.Left)},
		{"s", false, ir.Move(ir.Down)},
		{"z", false, ir.Meta(ir.CommandUndo)},
		{"p", false, ir.Meta(ir.CommandPause)},
		{"p", true, ir.Meta(ir.CommandResume)},
		{"r", false, ir.Meta(ir.CommandRestart)},
	}
	for _, tt := range tests {
		got, ok := k.command(press(tt.key), tt.paused)
		require.True(t, ok, tt.key)
		assert.Equal(t, tt.want, got, tt.key)
	}

	_, ok := k.command(press("x"), false)
	assert.False(t, ok)
}

func TestUpdate_MovesAndRecords(t *testing.T) {
	sess := newSession(t)
	sink := &fakeSink{}
	m := New(context.Background(), sess, WithSink(sink))

	m.Update(press("right"))
	m.Update(press("d"))
	m.Update(press("z"))

	assert.Equal(t, 1, sess.MoveCount())
	require.Len(t, sink.outcomes, 3)
	assert.Equal(t, 3, sink.records)
	assert.Empty(t, sess.Records(), "records are drained after every command")
	assert.Equal(t, "undo", m.status)
}

func TestUpdate_PauseToggle(t *testing.T) {
	sess := newSession(t)
	m := New(context.Background(), sess)

	m.Update(press("p"))
	assert.Equal(t, engine.StatePaused, sess.State())
	m.Update(press("right"))
	assert.Equal(t, "move ignored", m.status)
	m.Update(press("p"))
	assert.Equal(t, engine.StateActive, sess.State())
}

func TestUpdate_Quit(t *testing.T) {
	m := New(context.Background(), newSession(t))
	_, cmd := m.Update(press("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.Equal(t, "", m.View())
}

func TestUpdate_SinkErrorStopsPlay(t *testing.T) {
	sink := &fakeSink{err: errors.New("disk full")}
	m := New(context.Background(), newSession(t), WithSink(sink),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	_, cmd := m.Update(press("right"))
	require.NotNil(t, cmd)
	require.Error(t, m.Err())
	assert.Contains(t, m.Err().Error(), "disk full")
}

func TestDescribe_WinFollowsMoveResult(t *testing.T) {
	tests := []struct {
		name string
		out  engine.Outcome
		want string
	}{
		{
			"win tag without a win",
			engine.Outcome{
				Move:   &engine.MoveResult{Moved: true},
				Record: &analytics.Record{Tag: analytics.TagOverlapWin, RuleDelta: analytics.RuleDelta{Effect: rules.EffectNone}},
			},
			string(analytics.TagOverlapWin),
		},
		{
			"win tag with a win",
			engine.Outcome{
				Move:   &engine.MoveResult{Moved: true, Won: true},
				Record: &analytics.Record{Tag: analytics.TagOverlapWin, Won: true, RuleDelta: analytics.RuleDelta{Effect: rules.EffectNone}},
			},
			"you win!",
		},
		{
			"win after a rule change",
			engine.Outcome{
				Move:   &engine.MoveResult{Moved: true, Won: true},
				Record: &analytics.Record{Tag: analytics.TagPushText, Won: true, RuleDelta: analytics.RuleDelta{Effect: rules.EffectCreated}},
			},
			"you win!",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, describe(tt.out))
		})
	}
}

func TestView(t *testing.T) {
	m := New(context.Background(), newSession(t))
	view := m.View()
	assert.Contains(t, view, "walkway")
	assert.Contains(t, view, "PUMPKIN IS YOU")
	assert.Contains(t, view, "moves 0")
}
