// Package tui is the terminal frontend: a bubbletea model that feeds key
// presses to a session as commands and draws the board with lipgloss.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/roach88/ruleboard/internal/analytics"
	"github.com/roach88/ruleboard/internal/engine"
	"github.com/roach88/ruleboard/internal/ir"
)

// Sink receives every applied command. store.Recorder implements it.
type Sink interface {
	Observe(ctx context.Context, sess *engine.Session, out engine.Outcome) error
}

type tickMsg time.Time

// Model is the bubbletea model for one play session.
type Model struct {
	ctx    context.Context
	sess   *engine.Session
	sink   Sink
	logger *slog.Logger

	keys keyMap
	help help.Model

	status   string
	err      error
	timedOut bool
	quitting bool
}

// Option configures a Model.
type Option func(*Model)

// WithSink sends every outcome to s after it is applied.
func WithSink(s Sink) Option {
	return func(m *Model) {
		m.sink = s
	}
}

// WithLogger sets the logger for sink failures.
func WithLogger(l *slog.Logger) Option {
	return func(m *Model) {
		m.logger = l
	}
}

// New wraps sess in a model.
func New(ctx context.Context, sess *engine.Session, opts ...Option) *Model {
	m := &Model{
		ctx:    ctx,
		sess:   sess,
		logger: slog.Default(),
		keys:   defaultKeys(),
		help:   help.New(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Err returns the first sink error, if any. Play stops at the first one.
func (m *Model) Err() error {
	return m.err
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init starts the clock refresh.
func (m *Model) Init() tea.Cmd {
	return tick()
}

// Update handles key presses and clock ticks.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		if !m.timedOut && m.sess.TimedOut() {
			m.timedOut = true
			m.status = "time is up"
		}
		return m, tick()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
		if m.timedOut {
			return m, nil
		}
		cmd, ok := m.keys.command(msg, m.sess.State() == engine.StatePaused)
		if !ok {
			return m, nil
		}
		if err := m.apply(cmd); err != nil {
			m.err = err
			return m, tea.Quit
		}
	}
	return m, nil
}

// apply runs one command and hands the outcome to the sink.
func (m *Model) apply(cmd ir.Command) error {
	out := m.sess.Apply(cmd)
	m.status = describe(out)

	if m.sink == nil {
		m.sess.DrainRecords()
		return nil
	}
	if err := m.sink.Observe(m.ctx, m.sess, out); err != nil {
		m.logger.Error("trial log write failed", "error", err)
		return fmt.Errorf("record %s: %w", cmd, err)
	}
	return nil
}

// describe is the status line for an outcome.
func describe(out engine.Outcome) string {
	switch {
	case out.Move != nil && out.Move.Ignored:
		return "move ignored"
	case out.Move != nil && out.Move.Won:
		return "you win!"
	case out.Undo != nil && !out.Undo.Undone:
		return "nothing to undo"
	case out.Record == nil:
		return ""
	}
	switch out.Record.Tag {
	case analytics.TagNoOp:
		return "blocked"
	case analytics.TagOverlapDefeat:
		return "defeated (z to undo)"
	}
	if out.Record.RuleDelta.Effect != "none" {
		return "rules " + string(out.Record.RuleDelta.Effect)
	}
	return string(out.Record.Tag)
}

// View draws the board, the rules and the status line.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	snap := m.sess.Snapshot()

	title := titleStyle.Render(fmt.Sprintf("ruleboard · %s", snap.LevelID))
	board := boardStyle.Render(styledGrid(snap))
	rules := rulesStyle.Render("Rules\n" + strings.Join(RuleLines(snap), "\n"))
	body := lipgloss.JoinHorizontal(lipgloss.Top, board, " ", rules)

	var state string
	switch snap.State {
	case engine.StateWon:
		state = wonStyle.Render("WON")
	case engine.StateDefeated:
		state = lostStyle.Render("DEFEATED")
	default:
		state = strings.ToUpper(string(snap.State))
	}

	line := fmt.Sprintf("%s  moves %d  %s", state, snap.MoveCount, m.clock())
	if m.status != "" {
		line += "  · " + m.status
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		body,
		infoStyle.Render(line),
		m.help.View(m.keys),
	)
}

func (m *Model) clock() string {
	remaining, limited := m.sess.RemainingTime()
	if !limited {
		return "time " + m.sess.Elapsed().Truncate(time.Second).String()
	}
	return "left " + remaining.Truncate(time.Second).String()
}
