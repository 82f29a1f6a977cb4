package engine

import (
	"log/slog"
	"time"

	"github.com/roach88/ruleboard/internal/analytics"
	"github.com/roach88/ruleboard/internal/grid"
	"github.com/roach88/ruleboard/internal/interact"
	"github.com/roach88/ruleboard/internal/ir"
	"github.com/roach88/ruleboard/internal/level"
	"github.com/roach88/ruleboard/internal/motion"
	"github.com/roach88/ruleboard/internal/props"
	"github.com/roach88/ruleboard/internal/rules"
)

// State is the coarse session state.
type State string

const (
	StateActive   State = "active"
	StatePaused   State = "paused"
	StateDefeated State = "defeated"
	StateWon      State = "won"
)

// Session is one play-through of a level.
//
// A Session is not safe for concurrent use; callers serialize commands.
// Every accessor returns copies or immutable values, never live state.
type Session struct {
	id        string
	def       *level.Definition
	clock     Clock
	logger    *slog.Logger
	timeLimit time.Duration
	seq       sequence

	board     *grid.Board
	rules     []ir.Rule
	player    ir.Position
	hasPlayer bool
	history   []snapshot

	defeated bool
	win      interact.WinStatus
	paused   bool

	moves    int
	undos    int
	pauses   int
	restarts int

	start       time.Time
	pausedAt    time.Time
	pausedTotal time.Duration

	records []analytics.Record
}

// snapshot is one undo entry. Boards are immutable and rule slices are never
// written after creation, so entries share them with the live session.
type snapshot struct {
	board     *grid.Board
	rules     []ir.Rule
	player    ir.Position
	hasPlayer bool
}

// Option configures a Session.
type Option func(*Session)

// WithClock sets the clock used for elapsed and pause accounting.
//
// Default: SystemClock.
func WithClock(c Clock) Option {
	return func(s *Session) {
		s.clock = c
	}
}

// WithTimeLimit overrides the level's time limit. Zero means no limit.
func WithTimeLimit(d time.Duration) Option {
	return func(s *Session) {
		s.timeLimit = d
	}
}

// WithLogger sets the structured logger.
//
// Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

// WithIDGenerator sets the session ID source.
//
// Default: UUIDv7Generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(s *Session) {
		s.id = g.Generate()
	}
}

// New builds a session for a private copy of def. It fails only when the
// level itself is unusable; every later command succeeds or reports a typed
// result.
func New(def *level.Definition, opts ...Option) (*Session, error) {
	if def == nil {
		return nil, &SessionError{Code: ErrCodeInvalidLevel, Message: "level definition is missing"}
	}

	s := &Session{
		def:       def.Clone(),
		clock:     SystemClock{},
		logger:    slog.Default(),
		timeLimit: def.TimeLimit(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.timeLimit < 0 {
		return nil, &SessionError{
			Code:    ErrCodeInvalidOption,
			Message: "time limit must not be negative",
			LevelID: def.ID,
		}
	}
	if s.id == "" {
		s.id = UUIDv7Generator{}.Generate()
	}
	s.logger = s.logger.With("session", s.id, "level", def.ID)

	if err := s.load(); err != nil {
		return nil, err
	}
	s.start = s.clock.Now()

	s.logger.Debug("session created",
		"objects", s.board.Len(),
		"rules", len(s.rules),
		"time_limit", s.timeLimit)
	return s, nil
}

// load places the level's objects and derives the starting rule set.
// Seed rules take part only here; later ticks derive from the board alone.
func (s *Session) load() error {
	board, seed, err := level.Build(s.def)
	if err != nil {
		return invalidLevel(s.def.ID, err)
	}

	active := rules.Merge(rules.Derive(board), seed)
	res := props.Apply(board.Objects(), active)

	s.board = board.WithObjects(res.Objects)
	s.rules = active
	s.player, s.hasPlayer = res.Player, res.HasPlayer
	s.history = nil
	s.defeated = false
	s.win = idleWinStatus(s.board)
	s.moves = 0
	return nil
}

// idleWinStatus is the win status of a board nobody has moved on yet.
func idleWinStatus(b *grid.Board) interact.WinStatus {
	if _, ok := b.FirstWith(ir.PropWin); !ok {
		return interact.NoWinPossible
	}
	return interact.NotWon
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// LevelID returns the identifier of the level being played.
func (s *Session) LevelID() string { return s.def.ID }

// Level returns a copy of the definition the session was built from.
func (s *Session) Level() *level.Definition { return s.def.Clone() }

// Board returns the current board. Boards are immutable.
func (s *Session) Board() *grid.Board { return s.board }

// Rules returns a copy of the active rule set.
func (s *Session) Rules() []ir.Rule { return ir.CloneRules(s.rules) }

// Player returns the position of the first YOU object.
func (s *Session) Player() (ir.Position, bool) { return s.player, s.hasPlayer }

// MoveCount returns the number of successful moves net of undos.
func (s *Session) MoveCount() int { return s.moves }

// HistoryLen returns the number of undo entries available.
func (s *Session) HistoryLen() int { return len(s.history) }

// State returns the coarse session state. A paused session reports Paused
// whatever else is true, because the clock is what the caller polls.
func (s *Session) State() State {
	switch {
	case s.paused:
		return StatePaused
	case s.win == interact.Won:
		return StateWon
	case s.defeated:
		return StateDefeated
	}
	return StateActive
}

// Elapsed returns play time since the session started, excluding pauses.
// Restart does not reset it.
func (s *Session) Elapsed() time.Duration {
	now := s.clock.Now()
	paused := s.pausedTotal
	if s.paused {
		paused += now.Sub(s.pausedAt)
	}
	return now.Sub(s.start) - paused
}

// RemainingTime returns max(0, limit - elapsed). ok is false when the level
// has no time limit. The session never times out by itself; callers poll.
func (s *Session) RemainingTime() (remaining time.Duration, ok bool) {
	if s.timeLimit <= 0 {
		return 0, false
	}
	return max(0, s.timeLimit-s.Elapsed()), true
}

// offset is the wall time since start, pauses included. Replay uses it to
// reposition its clock.
func (s *Session) offset() time.Duration {
	return s.clock.Now().Sub(s.start)
}

func (s *Session) analyticsState() analytics.State {
	return analytics.State{
		Rules:     s.rules,
		Defeated:  s.defeated,
		Won:       s.win == interact.Won,
		MoveCount: s.moves,
	}
}

func (s *Session) record(pre analytics.State, cmd ir.Command, detail analytics.MoveDetail) analytics.Record {
	rec := analytics.Build(pre, s.analyticsState(), cmd, detail, analytics.Meta{
		Index:   s.seq.Next(),
		Elapsed: s.Elapsed(),
	})
	s.records = append(s.records, rec)
	s.logger.Debug("record",
		"index", rec.Index,
		"tag", rec.Tag,
		"command", rec.Command,
		"moves", rec.MoveCount,
		"rule_effect", rec.RuleDelta.Effect)
	return rec
}

// Records returns a copy of the analytics buffer.
func (s *Session) Records() []analytics.Record {
	return append([]analytics.Record(nil), s.records...)
}

// DrainRecords returns the analytics buffer and empties it.
func (s *Session) DrainRecords() []analytics.Record {
	out := s.records
	s.records = nil
	return out
}

// MoveResult reports the outcome of Move.
type MoveResult struct {
	// Moved is true if at least one YOU object changed cell.
	Moved bool

	// Ignored is true if the session state does not accept moves
	// (paused, defeated or won). Ignored moves produce no record.
	Ignored bool

	Won      bool
	Defeated bool
	Status   interact.WinStatus

	Displaced []motion.Displacement
	Touched   []ir.ObjectID
	Blocked   []motion.Blocked
	Removed   interact.Removal
	Delta     rules.Delta

	Record *analytics.Record
}

// Move attempts to move every YOU object one cell in dir.
func (s *Session) Move(dir ir.Direction) MoveResult {
	cmd := ir.Move(dir)
	if s.State() != StateActive {
		s.logger.Debug("move ignored", "dir", dir.String(), "state", s.State())
		return MoveResult{Ignored: true, Defeated: s.defeated, Won: s.win == interact.Won, Status: s.win}
	}

	pre := s.analyticsState()
	out := motion.Resolve(s.board, dir)
	if !out.Moved {
		rec := s.record(pre, cmd, analytics.MoveDetail{Touched: out.Touched})
		return MoveResult{
			Status:  s.win,
			Blocked: out.Blocked,
			Delta:   rules.Diff(s.rules, s.rules),
			Record:  &rec,
		}
	}

	s.history = append(s.history, snapshot{
		board:     s.board,
		rules:     s.rules,
		player:    s.player,
		hasPlayer: s.hasPlayer,
	})

	active := rules.Derive(out.Board)
	res := props.Apply(out.Board.Objects(), active)
	board, removal := interact.Resolve(out.Board.WithObjects(res.Objects))

	before := s.rules
	s.board = board
	s.rules = active
	s.player, s.hasPlayer = firstYou(board)
	s.defeated = interact.Defeated(board)
	s.win = interact.Win(board, s.defeated)
	s.moves++

	rec := s.record(pre, cmd, analytics.MoveDetail{
		Moved:       true,
		Displaced:   out.Displaced,
		Touched:     out.Touched,
		Removed:     removal.IDs(),
		Overlapping: len(interact.Overlaps(board)) > 0,
	})

	switch {
	case s.win == interact.Won:
		s.logger.Info("level won", "moves", s.moves, "elapsed", s.Elapsed())
	case s.defeated:
		s.logger.Info("defeated", "moves", s.moves)
	}

	return MoveResult{
		Moved:     true,
		Won:       s.win == interact.Won,
		Defeated:  s.defeated,
		Status:    s.win,
		Displaced: out.Displaced,
		Touched:   out.Touched,
		Blocked:   out.Blocked,
		Removed:   removal,
		Delta:     rules.Diff(before, active),
		Record:    &rec,
	}
}

func firstYou(b *grid.Board) (ir.Position, bool) {
	o, ok := b.FirstWith(ir.PropYou)
	return o.Pos, ok
}

// UndoResult reports the outcome of Undo.
type UndoResult struct {
	// Undone is false when there was no history to restore.
	Undone bool
	Delta  rules.Delta
	Record *analytics.Record
}

// Undo restores the state before the most recent successful move. It works
// in every state, including defeated and won, and clears both.
func (s *Session) Undo() UndoResult {
	if len(s.history) == 0 {
		return UndoResult{}
	}

	pre := s.analyticsState()
	last := s.history[len(s.history)-1]
	s.history = s.history[:len(s.history)-1]

	before := s.rules
	res := props.Flags(last.board.Objects(), last.rules)
	s.board = last.board.WithObjects(res.Objects)
	s.rules = last.rules
	s.player, s.hasPlayer = last.player, last.hasPlayer
	s.defeated = false
	s.win = idleWinStatus(s.board)
	s.moves = max(0, s.moves-1)
	s.undos++

	rec := s.record(pre, ir.Meta(ir.CommandUndo), analytics.MoveDetail{})
	return UndoResult{Undone: true, Delta: rules.Diff(before, s.rules), Record: &rec}
}

// Pause stops the play clock. It returns false if already paused.
func (s *Session) Pause() bool {
	if s.paused {
		return false
	}
	pre := s.analyticsState()
	s.paused = true
	s.pausedAt = s.clock.Now()
	s.pauses++
	s.record(pre, ir.Meta(ir.CommandPause), analytics.MoveDetail{})
	return true
}

// Resume restarts the play clock. It returns false if not paused.
func (s *Session) Resume() bool {
	if !s.paused {
		return false
	}
	pre := s.analyticsState()
	s.pausedTotal += s.clock.Now().Sub(s.pausedAt)
	s.paused = false
	s.record(pre, ir.Meta(ir.CommandResume), analytics.MoveDetail{})
	return true
}

// Restart reloads the original level. History and the analytics buffer are
// cleared; the start time and accumulated pause time are kept, so the time
// budget is not extended. A pending pause is closed first.
func (s *Session) Restart() {
	pre := s.analyticsState()
	if s.paused {
		s.pausedTotal += s.clock.Now().Sub(s.pausedAt)
		s.paused = false
	}
	// The definition already built once in New.
	if err := s.load(); err != nil {
		s.logger.Error("restart failed to reload level", "error", err)
		return
	}
	s.records = nil
	s.restarts++
	s.record(pre, ir.Meta(ir.CommandRestart), analytics.MoveDetail{})
	s.logger.Debug("restarted", "restarts", s.restarts)
}
