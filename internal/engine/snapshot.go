package engine

import (
	"time"

	"github.com/roach88/ruleboard/internal/interact"
	"github.com/roach88/ruleboard/internal/ir"
)

// ObjectView is the extracted, read-only form of one object.
type ObjectView struct {
	ID         ir.ObjectID `json:"id"`
	Kind       ir.Kind     `json:"kind"`
	X          int         `json:"x"`
	Y          int         `json:"y"`
	IsText     bool        `json:"is_text"`
	Properties []string    `json:"properties"`
}

// StateSnapshot is the state view handed to renderers and the trial log.
type StateSnapshot struct {
	SessionID  string       `json:"session_id"`
	LevelID    string       `json:"level_id"`
	Width      int          `json:"width"`
	Height     int          `json:"height"`
	State      State        `json:"state"`
	Objects    []ObjectView `json:"objects"`
	Rules      [][]string   `json:"rules"`
	Won        bool         `json:"won"`
	Defeated   bool         `json:"defeated"`
	WinStatus  string       `json:"win_status"`
	HasControl bool         `json:"has_control"`
	HasOverlap bool         `json:"has_overlap"`
	Player     *ir.Position `json:"player,omitempty"`
	MoveCount  int          `json:"move_count"`
	StateHash  string       `json:"state_hash"`
}

// Snapshot extracts the current state.
func (s *Session) Snapshot() StateSnapshot {
	objs := s.board.Objects()
	views := make([]ObjectView, len(objs))
	for i, o := range objs {
		views[i] = ObjectView{
			ID:         o.ID,
			Kind:       o.Kind,
			X:          o.Pos.X,
			Y:          o.Pos.Y,
			IsText:     o.IsText(),
			Properties: o.Flags.Names(),
		}
	}
	triples := make([][]string, len(s.rules))
	for i, r := range s.rules {
		triples[i] = r.Triple()
	}

	snap := StateSnapshot{
		SessionID:  s.id,
		LevelID:    s.def.ID,
		Width:      s.board.Width(),
		Height:     s.board.Height(),
		State:      s.State(),
		Objects:    views,
		Rules:      triples,
		Won:        s.win == interact.Won,
		Defeated:   s.defeated,
		WinStatus:  string(s.win),
		HasControl: s.hasPlayer,
		HasOverlap: len(interact.Overlaps(s.board)) > 0,
		MoveCount:  s.moves,
		StateHash:  ir.StateHash(objs, s.rules),
	}
	if s.hasPlayer {
		p := s.player
		snap.Player = &p
	}
	return snap
}

// Summary is the end-of-trial report.
type Summary struct {
	SessionID     string `json:"session_id"`
	LevelID       string `json:"level_id"`
	Outcome       string `json:"outcome"`
	Moves         int    `json:"moves"`
	Undos         int    `json:"undos"`
	Pauses        int    `json:"pauses"`
	Restarts      int    `json:"restarts"`
	ElapsedMillis int64  `json:"elapsed_ms"`

	// RemainingMillis is -1 when the level has no time limit.
	RemainingMillis int64 `json:"remaining_ms"`

	Won      bool `json:"won"`
	Defeated bool `json:"defeated"`
}

// Outcome values for Summary.
const (
	OutcomeWon      = "won"
	OutcomeDefeated = "defeated"
	OutcomeTimeout  = "timeout"
	OutcomeOpen     = "open"
)

// Summary reports cumulative counters and the trial outcome.
func (s *Session) Summary() Summary {
	sum := Summary{
		SessionID:       s.id,
		LevelID:         s.def.ID,
		Moves:           s.moves,
		Undos:           s.undos,
		Pauses:          s.pauses,
		Restarts:        s.restarts,
		ElapsedMillis:   s.Elapsed().Milliseconds(),
		RemainingMillis: -1,
		Won:             s.win == interact.Won,
		Defeated:        s.defeated,
	}

	remaining, limited := s.RemainingTime()
	if limited {
		sum.RemainingMillis = remaining.Milliseconds()
	}

	switch {
	case sum.Won:
		sum.Outcome = OutcomeWon
	case sum.Defeated:
		sum.Outcome = OutcomeDefeated
	case limited && remaining <= 0:
		sum.Outcome = OutcomeTimeout
	default:
		sum.Outcome = OutcomeOpen
	}
	return sum
}

// TimedOut reports whether a limited session has used up its time.
func (s *Session) TimedOut() bool {
	remaining, limited := s.RemainingTime()
	return limited && remaining <= time.Duration(0)
}
