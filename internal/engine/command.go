package engine

import (
	"time"

	"github.com/roach88/ruleboard/internal/analytics"
	"github.com/roach88/ruleboard/internal/ir"
)

// Outcome is the result of one command from the command stream.
type Outcome struct {
	Command ir.Command

	// Offset is the wall time since session start at which the command was
	// applied, pauses included. It is what a replay needs to reproduce the
	// command's timing.
	Offset time.Duration

	// Changed is true if the command altered the session: a successful move,
	// an undo with history, a pause or resume that toggled, or a restart.
	Changed bool

	// Move is set for move commands, Undo for undo commands.
	Move *MoveResult
	Undo *UndoResult

	// Record is the analytics entry the command produced, if any.
	Record *analytics.Record
}

// Apply runs one command. It is the single entry point for callers that
// drive the session from a command stream.
func (s *Session) Apply(cmd ir.Command) Outcome {
	out := Outcome{Command: cmd, Offset: s.offset()}
	n := len(s.records)

	switch cmd.Kind {
	case ir.CommandMove:
		res := s.Move(cmd.Dir)
		out.Move = &res
		out.Changed = res.Moved
	case ir.CommandUndo:
		res := s.Undo()
		out.Undo = &res
		out.Changed = res.Undone
	case ir.CommandPause:
		out.Changed = s.Pause()
	case ir.CommandResume:
		out.Changed = s.Resume()
	case ir.CommandRestart:
		s.Restart()
		out.Changed = true
	default:
		s.logger.Warn("unknown command ignored", "kind", cmd.Kind)
		return out
	}

	// Restart empties the buffer before appending its own record.
	if len(s.records) > 0 && (len(s.records) > n || cmd.Kind == ir.CommandRestart) {
		rec := s.records[len(s.records)-1]
		out.Record = &rec
	}
	return out
}
