package cli

import (
	"fmt"
	"strings"

	"github.com/roach88/ruleboard/internal/engine"
	"github.com/roach88/ruleboard/internal/ir"
)

// step is one entry of a --moves script.
type step struct {
	cmd ir.Command

	// toggle marks the compact 'p', which pauses an active session and
	// resumes a paused one.
	toggle bool
}

// parseMoves reads a move script in one of two forms.
//
// Compact: one letter per command. u d l r move, z undoes, p toggles pause
// and R restarts. Spaces are not allowed in this form.
//
// Words: commands separated by commas or spaces, each read by
// ir.ParseCommand ("up,right,undo,pause,resume,restart").
func parseMoves(script string) ([]step, error) {
	script = strings.TrimSpace(script)
	if script == "" {
		return nil, nil
	}

	if strings.ContainsAny(script, ", \t") {
		words := strings.FieldsFunc(script, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t'
		})
		steps := make([]step, 0, len(words))
		for i, w := range words {
			cmd, err := ir.ParseCommand(w)
			if err != nil {
				return nil, fmt.Errorf("move %d: %w", i+1, err)
			}
			steps = append(steps, step{cmd: cmd})
		}
		return steps, nil
	}

	steps := make([]step, 0, len(script))
	for i, r := range script {
		switch r {
		case 'u', 'U':
			steps = append(steps, step{cmd: ir.Move(ir.Up)})
		case 'd', 'D':
			steps = append(steps, step{cmd: ir.Move(ir.Down)})
		case 'l', 'L':
			steps = append(steps, step{cmd: ir.Move(ir.Left)})
		case 'r':
			steps = append(steps, step{cmd: ir.Move(ir.Right)})
		case 'z', 'Z':
			steps = append(steps, step{cmd: ir.Meta(ir.CommandUndo)})
		case 'p', 'P':
			steps = append(steps, step{cmd: ir.Meta(ir.CommandPause), toggle: true})
		case 'R':
			steps = append(steps, step{cmd: ir.Meta(ir.CommandRestart)})
		default:
			return nil, fmt.Errorf("move %d: unknown move %q", i+1, r)
		}
	}
	return steps, nil
}

// resolve turns a toggle into pause or resume for the session's state.
func (s step) resolve(sess *engine.Session) ir.Command {
	if s.toggle && sess.State() == engine.StatePaused {
		return ir.Meta(ir.CommandResume)
	}
	return s.cmd
}
