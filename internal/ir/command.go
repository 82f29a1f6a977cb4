package ir

import (
	"fmt"
	"strings"
)

// CommandKind is the type of a session command.
type CommandKind string

const (
	CommandMove    CommandKind = "move"
	CommandUndo    CommandKind = "undo"
	CommandPause   CommandKind = "pause"
	CommandResume  CommandKind = "resume"
	CommandRestart CommandKind = "restart"
)

// Command is one entry of the command stream a caller feeds the engine.
type Command struct {
	Kind CommandKind `json:"kind"`
	// Dir is set only for CommandMove.
	Dir Direction `json:"dir,omitempty"`
}

// Move builds a move command.
func Move(d Direction) Command {
	return Command{Kind: CommandMove, Dir: d}
}

// Meta builds a non-move command.
func Meta(kind CommandKind) Command {
	return Command{Kind: kind}
}

// String renders the command the way ParseCommand reads it.
func (c Command) String() string {
	if c.Kind == CommandMove {
		return c.Dir.String()
	}
	return string(c.Kind)
}

// ParseCommand reads "undo", "pause", "resume", "restart" or any direction
// accepted by ParseDirection.
func ParseCommand(s string) (Command, error) {
	switch k := CommandKind(strings.ToLower(strings.TrimSpace(s))); k {
	case CommandUndo, CommandPause, CommandResume, CommandRestart:
		return Meta(k), nil
	}
	d, err := ParseDirection(s)
	if err != nil {
		return Command{}, fmt.Errorf("unknown command %q", s)
	}
	return Move(d), nil
}
