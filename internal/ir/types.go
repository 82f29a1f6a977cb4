package ir

import (
	"fmt"
	"strings"
)

// Position is a grid cell. 0 <= X < width, 0 <= Y < height.
type Position struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Add returns p moved by d.
func (p Position) Add(d Direction) Position {
	return Position{X: p.X + d.DX, Y: p.Y + d.DY}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Direction is a unit move vector. Y grows downward.
type Direction struct {
	DX int `json:"dx"`
	DY int `json:"dy"`
}

// The four move directions.
var (
	Up    = Direction{DX: 0, DY: -1}
	Down  = Direction{DX: 0, DY: 1}
	Left  = Direction{DX: -1, DY: 0}
	Right = Direction{DX: 1, DY: 0}
)

// IsZero reports whether d is the zero vector.
func (d Direction) IsZero() bool {
	return d.DX == 0 && d.DY == 0
}

// String returns the direction name, or the raw vector for anything else.
func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return fmt.Sprintf("(%d,%d)", d.DX, d.DY)
}

// ParseDirection accepts direction names, single letters and WASD.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "u", "w", "north":
		return Up, nil
	case "down", "d", "s", "south":
		return Down, nil
	case "left", "l", "a", "west":
		return Left, nil
	case "right", "r", "east":
		return Right, nil
	}
	return Direction{}, fmt.Errorf("unknown direction %q", s)
}

// ObjectID identifies an object for the lifetime of a session.
// IDs are assigned at level load in declaration order and never reused.
type ObjectID int

// Object is an entity on the board: a world object or a text token.
//
// Objects are values. The engine replaces objects rather than mutating them
// in place, so a copy held by a snapshot never changes underneath it.
type Object struct {
	ID    ObjectID `json:"id"`
	Kind  Kind     `json:"kind"`
	Pos   Position `json:"pos"`
	Flags Flags    `json:"flags"`

	// Conditions lists the condition properties that granted conditional
	// flags during the last property pass. Rebuilt on every pass.
	Conditions []string `json:"conditions,omitempty"`
}

// IsText reports whether the object is a text token.
func (o Object) IsText() bool {
	return o.Kind.IsText()
}

// Has reports whether the object carries property p.
func (o Object) Has(p Property) bool {
	return o.Flags.Has(p)
}

// Clone returns a copy that shares no slices with o.
func (o Object) Clone() Object {
	c := o
	if o.Conditions != nil {
		c.Conditions = append([]string(nil), o.Conditions...)
	}
	return c
}

// CloneObjects deep-copies a slice of objects.
func CloneObjects(objs []Object) []Object {
	out := make([]Object, len(objs))
	for i, o := range objs {
		out[i] = o.Clone()
	}
	return out
}
