// Package motion resolves a directional move into push chains.
package motion

import (
	"github.com/roach88/ruleboard/internal/grid"
	"github.com/roach88/ruleboard/internal/ir"
)

// Reason says why a chain was rejected.
type Reason string

const (
	ReasonOffGrid Reason = "off_grid"
	ReasonStop    Reason = "stop"
	ReasonShut    Reason = "shut"
)

// Blocked records one rejected mover.
type Blocked struct {
	Mover  ir.ObjectID `json:"mover"`
	Reason Reason      `json:"reason"`
	At     ir.Position `json:"at"`
}

// Displacement is one object moved by one cell.
type Displacement struct {
	ID   ir.ObjectID `json:"id"`
	Kind ir.Kind     `json:"kind"`
	From ir.Position `json:"from"`
	To   ir.Position `json:"to"`
}

// Outcome is the result of Resolve.
type Outcome struct {
	Board *grid.Board

	// Moved is true if at least one YOU object changed cell.
	Moved bool

	// Displaced lists pushed objects (never the movers), far end first.
	Displaced []Displacement

	// Touched lists WIN objects a chain stopped against.
	Touched []ir.ObjectID

	Blocked []Blocked
}

// Pushed reports whether any non-mover object was displaced.
func (o Outcome) Pushed() bool {
	return len(o.Displaced) > 0
}

// OnlyText reports whether every pushed object is a text token.
func (o Outcome) OnlyText() bool {
	if len(o.Displaced) == 0 {
		return false
	}
	for _, d := range o.Displaced {
		if !d.Kind.IsText() {
			return false
		}
	}
	return true
}

// Resolve moves every YOU object one cell in dir. Movers are processed in
// board order and each sees the positions left by the ones before it. A
// YOU object already carried along by an earlier chain does not move again.
// A rejected chain leaves every object in it where it was.
func Resolve(b *grid.Board, dir ir.Direction) Outcome {
	out := Outcome{
		Board:     b,
		Displaced: []Displacement{},
		Touched:   []ir.ObjectID{},
		Blocked:   []Blocked{},
	}
	if dir.IsZero() {
		return out
	}

	moved := make(map[ir.ObjectID]bool)
	for _, you := range b.AllWith(ir.PropYou) {
		if moved[you.ID] {
			continue
		}
		mover, ok := out.Board.ByID(you.ID)
		if !ok {
			continue
		}
		c, blocked := walk(out.Board, mover, dir)
		if blocked != nil {
			out.Blocked = append(out.Blocked, *blocked)
			continue
		}
		out.Touched = append(out.Touched, c.touched...)

		to := make(map[ir.ObjectID]ir.Position, len(c.members))
		for i := len(c.members) - 1; i >= 0; i-- {
			m := c.members[i]
			dst := m.Pos.Add(dir)
			to[m.ID] = dst
			moved[m.ID] = true
			if i > 0 {
				out.Displaced = append(out.Displaced, Displacement{
					ID: m.ID, Kind: m.Kind, From: m.Pos, To: dst,
				})
			}
		}
		out.Board = out.Board.Moved(to)
		out.Moved = true
	}
	return out
}

type chain struct {
	members []ir.Object
	touched []ir.ObjectID
}

// walk builds the chain in front of mover. It returns a non-nil Blocked if
// the chain cannot move.
func walk(b *grid.Board, mover ir.Object, dir ir.Direction) (chain, *Blocked) {
	c := chain{members: []ir.Object{mover}}
	opener := mover.IsText() || mover.Has(ir.PropOpen)

	pos := mover.Pos
	for {
		pos = pos.Add(dir)
		if !b.InBounds(pos) {
			return c, &Blocked{Mover: mover.ID, Reason: ReasonOffGrid, At: pos}
		}

		occupants := b.At(pos)
		if hasAny(occupants, func(o ir.Object) bool { return o.Has(ir.PropStop) }) {
			return c, &Blocked{Mover: mover.ID, Reason: ReasonStop, At: pos}
		}
		if !opener && hasAny(occupants, func(o ir.Object) bool { return o.Has(ir.PropShut) }) {
			return c, &Blocked{Mover: mover.ID, Reason: ReasonShut, At: pos}
		}

		var pushed bool
		for _, o := range occupants {
			if pushable(o) {
				c.members = append(c.members, o)
				opener = opener || o.IsText() || o.Has(ir.PropOpen)
				pushed = true
			}
		}
		if pushed {
			continue
		}

		for _, o := range occupants {
			if o.Has(ir.PropWin) {
				c.touched = append(c.touched, o.ID)
			}
		}
		return c, nil
	}
}

// pushable reports whether o joins a chain that reaches its cell.
func pushable(o ir.Object) bool {
	return o.Has(ir.PropPush) || o.IsText()
}

func hasAny(objs []ir.Object, f func(ir.Object) bool) bool {
	for _, o := range objs {
		if f(o) {
			return true
		}
	}
	return false
}
