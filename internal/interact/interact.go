// Package interact applies post-move collisions and detects win and defeat.
package interact

import (
	"slices"

	"github.com/roach88/ruleboard/internal/grid"
	"github.com/roach88/ruleboard/internal/ir"
)

// Removal lists the objects taken off the board by one Resolve call.
type Removal struct {
	// Destructed holds objects removed by DESTRUCT/IMPACT cells.
	Destructed []ir.ObjectID `json:"destructed"`
	// Annihilated holds OPEN/SHUT pairs removed together.
	Annihilated []ir.ObjectID `json:"annihilated"`
}

// IDs returns every removed object once, in ascending order.
func (r Removal) IDs() []ir.ObjectID {
	seen := make(map[ir.ObjectID]bool, len(r.Destructed)+len(r.Annihilated))
	out := []ir.ObjectID{}
	for _, id := range slices.Concat(r.Destructed, r.Annihilated) {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return out
}

// Empty reports whether nothing was removed.
func (r Removal) Empty() bool {
	return len(r.Destructed) == 0 && len(r.Annihilated) == 0
}

// Resolve evaluates both collision rules against b and removes the union of
// their victims. Neither rule sees the other's removals, so the result does
// not depend on which runs first.
func Resolve(b *grid.Board) (*grid.Board, Removal) {
	rem := Removal{Destructed: []ir.ObjectID{}, Annihilated: []ir.ObjectID{}}
	for _, cell := range b.Cells() {
		rem.Destructed = append(rem.Destructed, destructed(cell.Objects)...)
		rem.Annihilated = append(rem.Annihilated, annihilated(cell.Objects)...)
	}

	ids := rem.IDs()
	if len(ids) == 0 {
		return b, rem
	}
	drop := make(map[ir.ObjectID]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	return b.Without(drop), rem
}

// destructed returns every occupant of a cell holding a destructive object
// and at least one other object.
func destructed(objs []ir.Object) []ir.ObjectID {
	if len(objs) < 2 || !slices.ContainsFunc(objs, destructive) {
		return nil
	}
	out := make([]ir.ObjectID, len(objs))
	for i, o := range objs {
		out[i] = o.ID
	}
	return out
}

func destructive(o ir.Object) bool {
	return o.Has(ir.PropDestruct) || o.Has(ir.PropImpact)
}

// annihilated returns every OPEN object sharing the cell with a distinct SHUT
// object, together with those SHUT objects.
func annihilated(objs []ir.Object) []ir.ObjectID {
	var out []ir.ObjectID
	hit := make(map[ir.ObjectID]bool)
	for _, open := range objs {
		if !open.Has(ir.PropOpen) {
			continue
		}
		for _, shut := range objs {
			if shut.ID == open.ID || !shut.Has(ir.PropShut) {
				continue
			}
			for _, id := range []ir.ObjectID{open.ID, shut.ID} {
				if !hit[id] {
					hit[id] = true
					out = append(out, id)
				}
			}
		}
	}
	return out
}

// Defeated reports whether any YOU object shares a cell with a DEFEAT object
// other than itself.
func Defeated(b *grid.Board) bool {
	for _, you := range b.AllWith(ir.PropYou) {
		for _, o := range b.At(you.Pos) {
			if o.ID != you.ID && o.Has(ir.PropDefeat) {
				return true
			}
		}
	}
	return false
}

// WinStatus is the outcome of a win check.
type WinStatus string

const (
	Won           WinStatus = "won"
	NotWon        WinStatus = "not_won"
	NoWinPossible WinStatus = "no_win_possible"
)

// Win reports the win status of b. A board without any WIN object can never
// be won. A defeated board is never won.
func Win(b *grid.Board, defeated bool) WinStatus {
	if _, ok := b.FirstWith(ir.PropWin); !ok {
		return NoWinPossible
	}
	if defeated {
		return NotWon
	}
	for _, you := range b.AllWith(ir.PropYou) {
		for _, o := range b.At(you.Pos) {
			if o.Has(ir.PropWin) {
				return Won
			}
		}
	}
	return NotWon
}

// Overlap is a YOU object sharing its cell with other objects.
type Overlap struct {
	You    ir.ObjectID   `json:"you"`
	Others []ir.ObjectID `json:"others"`
}

// Overlaps lists every YOU object that shares a cell, in board order.
func Overlaps(b *grid.Board) []Overlap {
	out := []Overlap{}
	for _, you := range b.AllWith(ir.PropYou) {
		var others []ir.ObjectID
		for _, o := range b.At(you.Pos) {
			if o.ID != you.ID {
				others = append(others, o.ID)
			}
		}
		if len(others) > 0 {
			out = append(out, Overlap{You: you.ID, Others: others})
		}
	}
	return out
}
