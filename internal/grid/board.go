// Package grid holds the board: grid bounds plus the ordered object list.
//
// A Board is immutable once built. Every operation that changes the board
// returns a new Board, so undo snapshots can keep a pointer to the board they
// captured without copying it. Unchanged boards are shared freely between the
// live session and its history.
package grid

import (
	"slices"

	"github.com/roach88/ruleboard/internal/ir"
)

// Board is an immutable grid of objects.
type Board struct {
	width   int
	height  int
	objects []ir.Object
}

// Cell groups the objects that share one position.
type Cell struct {
	Pos     ir.Position
	Objects []ir.Object
}

// New builds a board. The object slice is copied.
func New(width, height int, objects []ir.Object) *Board {
	return &Board{
		width:   width,
		height:  height,
		objects: ir.CloneObjects(objects),
	}
}

// Width returns the number of columns.
func (b *Board) Width() int { return b.width }

// Height returns the number of rows.
func (b *Board) Height() int { return b.height }

// Len returns the number of objects on the board.
func (b *Board) Len() int { return len(b.objects) }

// InBounds reports whether p lies on the grid.
func (b *Board) InBounds(p ir.Position) bool {
	return p.X >= 0 && p.X < b.width && p.Y >= 0 && p.Y < b.height
}

// Objects returns a copy of every object in board order.
func (b *Board) Objects() []ir.Object {
	return ir.CloneObjects(b.objects)
}

// ByID looks an object up by identity.
func (b *Board) ByID(id ir.ObjectID) (ir.Object, bool) {
	for _, o := range b.objects {
		if o.ID == id {
			return o.Clone(), true
		}
	}
	return ir.Object{}, false
}

// At returns the objects occupying p in board order.
func (b *Board) At(p ir.Position) []ir.Object {
	var out []ir.Object
	for _, o := range b.objects {
		if o.Pos == p {
			out = append(out, o.Clone())
		}
	}
	return out
}

// Words returns the sorted, de-duplicated rule words of the text tokens at p.
func (b *Board) Words(p ir.Position) []string {
	var words []string
	for _, o := range b.objects {
		if o.Pos == p && o.IsText() {
			words = append(words, o.Kind.Word())
		}
	}
	slices.Sort(words)
	return slices.Compact(words)
}

// Cells groups objects by exact position. Cells are ordered by the first
// object that occupies them, which keeps iteration deterministic.
func (b *Board) Cells() []Cell {
	index := make(map[ir.Position]int)
	var cells []Cell
	for _, o := range b.objects {
		i, ok := index[o.Pos]
		if !ok {
			i = len(cells)
			index[o.Pos] = i
			cells = append(cells, Cell{Pos: o.Pos})
		}
		cells[i].Objects = append(cells[i].Objects, o.Clone())
	}
	return cells
}

// FirstWith returns the first object in board order carrying p.
func (b *Board) FirstWith(p ir.Property) (ir.Object, bool) {
	for _, o := range b.objects {
		if o.Has(p) {
			return o.Clone(), true
		}
	}
	return ir.Object{}, false
}

// AllWith returns every object carrying p, in board order.
func (b *Board) AllWith(p ir.Property) []ir.Object {
	var out []ir.Object
	for _, o := range b.objects {
		if o.Has(p) {
			out = append(out, o.Clone())
		}
	}
	return out
}

// WithObjects returns a board of the same size holding objs.
func (b *Board) WithObjects(objs []ir.Object) *Board {
	return New(b.width, b.height, objs)
}

// Moved returns a board with the given objects relocated.
func (b *Board) Moved(to map[ir.ObjectID]ir.Position) *Board {
	if len(to) == 0 {
		return b
	}
	objs := ir.CloneObjects(b.objects)
	for i := range objs {
		if p, ok := to[objs[i].ID]; ok {
			objs[i].Pos = p
		}
	}
	return &Board{width: b.width, height: b.height, objects: objs}
}

// Without returns a board with the given objects removed.
func (b *Board) Without(ids map[ir.ObjectID]bool) *Board {
	if len(ids) == 0 {
		return b
	}
	objs := make([]ir.Object, 0, len(b.objects))
	for _, o := range b.objects {
		if !ids[o.ID] {
			objs = append(objs, o.Clone())
		}
	}
	return &Board{width: b.width, height: b.height, objects: objs}
}

// Equal reports whether two boards hold the same objects in the same order.
func (b *Board) Equal(other *Board) bool {
	if b == other {
		return true
	}
	if b == nil || other == nil || b.width != other.width || b.height != other.height {
		return false
	}
	return slices.EqualFunc(b.objects, other.objects, func(x, y ir.Object) bool {
		return x.ID == y.ID && x.Kind == y.Kind && x.Pos == y.Pos && x.Flags == y.Flags &&
			slices.Equal(x.Conditions, y.Conditions)
	})
}
