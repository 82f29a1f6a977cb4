// Package rules derives the active rule set from the text tokens on a board.
//
// Derivation is a pure function of the board: it reads only which words sit
// on which cells. Every row is scanned left to right and then every column
// top to bottom; at each starting offset the five-token conditional window is
// tried before the three-token window. The result replaces the previous
// rule set entirely.
package rules

import (
	"github.com/roach88/ruleboard/internal/grid"
	"github.com/roach88/ruleboard/internal/ir"
)

// Derive returns the rules spelled out on b, in discovery order, without
// duplicates.
//
// A cell may hold several stacked tokens; each of them is considered, so the
// result does not depend on the order objects were declared in.
func Derive(b *grid.Board) []ir.Rule {
	d := &deriver{seen: make(map[string]bool)}

	for y := 0; y < b.Height(); y++ {
		line := make([][]string, b.Width())
		for x := range line {
			line[x] = b.Words(ir.Position{X: x, Y: y})
		}
		d.scan(line)
	}
	for x := 0; x < b.Width(); x++ {
		line := make([][]string, b.Height())
		for y := range line {
			line[y] = b.Words(ir.Position{X: x, Y: y})
		}
		d.scan(line)
	}

	return d.rules
}

type deriver struct {
	rules []ir.Rule
	seen  map[string]bool
}

func (d *deriver) add(r ir.Rule) {
	k := r.Key()
	if d.seen[k] {
		return
	}
	d.seen[k] = true
	d.rules = append(d.rules, r)
}

// scan applies both window tests at every offset of one row or column.
func (d *deriver) scan(line [][]string) {
	for i := range line {
		if i+4 < len(line) {
			d.conditional(line[i : i+5])
		}
		if i+2 < len(line) {
			d.simple(line[i : i+3])
		}
	}
}

// conditional matches SUBJECT (IF|FEELING) PROP IS RESULT.
func (d *deriver) conditional(w [][]string) {
	if !containsFunc(w[1], ir.IsConditional) || !contains(w[3], ir.WordIs) {
		return
	}
	for _, subject := range terms(w[0]) {
		for _, cond := range terms(w[2]) {
			for _, result := range terms(w[4]) {
				d.add(ir.If(subject, cond, result))
			}
		}
	}
}

// simple matches SUBJECT IS PREDICATE.
func (d *deriver) simple(w [][]string) {
	if !contains(w[1], ir.WordIs) {
		return
	}
	for _, subject := range terms(w[0]) {
		for _, predicate := range terms(w[2]) {
			d.add(ir.Is(subject, predicate))
		}
	}
}

// terms filters out operator words, which cannot be subjects or predicates.
func terms(words []string) []string {
	var out []string
	for _, w := range words {
		if !ir.IsOperator(w) {
			out = append(out, w)
		}
	}
	return out
}

func contains(words []string, want string) bool {
	for _, w := range words {
		if w == want {
			return true
		}
	}
	return false
}

func containsFunc(words []string, f func(string) bool) bool {
	for _, w := range words {
		if f(w) {
			return true
		}
	}
	return false
}

// Merge appends seed rules not already present in derived. It is used once,
// when a level is loaded; later derivations never carry seed rules forward.
func Merge(derived, seed []ir.Rule) []ir.Rule {
	d := &deriver{seen: make(map[string]bool)}
	for _, r := range derived {
		d.add(r)
	}
	for _, r := range seed {
		d.add(r)
	}
	return d.rules
}
