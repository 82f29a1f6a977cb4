package tui

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"

	"github.com/roach88/ruleboard/internal/engine"
	"github.com/roach88/ruleboard/internal/ir"
)

// glyphClass selects the style a cell is drawn with.
type glyphClass int

const (
	classEmpty glyphClass = iota
	classObject
	classText
	classStop
	classWin
	classDefeat
	classYou
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1).
			MarginBottom(1)

	boardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#874BFD")).
			Padding(0, 1)

	rulesStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#04B575")).
			Padding(0, 1)

	infoStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#999999"))
	wonStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#04B575"))
	lostStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F25D94"))

	glyphStyles = map[glyphClass]lipgloss.Style{
		classEmpty:  lipgloss.NewStyle().Foreground(lipgloss.Color("#444444")),
		classObject: lipgloss.NewStyle().Foreground(lipgloss.Color("#DDDDDD")),
		classText:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5FD7FF")),
		classStop:   lipgloss.NewStyle().Foreground(lipgloss.Color("#8A8A8A")),
		classWin:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFD75F")),
		classDefeat: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F5F")),
		classYou:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFAF00")),
	}
)

type glyph struct {
	r     rune
	class glyphClass
}

// cellGlyph picks what a cell shows: a YOU object first, then text, then the
// first other object. Text tokens draw as the upper-case initial of their
// word, objects as the lower-case initial of their kind.
func cellGlyph(objs []engine.ObjectView) glyph {
	if len(objs) == 0 {
		return glyph{r: '.', class: classEmpty}
	}

	best := objs[0]
	rank := func(o engine.ObjectView) int {
		switch {
		case has(o, ir.PropYou):
			return 2
		case o.IsText:
			return 1
		}
		return 0
	}
	for _, o := range objs[1:] {
		if rank(o) > rank(best) {
			best = o
		}
	}

	if best.IsText {
		return glyph{r: initial(best.Kind.Word(), true), class: classText}
	}
	g := glyph{r: initial(string(best.Kind), false), class: classObject}
	switch {
	case has(best, ir.PropYou):
		g.class = classYou
	case has(best, ir.PropWin):
		g.class = classWin
	case has(best, ir.PropDefeat):
		g.class = classDefeat
	case has(best, ir.PropStop):
		g.class = classStop
	}
	return g
}

func has(o engine.ObjectView, p ir.Property) bool {
	name := p.String()
	for _, n := range o.Properties {
		if n == name {
			return true
		}
	}
	return false
}

func initial(word string, upper bool) rune {
	for _, r := range word {
		if upper {
			return unicode.ToUpper(r)
		}
		return unicode.ToLower(r)
	}
	return '?'
}

// cells lays the snapshot's objects out as rows of glyphs.
func cells(snap engine.StateSnapshot) [][]glyph {
	at := make(map[ir.Position][]engine.ObjectView, len(snap.Objects))
	for _, o := range snap.Objects {
		p := ir.Position{X: o.X, Y: o.Y}
		at[p] = append(at[p], o)
	}
	rows := make([][]glyph, snap.Height)
	for y := range rows {
		rows[y] = make([]glyph, snap.Width)
		for x := range rows[y] {
			rows[y][x] = cellGlyph(at[ir.Position{X: x, Y: y}])
		}
	}
	return rows
}

// Grid renders the board as plain text, one line per row.
func Grid(snap engine.StateSnapshot) string {
	var b strings.Builder
	for y, row := range cells(snap) {
		if y > 0 {
			b.WriteByte('\n')
		}
		for _, g := range row {
			b.WriteRune(g.r)
		}
	}
	return b.String()
}

// styledGrid renders the board with one lipgloss style per glyph class.
func styledGrid(snap engine.StateSnapshot) string {
	lines := make([]string, 0, snap.Height)
	for _, row := range cells(snap) {
		var b strings.Builder
		for x, g := range row {
			if x > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(glyphStyles[g.class].Render(string(g.r)))
		}
		lines = append(lines, b.String())
	}
	return strings.Join(lines, "\n")
}

// RuleLines renders the active rules the way they read on the board.
func RuleLines(snap engine.StateSnapshot) []string {
	out := make([]string, len(snap.Rules))
	for i, t := range snap.Rules {
		if len(t) == 4 {
			out[i] = t[0] + " IF " + t[3] + " IS " + t[2]
			continue
		}
		out[i] = strings.Join(t, " ")
	}
	return out
}
