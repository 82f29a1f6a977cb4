// Package level turns level definitions into boards.
//
// A definition lists grid size, placed elements and optional seed rules.
// Elements may carry an axis range (x_end or y_end) that replicates them
// along one axis up to an inclusive end coordinate. Definitions are read from
// YAML (or JSON) and CUE files; CUE files are checked against an embedded
// schema before decoding.
package level

import (
	"strconv"
	"strings"
	"time"

	"github.com/roach88/ruleboard/internal/grid"
	"github.com/roach88/ruleboard/internal/ir"
)

// Definition is a level as authored.
type Definition struct {
	ID               string     `yaml:"id" json:"id"`
	Name             string     `yaml:"name,omitempty" json:"name,omitempty"`
	Width            int        `yaml:"width" json:"width"`
	Height           int        `yaml:"height" json:"height"`
	TimeLimitSeconds int        `yaml:"time_limit_seconds,omitempty" json:"time_limit_seconds,omitempty"`
	Elements         []Element  `yaml:"elements" json:"elements"`
	Rules            []RuleSpec `yaml:"rules,omitempty" json:"rules,omitempty"`
}

// Element places one object, or a row/column of identical objects.
type Element struct {
	Type       string   `yaml:"type" json:"type"`
	X          int      `yaml:"x" json:"x"`
	Y          int      `yaml:"y" json:"y"`
	Properties []string `yaml:"properties,omitempty" json:"properties,omitempty"`
	XEnd       *int     `yaml:"x_end,omitempty" json:"x_end,omitempty"`
	YEnd       *int     `yaml:"y_end,omitempty" json:"y_end,omitempty"`
}

// RuleSpec is a seed rule: a triple, or a quadruple when Condition is set.
type RuleSpec struct {
	Subject   string `yaml:"subject" json:"subject"`
	Verb      string `yaml:"verb,omitempty" json:"verb,omitempty"`
	Predicate string `yaml:"predicate" json:"predicate"`
	Condition string `yaml:"condition,omitempty" json:"condition,omitempty"`
}

// TimeLimit returns the level's time budget, or zero for none.
func (d *Definition) TimeLimit() time.Duration {
	return time.Duration(d.TimeLimitSeconds) * time.Second
}

// Clone returns a deep copy of d.
func (d *Definition) Clone() *Definition {
	if d == nil {
		return nil
	}
	c := *d
	if d.Elements != nil {
		c.Elements = make([]Element, len(d.Elements))
		for i, e := range d.Elements {
			if e.Properties != nil {
				e.Properties = append([]string(nil), e.Properties...)
			}
			if e.XEnd != nil {
				v := *e.XEnd
				e.XEnd = &v
			}
			if e.YEnd != nil {
				v := *e.YEnd
				e.YEnd = &v
			}
			c.Elements[i] = e
		}
	}
	if d.Rules != nil {
		c.Rules = append([]RuleSpec(nil), d.Rules...)
	}
	return &c
}

// Build validates d and produces the initial board and seed rules.
//
// Objects are numbered in declaration order after range expansion. Property
// tags set flags on the returned board and RED also sets permanent_red. A
// session's first property pass clears every flag except permanent_red, so
// of the tags only RED outlives the initial board.
func Build(d *Definition) (*grid.Board, []ir.Rule, error) {
	if d == nil {
		return nil, nil, invalid(ErrCodeInvalidLevel, "", "level definition is nil")
	}
	if d.Width <= 0 || d.Height <= 0 {
		return nil, nil, invalid(ErrCodeInvalidLevel, "width/height", "grid size is required (got %dx%d)", d.Width, d.Height)
	}
	if d.Elements == nil {
		return nil, nil, invalid(ErrCodeInvalidLevel, "elements", "element list is required")
	}

	var objects []ir.Object
	for i, el := range d.Elements {
		placed, err := expand(d, i, el)
		if err != nil {
			return nil, nil, err
		}
		for _, o := range placed {
			o.ID = ir.ObjectID(len(objects))
			objects = append(objects, o)
		}
	}

	seed, err := SeedRules(d.Rules)
	if err != nil {
		return nil, nil, err
	}

	return grid.New(d.Width, d.Height, objects), seed, nil
}

// expand turns one element into its replicas.
func expand(d *Definition, i int, el Element) ([]ir.Object, error) {
	field := func(name string) string {
		return "elements[" + strconv.Itoa(i) + "]" + name
	}

	kind := ir.NormalizeKind(el.Type)
	if kind == "" {
		return nil, invalid(ErrCodeInvalidElement, field(".type"), "type is required")
	}
	if kind == ir.Kind(ir.TextPrefix) {
		return nil, invalid(ErrCodeInvalidElement, field(".type"), "text element %q names no word", el.Type)
	}

	var flags ir.Flags
	for j, tag := range el.Properties {
		p, ok := ir.ParseProperty(tag)
		if !ok {
			return nil, invalid(ErrCodeInvalidElement, field(".properties["+strconv.Itoa(j)+"]"), "unknown property %q", tag)
		}
		flags = flags.Apply(p)
	}

	if el.XEnd != nil && el.YEnd != nil {
		return nil, invalid(ErrCodeInvalidElement, field(""), "x_end and y_end are mutually exclusive")
	}

	positions := []ir.Position{{X: el.X, Y: el.Y}}
	switch {
	case el.XEnd != nil:
		if *el.XEnd < el.X {
			return nil, invalid(ErrCodeInvalidElement, field(".x_end"), "x_end %d is before x %d", *el.XEnd, el.X)
		}
		positions = positions[:0]
		for x := el.X; x <= *el.XEnd; x++ {
			positions = append(positions, ir.Position{X: x, Y: el.Y})
		}
	case el.YEnd != nil:
		if *el.YEnd < el.Y {
			return nil, invalid(ErrCodeInvalidElement, field(".y_end"), "y_end %d is before y %d", *el.YEnd, el.Y)
		}
		positions = positions[:0]
		for y := el.Y; y <= *el.YEnd; y++ {
			positions = append(positions, ir.Position{X: el.X, Y: y})
		}
	}

	out := make([]ir.Object, 0, len(positions))
	for _, p := range positions {
		if p.X < 0 || p.X >= d.Width || p.Y < 0 || p.Y >= d.Height {
			return nil, invalid(ErrCodeOutOfBounds, field(""), "%s %s is outside %dx%d grid", kind, p, d.Width, d.Height)
		}
		out = append(out, ir.Object{Kind: kind, Pos: p, Flags: flags})
	}
	return out, nil
}

// SeedRules converts authored rule specs into rules.
func SeedRules(specs []RuleSpec) ([]ir.Rule, error) {
	var rules []ir.Rule
	for i, s := range specs {
		field := "rules[" + strconv.Itoa(i) + "]"
		subject := string(ir.NormalizeKind(s.Subject))
		predicate := string(ir.NormalizeKind(s.Predicate))
		condition := string(ir.NormalizeKind(s.Condition))
		verb := strings.ToUpper(strings.TrimSpace(s.Verb))

		if subject == "" || predicate == "" {
			return nil, invalid(ErrCodeInvalidRule, field, "subject and predicate are required")
		}
		if ir.IsOperator(subject) || ir.IsOperator(predicate) || ir.IsOperator(condition) {
			return nil, invalid(ErrCodeInvalidRule, field, "operator words cannot be rule terms")
		}

		switch {
		case verb == "" && condition == "", verb == ir.WordIs && condition == "":
			rules = append(rules, ir.Is(subject, predicate))
		case ir.IsConditional(verb) || (verb == "" && condition != ""):
			if condition == "" {
				return nil, invalid(ErrCodeInvalidRule, field, "conditional rule needs a condition")
			}
			rules = append(rules, ir.If(subject, condition, predicate))
		case verb == ir.WordIs:
			return nil, invalid(ErrCodeInvalidRule, field, "condition %q given on an IS rule", s.Condition)
		default:
			return nil, invalid(ErrCodeInvalidRule, field, "unsupported verb %q", s.Verb)
		}
	}
	return rules, nil
}
