// Package props computes behavioral flags from the active rule set.
//
// Computation is pure: it takes objects and rules and returns new object
// values. Passes run in a fixed order because each one reads the result of
// the one before it:
//
//  1. reset: every flag is cleared except permanent_red
//  2. transformation: "A IS B" with two non-property words retypes A objects
//  3. property: "A IS P" grants P to A objects (after retyping)
//  4. conditional: "A IF C IS P" grants P to A objects already holding C
//
// Finally permanent_red objects are shown red again. Text tokens are never
// retyped and never receive rule properties.
package props

import (
	"github.com/roach88/ruleboard/internal/ir"
)

// Result is the outcome of one property computation.
type Result struct {
	Objects []ir.Object

	// Player is the position of the first YOU object; valid if HasPlayer.
	Player    ir.Position
	HasPlayer bool
}

// Apply runs every pass, including transformation.
func Apply(objects []ir.Object, rules []ir.Rule) Result {
	return compute(objects, rules, true)
}

// Flags runs every pass except transformation. It is used when restoring a
// saved board whose kinds already reflect the transformations of its tick.
func Flags(objects []ir.Object, rules []ir.Rule) Result {
	return compute(objects, rules, false)
}

// TransformTable maps object kinds to the kind they become. When two rules
// retype the same subject the first one wins.
func TransformTable(rules []ir.Rule) map[ir.Kind]ir.Kind {
	table := make(map[ir.Kind]ir.Kind)
	for _, r := range rules {
		if r.IsConditional() || ir.IsPropertyName(r.Subject) || ir.IsPropertyName(r.Predicate) {
			continue
		}
		from := ir.Kind(r.Subject)
		if _, ok := table[from]; !ok {
			table[from] = ir.Kind(r.Predicate)
		}
	}
	return table
}

func compute(objects []ir.Object, rules []ir.Rule, transform bool) Result {
	out := ir.CloneObjects(objects)
	for i := range out {
		out[i].Flags = out[i].Flags.Reset()
		out[i].Conditions = nil
	}

	if transform {
		table := TransformTable(rules)
		for i := range out {
			if out[i].IsText() {
				continue
			}
			if to, ok := table[out[i].Kind]; ok {
				out[i].Kind = to
			}
		}
	}

	for _, r := range rules {
		if r.IsConditional() || ir.IsPropertyName(r.Subject) {
			continue
		}
		p, ok := ir.ParseProperty(r.Predicate)
		if !ok {
			continue
		}
		for i := range out {
			if matches(out[i], r.Subject) {
				out[i].Flags = out[i].Flags.Apply(p)
			}
		}
	}

	for _, r := range rules {
		if !r.IsConditional() || ir.IsPropertyName(r.Subject) {
			continue
		}
		p, ok := ir.ParseProperty(r.Predicate)
		if !ok {
			continue
		}
		cond, ok := ir.ParseProperty(r.ConditionProperty)
		if !ok {
			continue
		}
		for i := range out {
			if matches(out[i], r.Subject) && out[i].Flags.Has(cond) {
				out[i].Flags = out[i].Flags.Apply(p)
				out[i].Conditions = append(out[i].Conditions, cond.String())
			}
		}
	}

	res := Result{Objects: out}
	for i := range out {
		if out[i].Flags.PermanentRed() {
			out[i].Flags = out[i].Flags.With(ir.PropRed)
		}
		if !res.HasPlayer && out[i].Has(ir.PropYou) {
			res.Player = out[i].Pos
			res.HasPlayer = true
		}
	}
	return res
}

// matches reports whether a rule subject selects o.
func matches(o ir.Object, subject string) bool {
	return !o.IsText() && string(o.Kind) == subject
}
