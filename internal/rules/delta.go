package rules

import "github.com/roach88/ruleboard/internal/ir"

// Effect is the coarse classification of a rule set change.
type Effect string

const (
	EffectNone      Effect = "none"
	EffectCreated   Effect = "created"
	EffectDestroyed Effect = "destroyed"
	EffectModified  Effect = "modified"
)

// Delta describes how a rule set changed.
type Delta struct {
	Added   []ir.Rule `json:"added"`
	Removed []ir.Rule `json:"removed"`
	Effect  Effect    `json:"effect"`
}

// Diff compares two rule sets. Added keeps after's order, Removed keeps
// before's order.
func Diff(before, after []ir.Rule) Delta {
	inBefore := keys(before)
	inAfter := keys(after)

	delta := Delta{Added: []ir.Rule{}, Removed: []ir.Rule{}}
	for _, r := range after {
		if !inBefore[r.Key()] {
			delta.Added = append(delta.Added, r)
		}
	}
	for _, r := range before {
		if !inAfter[r.Key()] {
			delta.Removed = append(delta.Removed, r)
		}
	}

	switch {
	case len(delta.Added) == 0 && len(delta.Removed) == 0:
		delta.Effect = EffectNone
	case len(delta.Removed) == 0:
		delta.Effect = EffectCreated
	case len(delta.Added) == 0:
		delta.Effect = EffectDestroyed
	default:
		delta.Effect = EffectModified
	}
	return delta
}

func keys(rules []ir.Rule) map[string]bool {
	m := make(map[string]bool, len(rules))
	for _, r := range rules {
		m[r.Key()] = true
	}
	return m
}
