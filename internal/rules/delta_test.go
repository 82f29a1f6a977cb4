package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/ruleboard/internal/ir"
)

func TestDiff(t *testing.T) {
	you := ir.Is("BABA", "YOU")
	win := ir.Is("FLAG", "WIN")
	push := ir.Is("ROCK", "PUSH")

	tests := []struct {
		name    string
		before  []ir.Rule
		after   []ir.Rule
		effect  Effect
		added   []ir.Rule
		removed []ir.Rule
	}{
		{"unchanged", []ir.Rule{you}, []ir.Rule{you}, EffectNone, []ir.Rule{}, []ir.Rule{}},
		{"both empty", nil, nil, EffectNone, []ir.Rule{}, []ir.Rule{}},
		{"created", []ir.Rule{you}, []ir.Rule{you, win}, EffectCreated, []ir.Rule{win}, []ir.Rule{}},
		{"destroyed", []ir.Rule{you, win}, []ir.Rule{you}, EffectDestroyed, []ir.Rule{}, []ir.Rule{win}},
		{"modified", []ir.Rule{you, win}, []ir.Rule{you, push}, EffectModified, []ir.Rule{push}, []ir.Rule{win}},
		{"reordered", []ir.Rule{you, win}, []ir.Rule{win, you}, EffectNone, []ir.Rule{}, []ir.Rule{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Diff(tt.before, tt.after)
			assert.Equal(t, tt.effect, d.Effect)
			assert.Equal(t, tt.added, d.Added)
			assert.Equal(t, tt.removed, d.Removed)
		})
	}
}

func TestDiff_ConditionMatters(t *testing.T) {
	d := Diff([]ir.Rule{ir.If("ROCK", "PUSH", "DEFEAT")}, []ir.Rule{ir.If("ROCK", "RED", "DEFEAT")})
	assert.Equal(t, EffectModified, d.Effect)
}
