package props

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ruleboard/internal/ir"
)

func obj(id int, kind ir.Kind, x, y int) ir.Object {
	return ir.Object{ID: ir.ObjectID(id), Kind: kind, Pos: ir.Position{X: x, Y: y}}
}

func TestApply_PropertyRule(t *testing.T) {
	objects := []ir.Object{
		obj(0, ir.TextKind("PUMPKIN"), 0, 0),
		obj(1, ir.TextKind("IS"), 1, 0),
		obj(2, ir.TextKind("YOU"), 2, 0),
		obj(3, ir.KindPumpkin, 1, 2),
	}
	res := Apply(objects, []ir.Rule{ir.Is("PUMPKIN", "YOU")})

	assert.True(t, res.Objects[3].Has(ir.PropYou))
	require.True(t, res.HasPlayer)
	assert.Equal(t, ir.Position{X: 1, Y: 2}, res.Player)
	for _, o := range res.Objects[:3] {
		assert.Zero(t, o.Flags, "text never receives rule properties")
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	objects := []ir.Object{obj(0, ir.KindChain, 0, 0)}
	objects[0].Conditions = []string{"PUSH"}

	_ = Apply(objects, []ir.Rule{ir.Is("CHAIN", "ANCHOR"), ir.Is("ANCHOR", "STOP")})

	assert.Equal(t, ir.KindChain, objects[0].Kind)
	assert.Zero(t, objects[0].Flags)
	assert.Equal(t, []string{"PUSH"}, objects[0].Conditions)
}

func TestApply_NoPlayer(t *testing.T) {
	res := Apply([]ir.Object{obj(0, ir.KindRock, 0, 0)}, []ir.Rule{ir.Is("ROCK", "PUSH")})
	assert.False(t, res.HasPlayer)
}

func TestApply_ResetKeepsPermanentRed(t *testing.T) {
	o := obj(0, ir.KindSun, 0, 0)
	o.Flags = o.Flags.With(ir.PropYou).With(ir.PropStop).WithPermanentRed()

	res := Apply([]ir.Object{o}, nil)

	got := res.Objects[0].Flags
	assert.False(t, got.Has(ir.PropYou))
	assert.False(t, got.Has(ir.PropStop))
	assert.True(t, got.PermanentRed())
	assert.True(t, got.Has(ir.PropRed), "permanent_red forces red after every pass")
}

func TestApply_RedAndImpactExpansion(t *testing.T) {
	objects := []ir.Object{obj(0, ir.KindSun, 0, 0), obj(1, ir.KindSkull, 1, 0)}
	res := Apply(objects, []ir.Rule{ir.Is("SUN", "RED"), ir.Is("SKULL", "IMPACT")})

	sun := res.Objects[0].Flags
	assert.True(t, sun.Has(ir.PropRed))
	assert.True(t, sun.PermanentRed())

	skull := res.Objects[1].Flags
	assert.True(t, skull.Has(ir.PropImpact))
	assert.True(t, skull.Has(ir.PropDestruct))

	// Rule gone: red survives, impact does not.
	again := Apply(res.Objects, nil)
	assert.True(t, again.Objects[0].Has(ir.PropRed))
	assert.False(t, again.Objects[1].Has(ir.PropDestruct))
}

func TestApply_Transformation(t *testing.T) {
	objects := []ir.Object{
		obj(0, ir.KindChain, 0, 0),
		obj(1, ir.TextKind("CHAIN"), 1, 0),
		obj(2, ir.KindAnchor, 2, 0),
	}
	rules := []ir.Rule{
		ir.Is("CHAIN", "ANCHOR"),
		ir.Is("ANCHOR", "STOP"),
	}
	res := Apply(objects, rules)

	assert.Equal(t, ir.KindAnchor, res.Objects[0].Kind)
	assert.True(t, res.Objects[0].Has(ir.PropStop), "property pass sees the transformed kind")
	assert.Equal(t, ir.TextKind("CHAIN"), res.Objects[1].Kind, "text is exempt")
	assert.True(t, res.Objects[2].Has(ir.PropStop))
}

func TestApply_TransformationIsSinglePass(t *testing.T) {
	objects := []ir.Object{obj(0, ir.KindChain, 0, 0), obj(1, ir.KindAnchor, 1, 0)}
	rules := []ir.Rule{ir.Is("CHAIN", "ANCHOR"), ir.Is("ANCHOR", "KEY")}

	res := Apply(objects, rules)

	assert.Equal(t, ir.KindAnchor, res.Objects[0].Kind, "no chaining within one tick")
	assert.Equal(t, ir.KindKey, res.Objects[1].Kind)
}

func TestTransformTable_FirstRuleWins(t *testing.T) {
	table := TransformTable([]ir.Rule{
		ir.Is("ROCK", "FLAG"),
		ir.Is("ROCK", "KEY"),
		ir.Is("ROCK", "PUSH"),
		ir.If("ROCK", "PUSH", "WALL"),
	})
	assert.Equal(t, map[ir.Kind]ir.Kind{ir.KindRock: ir.KindFlag}, table)
}

func TestApply_Conditional(t *testing.T) {
	rock := obj(0, ir.KindRock, 0, 0)
	gated := []ir.Rule{
		ir.If("ROCK", "PUSH", "DEFEAT"),
		ir.Is("ROCK", "PUSH"),
	}

	res := Apply([]ir.Object{rock}, gated)
	got := res.Objects[0]
	assert.True(t, got.Has(ir.PropDefeat), "conditional pass runs after the property pass")
	assert.Equal(t, []string{"PUSH"}, got.Conditions)

	// Condition rule removed on the next tick.
	next := Apply(res.Objects, gated[:1])
	assert.False(t, next.Objects[0].Has(ir.PropPush))
	assert.False(t, next.Objects[0].Has(ir.PropDefeat))
	assert.Empty(t, next.Objects[0].Conditions)
}

func TestApply_Idempotent(t *testing.T) {
	objects := []ir.Object{
		obj(0, ir.KindChain, 0, 0),
		obj(1, ir.KindRock, 1, 0),
		obj(2, ir.KindSun, 2, 0),
	}
	rules := []ir.Rule{
		ir.Is("CHAIN", "ANCHOR"),
		ir.Is("ROCK", "PUSH"),
		ir.If("ROCK", "PUSH", "WIN"),
		ir.Is("SUN", "RED"),
		ir.Is("SUN", "YOU"),
	}

	first := Apply(objects, rules)
	second := Flags(first.Objects, rules)
	assert.Equal(t, first, second)
}

func TestFlags_SkipsTransformation(t *testing.T) {
	objects := []ir.Object{obj(0, ir.KindChain, 0, 0)}
	res := Flags(objects, []ir.Rule{ir.Is("CHAIN", "ANCHOR"), ir.Is("CHAIN", "YOU")})

	assert.Equal(t, ir.KindChain, res.Objects[0].Kind)
	assert.True(t, res.Objects[0].Has(ir.PropYou))
}

func TestApply_PropertySubjectIgnored(t *testing.T) {
	objects := []ir.Object{obj(0, ir.KindRock, 0, 0)}
	objects[0].Flags = objects[0].Flags.With(ir.PropPush)

	res := Apply(objects, []ir.Rule{ir.Is("PUSH", "YOU")})
	assert.Zero(t, res.Objects[0].Flags)
}
