package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
	}{
		{"pumpkin", KindPumpkin},
		{"  Rock ", KindRock},
		{"text pumpkin", Kind("TEXT_PUMPKIN")},
		{"text-is", Kind("TEXT_IS")},
		{"TEXT_YOU", Kind("TEXT_YOU")},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeKind(tt.in))
		})
	}
}

func TestKind_Text(t *testing.T) {
	assert.True(t, TextKind("pumpkin").IsText())
	assert.Equal(t, "PUMPKIN", TextKind("pumpkin").Word())
	assert.False(t, KindPumpkin.IsText())
	assert.Equal(t, "PUMPKIN", KindPumpkin.Word())
	assert.False(t, Kind("TEXT_").IsText(), "bare prefix is not a token")
}

func TestKind_Known(t *testing.T) {
	assert.True(t, KindChain.Known())
	assert.True(t, TextKind("is").Known())
	assert.True(t, TextKind("win").Known())
	assert.False(t, Kind("GHOST").Known())
}

func TestOperators(t *testing.T) {
	assert.True(t, IsOperator("IS"))
	assert.True(t, IsOperator("FEELING"))
	assert.False(t, IsOperator("YOU"))
	assert.True(t, IsConditional("IF"))
	assert.True(t, IsConditional("FEELING"))
	assert.False(t, IsConditional("IS"))
}

func TestParseProperty(t *testing.T) {
	p, ok := ParseProperty("push")
	require.True(t, ok)
	assert.Equal(t, PropPush, p)

	_, ok = ParseProperty("SINK")
	assert.False(t, ok)

	assert.Len(t, AllProperties(), 10)
	for _, p := range AllProperties() {
		back, ok := ParseProperty(p.String())
		require.True(t, ok)
		assert.Equal(t, p, back)
	}
}

func TestFlags_Apply(t *testing.T) {
	var f Flags

	f = f.Apply(PropRed)
	assert.True(t, f.Has(PropRed))
	assert.True(t, f.PermanentRed())

	f = f.Apply(PropImpact)
	assert.True(t, f.Has(PropImpact))
	assert.True(t, f.Has(PropDestruct), "IMPACT behaves like DESTRUCT")

	reset := f.Reset()
	assert.False(t, reset.Has(PropRed))
	assert.False(t, reset.Has(PropImpact))
	assert.True(t, reset.PermanentRed(), "permanent_red survives reset")

	assert.Equal(t, []string{"RED", "DESTRUCT", "IMPACT"}, f.Names())
	assert.Equal(t, []string{}, Flags(0).Names())
	assert.False(t, f.Without(PropRed).Has(PropRed))
}

func TestParseDirection(t *testing.T) {
	tests := map[string]Direction{
		"up": Up, "W": Up, "down": Down, "s": Down,
		"left": Left, "a": Left, "right": Right, "R": Right,
	}
	for in, want := range tests {
		got, err := ParseDirection(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseDirection("sideways")
	assert.Error(t, err)

	assert.Equal(t, Position{X: 2, Y: 0}, Position{X: 1, Y: 1}.Add(Up).Add(Right))
	assert.Equal(t, "left", Left.String())
}

func TestRule_KeyAndString(t *testing.T) {
	r := Is("ROCK", "PUSH")
	assert.Equal(t, "ROCK IS PUSH", r.String())
	assert.Equal(t, []string{"ROCK", "IS", "PUSH"}, r.Triple())
	assert.False(t, r.IsConditional())

	c := If("ROCK", "PUSH", "DEFEAT")
	assert.Equal(t, "ROCK IF PUSH IS DEFEAT", c.String())
	assert.Equal(t, []string{"ROCK", "IF", "DEFEAT", "PUSH"}, c.Triple())
	assert.NotEqual(t, c.Key(), If("ROCK", "RED", "DEFEAT").Key())
	assert.Equal(t, c.Key(), If("ROCK", "PUSH", "DEFEAT").Key())
}

func TestObject_Clone(t *testing.T) {
	o := Object{ID: 1, Kind: KindRock, Conditions: []string{"PUSH"}}
	c := o.Clone()
	c.Conditions[0] = "RED"
	assert.Equal(t, "PUSH", o.Conditions[0])
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		in   string
		want Command
	}{
		{"up", Move(Up)},
		{" Left ", Move(Left)},
		{"undo", Meta(CommandUndo)},
		{"PAUSE", Meta(CommandPause)},
		{"resume", Meta(CommandResume)},
		{"restart", Meta(CommandRestart)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCommand(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			round, err := ParseCommand(got.String())
			require.NoError(t, err)
			assert.Equal(t, got, round)
		})
	}

	_, err := ParseCommand("jump")
	assert.Error(t, err)
}
