package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"string", "hello", `"hello"`},
		{"empty string", "", `""`},
		{"int", 42, "42"},
		{"negative int", int64(-100), "-100"},
		{"bool true", true, "true"},
		{"bool false", false, "false"},
		{"empty array", []any{}, "[]"},
		{"empty object", map[string]any{}, "{}"},
		{"string slice", []string{"A", "IS", "B"}, `["A","IS","B"]`},
		{"kind", KindRock, `"ROCK"`},
		{"position", Position{X: 2, Y: 3}, `{"x":2,"y":3}`},
		{"html not escaped", "<a&b>", `"<a&b>"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := MarshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalCanonicalSortedKeys(t *testing.T) {
	obj := map[string]any{
		"zebra": 1,
		"alpha": 2,
		"beta":  map[string]any{"b": 1, "a": 2},
	}

	result, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":2,"beta":{"a":2,"b":1},"zebra":1}`, string(result))
}

func TestMarshalCanonicalRejectsFloatsAndNull(t *testing.T) {
	_, err := MarshalCanonical(1.5)
	assert.Error(t, err)

	_, err = MarshalCanonical(nil)
	assert.Error(t, err)

	_, err = MarshalCanonical(map[string]any{"x": 0.1})
	assert.Error(t, err)
}

func TestMarshalCanonicalNFC(t *testing.T) {
	// "e" + combining acute accent normalizes to the precomposed form.
	result, err := MarshalCanonical("cafe\u0301")
	require.NoError(t, err)
	assert.Equal(t, "\"caf\u00e9\"", string(result))
}

func TestMarshalCanonicalLineSeparators(t *testing.T) {
	result, err := MarshalCanonical("a\u2028b")
	require.NoError(t, err)
	assert.Equal(t, "\"a\u2028b\"", string(result))
}

func TestMarshalCanonicalRule(t *testing.T) {
	result, err := MarshalCanonical(If("ROCK", "PUSH", "DEFEAT"))
	require.NoError(t, err)
	assert.Equal(t,
		`{"condition_object":"ROCK","condition_property":"PUSH","predicate":"DEFEAT","subject":"ROCK","verb":"IF"}`,
		string(result))
}

func TestStateHash_Stable(t *testing.T) {
	objs := []Object{
		{ID: 0, Kind: KindRock, Pos: Position{X: 1, Y: 1}, Flags: Flags(0).With(PropPush)},
		{ID: 1, Kind: TextKind("rock"), Pos: Position{X: 0, Y: 0}},
	}
	rules := []Rule{Is("ROCK", "PUSH")}

	h1 := StateHash(objs, rules)
	h2 := StateHash(CloneObjects(objs), CloneRules(rules))
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)

	moved := CloneObjects(objs)
	moved[0].Pos.X = 2
	assert.NotEqual(t, h1, StateHash(moved, rules))
	assert.NotEqual(t, h1, StateHash(objs, nil))
}

func TestRuleSetHash_OrderSensitive(t *testing.T) {
	a := []Rule{Is("ROCK", "PUSH"), Is("BABA", "YOU")}
	b := []Rule{Is("BABA", "YOU"), Is("ROCK", "PUSH")}
	assert.NotEqual(t, RuleSetHash(a), RuleSetHash(b))
	assert.Equal(t, RuleSetHash(a), RuleSetHash(CloneRules(a)))
}
