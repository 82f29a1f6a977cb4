package harness

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ruleboard/internal/ir"
)

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const inlineBoard = `
board:
  width: 3
  height: 1
  elements:
    - {type: PUMPKIN, x: 0, y: 0}
`

func TestLoadScenario_ValidFile(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/corridor_walk.yaml")
	require.NoError(t, err)

	assert.Equal(t, "corridor_walk", scenario.Name)
	assert.Equal(t, "../levels/corridor.yaml", scenario.Level)
	assert.Nil(t, scenario.Board)
	assert.Len(t, scenario.Commands, 6)
	assert.NotEmpty(t, scenario.Assertions)

	def, err := scenario.Definition()
	require.NoError(t, err)
	assert.Equal(t, "corridor", def.ID)
}

func TestLoadScenario_InlineBoard(t *testing.T) {
	path := writeScenario(t, `
name: inline
`+inlineBoard+`
commands: [right]
assertions:
  - type: move_count
    count: 0
`)
	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	def, err := scenario.Definition()
	require.NoError(t, err)
	assert.Equal(t, "inline", def.ID, "inline boards take the scenario name as level ID")
	assert.Equal(t, 3, def.Width)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("testdata/scenarios/nope.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_MissingLevel(t *testing.T) {
	path := writeScenario(t, `
name: lost
level: missing.yaml
assertions:
  - type: win
`)
	_, err := LoadScenario(path)
	require.Error(t, err)

	var notFound *LevelNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "lost", notFound.Scenario)
	assert.Equal(t, "missing.yaml", notFound.LevelPath)
}

func TestLoadScenario_UnknownField(t *testing.T) {
	path := writeScenario(t, `
name: typo
`+inlineBoard+`
comands: [up]
assertions:
  - type: win
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestParseScenario_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "missing name",
			yaml: inlineBoard + "assertions: [{type: win}]",
			want: "name is required",
		},
		{
			name: "no level source",
			yaml: "name: x\nassertions: [{type: win}]",
			want: "exactly one of level and board",
		},
		{
			name: "both level sources",
			yaml: "name: x\nlevel: a.yaml\n" + inlineBoard + "assertions: [{type: win}]",
			want: "exactly one of level and board",
		},
		{
			name: "no assertions",
			yaml: "name: x\n" + inlineBoard,
			want: "at least one assertion",
		},
		{
			name: "bad command",
			yaml: "name: x\n" + inlineBoard + "commands: [jump]\nassertions: [{type: win}]",
			want: "commands[0]",
		},
		{
			name: "bad wait",
			yaml: "name: x\n" + inlineBoard + "commands: [wait soon]\nassertions: [{type: win}]",
			want: "bad wait",
		},
		{
			name: "unknown assertion",
			yaml: "name: x\n" + inlineBoard + "assertions: [{type: vibes}]",
			want: "unknown assertion type",
		},
		{
			name: "bad rule text",
			yaml: "name: x\n" + inlineBoard + "assertions: [{type: rule_present, rule: ROCK PUSH}]",
			want: "cannot parse rule",
		},
		{
			name: "unknown property",
			yaml: "name: x\n" + inlineBoard + "assertions: [{type: has_property, kind: ROCK, property: SINK}]",
			want: "unknown property",
		},
		{
			name: "empty tag order",
			yaml: "name: x\n" + inlineBoard + "assertions: [{type: tag_order}]",
			want: "tags list is required",
		},
		{
			name: "tag count without tag",
			yaml: "name: x\n" + inlineBoard + "assertions: [{type: tag_count, count: 1}]",
			want: "tag is required",
		},
		{
			name: "unknown tag",
			yaml: "name: x\n" + inlineBoard + "assertions: [{type: tag_count, tag: teleport, count: 1}]",
			want: "unknown record tag",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid scenario")
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSteps(t *testing.T) {
	s := &Scenario{Commands: []string{"up", "wait 2s", "Z", "undo", "restart"}}
	// "Z" is not a command; Steps reports its index.
	_, err := s.Steps()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "commands[2]")

	s.Commands = []string{"up", "wait 2s", "undo", "a"}
	steps, err := s.Steps()
	require.NoError(t, err)
	require.Len(t, steps, 4)
	assert.Equal(t, ir.Move(ir.Up), steps[0].Command)
	assert.Equal(t, 2*time.Second, steps[1].Wait)
	assert.Equal(t, ir.Meta(ir.CommandUndo), steps[2].Command)
	assert.Equal(t, ir.Move(ir.Left), steps[3].Command)
}

func TestParseRule(t *testing.T) {
	r, err := ParseRule("rock is push")
	require.NoError(t, err)
	assert.Equal(t, ir.Is("ROCK", "PUSH"), r)

	r, err = ParseRule("ROCK IF PUSH IS DEFEAT")
	require.NoError(t, err)
	assert.Equal(t, ir.If("ROCK", "PUSH", "DEFEAT"), r)

	r, err = ParseRule("ROCK FEELING PUSH IS DEFEAT")
	require.NoError(t, err)
	assert.Equal(t, ir.If("ROCK", "PUSH", "DEFEAT"), r)

	_, err = ParseRule("ROCK IS")
	assert.Error(t, err)
}
