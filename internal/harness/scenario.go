package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/ruleboard/internal/analytics"
	"github.com/roach88/ruleboard/internal/ir"
	"github.com/roach88/ruleboard/internal/level"
)

// Scenario is a conformance test: a level, a command stream and assertions
// on the resulting trace and final state.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Level is the path of a level file, relative to the scenario file.
	// Exactly one of Level and Board must be set.
	Level string `yaml:"level,omitempty"`

	// Board is an inline level definition.
	Board *level.Definition `yaml:"board,omitempty"`

	// SessionID is a fixed session ID for deterministic traces.
	// If empty, defaults to "test-session-default".
	SessionID string `yaml:"session_id,omitempty"`

	// Commands is the command stream: a direction, undo, pause, resume,
	// restart, or "wait <duration>" to advance the fake clock.
	Commands []string `yaml:"commands"`

	// Assertions validate the final state and trace.
	Assertions []Assertion `yaml:"assertions"`

	// dir is the directory of the scenario file, for resolving Level.
	dir string
}

// Assertion validates trace or final state.
type Assertion struct {
	// Type selects the check; see the Assert* constants.
	Type string `yaml:"type"`

	// Expect is the expected value for win and defeat. Defaults to true.
	Expect *bool `yaml:"expect,omitempty"`

	// Rule is the rule text for rule_present and rule_absent,
	// e.g. "ROCK IS PUSH" or "ROCK IF PUSH IS DEFEAT".
	Rule string `yaml:"rule,omitempty"`

	// Kind selects objects for object_at, has_property, lacks_property and
	// object_count. Empty matches every object for object_count.
	Kind string `yaml:"kind,omitempty"`

	X int `yaml:"x,omitempty"`
	Y int `yaml:"y,omitempty"`

	// Property is the property name for has_property and lacks_property.
	Property string `yaml:"property,omitempty"`

	// Count is the expected number for object_count, move_count and
	// tag_count.
	Count int `yaml:"count,omitempty"`

	// Tags is the expected tag subsequence for tag_order.
	Tags []string `yaml:"tags,omitempty"`

	// Tag is the record tag counted by tag_count.
	Tag string `yaml:"tag,omitempty"`

	// State is the expected session state for state.
	State string `yaml:"state,omitempty"`
}

// Assertion type constants.
const (
	AssertWin           = "win"
	AssertDefeat        = "defeat"
	AssertRulePresent   = "rule_present"
	AssertRuleAbsent    = "rule_absent"
	AssertObjectAt      = "object_at"
	AssertHasProperty   = "has_property"
	AssertLacksProperty = "lacks_property"
	AssertObjectCount   = "object_count"
	AssertMoveCount     = "move_count"
	AssertTagOrder      = "tag_order"
	AssertTagCount      = "tag_count"
	AssertState         = "state"
)

// Step is one parsed entry of the command stream.
type Step struct {
	// Wait is non-zero for "wait" steps, which only advance the clock.
	Wait    time.Duration
	Command ir.Command
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}
	scenario.dir = filepath.Dir(path)

	if scenario.Level != "" {
		resolved := scenario.resolveLevel()
		if _, err := os.Stat(resolved); err != nil {
			return nil, &LevelNotFoundError{Scenario: scenario.Name, LevelPath: scenario.Level, ResolvedPath: resolved}
		}
	}
	return scenario, nil
}

// ParseScenario parses scenario YAML. Level paths resolve against the
// working directory.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func (s *Scenario) resolveLevel() string {
	if filepath.IsAbs(s.Level) || s.dir == "" {
		return s.Level
	}
	return filepath.Join(s.dir, s.Level)
}

// Definition returns the level the scenario plays.
func (s *Scenario) Definition() (*level.Definition, error) {
	if s.Board != nil {
		def := *s.Board
		if def.ID == "" {
			def.ID = s.Name
		}
		return &def, nil
	}
	return level.LoadFile(s.resolveLevel())
}

// Steps parses the command stream.
func (s *Scenario) Steps() ([]Step, error) {
	steps := make([]Step, 0, len(s.Commands))
	for i, c := range s.Commands {
		step, err := parseStep(c)
		if err != nil {
			return nil, fmt.Errorf("commands[%d]: %w", i, err)
		}
		steps = append(steps, step)
	}
	return steps, nil
}

func parseStep(text string) (Step, error) {
	fields := strings.Fields(text)
	if len(fields) == 2 && strings.EqualFold(fields[0], "wait") {
		d, err := time.ParseDuration(fields[1])
		if err != nil {
			return Step{}, fmt.Errorf("bad wait %q: %w", text, err)
		}
		if d <= 0 {
			return Step{}, fmt.Errorf("wait must be positive: %q", text)
		}
		return Step{Wait: d}, nil
	}
	cmd, err := ir.ParseCommand(text)
	if err != nil {
		return Step{}, err
	}
	return Step{Command: cmd}, nil
}

// ParseRule reads "A IS B" or "A IF C IS B" (FEELING may replace IF).
func ParseRule(text string) (ir.Rule, error) {
	w := strings.Fields(strings.ToUpper(text))
	switch {
	case len(w) == 3 && w[1] == ir.WordIs:
		return ir.Is(w[0], w[2]), nil
	case len(w) == 5 && ir.IsConditional(w[1]) && w[3] == ir.WordIs:
		return ir.If(w[0], w[2], w[4]), nil
	}
	return ir.Rule{}, fmt.Errorf("cannot parse rule %q", text)
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if (s.Level == "") == (s.Board == nil) {
		return fmt.Errorf("exactly one of level and board is required")
	}
	for i, c := range s.Commands {
		if _, err := parseStep(c); err != nil {
			return fmt.Errorf("commands[%d]: %w", i, err)
		}
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("at least one assertion is required")
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(a, i); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion checks that an assertion has its required fields.
func validateAssertion(a Assertion, index int) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertWin, AssertDefeat:
	case AssertRulePresent, AssertRuleAbsent:
		if _, err := ParseRule(a.Rule); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
	case AssertObjectAt:
		if a.Kind == "" {
			return fmt.Errorf("assertions[%d]: kind is required for object_at", index)
		}
	case AssertHasProperty, AssertLacksProperty:
		if a.Kind == "" {
			return fmt.Errorf("assertions[%d]: kind is required for %s", index, a.Type)
		}
		if !ir.IsPropertyName(a.Property) {
			return fmt.Errorf("assertions[%d]: unknown property %q", index, a.Property)
		}
	case AssertObjectCount, AssertMoveCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	case AssertTagOrder:
		if len(a.Tags) == 0 {
			return fmt.Errorf("assertions[%d]: tags list is required for tag_order", index)
		}
		for _, t := range a.Tags {
			if _, err := analytics.ParseTag(t); err != nil {
				return fmt.Errorf("assertions[%d]: %w", index, err)
			}
		}
	case AssertTagCount:
		if a.Tag == "" {
			return fmt.Errorf("assertions[%d]: tag is required for tag_count", index)
		}
		if _, err := analytics.ParseTag(a.Tag); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for tag_count", index)
		}
	case AssertState:
		if a.State == "" {
			return fmt.Errorf("assertions[%d]: state is required", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
