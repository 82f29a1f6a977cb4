package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/ruleboard/internal/analytics"
	"github.com/roach88/ruleboard/internal/ir"
)

// TraceSnapshot captures the complete trace for a scenario execution.
// All fields use canonical JSON serialization for deterministic comparison.
type TraceSnapshot struct {
	ScenarioName string             `json:"scenario_name"`
	SessionID    string             `json:"session_id"`
	Trace        []analytics.Record `json:"trace"`
	Outcome      string             `json:"outcome"`
	MoveCount    int                `json:"move_count"`
	Rules        [][]string         `json:"rules"`
}

func newTraceSnapshot(name string, result *Result) TraceSnapshot {
	return TraceSnapshot{
		ScenarioName: name,
		SessionID:    result.Final.SessionID,
		Trace:        result.Trace,
		Outcome:      result.Summary.Outcome,
		MoveCount:    result.Final.MoveCount,
		Rules:        result.Final.Rules,
	}
}

// toCanonicalMap converts a TraceSnapshot to a map[string]any for canonical JSON serialization.
// This is required because ir.MarshalCanonical only handles IR types and primitives.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	traceList := make([]any, len(s.Trace))
	for i, rec := range s.Trace {
		traceList[i] = recordMap(rec)
	}

	return map[string]any{
		"scenario_name": s.ScenarioName,
		"session_id":    s.SessionID,
		"trace":         traceList,
		"final": map[string]any{
			"outcome":    s.Outcome,
			"move_count": s.MoveCount,
			"rules":      triples(s.Rules),
		},
	}
}

func recordMap(rec analytics.Record) map[string]any {
	displaced := make([]any, len(rec.Displaced))
	for i, d := range rec.Displaced {
		displaced[i] = map[string]any{
			"id":   d.ID,
			"kind": d.Kind,
			"from": d.From,
			"to":   d.To,
		}
	}

	m := map[string]any{
		"index":     rec.Index,
		"tag":       string(rec.Tag),
		"command":   rec.Command,
		"displaced": displaced,
		"touched":   ids(rec.Touched),
		"removed":   ids(rec.Removed),
		"rule_delta": map[string]any{
			"added":   triples(rec.RuleDelta.Added),
			"removed": triples(rec.RuleDelta.Removed),
			"effect":  string(rec.RuleDelta.Effect),
		},
		"won":        rec.Won,
		"defeated":   rec.Defeated,
		"move_count": rec.MoveCount,
		"elapsed_ms": rec.ElapsedMillis,
	}
	if rec.Direction != "" {
		m["direction"] = rec.Direction
	}
	return m
}

func ids(in []ir.ObjectID) []any {
	out := make([]any, len(in))
	for i, id := range in {
		out[i] = id
	}
	return out
}

func triples(in [][]string) []any {
	out := make([]any, len(in))
	for i, t := range in {
		out[i] = t
	}
	return out
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if trace doesn't match golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// GoldenBytes is the canonical golden-file content for a result.
func GoldenBytes(scenarioName string, result *Result) ([]byte, error) {
	snapshot := newTraceSnapshot(scenarioName, result)
	return ir.MarshalCanonical(snapshot.toCanonicalMap())
}

// AssertGolden compares the given result's trace against a golden file
// without re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	traceJSON, err := GoldenBytes(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, traceJSON)
	return nil
}
