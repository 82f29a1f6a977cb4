package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roach88/ruleboard/internal/analytics"
	"github.com/roach88/ruleboard/internal/engine"
	"github.com/roach88/ruleboard/internal/level"
)

// marshalJSON converts a struct to JSON TEXT for storage.
// HTML escaping is disabled so stored text matches what the engine produced
// and hashes stay stable.
func marshalJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	// Encoder adds a trailing newline, remove it
	return strings.TrimSpace(buf.String()), nil
}

func marshalLevel(def *level.Definition) (string, error) {
	data, err := marshalJSON(def)
	if err != nil {
		return "", fmt.Errorf("marshal level: %w", err)
	}
	return data, nil
}

func unmarshalLevel(data string) (*level.Definition, error) {
	var def level.Definition
	if err := json.Unmarshal([]byte(data), &def); err != nil {
		return nil, fmt.Errorf("unmarshal level: %w", err)
	}
	return &def, nil
}

func marshalRecord(rec analytics.Record) (string, error) {
	data, err := marshalJSON(rec)
	if err != nil {
		return "", fmt.Errorf("marshal record: %w", err)
	}
	return data, nil
}

func unmarshalRecord(data string) (analytics.Record, error) {
	var rec analytics.Record
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return analytics.Record{}, fmt.Errorf("unmarshal record: %w", err)
	}
	return rec, nil
}

func marshalSummary(sum engine.Summary) (string, error) {
	data, err := marshalJSON(sum)
	if err != nil {
		return "", fmt.Errorf("marshal summary: %w", err)
	}
	return data, nil
}

func unmarshalSummary(data string) (engine.Summary, error) {
	var sum engine.Summary
	if err := json.Unmarshal([]byte(data), &sum); err != nil {
		return engine.Summary{}, fmt.Errorf("unmarshal summary: %w", err)
	}
	return sum, nil
}
