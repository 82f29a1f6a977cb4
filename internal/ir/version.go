package ir

// Version constants for the board model and engine.
const (
	// ModelVersion is the serialized board model version.
	ModelVersion = "1"

	// EngineVersion is the ruleboard engine version.
	EngineVersion = "0.1.0"
)
