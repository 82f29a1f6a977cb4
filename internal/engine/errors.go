package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/ruleboard/internal/level"
)

// SessionError is returned when a session cannot be constructed or replayed.
//
// Runtime commands never return errors: a blocked move, an undo with empty
// history or a pause while paused are ordinary results.
type SessionError struct {
	// Code identifies the error category.
	Code SessionErrorCode

	// Message is a human-readable description.
	Message string

	// LevelID identifies the level involved, if known.
	LevelID string

	// Err is the underlying cause.
	Err error
}

// SessionErrorCode categorizes session errors.
type SessionErrorCode string

const (
	// ErrCodeInvalidLevel indicates the level definition could not be built.
	ErrCodeInvalidLevel SessionErrorCode = "INVALID_LEVEL"

	// ErrCodeInvalidOption indicates a bad construction option.
	ErrCodeInvalidOption SessionErrorCode = "INVALID_OPTION"

	// ErrCodeReplayDiverged indicates a replay produced different records.
	ErrCodeReplayDiverged SessionErrorCode = "REPLAY_DIVERGED"
)

// Error implements the error interface.
func (e *SessionError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.LevelID != "" {
		msg += fmt.Sprintf(" (level=%s)", e.LevelID)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *SessionError) Unwrap() error {
	return e.Err
}

// IsInvalidLevel returns true if err reports an unusable level, whether it
// came from the session or straight from the level package.
// Uses errors.As to handle wrapped errors.
func IsInvalidLevel(err error) bool {
	var se *SessionError
	if errors.As(err, &se) && se.Code == ErrCodeInvalidLevel {
		return true
	}
	return level.IsInvalidLevel(err)
}

// IsReplayDiverged returns true if err reports a non-deterministic replay.
func IsReplayDiverged(err error) bool {
	var se *SessionError
	return errors.As(err, &se) && se.Code == ErrCodeReplayDiverged
}

func invalidLevel(levelID string, err error) *SessionError {
	return &SessionError{
		Code:    ErrCodeInvalidLevel,
		Message: "level cannot be loaded",
		LevelID: levelID,
		Err:     err,
	}
}
