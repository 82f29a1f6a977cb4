package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/roach88/ruleboard/internal/analytics"
	"github.com/roach88/ruleboard/internal/ir"
	"github.com/roach88/ruleboard/internal/level"
)

// TimedCommand is a command-stream entry with the offset it was applied at.
type TimedCommand struct {
	Command ir.Command
	Offset  time.Duration
}

// replayEpoch is the arbitrary start time of replayed sessions. Only
// differences from it are ever observed.
var replayEpoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// Replay runs cmds against a fresh session of def and returns every record
// produced, in order. The session clock is moved to each command's offset
// before it is applied, so a deterministic engine reproduces the original
// records exactly, elapsed times included.
//
// Any WithClock among opts is overridden.
func Replay(def *level.Definition, cmds []TimedCommand, opts ...Option) (*Session, []analytics.Record, error) {
	clock := &replayClock{now: replayEpoch}
	s, err := New(def, append(opts, WithClock(clock))...)
	if err != nil {
		return nil, nil, err
	}

	var out []analytics.Record
	for _, c := range cmds {
		clock.set(replayEpoch.Add(c.Offset))
		s.Apply(c.Command)
		out = append(out, s.DrainRecords()...)
	}
	return s, out, nil
}

// VerifyRecords compares two record streams and reports the first index at
// which they differ.
func VerifyRecords(want, got []analytics.Record) error {
	if len(want) != len(got) {
		return &SessionError{
			Code:    ErrCodeReplayDiverged,
			Message: fmt.Sprintf("record count differs: want %d, got %d", len(want), len(got)),
		}
	}
	for i := range want {
		wb, err := json.Marshal(want[i])
		if err != nil {
			return fmt.Errorf("marshal record %d: %w", i, err)
		}
		gb, err := json.Marshal(got[i])
		if err != nil {
			return fmt.Errorf("marshal record %d: %w", i, err)
		}
		if !bytes.Equal(wb, gb) {
			return &SessionError{
				Code:    ErrCodeReplayDiverged,
				Message: fmt.Sprintf("record %d differs:\nwant %s\ngot  %s", want[i].Index, wb, gb),
			}
		}
	}
	return nil
}
