package cli

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ruleboard/internal/analytics"
	"github.com/roach88/ruleboard/internal/store"
)

// recordRun runs moves against the corridor with a trial log and returns
// the database path and session ID.
func recordRun(t *testing.T, db, moves string) string {
	t.Helper()
	out, err := execute(t, "run", corridorLevel, "--moves", moves, "--db", db, "--format", "json")
	require.NoError(t, err)
	resp := decode(t, out, nil)
	require.NotEmpty(t, resp.SessionID)
	return resp.SessionID
}

func TestReplay_Identical(t *testing.T) {
	db := filepath.Join(t.TempDir(), "trials.db")
	recordRun(t, db, "urdrz")
	recordRun(t, db, "rrpRl")

	out, err := execute(t, "replay", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Replay Summary: 2 identical, 0 diverged, 2 total")
}

func TestReplay_SingleSessionJSON(t *testing.T) {
	db := filepath.Join(t.TempDir(), "trials.db")
	id := recordRun(t, db, "urdr")
	recordRun(t, db, "l")

	out, err := execute(t, "replay", "--db", db, "--session", id, "--format", "json")
	require.NoError(t, err)

	var result ReplayResult
	resp := decode(t, out, &result)
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, result.Sessions, 1)

	s := result.Sessions[0]
	assert.Equal(t, id, s.SessionID)
	assert.Equal(t, "corridor", s.LevelID)
	assert.Equal(t, 4, s.Commands)
	assert.Equal(t, 4, s.Records)
	assert.True(t, s.Deterministic)
	assert.True(t, result.Identical)
}

func TestReplay_Diverged(t *testing.T) {
	db := filepath.Join(t.TempDir(), "trials.db")
	id := recordRun(t, db, "urdr")

	st, err := store.Open(db)
	require.NoError(t, err)
	_, err = st.DB().ExecContext(context.Background(),
		`DELETE FROM records WHERE session_id = ? AND seq = (SELECT MAX(seq) FROM records WHERE session_id = ?)`, id, id)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	out, err := execute(t, "replay", "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ "+id)
	assert.Contains(t, out, "record count differs")
}

func TestReplay_Errors(t *testing.T) {
	_, err := execute(t, "replay")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "no database")

	db := filepath.Join(t.TempDir(), "trials.db")
	recordRun(t, db, "r")
	_, err = execute(t, "replay", "--db", db, "--session", "missing")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTrace_Text(t *testing.T) {
	db := filepath.Join(t.TempDir(), "trials.db")
	id := recordRun(t, db, "urdr")

	out, err := execute(t, "trace", "--db", db, "--session", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Session "+id+" (level corridor): 4 records")
	assert.Contains(t, out, "[1] push_text")
	assert.Contains(t, out, "[4] overlap_object")
	assert.Contains(t, out, "Outcome: open  Moves: 4")
}

func TestTrace_TagFilterJSON(t *testing.T) {
	db := filepath.Join(t.TempDir(), "trials.db")
	id := recordRun(t, db, "urdr")

	out, err := execute(t, "trace", "--db", db, "--session", id, "--tag", "push_text", "--format", "json")
	require.NoError(t, err)

	var result TraceResult
	resp := decode(t, out, &result)
	assert.Equal(t, id, resp.SessionID)
	require.Len(t, result.Records, 2)
	for _, r := range result.Records {
		assert.Equal(t, analytics.TagPushText, r.Tag)
	}
	require.NotNil(t, result.Summary)
	assert.Equal(t, 4, result.Summary.Moves)
}

func TestTrace_Errors(t *testing.T) {
	db := filepath.Join(t.TempDir(), "trials.db")
	recordRun(t, db, "r")

	out, err := execute(t, "trace", "--db", db, "--session", "missing", "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	resp := decode(t, out, nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeNotFound, resp.Error.Code)

	_, err = execute(t, "trace", "--db", db, "--session", "x", "--tag", "teleport")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, err = execute(t, "trace", "--db", db)
	require.Error(t, err)
}
