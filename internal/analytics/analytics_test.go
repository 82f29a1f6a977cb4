package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ruleboard/internal/ir"
	"github.com/roach88/ruleboard/internal/motion"
	"github.com/roach88/ruleboard/internal/rules"
)

func pushed(kind ir.Kind) motion.Displacement {
	return motion.Displacement{ID: 7, Kind: kind, From: ir.Position{X: 1}, To: ir.Position{X: 2}}
}

func TestClassify_Moves(t *testing.T) {
	move := ir.Move(ir.Right)
	tests := []struct {
		name   string
		post   State
		detail MoveDetail
		want   Tag
	}{
		{"nothing moved", State{}, MoveDetail{}, TagNoOp},
		{"nothing moved while touching", State{}, MoveDetail{Touched: []ir.ObjectID{1}}, TagNoOp},
		{"touched win", State{Defeated: true}, MoveDetail{Moved: true, Touched: []ir.ObjectID{1}}, TagOverlapWin},
		{"defeat", State{Defeated: true}, MoveDetail{Moved: true, Displaced: []motion.Displacement{pushed(ir.KindRock)}}, TagOverlapDefeat},
		{"text push", State{}, MoveDetail{Moved: true, Displaced: []motion.Displacement{pushed(ir.TextKind("IS"))}}, TagPushText},
		{"mixed push", State{}, MoveDetail{Moved: true, Displaced: []motion.Displacement{
			pushed(ir.TextKind("IS")), pushed(ir.KindRock),
		}}, TagPushObject},
		{"overlap", State{}, MoveDetail{Moved: true, Overlapping: true}, TagOverlapObject},
		{"plain", State{}, MoveDetail{Moved: true}, TagMoveOnly},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(move, tt.post, tt.detail))
		})
	}
}

func TestClassify_Meta(t *testing.T) {
	assert.Equal(t, TagUndo, Classify(ir.Meta(ir.CommandUndo), State{}, MoveDetail{}))
	assert.Equal(t, TagPause, Classify(ir.Meta(ir.CommandPause), State{}, MoveDetail{}))
	assert.Equal(t, TagResume, Classify(ir.Meta(ir.CommandResume), State{}, MoveDetail{}))
	assert.Equal(t, TagRestart, Classify(ir.Meta(ir.CommandRestart), State{}, MoveDetail{}))
}

func TestBuild(t *testing.T) {
	pre := State{Rules: []ir.Rule{ir.Is("SUN", "YOU"), ir.Is("ROCK", "PUSH")}}
	post := State{
		Rules:     []ir.Rule{ir.Is("SUN", "YOU"), ir.If("ROCK", "PUSH", "WIN")},
		MoveCount: 3,
	}
	detail := MoveDetail{Moved: true, Displaced: []motion.Displacement{pushed(ir.TextKind("WIN"))}}

	rec := Build(pre, post, ir.Move(ir.Up), detail, Meta{Index: 4, Elapsed: 1500 * time.Millisecond})

	assert.Equal(t, 4, rec.Index)
	assert.Equal(t, TagPushText, rec.Tag)
	assert.Equal(t, "up", rec.Command)
	assert.Equal(t, "up", rec.Direction)
	assert.Equal(t, int64(1500), rec.ElapsedMillis)
	assert.Equal(t, 3, rec.MoveCount)
	assert.Equal(t, RuleDelta{
		Added:   [][]string{{"ROCK", "IF", "WIN", "PUSH"}},
		Removed: [][]string{{"ROCK", "IS", "PUSH"}},
		Effect:  rules.EffectModified,
	}, rec.RuleDelta)
	assert.NotNil(t, rec.Touched)
	assert.NotNil(t, rec.Removed)
}

func TestBuild_MetaHasNoDirection(t *testing.T) {
	rec := Build(State{}, State{}, ir.Meta(ir.CommandPause), MoveDetail{}, Meta{})

	assert.Equal(t, TagPause, rec.Tag)
	assert.Equal(t, "pause", rec.Command)
	assert.Empty(t, rec.Direction)
	assert.Equal(t, rules.EffectNone, rec.RuleDelta.Effect)
	assert.Equal(t, [][]string{}, rec.RuleDelta.Added)
	assert.Equal(t, []motion.Displacement{}, rec.Displaced)
}

func TestParseTag(t *testing.T) {
	for _, tag := range AllTags() {
		got, err := ParseTag(string(tag))
		require.NoError(t, err)
		assert.Equal(t, tag, got)
	}

	got, err := ParseTag(" Push_Text ")
	require.NoError(t, err)
	assert.Equal(t, TagPushText, got)

	_, err = ParseTag("teleport")
	assert.ErrorContains(t, err, "unknown record tag")
}
