// Package analytics turns a command and the states around it into a trial
// record. Build is a pure function; the engine calls it after every command
// and never feeds the result back into play.
package analytics

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/roach88/ruleboard/internal/ir"
	"github.com/roach88/ruleboard/internal/motion"
	"github.com/roach88/ruleboard/internal/rules"
)

// Tag classifies a record.
type Tag string

const (
	TagMoveOnly      Tag = "move_only"
	TagPushText      Tag = "push_text"
	TagPushObject    Tag = "push_object"
	TagOverlapWin    Tag = "overlap_win"
	TagOverlapDefeat Tag = "overlap_defeat"
	TagOverlapObject Tag = "overlap_object"
	TagNoOp          Tag = "no_op"
	TagUndo          Tag = "undo"
	TagPause         Tag = "pause"
	TagResume        Tag = "resume"
	TagRestart       Tag = "restart"
)

var allTags = []Tag{
	TagMoveOnly, TagPushText, TagPushObject, TagOverlapWin, TagOverlapDefeat,
	TagOverlapObject, TagNoOp, TagUndo, TagPause, TagResume, TagRestart,
}

// AllTags lists every record tag.
func AllTags() []Tag {
	return append([]Tag(nil), allTags...)
}

// ParseTag validates a tag name.
func ParseTag(s string) (Tag, error) {
	t := Tag(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(allTags, t) {
		return t, nil
	}
	return "", fmt.Errorf("unknown record tag %q", s)
}

// State is the part of a session Build compares.
type State struct {
	Rules     []ir.Rule
	Defeated  bool
	Won       bool
	MoveCount int
}

// MoveDetail carries what the resolvers reported for a move. It is zero for
// meta commands.
type MoveDetail struct {
	Moved     bool
	Displaced []motion.Displacement
	Touched   []ir.ObjectID
	Removed   []ir.ObjectID

	// Overlapping is true if a YOU object shares a cell after the move.
	Overlapping bool
}

// Meta positions a record in the session.
type Meta struct {
	Index   int
	Elapsed time.Duration
}

// RuleDelta is a rules.Delta in triple form.
type RuleDelta struct {
	Added   [][]string   `json:"added"`
	Removed [][]string   `json:"removed"`
	Effect  rules.Effect `json:"effect"`
}

// Record is one analytics entry.
type Record struct {
	Index         int                   `json:"index"`
	Tag           Tag                   `json:"tag"`
	Command       string                `json:"command"`
	Direction     string                `json:"direction,omitempty"`
	Displaced     []motion.Displacement `json:"displaced"`
	Touched       []ir.ObjectID         `json:"touched"`
	Removed       []ir.ObjectID         `json:"removed"`
	RuleDelta     RuleDelta             `json:"rule_delta"`
	Won           bool                  `json:"won"`
	Defeated      bool                  `json:"defeated"`
	MoveCount     int                   `json:"move_count"`
	ElapsedMillis int64                 `json:"elapsed_ms"`
}

// Build classifies cmd and assembles its record.
func Build(pre, post State, cmd ir.Command, detail MoveDetail, meta Meta) Record {
	rec := Record{
		Index:         meta.Index,
		Tag:           Classify(cmd, post, detail),
		Command:       cmd.String(),
		Displaced:     nonNil(detail.Displaced),
		Touched:       nonNil(detail.Touched),
		Removed:       nonNil(detail.Removed),
		RuleDelta:     Triples(rules.Diff(pre.Rules, post.Rules)),
		Won:           post.Won,
		Defeated:      post.Defeated,
		MoveCount:     post.MoveCount,
		ElapsedMillis: meta.Elapsed.Milliseconds(),
	}
	if cmd.Kind == ir.CommandMove {
		rec.Direction = cmd.Dir.String()
	}
	return rec
}

// Classify picks the tag for cmd. Move tags are checked in priority order:
// no_op, overlap_win, overlap_defeat, push_text, push_object,
// overlap_object, move_only.
func Classify(cmd ir.Command, post State, detail MoveDetail) Tag {
	switch cmd.Kind {
	case ir.CommandUndo:
		return TagUndo
	case ir.CommandPause:
		return TagPause
	case ir.CommandResume:
		return TagResume
	case ir.CommandRestart:
		return TagRestart
	}

	switch {
	case !detail.Moved:
		return TagNoOp
	case len(detail.Touched) > 0:
		return TagOverlapWin
	case post.Defeated:
		return TagOverlapDefeat
	case len(detail.Displaced) > 0 && allText(detail.Displaced):
		return TagPushText
	case len(detail.Displaced) > 0:
		return TagPushObject
	case detail.Overlapping:
		return TagOverlapObject
	}
	return TagMoveOnly
}

// Triples converts a rule delta to its output form.
func Triples(d rules.Delta) RuleDelta {
	out := RuleDelta{
		Added:   make([][]string, len(d.Added)),
		Removed: make([][]string, len(d.Removed)),
		Effect:  d.Effect,
	}
	for i, r := range d.Added {
		out.Added[i] = r.Triple()
	}
	for i, r := range d.Removed {
		out.Removed[i] = r.Triple()
	}
	return out
}

func allText(ds []motion.Displacement) bool {
	for _, d := range ds {
		if !d.Kind.IsText() {
			return false
		}
	}
	return true
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
