package harness

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/ruleboard/internal/analytics"
	"github.com/roach88/ruleboard/internal/ir"
	"github.com/roach88/ruleboard/internal/store"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string             // Assertion type for categorization
	Expected string             // Human-readable expected outcome
	Actual   string             // Human-readable actual outcome
	Trace    []analytics.Record // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, rec := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s %s (moves=%d)\n", rec.Index, rec.Tag, rec.Command, rec.MoveCount)
		}
	}
	return buf.String()
}

// evaluate dispatches one assertion. Scenario validation has already
// checked required fields.
func evaluate(ctx context.Context, st *store.Store, sessionID string, r *Result, a Assertion) error {
	switch a.Type {
	case AssertWin:
		return assertFlag(r, a, "win", r.Final.Won)
	case AssertDefeat:
		return assertFlag(r, a, "defeat", r.Final.Defeated)
	case AssertRulePresent, AssertRuleAbsent:
		return assertRule(r, a)
	case AssertObjectAt:
		return assertObjectAt(r, a)
	case AssertHasProperty:
		return assertHasProperty(r, a)
	case AssertLacksProperty:
		return assertLacksProperty(r, a)
	case AssertObjectCount:
		return assertObjectCount(r, a)
	case AssertMoveCount:
		if r.Final.MoveCount != a.Count {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("%d moves", a.Count),
				Actual:   fmt.Sprintf("%d moves", r.Final.MoveCount),
				Trace:    r.Trace,
			}
		}
		return nil
	case AssertTagOrder:
		return assertTagOrder(r, a)
	case AssertTagCount:
		return assertTagCount(ctx, st, sessionID, r, a)
	case AssertState:
		if string(r.Final.State) != a.State {
			return &AssertionError{
				Type:     a.Type,
				Expected: a.State,
				Actual:   string(r.Final.State),
				Trace:    r.Trace,
			}
		}
		return nil
	}
	return fmt.Errorf("unknown assertion type %q", a.Type)
}

func expected(a Assertion) bool {
	return a.Expect == nil || *a.Expect
}

func assertFlag(r *Result, a Assertion, name string, actual bool) error {
	if actual == expected(a) {
		return nil
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("%s=%t", name, expected(a)),
		Actual:   fmt.Sprintf("%s=%t (state %s)", name, actual, r.Final.State),
		Trace:    r.Trace,
	}
}

func assertRule(r *Result, a Assertion) error {
	want, err := ParseRule(a.Rule)
	if err != nil {
		return err
	}
	found := false
	active := make([]string, len(r.rules))
	for i, rule := range r.rules {
		active[i] = rule.String()
		if rule.Key() == want.Key() {
			found = true
		}
	}
	if found == (a.Type == AssertRulePresent) {
		return nil
	}

	exp := "rule " + want.String() + " active"
	if a.Type == AssertRuleAbsent {
		exp = "rule " + want.String() + " inactive"
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: exp,
		Actual:   fmt.Sprintf("active rules %v", active),
		Trace:    r.Trace,
	}
}

// objectsOf returns the objects of kind, or every object if kind is empty.
func objectsOf(r *Result, kind string) []ir.Object {
	if kind == "" {
		return r.board.Objects()
	}
	k := ir.NormalizeKind(kind)
	var out []ir.Object
	for _, o := range r.board.Objects() {
		if o.Kind == k {
			out = append(out, o)
		}
	}
	return out
}

func assertObjectAt(r *Result, a Assertion) error {
	at := ir.Position{X: a.X, Y: a.Y}
	objs := objectsOf(r, a.Kind)
	var where []string
	for _, o := range objs {
		if o.Pos == at {
			return nil
		}
		where = append(where, o.Pos.String())
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("%s at %s", ir.NormalizeKind(a.Kind), at),
		Actual:   fmt.Sprintf("%s at %v", ir.NormalizeKind(a.Kind), where),
		Trace:    r.Trace,
	}
}

func assertHasProperty(r *Result, a Assertion) error {
	p, _ := ir.ParseProperty(a.Property)
	objs := objectsOf(r, a.Kind)
	if len(objs) == 0 {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%s objects with %s", ir.NormalizeKind(a.Kind), p),
			Actual:   "no such objects",
			Trace:    r.Trace,
		}
	}
	for _, o := range objs {
		if !o.Has(p) {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("every %s has %s", o.Kind, p),
				Actual:   fmt.Sprintf("object %d at %s has %v", o.ID, o.Pos, o.Flags.Names()),
				Trace:    r.Trace,
			}
		}
	}
	return nil
}

func assertLacksProperty(r *Result, a Assertion) error {
	p, _ := ir.ParseProperty(a.Property)
	for _, o := range objectsOf(r, a.Kind) {
		if o.Has(p) {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("no %s has %s", o.Kind, p),
				Actual:   fmt.Sprintf("object %d at %s has %v", o.ID, o.Pos, o.Flags.Names()),
				Trace:    r.Trace,
			}
		}
	}
	return nil
}

func assertObjectCount(r *Result, a Assertion) error {
	n := len(objectsOf(r, a.Kind))
	if n == a.Count {
		return nil
	}
	what := "objects"
	if a.Kind != "" {
		what = string(ir.NormalizeKind(a.Kind)) + " objects"
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("%d %s", a.Count, what),
		Actual:   fmt.Sprintf("%d %s", n, what),
		Trace:    r.Trace,
	}
}

// assertTagOrder checks that tags appear in the given order.
// Tags don't need to be consecutive (intervening records are allowed).
func assertTagOrder(r *Result, a Assertion) error {
	next := 0
	for _, rec := range r.Trace {
		if next < len(a.Tags) && string(rec.Tag) == a.Tags[next] {
			next++
		}
	}
	if next == len(a.Tags) {
		return nil
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("tags in order: %v", a.Tags),
		Actual:   fmt.Sprintf("matched %v, missing %s; trace tags %v", a.Tags[:next], a.Tags[next], r.Tags()),
		Trace:    r.Trace,
	}
}

// assertTagCount counts records by tag in the trial log.
func assertTagCount(ctx context.Context, st *store.Store, sessionID string, r *Result, a Assertion) error {
	recs, err := st.ReadRecordsByTag(ctx, sessionID, analytics.Tag(a.Tag))
	if err != nil {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("query records tagged %s", a.Tag),
			Actual:   fmt.Sprintf("query error: %v", err),
		}
	}
	if len(recs) != a.Count {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%d %s records", a.Count, a.Tag),
			Actual:   fmt.Sprintf("%d %s records", len(recs), a.Tag),
			Trace:    r.Trace,
		}
	}
	return nil
}
