// Package harness runs scripted play-throughs of levels and checks them.
//
// A scenario names a level (a file or an inline board), a command stream and
// a list of assertions. Run plays the stream on a fresh session with a fake
// clock and a fixed session ID, records it into an in-memory trial log, and
// evaluates the assertions against the final state and the stored trace.
//
// # Scenario Format
//
//	name: push_text_breaks_rule
//	description: "Pushing IS out of WALL IS STOP lets the player walk onto walls"
//	level: ../levels/corridor.yaml
//	commands:
//	  - up
//	  - right
//	  - wait 1500ms
//	  - undo
//	assertions:
//	  - type: rule_absent
//	    rule: WALL IS STOP
//	  - type: tag_order
//	    tags: [push_text, undo]
//
// Commands are directions (up, down, left, right, or u/d/l/r, WASD), undo,
// pause, resume, restart, or "wait <duration>", which advances the fake
// clock without issuing a command.
//
// # Assertion Types
//
//   - win, defeat: final outcome flag, with optional expect: false
//   - rule_present, rule_absent: an active rule, written "A IS B" or "A IF C IS B"
//   - object_at: an object of kind at x, y
//   - has_property: every object of kind carries property
//   - lacks_property: no object of kind carries property
//   - object_count: number of objects of kind (all objects if kind is empty)
//   - move_count: net successful moves
//   - tag_order: record tags appear in the given order, gaps allowed
//   - tag_count: number of stored records with tag
//   - state: the final session state (active, paused, defeated, won)
//
// # Golden Traces
//
// RunWithGolden serializes the trace with ir.MarshalCanonical and compares it
// against testdata/golden/<name>.golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness
