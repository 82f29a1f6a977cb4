// Package engine implements the ruleboard session state machine.
//
// A Session owns one level's board, active rules and undo history. Every
// command runs to completion before returning:
//
//	move:    motion.Resolve -> rules.Derive -> props.Apply -> interact.Resolve
//	         -> defeat and win checks
//	undo:    restore snapshot (board, rules, player) -> props.Flags
//	pause:   stop the play clock
//	resume:  restart the play clock
//	restart: reload the level; start time and pause total are kept
//
// After every command that is not ignored the session appends an
// analytics.Record, built by the pure analytics.Build from the states before
// and after. Callers drain records with DrainRecords and send them wherever
// the trial log lives; the engine does no I/O.
//
// Time is read only through the injected Clock. Record indices come from a
// logical sequence that never resets, so records order strictly even when
// two commands share a clock reading.
package engine
