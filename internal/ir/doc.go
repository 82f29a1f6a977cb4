// Package ir provides the shared data model for the ruleboard engine.
//
// This package contains type definitions and canonical serialization only.
// All other internal packages import ir; ir imports nothing internal. This
// keeps the board vocabulary (kinds, properties, rules, objects) the
// foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Kinds are upper-case words; text tokens carry the TEXT_ prefix
//   - Flags are a value type, copied with the object that owns them
//   - All JSON tags use snake_case
//   - No floats in anything that is hashed or written to the trial log
package ir
