// Package sequencing implements the Pathway sequencing and navigation
// engine: the activity tree, sequencing rule evaluation, rollup, and the
// navigation request processor.
//
// The engine performs no I/O and holds no global state. All mutable state
// lives in the types.SequencingSession passed into and returned from
// Processor.Process. Sequencing exceptions (no activity available, choice
// not available, and so on) are returned as data in the
// types.NavigationResponse; Go errors are reserved for integrity violations
// such as a malformed tree or a session/course mismatch.
package sequencing
