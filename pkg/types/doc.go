// Package types defines the activity-tree data model, the sequencing session
// aggregate, navigation request and response types, the SessionStore
// interface, and standard error types for the Pathway sequencing engine.
package types
