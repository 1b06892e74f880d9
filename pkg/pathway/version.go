// Package pathway holds module-level metadata.
package pathway

const Version = "0.1.0"
