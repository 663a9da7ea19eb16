// Package config holds the debuglog configuration model.
//
// The model is deliberately tiny: an enable flag and a set of fully qualified
// annotation names. It is built once per invocation from flat key/value options
// and is read-only afterwards, so a single *Config may be shared by every
// package processed concurrently.
//
// Options come either from the command line (`-P enabled=true`,
// `-P debugLogAnnotation=example.com/ann.Trace`) or from a project file
// (debuglog.yaml or debuglog.toml) which is translated 1:1 into the same
// option pairs:
//
//	enabled: true
//	annotations:
//	  - example.com/ann.Trace
//
// Validate must be called before any rewriting takes place.
package config
