// Package overlay builds Go packages with annotated declarations instrumented.
//
// Packages named by patterns are loaded and type checked with go/packages,
// rewritten concurrently, and printed into a temporary directory. The go
// command is then run with -overlay pointing at the rewritten copies, so the
// sources stay intact.
package overlay
