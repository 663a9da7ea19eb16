// Package instrument rewrites annotated Go declarations so that they log their
// entry and exit.
//
// A declaration is a function, a method, or a named function literal
// (`name := func(...) {...}`, `var name = func(...) {...}`) nested at any
// depth. It is annotated with doc comment lines starting with '@':
//
//	// @example.com/ann.Trace
//	func addOne(n int) int { return n + 1 }
//
// is rewritten into
//
//	func addOne(n int) int {
//		__debuglog_log.Printf("-> addOne(%v)", n)
//		__debuglog_res0 := func() int { return n + 1 }()
//		__debuglog_log.Printf("<- addOne = %v", __debuglog_res0)
//		return __debuglog_res0
//	}
//
// The original body is relocated into the function literal as is, so named
// results, bare returns, defers and recover keep their semantics. Panics pass
// through and skip the exit log.
//
// Core components:
//
//   - Unit
//     The narrow view over a type-checked package the engine works with.
//     PackageUnit implements it over go/ast and go/types.
//
//   - Matcher
//     Decides whether a declaration is a target by exact fully qualified
//     annotation name membership.
//
//   - Synthesizer
//     Builds the replacement body.
//
//   - Rewriter
//     Walks every declaration of a unit once and applies replacements.
//
// Rewriting is not idempotent: running it again over an already rewritten
// unit wraps the wrappers.
package instrument
