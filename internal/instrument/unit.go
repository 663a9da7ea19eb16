package instrument

import (
	"iter"
)

// Unit is the view over a single compilation unit the engine works with.
type Unit interface {
	// Declarations lists declarations in natural order, nested ones right
	// after the declaration containing them. Every call restarts the walk.
	Declarations() iter.Seq[*Declaration]

	// Annotations returns fully qualified annotation names of a declaration.
	Annotations(d *Declaration) []string

	// Parameters returns parameters in declaration order.
	Parameters(d *Declaration) []Param

	// Results returns resolved results of a declaration.
	Results(d *Declaration) (Results, error)

	// ReplaceBody installs a replacement.
	ReplaceBody(d *Declaration, r *Replacement)

	// Commit finalizes the unit after all replacements were installed.
	Commit() error
}
