package instrument

import (
	"fmt"
	"go/token"
)

// SynthesisError means a replacement could not be built for an annotated
// declaration. It is fatal for the unit.
type SynthesisError struct {
	Name   string
	Pos    token.Pos
	Reason string
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("instrument %s: %s", e.Name, e.Reason)
}

func synthesisErrorf(d *Declaration, format string, a ...any) *SynthesisError {
	return &SynthesisError{
		Name:   d.Name,
		Pos:    d.Pos(),
		Reason: fmt.Sprintf(format, a...),
	}
}
