package dlrules

import "fmt"

// Code represents a debuglog diagnostic code.
type Code int

const (
	codeInvalid Code = iota

	DLG000MissingAnnotations
	DLG010InvalidOption
	DLG020SynthesisFailed
	DLG100Instrumented
)

// String returns the canonical code and short name.
// Example: "DLG000: MissingAnnotations"
func (c Code) String() string {
	switch c {
	case DLG000MissingAnnotations:
		return "DLG000: MissingAnnotations"
	case DLG010InvalidOption:
		return "DLG010: InvalidOption"
	case DLG020SynthesisFailed:
		return "DLG020: SynthesisFailed"
	case DLG100Instrumented:
		return "DLG100: Instrumented"
	default:
		return fmt.Sprintf("code-unknown(%d)", c)
	}
}

// Description returns the human-readable explanation of the code.
func (c Code) Description() string {
	switch c {
	case DLG000MissingAnnotations:
		return "Instrumentation is enabled but no annotation names were configured."
	case DLG010InvalidOption:
		return "Option value cannot be parsed or the option is unknown."
	case DLG020SynthesisFailed:
		return "Replacement body cannot be built for an annotated declaration."
	case DLG100Instrumented:
		return "Declaration body is wrapped with entry/exit logging."
	default:
		return fmt.Sprintf("unknown-code(%d)", c)
	}
}

// IsError tells fatal codes from informational ones.
func (c Code) IsError() bool {
	return c > codeInvalid && c < DLG100Instrumented
}

// Canonical constructors for stable call sites.

func MissingAnnotations() Code { return DLG000MissingAnnotations }
func InvalidOption() Code      { return DLG010InvalidOption }
func SynthesisFailed() Code    { return DLG020SynthesisFailed }
func Instrumented() Code       { return DLG100Instrumented }
