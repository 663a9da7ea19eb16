package config

// MissingAnnotationsMessage is printed verbatim when validation fails.
const MissingAnnotationsMessage = "DebugLog is enabled, but no annotations were set"

// MissingAnnotationsError signals enabled instrumentation without anything to look for.
type MissingAnnotationsError struct{}

func (*MissingAnnotationsError) Error() string {
	return MissingAnnotationsMessage
}

// Validate checks the configuration once before any package gets rewritten.
func Validate(c *Config) error {
	if c.Enabled() && c.Len() == 0 {
		return &MissingAnnotationsError{}
	}

	return nil
}
