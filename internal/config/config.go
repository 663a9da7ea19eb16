package config

import (
	"maps"
	"slices"
)

// Config is an immutable debuglog configuration.
type Config struct {
	enabled     bool
	annotations map[string]struct{}
}

// New creates a configuration. Empty annotation names are accepted and
// ignored, duplicates collapse.
func New(enabled bool, annotations ...string) *Config {
	c := &Config{
		enabled:     enabled,
		annotations: make(map[string]struct{}, len(annotations)),
	}
	for _, a := range annotations {
		if a == "" {
			continue
		}
		c.annotations[a] = struct{}{}
	}

	return c
}

// Enabled reports whether instrumentation is switched on.
func (c *Config) Enabled() bool {
	return c != nil && c.enabled
}

// Annotations returns configured annotation names in sorted order.
func (c *Config) Annotations() []string {
	if c == nil {
		return nil
	}

	return slices.Sorted(maps.Keys(c.annotations))
}

// HasAnnotation checks if the given fully qualified name is configured.
func (c *Config) HasAnnotation(fqn string) bool {
	if c == nil || fqn == "" {
		return false
	}
	_, ok := c.annotations[fqn]
	return ok
}

// Len returns the number of distinct non-empty annotation names.
func (c *Config) Len() int {
	if c == nil {
		return 0
	}

	return len(c.annotations)
}

// Options renders the configuration back into option pairs.
func (c *Config) Options() []Option {
	opts := []Option{{Key: OptionEnabled, Value: formatBool(c.Enabled())}}
	for _, a := range c.Annotations() {
		opts = append(opts, Option{Key: OptionAnnotation, Value: a})
	}

	return opts
}

func formatBool(v bool) string {
	if v {
		return "true"
	}
	return "false"
}
