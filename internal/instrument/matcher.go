package instrument

import (
	"github.com/sirkon/debuglog/internal/config"
)

// Matcher decides which declarations are to be instrumented.
type Matcher struct {
	cfg *config.Config
}

// NewMatcher creates a matcher over the given configuration.
func NewMatcher(cfg *config.Config) *Matcher {
	return &Matcher{cfg: cfg}
}

// IsTarget reports whether a declaration carrying given annotations is a target.
func (m *Matcher) IsTarget(annotations []string) bool {
	_, ok := m.Match(annotations)
	return ok
}

// Match returns the first configured annotation found. Any number of matches
// still means a single wrap.
func (m *Matcher) Match(annotations []string) (string, bool) {
	if !m.cfg.Enabled() {
		return "", false
	}

	for _, a := range annotations {
		if m.cfg.HasAnnotation(a) {
			return a, true
		}
	}

	return "", false
}
