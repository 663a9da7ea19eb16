package config

import (
	"fmt"
	"strings"
)

// PluginID prefixes options in their command-line form: plugin:debuglog:<key>=<value>.
const PluginID = "debuglog"

// Recognized option keys.
const (
	OptionEnabled    = "enabled"
	OptionAnnotation = "debugLogAnnotation"
)

// Option is a single key/value pair as it is forwarded by a build integration.
type Option struct {
	Key   string
	Value string
}

func (o Option) String() string {
	return o.Key + "=" + o.Value
}

// InvalidOptionError is returned for malformed or unknown options.
type InvalidOptionError struct {
	Key    string
	Value  string
	Reason string
}

func (e *InvalidOptionError) Error() string {
	return fmt.Sprintf("invalid option %s=%q: %s", e.Key, e.Value, e.Reason)
}

// ParseOptions builds a configuration from option pairs.
//
// The enabled option is optional and defaults to false when missing. The
// annotation option may be repeated, each occurrence adds one name.
func ParseOptions(opts []Option) (*Config, error) {
	var (
		enabled     bool
		annotations []string
	)

	for _, opt := range opts {
		switch opt.Key {
		case OptionEnabled:
			v, err := parseBool(opt.Value)
			if err != nil {
				return nil, &InvalidOptionError{Key: opt.Key, Value: opt.Value, Reason: err.Error()}
			}
			enabled = v

		case OptionAnnotation:
			annotations = append(annotations, strings.TrimSpace(opt.Value))

		default:
			return nil, &InvalidOptionError{Key: opt.Key, Value: opt.Value, Reason: "unexpected config option"}
		}
	}

	return New(enabled, annotations...), nil
}

// ParseOptionStrings parses options in their command-line form. Both
// "key=value" and "plugin:debuglog:key=value" are accepted.
func ParseOptionStrings(raw []string) (*Config, error) {
	opts := make([]Option, 0, len(raw))
	for _, r := range raw {
		opt, err := ParseOption(r)
		if err != nil {
			return nil, err
		}
		opts = append(opts, opt)
	}

	return ParseOptions(opts)
}

// ParseOption splits a single command-line option.
func ParseOption(raw string) (Option, error) {
	s := strings.TrimPrefix(raw, "plugin:"+PluginID+":")
	key, value, ok := strings.Cut(s, "=")
	if !ok {
		return Option{}, &InvalidOptionError{Key: raw, Reason: "must be in key=value form"}
	}

	return Option{Key: strings.TrimSpace(key), Value: value}, nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, fmt.Errorf("expected true or false")
	}
}
