package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ExtensionFileNames are looked up, in this order, in every directory from the
// working one up to the root.
var ExtensionFileNames = []string{"debuglog.yaml", "debuglog.yml", "debuglog.toml"}

// Extension is the project-level configuration block.
type Extension struct {
	Enabled     bool     `yaml:"enabled" toml:"enabled"`
	Annotations []string `yaml:"annotations" toml:"annotations"`
}

// Options translates the block into option pairs.
func (e *Extension) Options() []Option {
	opts := []Option{{Key: OptionEnabled, Value: formatBool(e.Enabled)}}
	for _, a := range e.Annotations {
		opts = append(opts, Option{Key: OptionAnnotation, Value: a})
	}

	return opts
}

// FindExtension looks for a project configuration file starting at startDir.
// Returns an empty path and no error when nothing was found.
func FindExtension(startDir string) (string, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolve start directory: %w", err)
	}

	for {
		for _, name := range ExtensionFileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			} else if !errors.Is(err, os.ErrNotExist) {
				return "", fmt.Errorf("stat %q: %w", candidate, err)
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// LoadExtension reads the configuration file, the format is chosen by its extension.
func LoadExtension(path string) (*Extension, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var ext Extension
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &ext); err != nil {
			return nil, fmt.Errorf("%s: parse YAML: %w", path, err)
		}
	case ".toml":
		if _, err := toml.Decode(string(data), &ext); err != nil {
			return nil, fmt.Errorf("%s: parse TOML: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("%s: unsupported config format", path)
	}

	return &ext, nil
}
