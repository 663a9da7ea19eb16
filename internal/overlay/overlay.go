package overlay

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
)

// FileName is the name of the overlay description within an overlay directory.
const FileName = "overlay.json"

// Description is the format the go command reads with -overlay.
type Description struct {
	Replace map[string]string
}

// Write stores rewritten files in dir and returns the path of the overlay
// description referring to them.
func Write(dir string, pkgs []*Package) (string, error) {
	desc := Description{Replace: map[string]string{}}
	for _, p := range pkgs {
		for _, f := range p.Files {
			orig, err := filepath.Abs(f.Path)
			if err != nil {
				return "", fmt.Errorf("resolve %s: %w", f.Path, err)
			}

			name := filepath.Join(dir, replacementName(orig))
			if err := os.WriteFile(name, f.Content, 0o644); err != nil {
				return "", fmt.Errorf("write replacement for %s: %w", orig, err)
			}
			desc.Replace[orig] = name
		}
	}

	data, err := json.MarshalIndent(desc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode overlay: %w", err)
	}

	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write overlay: %w", err)
	}

	return path, nil
}

// replacementName keeps the base name for readable compiler messages and
// prefixes it with a hash of the full path, so equal base names never clash.
func replacementName(path string) string {
	return fmt.Sprintf("%016x_%s", xxhash.Sum64String(path), filepath.Base(path))
}
