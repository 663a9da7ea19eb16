package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirkon/deepequal"
)

func TestLoadExtension(t *testing.T) {
	tests := []struct {
		file    string
		content string
	}{
		{
			file: "debuglog.yaml",
			content: `enabled: true
annotations:
  - a.Deprecated
  - example.com/ann.Trace
`,
		},
		{
			file: "debuglog.toml",
			content: `enabled = true
annotations = ["a.Deprecated", "example.com/ann.Trace"]
`,
		},
	}

	want := &Extension{
		Enabled:     true,
		Annotations: []string{"a.Deprecated", "example.com/ann.Trace"},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			root := t.TempDir()
			if err := os.WriteFile(filepath.Join(root, tt.file), []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			nested := filepath.Join(root, "internal", "pkg")
			if err := os.MkdirAll(nested, 0o755); err != nil {
				t.Fatal(err)
			}

			path, err := FindExtension(nested)
			if err != nil {
				t.Fatal(err)
			}
			if filepath.Base(path) != tt.file {
				t.Fatalf("unexpected config file %q", path)
			}

			got, err := LoadExtension(path)
			if err != nil {
				t.Fatal(err)
			}
			if got.Enabled != want.Enabled || len(got.Annotations) != len(want.Annotations) {
				deepequal.SideBySide(t, "extension", want, got)
				t.FailNow()
			}

			cfg, err := ParseOptions(got.Options())
			if err != nil {
				t.Fatal(err)
			}
			if !cfg.Enabled() || !cfg.HasAnnotation("example.com/ann.Trace") {
				t.Errorf("unexpected config %v", cfg.Options())
			}
		})
	}
}

func TestFindExtensionMissing(t *testing.T) {
	path, err := FindExtension(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	// Temp dirs normally live outside any project; anything found must be a real file.
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("found config %q does not exist: %s", path, err)
		}
	}
}
