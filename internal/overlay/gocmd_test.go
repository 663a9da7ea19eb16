package overlay

import (
	"reflect"
	"testing"

	"github.com/sirkon/deepequal"
)

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		name string
		verb string
		args []string
		want Args
	}{
		{
			name: "defaults to current package",
			verb: "build",
			args: nil,
			want: Args{Patterns: []string{"."}},
		},
		{
			name: "flags with values are skipped",
			verb: "build",
			args: []string{"-o", "bin/app", "-race", "-ldflags=-s -w", "./cmd/app", "./internal/..."},
			want: Args{Patterns: []string{"./cmd/app", "./internal/..."}},
		},
		{
			name: "loader flags are kept",
			verb: "test",
			args: []string{"-tags", "integration", "-mod=vendor", "-run", "TestX", "./...", "-v"},
			want: Args{
				LoaderFlags: []string{"-tags", "integration", "-mod=vendor"},
				Patterns:    []string{"./..."},
			},
		},
		{
			name: "run stops at the package",
			verb: "run",
			args: []string{"-race", "./cmd/app", "serve", "--port", "8080"},
			want: Args{Patterns: []string{"./cmd/app"}},
		},
		{
			name: "run with files",
			verb: "run",
			args: []string{"main.go", "util.go", "serve"},
			want: Args{Patterns: []string{"main.go", "util.go"}},
		},
		{
			name: "double dash ends the list",
			verb: "test",
			args: []string{"./pkg", "-args", "extra", "--", "-x"},
			want: Args{Patterns: []string{"./pkg"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitArgs(tt.verb, tt.args)
			if !reflect.DeepEqual(tt.want, got) {
				deepequal.SideBySide(t, "args", tt.want, got)
			}
		})
	}
}

func TestCommandArgv(t *testing.T) {
	c := &Command{
		Verb:    "test",
		Args:    []string{"-v", "./..."},
		Overlay: "/tmp/x/overlay.json",
	}
	want := []string{"test", "-overlay=/tmp/x/overlay.json", "-v", "./..."}
	if got := c.Argv(); !reflect.DeepEqual(want, got) {
		t.Errorf("Argv() = %q, want %q", got, want)
	}

	c.Overlay = ""
	want = []string{"test", "-v", "./..."}
	if got := c.Argv(); !reflect.DeepEqual(want, got) {
		t.Errorf("Argv() = %q, want %q", got, want)
	}
}
