package main

import (
	"bytes"
	"context"
	"go/token"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirkon/debuglog/internal/config"
	"github.com/sirkon/debuglog/internal/overlay"
	"github.com/sirkon/debuglog/internal/report"
)

func TestRun(t *testing.T) {
	tests := []struct {
		name       string
		files      map[string]string
		args       []string
		code       int
		stdout     string
		stderrPart string
	}{
		{
			name:   "missing annotations from flags",
			args:   []string{"preview", "--enabled"},
			code:   1,
			stdout: config.MissingAnnotationsMessage + "\n",
		},
		{
			name:   "missing annotations from the configuration file",
			files:  map[string]string{"debuglog.yaml": "enabled: true\n"},
			args:   []string{"build", "./..."},
			code:   1,
			stdout: config.MissingAnnotationsMessage + "\n",
		},
		{
			name:   "missing annotations from options",
			args:   []string{"test", "-P", "plugin:debuglog:enabled=True", "-P", "debugLogAnnotation="},
			code:   1,
			stdout: config.MissingAnnotationsMessage + "\n",
		},
		{
			name:       "missing annotations are reported with --verbose",
			args:       []string{"preview", "--enabled", "--verbose"},
			code:       1,
			stdout:     config.MissingAnnotationsMessage + "\n",
			stderrPart: "[config] DLG000: MissingAnnotations - Instrumentation is enabled but no annotation names were configured.",
		},
		{
			name:       "invalid options are reported with --verbose",
			args:       []string{"build", "--verbose", "-P", "foo=bar", "./..."},
			code:       1,
			stderrPart: "[config] DLG010: InvalidOption - invalid option foo=\"bar\": unexpected config option",
		},
		{
			name:  "flags override the configuration file",
			files: map[string]string{"debuglog.toml": "enabled = true\n"},
			args:  []string{"preview", "--enabled=false"},
			code:  0,
		},
		{
			name:       "unknown option",
			args:       []string{"preview", "-P", "foo=bar"},
			code:       1,
			stderrPart: "unexpected config option",
		},
		{
			name:       "malformed enabled value",
			args:       []string{"preview", "-P", "enabled=yes"},
			code:       1,
			stderrPart: "expected true or false",
		},
		{
			name:       "invalid color mode",
			args:       []string{"version", "--color", "sometimes"},
			code:       1,
			stderrPart: "invalid --color value",
		},
		{
			name:       "broken configuration file",
			files:      map[string]string{"debuglog.yaml": "enabled: [\n"},
			args:       []string{"preview"},
			code:       1,
			stderrPart: "parse YAML",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for name, content := range tt.files {
				if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
					t.Fatal(err)
				}
			}
			t.Chdir(dir)

			var stdout, stderr bytes.Buffer
			code := run(context.Background(), tt.args, &stdout, &stderr)
			if code != tt.code {
				t.Errorf("exit code %d, want %d; stderr:\n%s", code, tt.code, stderr.String())
			}
			if stdout.String() != tt.stdout {
				t.Errorf("stdout %q, want %q", stdout.String(), tt.stdout)
			}
			if !strings.Contains(stderr.String(), tt.stderrPart) {
				t.Errorf("stderr %q must contain %q", stderr.String(), tt.stderrPart)
			}
		})
	}
}

const demoPrelude = `package main

import (
	"fmt"
	"log"
	"os"
)

func init() {
	log.SetFlags(0)
	log.SetOutput(os.Stdout)
}
`

func TestRunInstrumented(t *testing.T) {
	if _, err := exec.LookPath("go"); err != nil {
		t.Skip("go command is not available")
	}

	tests := []struct {
		name   string
		main   string
		stdout string
	}{
		{
			name: "value",
			main: `
// @Debug
func addOne(n int) int {
	// increment it
	n++
	return n
} // addOne ends here

//go:noinline
func show(v int) {
	fmt.Println(v)
}

func main() {
	show(addOne(3))
}
`,
			stdout: "-> addOne(3)\n<- addOne = 4\n4\n",
		},
		{
			name: "void",
			main: `
// @Debug
func greet(name string) {
	fmt.Println("hi", name)
}

func main() {
	greet("gopher")
}
`,
			stdout: "-> greet(gopher)\nhi gopher\n<- greet = void\n",
		},
		{
			name: "panic",
			main: `
// @Debug
func boom(n int) int {
	if n > 0 {
		panic("boom")
	}
	return n
}

func main() {
	defer func() {
		fmt.Println("recovered:", recover())
	}()
	fmt.Println(boom(1))
}
`,
			stdout: "-> boom(1)\nrecovered: boom\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			files := map[string]string{
				"go.mod":  "module example.com/demo\n\ngo 1.25\n",
				"main.go": demoPrelude + tt.main,
			}
			for name, content := range files {
				if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
					t.Fatal(err)
				}
			}
			t.Chdir(dir)

			var stdout, stderr bytes.Buffer
			args := []string{"run", "--enabled", "--annotation", "example.com/demo.Debug", "."}
			if code := run(context.Background(), args, &stdout, &stderr); code != 0 {
				t.Fatalf("exit code %d, stderr:\n%s", code, stderr.String())
			}
			if stdout.String() != tt.stdout {
				t.Errorf("stdout %q, want %q", stdout.String(), tt.stdout)
			}
		})
	}
}

func TestRunVersion(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run(context.Background(), []string{"version"}, &stdout, &stderr); code != 0 {
		t.Fatalf("exit code %d, stderr:\n%s", code, stderr.String())
	}
	if !strings.HasPrefix(stdout.String(), "debuglog ") {
		t.Errorf("unexpected output %q", stdout.String())
	}
}

func TestRunReport(t *testing.T) {
	dir := t.TempDir()
	m := report.FromPackage(&overlay.Package{
		Path: "example.com/demo",
		Decls: []overlay.Decl{
			{
				Name:       "addOne",
				Kind:       "func",
				Annotation: "example.com/demo.Debug",
				Pos:        token.Position{Filename: "/src/demo/main.go", Line: 6, Column: 1},
			},
		},
	})
	if err := report.Write(dir, m); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"report", "--color=off", dir}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code %d, stderr:\n%s", code, stderr.String())
	}

	const want = `example.com/demo
  main.go:6:1  addOne  func  @example.com/demo.Debug
`
	if stdout.String() != want {
		t.Errorf("unexpected output:\n%s\nwant:\n%s", stdout.String(), want)
	}

	code = run(context.Background(), []string{"report"}, &stdout, &stderr)
	if code != 1 || !strings.Contains(stderr.String(), "report directory is required") {
		t.Errorf("missing report directory must fail, got %d:\n%s", code, stderr.String())
	}
}
