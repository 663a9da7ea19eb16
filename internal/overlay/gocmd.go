package overlay

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// Command runs the go command.
type Command struct {
	Verb    string
	Args    []string
	Overlay string

	Dir    string
	Env    []string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Argv returns the go command arguments.
func (c *Command) Argv() []string {
	argv := []string{c.Verb}
	if c.Overlay != "" {
		argv = append(argv, "-overlay="+c.Overlay)
	}

	return append(argv, c.Args...)
}

// Run executes the command.
func (c *Command) Run(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, "go", c.Argv()...)
	cmd.Dir = c.Dir
	cmd.Env = c.Env
	cmd.Stdin = c.Stdin
	cmd.Stdout = c.Stdout
	cmd.Stderr = c.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("go %s: %w", c.Verb, err)
	}

	return nil
}

// Go flags taking a value in a separate argument.
var valueFlags = map[string]struct{}{
	"asmflags": {}, "bench": {}, "benchtime": {}, "blockprofile": {}, "count": {},
	"coverpkg": {}, "covermode": {}, "coverprofile": {}, "cpu": {}, "cpuprofile": {},
	"exec": {}, "gccgoflags": {}, "gcflags": {}, "installsuffix": {}, "ldflags": {},
	"memprofile": {}, "mod": {}, "modfile": {}, "mutexprofile": {}, "o": {},
	"outputdir": {}, "overlay": {}, "p": {}, "parallel": {}, "pgo": {}, "pkgdir": {},
	"run": {}, "shuffle": {}, "skip": {}, "tags": {}, "timeout": {}, "toolexec": {},
	"trace": {},
}

// Flags the package loader must see as well.
var loaderFlags = map[string]struct{}{
	"tags": {}, "mod": {}, "modfile": {},
}

// Args is a go command line split into parts.
type Args struct {
	// LoaderFlags are the build flags the package loader needs.
	LoaderFlags []string

	// Patterns name packages to rewrite.
	Patterns []string
}

// SplitArgs picks package patterns and loader flags from go command
// arguments. Program arguments of go run, following the package, are skipped.
func SplitArgs(verb string, args []string) Args {
	var res Args
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			break
		}

		if !strings.HasPrefix(arg, "-") {
			if verb != "run" {
				res.Patterns = append(res.Patterns, arg)
				continue
			}
			if strings.HasSuffix(arg, ".go") {
				res.Patterns = append(res.Patterns, arg)
				continue
			}
			if len(res.Patterns) == 0 {
				res.Patterns = append(res.Patterns, arg)
			}
			break
		}

		name, _, hasValue := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		if name == "args" {
			break
		}
		_, loader := loaderFlags[name]
		if hasValue {
			if loader {
				res.LoaderFlags = append(res.LoaderFlags, arg)
			}
			continue
		}
		if _, ok := valueFlags[name]; ok && i+1 < len(args) {
			i++
			if loader {
				res.LoaderFlags = append(res.LoaderFlags, arg, args[i])
			}
		}
	}

	if len(res.Patterns) == 0 {
		res.Patterns = []string{"."}
	}
	return res
}
