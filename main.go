// Command debuglog builds, runs and tests Go packages with annotated
// functions wrapped into entry/exit logging.
//
//	debuglog build --annotation example.com/ann.Debug --enabled -- ./...
//
// Settings come from debuglog.yaml, debuglog.yml or debuglog.toml found in
// the working directory or above, command line flags take precedence.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sirkon/debuglog/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command line and returns the exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	var missing *config.MissingAnnotationsError
	if errors.As(err, &missing) {
		_, _ = fmt.Fprintln(stdout, config.MissingAnnotationsMessage)
		return 1
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		// The go command has already told what went wrong.
		if code := exitErr.ExitCode(); code > 0 {
			return code
		}
		return 1
	}

	_, _ = fmt.Fprintln(stderr, color.New(color.FgRed).Sprint("debuglog:"), err)
	return 1
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	s := &settings{}
	root := &cobra.Command{
		Use:           "debuglog",
		Short:         "Entry/exit logging for annotated Go functions",
		Long:          "debuglog rewrites functions carrying configured annotations so that they log their arguments and results, then hands the result to the go command.",
		Version:       version(),
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return s.setup(cmd)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	s.register(root)

	root.AddCommand(
		newGoCmd(s, "build", "Compile packages with annotated functions instrumented"),
		newGoCmd(s, "run", "Compile and run a program with annotated functions instrumented"),
		newGoCmd(s, "test", "Test packages with annotated functions instrumented"),
		newPreviewCmd(s),
		newReportCmd(s),
		newVersionCmd(),
	)

	return root
}
