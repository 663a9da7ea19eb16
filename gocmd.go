package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/sirkon/debuglog/internal/instrument"
	"github.com/sirkon/debuglog/internal/overlay"
	"github.com/sirkon/debuglog/internal/report"
)

// newGoCmd creates a command wrapping go <verb>.
func newGoCmd(s *settings, verb, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   verb + " [go flags] [packages] [-- go arguments]",
		Short: short,
		Long: short + `.

Arguments are passed to "go ` + verb + `" as is. Flags following the first
package belong to the go command, use -- to pass go flags before packages.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGo(cmd.Context(), s, cmd, verb, args)
		},
	}
	cmd.Flags().SetInterspersed(false)

	return cmd
}

func runGo(ctx context.Context, s *settings, cmd *cobra.Command, verb string, args []string) error {
	rep := &instrument.Reporter{}
	defer s.summary(cmd, rep)
	rw, err := s.rewriter(rep)
	if err != nil {
		return err
	}

	split := overlay.SplitArgs(verb, args)
	s.logger.Debug("go arguments", slog.Any("patterns", split.Patterns), slog.Any("flags", split.LoaderFlags))

	d := overlay.New(
		rw,
		overlay.WithBuildFlags(split.LoaderFlags),
		overlay.WithTests(verb == "test"),
		overlay.WithJobs(s.jobs),
		overlay.WithLogger(s.logger),
	)
	pkgs, err := d.Rewrite(ctx, split.Patterns...)
	if err != nil {
		return err
	}
	if err := s.storeReports(pkgs); err != nil {
		return err
	}

	gocmd := &overlay.Command{
		Verb:   verb,
		Args:   args,
		Stdin:  os.Stdin,
		Stdout: cmd.OutOrStdout(),
		Stderr: cmd.ErrOrStderr(),
	}

	if len(pkgs) > 0 {
		dir, err := os.MkdirTemp("", "debuglog-")
		if err != nil {
			return fmt.Errorf("create overlay dir: %w", err)
		}
		defer func() {
			if err := os.RemoveAll(dir); err != nil {
				s.logger.Warn("remove overlay dir", slog.String("dir", dir), slog.Any("err", err))
			}
		}()

		gocmd.Overlay, err = overlay.Write(dir, pkgs)
		if err != nil {
			return err
		}
		s.logger.Debug("overlay written", slog.String("path", gocmd.Overlay))
	}

	return gocmd.Run(ctx)
}

func (s *settings) storeReports(pkgs []*overlay.Package) error {
	if s.reportDir == "" {
		return nil
	}

	for _, p := range pkgs {
		if err := report.Write(s.reportDir, report.FromPackage(p)); err != nil {
			return err
		}
	}
	s.logger.Debug("reports stored", slog.String("dir", s.reportDir), slog.Int("packages", len(pkgs)))

	return nil
}
