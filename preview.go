package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sirkon/debuglog/internal/instrument"
	"github.com/sirkon/debuglog/internal/overlay"
)

func newPreviewCmd(s *settings) *cobra.Command {
	var tests bool
	cmd := &cobra.Command{
		Use:   "preview [packages]",
		Short: "Print instrumented sources without building anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			rep := &instrument.Reporter{}
			defer s.summary(cmd, rep)
			rw, err := s.rewriter(rep)
			if err != nil {
				return err
			}
			if len(args) == 0 {
				args = []string{"."}
			}

			d := overlay.New(
				rw,
				overlay.WithTests(tests),
				overlay.WithJobs(s.jobs),
				overlay.WithLogger(s.logger),
			)
			pkgs, err := d.Preview(cmd.Context(), args...)
			if err != nil {
				return err
			}
			if err := s.storeReports(pkgs); err != nil {
				return err
			}

			header := color.New(color.FgCyan)
			w := cmd.OutOrStdout()
			for _, p := range pkgs {
				for _, f := range p.Files {
					if _, err := header.Fprintf(w, "// %s\n", f.Path); err != nil {
						return err
					}
					if _, err := fmt.Fprintf(w, "%s\n", f.Content); err != nil {
						return err
					}
				}
			}

			return nil
		},
	}
	cmd.Flags().BoolVar(&tests, "tests", false, "include test files")

	return cmd
}
