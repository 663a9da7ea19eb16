package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/sirkon/debuglog/internal/report"
)

func newReportCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "report [dir]",
		Short: "Show declarations instrumented by previous runs",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := s.reportDir
			if len(args) > 0 {
				dir = args[0]
			}
			if dir == "" {
				return errors.New("report directory is required, pass it as an argument or with --report-dir")
			}

			ms, err := report.Load(dir)
			if err != nil {
				return err
			}

			return report.NewPrinter(s.colored).Print(cmd.OutOrStdout(), ms)
		},
	}
}
