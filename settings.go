package main

import (
	"errors"
	"fmt"
	"go/token"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sirkon/debuglog/internal/config"
	"github.com/sirkon/debuglog/internal/dlrules"
	"github.com/sirkon/debuglog/internal/instrument"
)

// settings are the global flags and what is derived from them.
type settings struct {
	configPath  string
	dir         string
	enabled     bool
	annotations []string
	options     []string
	colorMode   string
	verbose     bool
	reportDir   string
	jobs        int

	enabledSet bool
	colored    bool
	logger     *slog.Logger
}

func (s *settings) register(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.StringVar(&s.configPath, "config", "", "configuration file (default: debuglog.{yaml,yml,toml} found upwards)")
	f.StringVarP(&s.dir, "dir", "C", "", "change to this directory before doing anything")
	f.BoolVar(&s.enabled, "enabled", false, "turn instrumentation on")
	f.StringArrayVar(&s.annotations, "annotation", nil, "fully qualified annotation name, can be repeated")
	f.StringArrayVarP(&s.options, "option", "P", nil, "plugin option in key=value form, can be repeated")
	f.StringVar(&s.colorMode, "color", "auto", "colorize output (auto|on|off)")
	f.BoolVar(&s.verbose, "verbose", false, "log what is going on")
	f.StringVar(&s.reportDir, "report-dir", "", "store manifests of instrumented declarations here")
	f.IntVar(&s.jobs, "jobs", 0, "packages rewritten at once (default: GOMAXPROCS)")
}

// setup runs before any command.
func (s *settings) setup(cmd *cobra.Command) error {
	if s.dir != "" {
		if err := os.Chdir(s.dir); err != nil {
			return fmt.Errorf("change directory: %w", err)
		}
	}
	s.enabledSet = cmd.Flags().Changed("enabled")

	switch strings.ToLower(s.colorMode) {
	case "auto":
		f, ok := cmd.OutOrStdout().(*os.File)
		s.colored = ok && isTerminal(f)
	case "on":
		s.colored = true
	case "off":
		s.colored = false
	default:
		return fmt.Errorf("invalid --color value %q, expected auto, on or off", s.colorMode)
	}
	color.NoColor = !s.colored

	level := slog.LevelWarn
	if s.verbose {
		level = slog.LevelDebug
	}
	s.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	return nil
}

// config merges the configuration file, options and flags, in this order.
func (s *settings) config() (*config.Config, error) {
	var opts []config.Option

	path := s.configPath
	if path == "" {
		found, err := config.FindExtension(".")
		if err != nil {
			return nil, fmt.Errorf("look for configuration file: %w", err)
		}
		path = found
	}
	if path != "" {
		ext, err := config.LoadExtension(path)
		if err != nil {
			return nil, fmt.Errorf("load configuration: %w", err)
		}
		s.logger.Debug("configuration file loaded", slog.String("path", path))
		opts = append(opts, ext.Options()...)
	}

	for _, raw := range s.options {
		opt, err := config.ParseOption(raw)
		if err != nil {
			return nil, err
		}
		opts = append(opts, opt)
	}

	if s.enabledSet {
		opts = append(opts, config.Option{Key: config.OptionEnabled, Value: fmt.Sprint(s.enabled)})
	}
	for _, a := range s.annotations {
		opts = append(opts, config.Option{Key: config.OptionAnnotation, Value: a})
	}

	cfg, err := config.ParseOptions(opts)
	if err != nil {
		return nil, err
	}
	s.logger.Debug(
		"configuration",
		slog.Bool("enabled", cfg.Enabled()),
		slog.Any("annotations", cfg.Annotations()),
	)

	return cfg, nil
}

// rewriter builds a validated rewriter. Configuration failures go to rep as
// well.
func (s *settings) rewriter(rep *instrument.Reporter) (*instrument.Rewriter, error) {
	cfg, err := s.config()
	if err != nil {
		var invalid *config.InvalidOptionError
		if errors.As(err, &invalid) {
			rep.Phase(instrument.ReportConfig).Report(dlrules.InvalidOption(), "", err.Error(), token.Position{}, invalid.Key)
		}
		return nil, err
	}

	return instrument.NewRewriter(cfg, instrument.WithReporter(rep))
}

// summary prints collected reports with --verbose.
func (s *settings) summary(cmd *cobra.Command, rep *instrument.Reporter) {
	if s.verbose {
		rep.PrintSummary(cmd.ErrOrStderr())
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
