package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"linkjd/internal/config"
	"linkjd/internal/logging"
	"linkjd/internal/runner"
	"linkjd/pkg/models"
	"linkjd/pkg/utils"
)

// batchRunner is what the subcommands drive
type batchRunner interface {
	ScrapeJD(ctx context.Context, req models.ScrapeRequest) (*models.RunSummary, error)
	ApplyDryRun(ctx context.Context, req models.ApplyRequest) (*models.RunSummary, error)
	CollectURLs(ctx context.Context, req models.CollectRequest) (*models.RunSummary, error)
}

type runnerFactory func(cfg *config.Config, logger logging.Logger) batchRunner

func defaultRunner(cfg *config.Config, logger logging.Logger) batchRunner {
	return runner.New(cfg, logger)
}

// app carries state shared by the root command and its subcommands
type app struct {
	cfgFile   string
	logLevel  string
	cfg       *config.Config
	newRunner runnerFactory
}

// newRootCommand builds a fresh command tree
func newRootCommand(newRunner runnerFactory) *cobra.Command {
	a := &app{newRunner: newRunner}

	root := &cobra.Command{
		Use:   "linkjd",
		Short: "Scrape job descriptions and dry-run quick-apply flows through your own browser session",
		Long: `linkjd attaches to an already running, already signed-in Chrome through its
remote debugging endpoint (PROFILE_CDP, default http://127.0.0.1:9222) and
works through a CSV of job posting URLs. It never submits an application.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return utils.NewValidationError("a subcommand is required")
		},
	}

	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "configs/config.yaml", "config file (missing file is ignored)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		newScrapeCommand(a),
		newApplyCommand(a),
		newCollectCommand(a),
	)
	return root
}

// load reads configuration and starts logging
func (a *app) load() error {
	cfg, err := config.LoadConfig(a.cfgFile)
	if err != nil {
		return utils.NewConfigError(a.cfgFile, err)
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	if err := logging.InitializeLogging(cfg); err != nil {
		return utils.NewConfigError("logging", err)
	}
	a.cfg = cfg
	return nil
}

// prepare applies per-invocation overrides, validates the result and builds
// the runner
func (a *app) prepare(cdpOverride string) (batchRunner, error) {
	a.cfg.ResolveCDPURL(cdpOverride)
	if err := a.cfg.Validate(); err != nil {
		return nil, utils.NewValidationError(err.Error())
	}
	return a.newRunner(a.cfg, logging.GetGlobalLogger()), nil
}

// printSummary writes the human-facing result of a run to stdout
func printSummary(out io.Writer, summary *models.RunSummary) {
	if summary == nil {
		return
	}
	for _, p := range summary.OutputPaths {
		fmt.Fprintf(out, "Wrote: %s\n", p)
	}

	keys := make([]string, 0, len(summary.Counts))
	for k := range summary.Counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, summary.Counts[k]))
	}
	fmt.Fprintf(out, "Done: %d processed (%s) in %s\n", summary.Total, strings.Join(parts, ", "), utils.FormatDuration(summary.ProcessingTime))
}

// exitCode maps a command error to the process exit status
func exitCode(err error) int {
	if errors.Is(err, context.Canceled) {
		return utils.ExitInterrupted
	}
	return utils.ExitCode(err)
}
