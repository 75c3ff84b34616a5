// Package runner orchestrates batch runs: it owns the browser session, walks
// the URL list strictly in order and turns per-URL failures into records.
package runner

import (
	"context"
	"fmt"
	"time"

	"linkjd/internal/apply"
	"linkjd/internal/browser"
	"linkjd/internal/collect"
	"linkjd/internal/config"
	"linkjd/internal/extract"
	"linkjd/internal/logging/types"
	"linkjd/pkg/utils"
)

// Session is a browser attachment holding the single page a run drives
type Session interface {
	Page() browser.Page
	Close() error
}

// Opener attaches to the browser at cdpURL
type Opener func(ctx context.Context, cdpURL string) (Session, error)

func attachRemote(ctx context.Context, cdpURL string) (Session, error) {
	return browser.Attach(ctx, cdpURL)
}

// Runner executes scrape, dry-run apply and collect batches
type Runner struct {
	cfg    *config.Config
	logger types.Logger
	open   Opener
	pacer  *Pacer
	clock  func() time.Time

	extractor *extract.Extractor
	navigator *apply.Navigator
	collector *collect.Collector
}

// Option customizes a Runner
type Option func(*Runner)

// WithOpener replaces how browser sessions are attached
func WithOpener(open Opener) Option {
	return func(r *Runner) {
		r.open = open
	}
}

// WithClock replaces the time source used for scrape timestamps
func WithClock(clock func() time.Time) Option {
	return func(r *Runner) {
		r.clock = clock
	}
}

// New creates a runner from configuration
func New(cfg *config.Config, logger types.Logger, opts ...Option) *Runner {
	r := &Runner{
		cfg:       cfg,
		logger:    logger,
		open:      attachRemote,
		pacer:     NewPacer(cfg.Pacing.RequestsPerMinute, logger),
		clock:     time.Now,
		extractor: extract.New(extract.OptionsFromConfig(cfg), logger.WithField("component", "extractor")),
		navigator: apply.New(apply.OptionsFromConfig(cfg), logger.WithField("component", "navigator")),
		collector: collect.New(collect.OptionsFromConfig(cfg), logger.WithField("component", "collector")),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// attach opens the session for one run. The caller must Close it.
func (r *Runner) attach(ctx context.Context, cdpURL string) (Session, error) {
	cdpURL = r.cfg.ResolveCDPURL(cdpURL)
	session, err := r.open(ctx, cdpURL)
	if err != nil {
		return nil, utils.NewBrowserError(fmt.Sprintf("cannot attach to %s; is the browser running with remote debugging enabled?", cdpURL), err)
	}
	return session, nil
}

func (r *Runner) release(session Session, logger types.Logger) {
	if err := session.Close(); err != nil {
		logger.WithError(err).Warn("Failed to release browser session")
	}
}

// load navigates page to url and waits for it to settle
func (r *Runner) load(ctx context.Context, page browser.Page, url string) error {
	b := r.cfg.Browser
	if err := r.pacer.Wait(ctx, url); err != nil {
		return err
	}
	if err := page.Navigate(ctx, url, b.NavigationTimeout); err != nil {
		return err
	}
	return browser.Settle(ctx, b.PostNavSettle)
}

func (r *Runner) validate(req interface{}) error {
	if err := config.Validator().Struct(req); err != nil {
		return utils.NewValidationError(err.Error())
	}
	return nil
}

func (r *Runner) logSummary(logger types.Logger, mode string, started time.Time, counts map[string]int, total int) {
	fields := map[string]interface{}{
		"mode":     mode,
		"total":    total,
		"duration": utils.FormatDuration(time.Since(started)),
	}
	for k, v := range counts {
		fields["count_"+k] = v
	}
	logger.Info("Run finished", fields)
	for domain, stats := range r.pacer.Stats() {
		logger.Debug("Pacing stats", map[string]interface{}{
			"domain":   domain,
			"requests": stats["requests"],
			"failures": stats["failures"],
		})
	}
}
