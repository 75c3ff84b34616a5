// Package collect harvests job posting ids from search and collection pages,
// following the list's pagination.
package collect

import (
	"context"
	"time"

	"linkjd/internal/browser"
	"linkjd/internal/config"
	"linkjd/internal/locale"
	"linkjd/internal/logging/types"
)

// ListContainers are the scrollable result list containers, most specific first
var ListContainers = []string{
	".jobs-search-results-list",
	".jobs-search-results-list__container",
	".scaffold-layout__list",
	".scaffold-layout__list-container",
	"main .scaffold-layout__list",
}

// paginationScopes are searched in order for an enabled next-page control.
// Plain links are left out; job cards are links whose titles may read "Next".
var paginationScopes = []string{
	".jobs-search-pagination__button--next, .artdeco-pagination__button--next",
	"button[aria-label]",
	"button",
}

// Options bounds a collection run
type Options struct {
	MaxPages       int
	MaxJobs        int
	ScrollTimes    int
	ScrollSettle   time.Duration
	PageTurnSettle time.Duration
}

// OptionsFromConfig reads collection settings from the application config
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		MaxPages:       cfg.Collect.MaxPages,
		MaxJobs:        cfg.Collect.MaxJobs,
		ScrollTimes:    cfg.Collect.ScrollTimes,
		ScrollSettle:   cfg.Browser.ScrollSettle,
		PageTurnSettle: cfg.Collect.PageTurnSettle,
	}
}

// Collector walks the pages of a loaded job list
type Collector struct {
	opts   Options
	logger types.Logger
}

// New creates a collector
func New(opts Options, logger types.Logger) *Collector {
	if opts.MaxPages <= 0 {
		opts.MaxPages = 1
	}
	return &Collector{opts: opts, logger: logger}
}

// WithLimits returns a copy of the collector with the given page and job
// limits; non-positive values keep the current ones
func (c *Collector) WithLimits(maxPages, maxJobs int) *Collector {
	opts := c.opts
	if maxPages > 0 {
		opts.MaxPages = maxPages
	}
	if maxJobs > 0 {
		opts.MaxJobs = maxJobs
	}
	return &Collector{opts: opts, logger: c.logger}
}

// Collect returns the job ids found on the list currently loaded in page and
// its following pages. Ids gathered before an error are returned with it.
func (c *Collector) Collect(ctx context.Context, page browser.Page) ([]string, error) {
	seen := make(map[string]struct{})
	var ids []string

	for pageNo := 1; pageNo <= c.opts.MaxPages; pageNo++ {
		if err := c.scroll(ctx, page); err != nil {
			return ids, err
		}

		html, err := page.HTML(ctx)
		if err != nil {
			return ids, err
		}
		found, err := HarvestJobIDs(html, page.URL())
		if err != nil {
			return ids, err
		}

		for _, id := range found {
			if c.full(ids) {
				break
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}

		c.logger.Info("Collected list page", map[string]interface{}{
			"page":  pageNo,
			"found": len(found),
			"total": len(ids),
		})

		if c.full(ids) || pageNo == c.opts.MaxPages {
			break
		}
		if !c.nextPage(ctx, page) {
			c.logger.Debug("No next page control, stopping")
			break
		}
		if err := browser.Settle(ctx, c.opts.PageTurnSettle); err != nil {
			return ids, err
		}
	}

	return ids, nil
}

func (c *Collector) full(ids []string) bool {
	return c.opts.MaxJobs > 0 && len(ids) >= c.opts.MaxJobs
}

// scroll nudges the result list so lazily rendered cards appear
func (c *Collector) scroll(ctx context.Context, page browser.Page) error {
	for i := 0; i < c.opts.ScrollTimes; i++ {
		browser.Attempt(c.logger, "scroll_list", func() error {
			return page.ScrollList(ctx, ListContainers)
		})
		if err := browser.Settle(ctx, c.opts.ScrollSettle); err != nil {
			return err
		}
	}
	return nil
}

// nextPage clicks the first enabled pagination control. It reports whether a
// click happened.
func (c *Collector) nextPage(ctx context.Context, page browser.Page) bool {
	enabled := func(ctl browser.Control) bool { return !ctl.Disabled() }

	for _, scope := range paginationScopes {
		var controls []browser.Control
		if !browser.Attempt(c.logger, "list_pagination_controls", func() (err error) {
			controls, err = page.Controls(ctx, scope)
			return err
		}) {
			continue
		}

		next, _, ok := locale.Resolve(locale.PaginationNext, controls, enabled)
		if !ok {
			continue
		}
		return browser.Attempt(c.logger, "pagination_click", func() error {
			return next.Click(ctx)
		})
	}
	return false
}
