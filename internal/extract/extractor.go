// Package extract turns a rendered job posting page into structured fields.
// Every field is derived through layered heuristics over rendered text so that
// a change in page markup degrades a field instead of failing the record.
package extract

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"linkjd/internal/browser"
	"linkjd/internal/config"
	"linkjd/internal/locale"
	"linkjd/internal/logging/types"
	"linkjd/pkg/models"
)

const (
	// MainSelector is the page's primary content container
	MainSelector = "main"

	expandSelector  = "button, a[role='button'], [role='button']"
	companySelector = `a[href*="/company/"]`
)

var companyPath = regexp.MustCompile(`/company/[^/?#]+`)

// Options tunes the extraction heuristics
type Options struct {
	ExpandClickLimit int
	TitleScanWindow  int
	ExpandSettle     time.Duration
}

// OptionsFromConfig reads the extraction settings from the application config
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		ExpandClickLimit: cfg.Extract.ExpandClickLimit,
		TitleScanWindow:  cfg.Extract.TitleScanWindow,
		ExpandSettle:     cfg.Browser.PostMainSettle,
	}
}

// Extractor reads job fields from a page that has already been navigated
type Extractor struct {
	opts   Options
	logger types.Logger
}

// New creates an extractor
func New(opts Options, logger types.Logger) *Extractor {
	if opts.TitleScanWindow <= 0 {
		opts.TitleScanWindow = 5
	}
	return &Extractor{opts: opts, logger: logger}
}

// Extract returns whatever fields the page yields. An error is returned only
// for page-level failures; fields derived before the failure are still
// returned alongside it.
func (e *Extractor) Extract(ctx context.Context, page browser.Page) (models.JobFields, error) {
	var fields models.JobFields

	e.expand(ctx, page)

	docTitle, err := page.Title(ctx)
	if err != nil {
		return fields, err
	}
	fields.DocumentTitle = NormalizeText(docTitle)
	fields.JobTitle, fields.CompanyName = splitDocumentTitle(fields.DocumentTitle)

	// Without a main region every line-scan field stays empty
	mainText, found, err := page.InnerText(ctx, MainSelector)
	if err != nil {
		return fields, err
	}
	mainText = NormalizeText(mainText)

	anchors, err := page.Anchors(ctx, companySelector)
	if err != nil {
		return fields, err
	}
	if a, ok := firstCompanyAnchor(anchors); ok {
		fields.CompanyName = firstLine(NormalizeText(a.Text))
		fields.CompanyLinkedIn = a.Href
	}

	lines := splitLines(mainText)
	if title := refineTitle(lines, fields.CompanyName, e.opts.TitleScanWindow); title != "" {
		fields.JobTitle = title
	}
	fields.LocationText = findLocation(lines)
	fields.DescriptionText = sliceDescription(mainText)

	if found && missing(fields) {
		withDescription := hasDescriptionHeading(mainText)
		browser.Attempt(e.logger, "top_card_fallback", func() error {
			html, err := page.HTML(ctx)
			if err != nil {
				return err
			}
			return fillFromTopCard(html, &fields, withDescription)
		})
	}

	e.logger.Debug("Extracted job fields", map[string]interface{}{
		"url":             page.URL(),
		"has_title":       fields.JobTitle != "",
		"has_company":     fields.CompanyName != "",
		"has_location":    fields.LocationText != "",
		"description_len": len([]rune(fields.DescriptionText)),
	})

	return fields, nil
}

// expand clicks up to ExpandClickLimit visible "show more" controls. Each click
// is best-effort.
func (e *Extractor) expand(ctx context.Context, page browser.Page) {
	if e.opts.ExpandClickLimit <= 0 {
		return
	}

	var controls []browser.Control
	if !browser.Attempt(e.logger, "list_expand_controls", func() (err error) {
		controls, err = page.Controls(ctx, expandSelector)
		return err
	}) {
		return
	}

	clicked := 0
	for i, c := range controls {
		if clicked >= e.opts.ExpandClickLimit {
			break
		}
		if !c.Visible() || !locale.Expand.Matches(c) {
			continue
		}
		clicked++
		browser.Attempt(e.logger, fmt.Sprintf("expand_click_%d", i), func() error {
			return c.Click(ctx)
		})
	}

	if clicked > 0 {
		_ = browser.Settle(ctx, e.opts.ExpandSettle)
	}
}

// firstCompanyAnchor picks the first company-profile link with visible text
func firstCompanyAnchor(anchors []browser.Anchor) (browser.Anchor, bool) {
	for _, a := range anchors {
		if !companyPath.MatchString(a.Href) {
			continue
		}
		if firstLine(NormalizeText(a.Text)) != "" {
			return a, true
		}
	}
	return browser.Anchor{}, false
}

func missing(f models.JobFields) bool {
	return f.JobTitle == "" || f.CompanyName == "" || f.LocationText == "" || f.DescriptionText == ""
}
