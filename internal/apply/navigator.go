// Package apply drives an in-page application wizard up to, and never past,
// its final submission step.
package apply

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"linkjd/internal/browser"
	"linkjd/internal/config"
	"linkjd/internal/locale"
	"linkjd/internal/logging/types"
	"linkjd/pkg/models"
)

// ErrSubmitRefused is returned when a click targets a submission control
var ErrSubmitRefused = errors.New("refusing to click a submission control")

const (
	entrySelector = "button"

	emailSelector    = "input[type='email']"
	phoneSelector    = "input[type='tel']"
	fullNameSelector = "input[autocomplete='name']"
	uploadSelector   = "input[type='file']"
)

// wizardScopes are tried in order; the first scope with any control wins.
// The modal is preferred so page chrome behind it is never clicked.
var wizardScopes = []string{
	"[role='dialog'] button",
	".jobs-easy-apply-modal button",
	"button",
}

// Applicant holds the values used to pre-fill wizard fields
type Applicant struct {
	FullName   string
	Email      string
	Phone      string
	ResumePath string
}

// Options tunes the navigator
type Options struct {
	StepBudget    int
	ScreenshotDir string
	EntrySettle   time.Duration
	ClickSettle   time.Duration
	UploadSettle  time.Duration
	Applicant     Applicant
}

// OptionsFromConfig reads navigator settings from the application config
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		StepBudget:    cfg.Apply.StepBudget,
		ScreenshotDir: cfg.Apply.ScreenshotDir,
		EntrySettle:   cfg.Browser.EntrySettle,
		ClickSettle:   cfg.Browser.ClickSettle,
		UploadSettle:  cfg.Browser.UploadSettle,
		Applicant: Applicant{
			FullName:   cfg.Applicant.FullName,
			Email:      cfg.Applicant.Email,
			Phone:      cfg.Applicant.Phone,
			ResumePath: cfg.Applicant.ResumePath,
		},
	}
}

// Navigator runs the dry-run wizard state machine on a loaded page
type Navigator struct {
	opts   Options
	logger types.Logger
}

// New creates a navigator
func New(opts Options, logger types.Logger) *Navigator {
	if opts.StepBudget <= 0 {
		opts.StepBudget = 6
	}
	return &Navigator{opts: opts, logger: logger}
}

// ScreenshotPath returns where the screenshot for a batch index is written
func (n *Navigator) ScreenshotPath(index int) string {
	return filepath.Join(n.opts.ScreenshotDir, fmt.Sprintf("%02d_dry_run.png", index))
}

// Navigate runs the wizard on page, whose job posting has already been loaded.
// The returned error is non-nil only when ctx ends; every other condition is
// reported through the attempt's outcome.
func (n *Navigator) Navigate(ctx context.Context, page browser.Page, index int) (models.ApplyAttempt, error) {
	attempt := models.ApplyAttempt{
		URL:   page.URL(),
		Index: index,
	}
	if err := ctx.Err(); err != nil {
		attempt.Outcome = models.OutcomeError
		return attempt, err
	}
	logger := n.logger.WithFields(map[string]interface{}{
		"index": index,
		"url":   attempt.URL,
	})

	entry, label, ok := n.findEntry(ctx, page)
	if !ok {
		attempt.Outcome = models.OutcomeNotApplicable
		logger.Info("No apply entry control found, skipping")
		return attempt, nil
	}

	logger.Debug("Opening application wizard", map[string]interface{}{"label": label})
	if err := n.click(ctx, entry); err != nil {
		// The entry control vanished or is covered; nothing was opened
		attempt.Outcome = models.OutcomeNotApplicable
		attempt.Error = err.Error()
		logger.WithError(err).Warn("Apply entry control could not be clicked")
		return attempt, nil
	}
	if err := browser.Settle(ctx, n.opts.EntrySettle); err != nil {
		return attempt, err
	}

	if err := n.fill(ctx, page, logger); err != nil {
		return attempt, err
	}

	outcome, steps, err := n.advance(ctx, page, logger)
	attempt.Outcome = outcome
	attempt.Steps = steps
	if err != nil {
		return attempt, err
	}

	if outcome.Entered() {
		n.capture(ctx, page, &attempt, logger)
	}

	logger.Info("Dry-run attempt finished", map[string]interface{}{
		"outcome": string(outcome),
		"steps":   steps,
	})
	return attempt, nil
}

// findEntry resolves the first visible apply-entry control
func (n *Navigator) findEntry(ctx context.Context, page browser.Page) (browser.Control, string, bool) {
	var controls []browser.Control
	browser.Attempt(n.logger, "list_entry_controls", func() (err error) {
		controls, err = page.Controls(ctx, entrySelector)
		return err
	})
	return locale.Resolve(locale.ApplyEntry, controls, func(c browser.Control) bool {
		return c.Visible() && !locale.Submit.Matches(c)
	})
}

// fill pre-fills the known field types. Each fill is independent and
// best-effort; an absent field is skipped.
func (n *Navigator) fill(ctx context.Context, page browser.Page, logger types.Logger) error {
	a := n.opts.Applicant

	if a.FullName != "" {
		n.fillFirst(ctx, page, fullNameSelector, a.FullName)
	}
	if a.Email != "" {
		n.fillFirst(ctx, page, emailSelector, a.Email)
	}
	if a.Phone != "" {
		n.fillFirst(ctx, page, phoneSelector, a.Phone)
	}

	if !resumeExists(a.ResumePath) {
		return nil
	}
	uploaded := browser.Attempt(n.logger, "upload_resume", func() error {
		inputs, err := page.Controls(ctx, uploadSelector)
		if err != nil {
			return err
		}
		if len(inputs) == 0 {
			return errors.New("no file input")
		}
		return inputs[0].SetFiles(ctx, []string{a.ResumePath})
	})
	if !uploaded {
		return nil
	}
	logger.Debug("Resume attached", map[string]interface{}{"path": a.ResumePath})
	return browser.Settle(ctx, n.opts.UploadSettle)
}

func (n *Navigator) fillFirst(ctx context.Context, page browser.Page, selector, value string) {
	browser.Attempt(n.logger, "fill "+selector, func() error {
		inputs, err := page.Controls(ctx, selector)
		if err != nil {
			return err
		}
		if len(inputs) == 0 {
			return fmt.Errorf("no element matches %s", selector)
		}
		return inputs[0].Fill(ctx, value)
	})
}

// advance runs the bounded step loop. steps counts advance clicks attempted.
func (n *Navigator) advance(ctx context.Context, page browser.Page, logger types.Logger) (models.Outcome, int, error) {
	steps := 0
	for steps < n.opts.StepBudget {
		controls := n.wizardControls(ctx, page)

		if locale.Any(locale.Submit, controls) {
			logger.Info("Reached final submit step, stopping before submission")
			return models.OutcomeReachedFinal, steps, nil
		}

		next, label, ok := locale.Resolve(locale.Advance, controls, clickable)
		if !ok {
			logger.Warn("No next or review control found, manual handling required")
			return models.OutcomeStalled, steps, nil
		}

		steps++
		browser.Attempt(n.logger, "advance_click", func() error {
			logger.Debug("Advancing wizard", map[string]interface{}{"label": label, "step": steps})
			return n.click(ctx, next)
		})
		if err := browser.Settle(ctx, n.opts.ClickSettle); err != nil {
			return models.OutcomeError, steps, err
		}
	}

	// A wizard whose last budgeted click lands on the final step still counts
	if locale.Any(locale.Submit, n.wizardControls(ctx, page)) {
		logger.Info("Reached final submit step on the last budgeted step")
		return models.OutcomeReachedFinal, steps, nil
	}

	logger.Warn("Step budget exhausted before the final step", map[string]interface{}{"budget": n.opts.StepBudget})
	return models.OutcomeBudgetExhausted, steps, nil
}

// wizardControls lists buttons in the first non-empty scope
func (n *Navigator) wizardControls(ctx context.Context, page browser.Page) []browser.Control {
	for _, scope := range wizardScopes {
		var controls []browser.Control
		browser.Attempt(n.logger, "list_wizard_controls", func() (err error) {
			controls, err = page.Controls(ctx, scope)
			return err
		})
		if len(controls) > 0 {
			return controls
		}
	}
	return nil
}

// click is the only path through which the navigator clicks anything
func (n *Navigator) click(ctx context.Context, c browser.Control) error {
	if locale.Submit.Matches(c) {
		return ErrSubmitRefused
	}
	return c.Click(ctx)
}

// capture writes the terminal-state screenshot. Failures are recorded on the
// attempt but do not change its outcome.
func (n *Navigator) capture(ctx context.Context, page browser.Page, attempt *models.ApplyAttempt, logger types.Logger) {
	path := n.ScreenshotPath(attempt.Index)
	ok := browser.Attempt(n.logger, "screenshot", func() error {
		shot, err := page.Screenshot(ctx)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("failed to create screenshot directory: %w", err)
		}
		return os.WriteFile(path, shot, 0644)
	})
	if !ok {
		attempt.Error = "screenshot failed"
		return
	}
	attempt.ScreenshotPath = path
	logger.Info("Screenshot saved", map[string]interface{}{"path": path})
}

func clickable(c browser.Control) bool {
	return c.Visible() && !c.Disabled() && !locale.Submit.Matches(c)
}

func resumeExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
