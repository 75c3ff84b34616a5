package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"linkjd/internal/browser"
	"linkjd/internal/exporter"
	"linkjd/pkg/models"
	"linkjd/pkg/utils"
)

// AttemptsFile is the name of the dry-run summary written to the screenshot directory
const AttemptsFile = "attempts.csv"

// ApplyDryRun walks the application wizard for the first Limit postings of
// the input file. Nothing is ever submitted.
func (r *Runner) ApplyDryRun(ctx context.Context, req models.ApplyRequest) (*models.RunSummary, error) {
	started := time.Now()
	if err := r.validate(req); err != nil {
		return nil, err
	}

	urls, err := exporter.ReadURLs(req.InputPath)
	if err != nil {
		return nil, utils.NewConfigError(req.InputPath, err)
	}
	if len(urls) > req.Limit {
		urls = urls[:req.Limit]
	}

	summary := models.NewRunSummary(utils.GenerateRunID(), "apply-dry-run")
	logger := r.logger.WithFields(map[string]interface{}{
		"run_id": summary.RunID,
		"mode":   summary.Mode,
	})

	if !r.cfg.ResumeAvailable() {
		logger.Warn("Resume path is empty or missing; resume upload will be skipped", map[string]interface{}{
			"resume_path": r.cfg.Applicant.ResumePath,
		})
	}

	dir := r.cfg.Apply.ScreenshotDir
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, utils.NewConfigError("cannot create screenshot directory "+dir, err)
	}

	logger.Info("Starting dry-run apply; final submission is never clicked", map[string]interface{}{
		"input": req.InputPath,
		"rows":  len(urls),
	})

	session, err := r.attach(ctx, req.CDPURL)
	if err != nil {
		return nil, err
	}
	defer r.release(session, logger)
	page := session.Page()

	attempts := make([]models.ApplyAttempt, 0, len(urls))
	for i, url := range urls {
		index := i + 1
		logger.Info(fmt.Sprintf("[%d/%d] %s", index, len(urls), url), map[string]interface{}{
			"index": index,
			"url":   url,
		})

		attempt := r.applyOne(ctx, page, url, index)
		if attempt.Outcome == models.OutcomeError {
			r.pacer.RecordFailure(url)
			logger.Error("Could not process posting", map[string]interface{}{
				"index": index,
				"url":   url,
				"error": attempt.Error,
			})
		}
		attempts = append(attempts, attempt)
		summary.Add(string(attempt.Outcome))
	}

	attemptsPath := filepath.Join(dir, AttemptsFile)
	if err := exporter.WriteAttempts(attemptsPath, attempts); err != nil {
		return summary, err
	}
	summary.OutputPaths = []string{attemptsPath}
	summary.ProcessingTime = time.Since(started)

	r.logSummary(logger, summary.Mode, started, summary.Counts, summary.Total)
	return summary, ctx.Err()
}

// applyOne loads url and runs the navigator. Load failures become an error
// outcome so the batch continues.
func (r *Runner) applyOne(ctx context.Context, page browser.Page, url string, index int) models.ApplyAttempt {
	if err := r.load(ctx, page, url); err != nil {
		return models.ApplyAttempt{URL: url, Index: index, Outcome: models.OutcomeError, Error: err.Error()}
	}

	attempt, err := r.navigator.Navigate(ctx, page, index)
	attempt.URL = url
	if err != nil {
		attempt.Outcome = models.OutcomeError
		attempt.Error = err.Error()
	}
	return attempt
}
