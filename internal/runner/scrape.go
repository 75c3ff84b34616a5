package runner

import (
	"context"
	"fmt"
	"time"

	"linkjd/internal/browser"
	"linkjd/internal/exporter"
	"linkjd/internal/extract"
	"linkjd/pkg/models"
	"linkjd/pkg/utils"
)

// ScrapeJD extracts every posting in the input file and writes the plain and
// clean record files. Every input URL yields exactly one record.
func (r *Runner) ScrapeJD(ctx context.Context, req models.ScrapeRequest) (*models.RunSummary, error) {
	started := time.Now()
	if err := r.validate(req); err != nil {
		return nil, err
	}

	urls, err := exporter.ReadURLs(req.InputPath)
	if err != nil {
		return nil, utils.NewConfigError(req.InputPath, err)
	}

	summary := models.NewRunSummary(utils.GenerateRunID(), "scrape-jd")
	logger := r.logger.WithFields(map[string]interface{}{
		"run_id": summary.RunID,
		"mode":   summary.Mode,
	})
	logger.Info("Starting extraction run", map[string]interface{}{
		"input": req.InputPath,
		"rows":  len(urls),
	})

	session, err := r.attach(ctx, req.CDPURL)
	if err != nil {
		return nil, err
	}
	defer r.release(session, logger)
	page := session.Page()

	records := make([]models.JobRecord, 0, len(urls))
	for i, url := range urls {
		logger.Info(fmt.Sprintf("[%d/%d] %s", i+1, len(urls), url), map[string]interface{}{
			"index": i + 1,
			"url":   url,
		})
		record := r.scrapeOne(ctx, page, url)
		if record.Status.IsError() {
			r.pacer.RecordFailure(url)
			logger.Warn("Extraction failed", map[string]interface{}{
				"index":  i + 1,
				"url":    url,
				"status": string(record.Status),
			})
		}
		records = append(records, record)
		summary.Add(statusKey(record.Status))
	}

	cleanPath := exporter.CleanPath(req.OutputPath)
	if err := exporter.WriteRecords(req.OutputPath, records); err != nil {
		return summary, err
	}
	if err := exporter.WriteCleanRecords(cleanPath, records); err != nil {
		return summary, err
	}
	summary.OutputPaths = []string{req.OutputPath, cleanPath}
	summary.ProcessingTime = time.Since(started)

	logger.Info("Wrote records", map[string]interface{}{
		"output": req.OutputPath,
		"clean":  cleanPath,
	})
	r.logSummary(logger, summary.Mode, started, summary.Counts, summary.Total)

	return summary, ctx.Err()
}

// scrapeOne never fails: page-level errors become an error status on a record
// that keeps whatever was extracted before the failure
func (r *Runner) scrapeOne(ctx context.Context, page browser.Page, url string) models.JobRecord {
	record := models.JobRecord{
		URL:       url,
		JobID:     utils.ParseJobID(url),
		ScrapedAt: r.clock(),
	}

	fields, err := r.extractPage(ctx, page, url)
	record.Apply(fields)
	if err != nil {
		record.Status = models.ErrorStatus(err)
		return record
	}
	record.Status = models.DeriveStatus(record.DescriptionText, r.cfg.Extract.MinDescriptionLength)
	return record
}

func (r *Runner) extractPage(ctx context.Context, page browser.Page, url string) (models.JobFields, error) {
	b := r.cfg.Browser
	if err := r.load(ctx, page, url); err != nil {
		return models.JobFields{}, err
	}
	if err := page.WaitFor(ctx, extract.MainSelector, b.MainTimeout); err != nil {
		return models.JobFields{}, err
	}
	if err := browser.Settle(ctx, b.PostMainSettle); err != nil {
		return models.JobFields{}, err
	}
	return r.extractor.Extract(ctx, page)
}

func statusKey(s models.Status) string {
	if s.IsError() {
		return "error"
	}
	return string(s)
}
