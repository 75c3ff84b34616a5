package runner

import (
	"context"
	"time"

	"linkjd/internal/exporter"
	"linkjd/pkg/models"
	"linkjd/pkg/utils"
)

// CollectURLs harvests posting URLs from a search or collection page and
// writes them as a url-column file usable as scrape input
func (r *Runner) CollectURLs(ctx context.Context, req models.CollectRequest) (*models.RunSummary, error) {
	started := time.Now()
	if err := r.validate(req); err != nil {
		return nil, err
	}
	if !utils.IsLinkedInJobListURL(req.StartURL) {
		r.logger.Warn("Start URL does not look like a job search or collection page", map[string]interface{}{
			"url": req.StartURL,
		})
	}

	summary := models.NewRunSummary(utils.GenerateRunID(), "collect-urls")
	logger := r.logger.WithFields(map[string]interface{}{
		"run_id": summary.RunID,
		"mode":   summary.Mode,
	})

	session, err := r.attach(ctx, req.CDPURL)
	if err != nil {
		return nil, err
	}
	defer r.release(session, logger)
	page := session.Page()

	logger.Info("Opening job list", map[string]interface{}{"url": req.StartURL})
	if err := r.load(ctx, page, req.StartURL); err != nil {
		return nil, err
	}

	collector := r.collector
	if req.MaxPages > 0 || req.MaxJobs > 0 {
		collector = collector.WithLimits(req.MaxPages, req.MaxJobs)
	}

	ids, err := collector.Collect(ctx, page)
	if err != nil {
		logger.WithError(err).Warn("Collection stopped early; keeping ids found so far", map[string]interface{}{
			"found": len(ids),
		})
	}

	urls := make([]string, 0, len(ids))
	for _, id := range ids {
		urls = append(urls, utils.JobViewURL(id))
		summary.Add("collected")
	}

	if err := exporter.WriteURLs(req.OutputPath, urls); err != nil {
		return summary, err
	}
	summary.OutputPaths = []string{req.OutputPath}
	summary.ProcessingTime = time.Since(started)

	logger.Info("Wrote job URLs", map[string]interface{}{
		"output": req.OutputPath,
		"count":  len(urls),
	})
	r.logSummary(logger, summary.Mode, started, summary.Counts, summary.Total)
	return summary, ctx.Err()
}
