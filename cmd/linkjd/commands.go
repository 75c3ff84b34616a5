package main

import (
	"github.com/spf13/cobra"

	"linkjd/pkg/models"
)

func newScrapeCommand(a *app) *cobra.Command {
	var req models.ScrapeRequest

	cmd := &cobra.Command{
		Use:   "scrape-jd",
		Short: "Extract job descriptions from the URLs of a CSV",
		Long: `Visits every url of the input CSV in order and writes one record per URL to
--out, plus a UTF-8-with-BOM companion file (<name>_clean_utf8bom.csv) whose
description newlines are escaped as \n.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.prepare(req.CDPURL)
			if err != nil {
				return err
			}
			summary, err := r.ScrapeJD(cmd.Context(), req)
			printSummary(cmd.OutOrStdout(), summary)
			return err
		},
	}

	cmd.Flags().StringVar(&req.InputPath, "in", "", "input CSV with a url column")
	cmd.Flags().StringVar(&req.OutputPath, "out", "", "output CSV path")
	cmd.Flags().StringVar(&req.CDPURL, "profile-cdp", "", "remote debugging endpoint, e.g. http://127.0.0.1:9222")
	_ = cmd.MarkFlagRequired("in")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func newApplyCommand(a *app) *cobra.Command {
	var req models.ApplyRequest

	cmd := &cobra.Command{
		Use:   "apply-dry-run",
		Short: "Walk the quick-apply wizard up to the final step without submitting",
		Long: `Opens the first --limit postings of the input CSV, enters the quick-apply
wizard, fills EMAIL, PHONE, FULL_NAME_EN and RESUME_PATH where possible and
advances until the final submit step. The submit control is never clicked.
A screenshot of every attempt and attempts.csv are written to the screenshot
directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("limit") {
				req.Limit = a.cfg.Apply.Limit
			}
			r, err := a.prepare(req.CDPURL)
			if err != nil {
				return err
			}
			summary, err := r.ApplyDryRun(cmd.Context(), req)
			printSummary(cmd.OutOrStdout(), summary)
			return err
		},
	}

	cmd.Flags().StringVar(&req.InputPath, "in", "", "input CSV with a url column")
	cmd.Flags().StringVar(&req.CDPURL, "profile-cdp", "", "remote debugging endpoint, e.g. http://127.0.0.1:9222")
	cmd.Flags().IntVar(&req.Limit, "limit", 5, "process at most the first N postings")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}

func newCollectCommand(a *app) *cobra.Command {
	var req models.CollectRequest

	cmd := &cobra.Command{
		Use:   "collect-urls",
		Short: "Harvest job posting URLs from a search or collection page",
		Long: `Opens --url, scrolls the result list, follows its Next pagination and writes
the canonical job view URLs found to --out. The output is valid scrape-jd input.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if req.MaxPages <= 0 {
				req.MaxPages = a.cfg.Collect.MaxPages
			}
			if req.MaxJobs <= 0 {
				req.MaxJobs = a.cfg.Collect.MaxJobs
			}
			r, err := a.prepare(req.CDPURL)
			if err != nil {
				return err
			}
			summary, err := r.CollectURLs(cmd.Context(), req)
			printSummary(cmd.OutOrStdout(), summary)
			return err
		},
	}

	cmd.Flags().StringVar(&req.StartURL, "url", "", "job search or collection page URL")
	cmd.Flags().StringVar(&req.OutputPath, "out", "", "output CSV path")
	cmd.Flags().StringVar(&req.CDPURL, "profile-cdp", "", "remote debugging endpoint, e.g. http://127.0.0.1:9222")
	cmd.Flags().IntVar(&req.MaxPages, "max-pages", 0, "pages to walk (default from config: 10)")
	cmd.Flags().IntVar(&req.MaxJobs, "max-jobs", 0, "stop after this many postings (default from config: 120)")
	_ = cmd.MarkFlagRequired("url")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}
