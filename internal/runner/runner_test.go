package runner

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"linkjd/internal/browser"
	"linkjd/internal/browser/browsertest"
	"linkjd/internal/config"
	"linkjd/internal/exporter"
	"linkjd/internal/logging"
	"linkjd/pkg/models"
	"linkjd/pkg/utils"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var fixedNow = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

type posting struct {
	title string
	main  string
}

// sitePage serves canned postings by URL and fails navigation for others
type sitePage struct {
	*browsertest.Page
	postings map[string]posting
	failing  map[string]bool
}

func (p *sitePage) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	if p.failing[url] {
		return fmt.Errorf("%w: %s: timeout after %s", browser.ErrNavigate, url, timeout)
	}
	if err := p.Page.Navigate(ctx, url, timeout); err != nil {
		return err
	}
	post := p.postings[url]
	p.Page.DocTitle = post.title
	p.Page.Texts = map[string]string{"main": post.main}
	return nil
}

type fakeSession struct {
	page   browser.Page
	closed int
}

func (s *fakeSession) Page() browser.Page { return s.page }

func (s *fakeSession) Close() error {
	s.closed++
	return nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Browser.PostNavSettle = 0
	cfg.Browser.PostMainSettle = 0
	cfg.Browser.EntrySettle = 0
	cfg.Browser.ClickSettle = 0
	cfg.Browser.UploadSettle = 0
	cfg.Browser.ScrollSettle = 0
	cfg.Collect.PageTurnSettle = 0
	cfg.Apply.ScreenshotDir = filepath.Join(t.TempDir(), "shots")
	return cfg
}

func newTestRunner(cfg *config.Config, session *fakeSession, openErr error) (*Runner, *[]string) {
	var endpoints []string
	opener := func(_ context.Context, cdpURL string) (Session, error) {
		endpoints = append(endpoints, cdpURL)
		if openErr != nil {
			return nil, openErr
		}
		return session, nil
	}
	r := New(cfg, logging.NewNopLogger(), WithOpener(opener), WithClock(func() time.Time { return fixedNow }))
	return r, &endpoints
}

func writeInput(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jobs.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	return rows
}

const (
	goodURL    = "https://www.linkedin.com/jobs/view/1001/"
	partialURL = "https://www.linkedin.com/jobs/view/1002/"
	brokenURL  = "https://www.linkedin.com/jobs/view/1003/"
	noIDURL    = "https://example.com/careers/backend"
)

func TestScrapeJDWritesOneRecordPerURL(t *testing.T) {
	page := &sitePage{
		Page: &browsertest.Page{},
		postings: map[string]posting{
			goodURL: {
				title: "Backend Engineer | Acme Corp | LinkedIn",
				main: "Acme Corp\nBackend Engineer\nBerlin · 1 day ago\nAbout the job\n" +
					"Design, build and operate the services behind our job platform.\nLine two.\nAbout the company\nAcme",
			},
			partialURL: {title: "Data Engineer | Globex | LinkedIn", main: "About the job\nShort."},
			noIDURL:    {title: "Careers"},
		},
		failing: map[string]bool{brokenURL: true},
	}
	session := &fakeSession{page: page}
	cfg := testConfig(t)
	r, endpoints := newTestRunner(cfg, session, nil)

	input := writeInput(t, "url\n"+goodURL+"\n  \n"+partialURL+"\n"+brokenURL+"\n"+noIDURL+"\n")
	output := filepath.Join(t.TempDir(), "out", "jd.csv")

	summary, err := r.ScrapeJD(context.Background(), models.ScrapeRequest{
		InputPath:  input,
		OutputPath: output,
		CDPURL:     "http://127.0.0.1:9333",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"http://127.0.0.1:9333"}, *endpoints)
	assert.Equal(t, 1, session.closed)
	assert.Equal(t, []string{goodURL, partialURL, noIDURL}, page.Navigations())

	assert.Equal(t, 4, summary.Total)
	assert.Equal(t, map[string]int{"ok": 1, "ok_partial": 2, "error": 1}, summary.Counts)

	rows := readCSV(t, output)
	require.Len(t, rows, 5)
	assert.Equal(t, exporter.RecordColumns, rows[0])

	good := rows[1]
	assert.Equal(t, goodURL, good[0])
	assert.Equal(t, "1001", good[1])
	assert.Equal(t, "Backend Engineer", good[2])
	assert.Equal(t, "Acme Corp", good[3])
	assert.Equal(t, "Berlin", good[5])
	assert.Equal(t, "Design, build and operate the services behind our job platform.\nLine two.", good[6])
	assert.Equal(t, "2024-06-01T09:00:00Z", good[7])
	assert.Equal(t, "ok", good[8])

	assert.Equal(t, "ok_partial", rows[2][8])
	assert.Equal(t, "Short.", rows[2][6])

	assert.Equal(t, "1003", rows[3][1])
	assert.True(t, strings.HasPrefix(rows[3][8], "error: "), rows[3][8])
	assert.Contains(t, rows[3][8], "navigation failed")

	assert.Equal(t, "", rows[4][1])
	assert.Equal(t, "ok_partial", rows[4][8])

	for _, row := range rows[1:] {
		assert.True(t, models.Status(row[8]).Valid(), row[8])
	}

	cleanRows := readCSV(t, exporter.CleanPath(output))
	require.Len(t, cleanRows, 5)
	assert.Equal(t, `Design, build and operate the services behind our job platform.\nLine two.`, cleanRows[1][6])
	assert.Equal(t, []string{output, exporter.CleanPath(output)}, summary.OutputPaths)
}

func TestScrapeJDKeepsPartialFieldsOnExtractionError(t *testing.T) {
	page := &sitePage{
		Page: &browsertest.Page{AnchorsErr: errors.New("execution context was destroyed")},
		postings: map[string]posting{
			goodURL: {title: "Backend Engineer | Acme Corp | LinkedIn", main: "About the job\nSomething"},
		},
	}
	r, _ := newTestRunner(testConfig(t), &fakeSession{page: page}, nil)

	output := filepath.Join(t.TempDir(), "jd.csv")
	_, err := r.ScrapeJD(context.Background(), models.ScrapeRequest{
		InputPath:  writeInput(t, "url\n"+goodURL+"\n"),
		OutputPath: output,
	})
	require.NoError(t, err)

	rows := readCSV(t, output)
	require.Len(t, rows, 2)
	assert.Equal(t, "Backend Engineer", rows[1][2])
	assert.Equal(t, "Acme Corp", rows[1][3])
	assert.Equal(t, "error: execution context was destroyed", rows[1][8])
}

func TestScrapeJDMissingURLColumnIsConfigError(t *testing.T) {
	r, endpoints := newTestRunner(testConfig(t), &fakeSession{}, nil)

	_, err := r.ScrapeJD(context.Background(), models.ScrapeRequest{
		InputPath:  writeInput(t, "link\n"+goodURL+"\n"),
		OutputPath: filepath.Join(t.TempDir(), "jd.csv"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, exporter.ErrMissingURLColumn)
	assert.Equal(t, utils.ExitConfig, utils.ExitCode(err))
	assert.Empty(t, *endpoints)
}

func TestScrapeJDUnreachableBrowserIsBrowserError(t *testing.T) {
	cfg := testConfig(t)
	r, endpoints := newTestRunner(cfg, nil, browser.ErrConnect)
	output := filepath.Join(t.TempDir(), "jd.csv")

	_, err := r.ScrapeJD(context.Background(), models.ScrapeRequest{
		InputPath:  writeInput(t, "url\n"+goodURL+"\n"),
		OutputPath: output,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, browser.ErrConnect)
	assert.Equal(t, utils.ExitBrowser, utils.ExitCode(err))
	assert.Equal(t, []string{config.DefaultCDPURL}, *endpoints)
	assert.NoFileExists(t, output)
}

func TestScrapeJDRejectsInvalidRequest(t *testing.T) {
	r, _ := newTestRunner(testConfig(t), &fakeSession{}, nil)

	_, err := r.ScrapeJD(context.Background(), models.ScrapeRequest{InputPath: "in.csv"})
	require.Error(t, err)
	assert.Equal(t, utils.ExitConfig, utils.ExitCode(err))
}

// easyApplyPage opens a one-step wizard whose first screen is the final one
func easyApplyPage() *browsertest.Page {
	opened := false
	entry := &browsertest.Control{Label: "Easy Apply", OnClick: func() error {
		opened = true
		return nil
	}}
	submit := &browsertest.Control{Label: "Submit application", OnClick: func() error {
		panic("submit clicked")
	}}
	return &browsertest.Page{
		OnNavigate: func(string) { opened = false },
		ControlsFor: func(selector string) []browser.Control {
			if strings.Contains(selector, "dialog") {
				if opened {
					return []browser.Control{submit}
				}
				return nil
			}
			if selector == "button" {
				return []browser.Control{entry}
			}
			return nil
		},
	}
}

func TestApplyDryRunRespectsLimitAndRecordsAttempts(t *testing.T) {
	page := &sitePage{
		Page:    easyApplyPage(),
		failing: map[string]bool{brokenURL: true},
	}
	session := &fakeSession{page: page}
	cfg := testConfig(t)
	r, _ := newTestRunner(cfg, session, nil)

	input := writeInput(t, "url\n"+goodURL+"\n"+brokenURL+"\n"+partialURL+"\n")
	summary, err := r.ApplyDryRun(context.Background(), models.ApplyRequest{InputPath: input, Limit: 2})
	require.NoError(t, err)

	assert.Equal(t, 1, session.closed)
	assert.Equal(t, []string{goodURL}, page.Navigations())
	assert.Equal(t, map[string]int{
		string(models.OutcomeReachedFinal): 1,
		string(models.OutcomeError):        1,
	}, summary.Counts)

	assert.FileExists(t, filepath.Join(cfg.Apply.ScreenshotDir, "01_dry_run.png"))
	assert.NoFileExists(t, filepath.Join(cfg.Apply.ScreenshotDir, "02_dry_run.png"))

	rows := readCSV(t, filepath.Join(cfg.Apply.ScreenshotDir, AttemptsFile))
	require.Len(t, rows, 3)
	assert.Equal(t, exporter.AttemptColumns, rows[0])
	assert.Equal(t, []string{"1", goodURL, "reached_final_step", "0"}, rows[1][:4])
	assert.Equal(t, []string{"2", brokenURL, "error"}, rows[2][:3])
	assert.Contains(t, rows[2][5], "navigation failed")
}

func TestApplyDryRunStopsOnCancel(t *testing.T) {
	page := &sitePage{Page: easyApplyPage()}
	r, _ := newTestRunner(testConfig(t), &fakeSession{page: page}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := r.ApplyDryRun(ctx, models.ApplyRequest{
		InputPath: writeInput(t, "url\n"+goodURL+"\n"+partialURL+"\n"),
		Limit:     5,
	})
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, summary)
	assert.Equal(t, 2, summary.Counts[string(models.OutcomeError)])
	assert.Empty(t, page.Navigations())
}

func TestCollectURLsWritesCanonicalURLs(t *testing.T) {
	page := &browsertest.Page{
		Markup: `<ul>
			<li><a href="/jobs/view/11/">One</a></li>
			<li><div data-entity-urn="urn:li:jobPosting:12"></div></li>
		</ul>`,
	}
	session := &fakeSession{page: page}
	r, _ := newTestRunner(testConfig(t), session, nil)

	start := "https://www.linkedin.com/jobs/search/?keywords=golang&currentJobId=13"
	output := filepath.Join(t.TempDir(), "urls.csv")
	summary, err := r.CollectURLs(context.Background(), models.CollectRequest{
		StartURL:   start,
		OutputPath: output,
		MaxPages:   3,
		MaxJobs:    50,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, session.closed)
	assert.Equal(t, []string{start}, page.Navigations())
	assert.Equal(t, 3, summary.Total)

	urls, err := exporter.ReadURLs(output)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://www.linkedin.com/jobs/view/11/",
		"https://www.linkedin.com/jobs/view/12/",
		"https://www.linkedin.com/jobs/view/13/",
	}, urls)
}

func TestPacerCountsPerDomain(t *testing.T) {
	p := NewPacer(0, logging.NewNopLogger())
	ctx := context.Background()

	require.NoError(t, p.Wait(ctx, goodURL))
	require.NoError(t, p.Wait(ctx, partialURL))
	require.NoError(t, p.Wait(ctx, noIDURL))
	p.RecordFailure(partialURL)

	stats := p.Stats()
	assert.Equal(t, int64(2), stats["www.linkedin.com"]["requests"])
	assert.Equal(t, int64(1), stats["www.linkedin.com"]["failures"])
	assert.Equal(t, int64(1), stats["example.com"]["requests"])
	assert.Equal(t, "unknown", domainOf("::not a url"))
}

func TestPacerWaitHonorsContext(t *testing.T) {
	p := NewPacer(1, logging.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, p.Wait(ctx, goodURL))
	cancel()
	assert.Error(t, p.Wait(ctx, goodURL))
}
