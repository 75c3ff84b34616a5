package exporter

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkjd/pkg/models"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func readRows(t *testing.T, path string) [][]string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data = bytes.TrimPrefix(data, utf8BOM)
	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestReadURLsTrimsAndDropsEmpty(t *testing.T) {
	path := writeFile(t, "in.csv", "note,url\n"+
		"first, https://www.linkedin.com/jobs/view/1/ \n"+
		"blank,   \n"+
		"missing\n"+
		"second,https://www.linkedin.com/jobs/view/2/\n")

	urls, err := ReadURLs(path)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://www.linkedin.com/jobs/view/1/",
		"https://www.linkedin.com/jobs/view/2/",
	}, urls)
}

func TestReadURLsToleratesBOM(t *testing.T) {
	path := writeFile(t, "bom.csv", string(utf8BOM)+"url\nhttps://site/jobs/view/123456789\n")

	urls, err := ReadURLs(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://site/jobs/view/123456789"}, urls)
}

func TestReadURLsRequiresURLColumn(t *testing.T) {
	_, err := ReadURLs(writeFile(t, "nourl.csv", "link\nhttps://example.com\n"))
	assert.ErrorIs(t, err, ErrMissingURLColumn)

	_, err = ReadURLs(writeFile(t, "empty.csv", ""))
	assert.ErrorIs(t, err, ErrMissingURLColumn)

	_, err = ReadURLs(filepath.Join(t.TempDir(), "absent.csv"))
	assert.ErrorIs(t, err, ErrRead)
}

func TestCleanPath(t *testing.T) {
	assert.Equal(t, filepath.Join("out", "jobs_clean_utf8bom.csv"), CleanPath(filepath.Join("out", "jobs.csv")))
	assert.Equal(t, "jobs_clean_utf8bom", CleanPath("jobs"))
}

func TestEscapeNewlinesRoundTrip(t *testing.T) {
	original := "Line one\r\nLine two\rLine three\nLine four"

	escaped := EscapeNewlines(original)
	assert.Equal(t, `Line one\nLine two\nLine three\nLine four`, escaped)
	assert.NotContains(t, escaped, "\n")
	assert.NotContains(t, escaped, "\r")

	assert.Equal(t, "Line one\nLine two\nLine three\nLine four", UnescapeNewlines(escaped))
}

func sampleRecords() []models.JobRecord {
	at := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)
	return []models.JobRecord{
		{
			URL:             "https://www.linkedin.com/jobs/view/1/",
			JobID:           "1",
			ScrapedAt:       at,
			JobTitle:        "Engineer",
			CompanyName:     "Acme, Inc.",
			CompanyLinkedIn: "https://www.linkedin.com/company/acme/",
			LocationText:    "Berlin",
			DescriptionText: "First line\r\nSecond \"quoted\" line",
			DocumentTitle:   "Engineer | Acme, Inc. | LinkedIn",
			Status:          models.StatusOK,
		},
		{
			URL:       "https://example.com/no-id",
			ScrapedAt: at,
			Status:    models.ErrorStatus(assert.AnError),
		},
	}
}

func TestWriteRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "jobs.csv")
	require.NoError(t, WriteRecords(path, sampleRecords()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.False(t, bytes.HasPrefix(data, utf8BOM))
	assert.Contains(t, string(data), "First line\r\nSecond")

	rows := readRows(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, RecordColumns, rows[0])
	assert.Equal(t, "Acme, Inc.", rows[1][3])
	assert.Equal(t, "First line\nSecond \"quoted\" line", rows[1][6])
	assert.Equal(t, "2024-05-01T12:30:00Z", rows[1][7])
	assert.Equal(t, "ok", rows[1][8])

	assert.Equal(t, "", rows[2][1])
	assert.Equal(t, "", rows[2][2])
	assert.Equal(t, "error: "+assert.AnError.Error(), rows[2][8])
}

func TestWriteCleanRecords(t *testing.T) {
	path := CleanPath(filepath.Join(t.TempDir(), "jobs.csv"))
	records := sampleRecords()
	require.NoError(t, WriteCleanRecords(path, records))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, utf8BOM))

	rows := readRows(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, RecordColumns, rows[0])
	assert.Equal(t, `First line\nSecond "quoted" line`, rows[1][6])
	assert.Equal(t, "First line\nSecond \"quoted\" line", UnescapeNewlines(rows[1][6]))

	// every other column is identical to the plain variant
	plain := filepath.Join(t.TempDir(), "plain.csv")
	require.NoError(t, WriteRecords(plain, records))
	plainRows := readRows(t, plain)
	for i := range rows {
		for j := range rows[i] {
			if i > 0 && j == descriptionColumn {
				continue
			}
			assert.Equal(t, plainRows[i][j], rows[i][j], "row %d column %s", i, RecordColumns[j])
		}
	}
}

func TestWriteAttempts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "attempts.csv")
	attempts := []models.ApplyAttempt{
		{Index: 1, URL: "https://www.linkedin.com/jobs/view/1/", Outcome: models.OutcomeReachedFinal, Steps: 3, ScreenshotPath: "runs/apply_dry_run/01_dry_run.png"},
		{Index: 2, URL: "https://www.linkedin.com/jobs/view/2/", Outcome: models.OutcomeError, Error: "navigation failed"},
	}
	require.NoError(t, WriteAttempts(path, attempts))

	rows := readRows(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, AttemptColumns, rows[0])
	assert.Equal(t, []string{"1", "https://www.linkedin.com/jobs/view/1/", "reached_final_step", "3", "runs/apply_dry_run/01_dry_run.png", ""}, rows[1])
	assert.Equal(t, "error", rows[2][2])
	assert.Equal(t, "navigation failed", rows[2][5])
}

func TestWriteURLsIsReadable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "urls.csv")
	urls := []string{"https://www.linkedin.com/jobs/view/1/", "https://www.linkedin.com/jobs/view/2/"}
	require.NoError(t, WriteURLs(path, urls))

	got, err := ReadURLs(path)
	require.NoError(t, err)
	assert.Equal(t, urls, got)
}
