// Package exporter reads job URL lists and writes scraped records, dry-run
// attempts and harvested URLs as CSV.
package exporter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"linkjd/pkg/models"
)

// Sentinel errors to allow precise mapping to exit codes
var (
	ErrMissingURLColumn = errors.New("input CSV must contain a 'url' column")
	ErrRead             = errors.New("read_failed")
	ErrWrite            = errors.New("write_failed")
)

// RecordColumns is the fixed column order of scraped record files
var RecordColumns = []string{
	"url",
	"job_id",
	"job_title",
	"company_name",
	"company_linkedin",
	"location_text",
	"description_text",
	"scraped_at",
	"status",
	"document_title",
}

// AttemptColumns is the column order of the dry-run attempts summary
var AttemptColumns = []string{"index", "url", "outcome", "steps", "screenshot_path", "error"}

const descriptionColumn = 6

// ReadURLs reads the url column of a CSV file. Values are trimmed and empty
// ones dropped; order is preserved. A leading byte order mark is ignored.
func ReadURLs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRead, err)
	}
	defer f.Close()

	r := csv.NewReader(transform.NewReader(f, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return nil, ErrMissingURLColumn
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRead, path, err)
	}

	col := -1
	for i, name := range header {
		if strings.TrimSpace(name) == "url" {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingURLColumn, path)
	}

	var urls []string
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrRead, path, err)
		}
		if col >= len(row) {
			continue
		}
		if u := strings.TrimSpace(row[col]); u != "" {
			urls = append(urls, u)
		}
	}
	return urls, nil
}

// CleanPath returns the companion path of the spreadsheet-friendly file:
// "<stem>_clean_utf8bom<ext>" next to path.
func CleanPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_clean_utf8bom" + ext
}

// EscapeNewlines normalizes carriage returns to LF and replaces every LF with
// the two characters backslash and n.
func EscapeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.ReplaceAll(s, "\n", `\n`)
}

// UnescapeNewlines reverses EscapeNewlines
func UnescapeNewlines(s string) string {
	return strings.ReplaceAll(s, `\n`, "\n")
}

// WriteRecords writes records as UTF-8 CSV in RecordColumns order
func WriteRecords(path string, records []models.JobRecord) error {
	return writeCSV(path, false, RecordColumns, recordRows(records, false))
}

// WriteCleanRecords writes the UTF-8-with-BOM variant whose description cells
// have newlines escaped
func WriteCleanRecords(path string, records []models.JobRecord) error {
	return writeCSV(path, true, RecordColumns, recordRows(records, true))
}

// WriteAttempts writes the dry-run attempts summary
func WriteAttempts(path string, attempts []models.ApplyAttempt) error {
	rows := make([][]string, 0, len(attempts))
	for _, a := range attempts {
		rows = append(rows, []string{
			strconv.Itoa(a.Index),
			a.URL,
			string(a.Outcome),
			strconv.Itoa(a.Steps),
			a.ScreenshotPath,
			a.Error,
		})
	}
	return writeCSV(path, false, AttemptColumns, rows)
}

// WriteURLs writes a single-column url file usable as scrape input
func WriteURLs(path string, urls []string) error {
	rows := make([][]string, 0, len(urls))
	for _, u := range urls {
		rows = append(rows, []string{u})
	}
	return writeCSV(path, false, []string{"url"}, rows)
}

func recordRows(records []models.JobRecord, clean bool) [][]string {
	rows := make([][]string, 0, len(records))
	for i := range records {
		r := &records[i]
		row := []string{
			r.URL,
			r.JobID,
			r.JobTitle,
			r.CompanyName,
			r.CompanyLinkedIn,
			r.LocationText,
			r.DescriptionText,
			r.ScrapedAtString(),
			string(r.Status),
			r.DocumentTitle,
		}
		if clean {
			row[descriptionColumn] = EscapeNewlines(row[descriptionColumn])
		}
		rows = append(rows, row)
	}
	return rows
}

func writeCSV(path string, bom bool, header []string, rows [][]string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("%w: create directory %s: %v", ErrWrite, dir, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}

	var out io.Writer = f
	var enc io.WriteCloser
	if bom {
		enc = transform.NewWriter(f, unicode.UTF8BOM.NewEncoder())
		out = enc
	}

	w := csv.NewWriter(out)
	if err := w.Write(header); err != nil {
		f.Close()
		return fmt.Errorf("%w: %s: %v", ErrWrite, path, err)
	}
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return fmt.Errorf("%w: %s: %v", ErrWrite, path, err)
	}
	if enc != nil {
		if err := enc.Close(); err != nil {
			f.Close()
			return fmt.Errorf("%w: %s: %v", ErrWrite, path, err)
		}
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWrite, path, err)
	}
	return nil
}
