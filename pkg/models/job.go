package models

import (
	"strings"
	"time"
	"unicode/utf8"
)

// DefaultMinDescriptionLength is the description length a record must exceed to be
// reported as StatusOK rather than StatusPartial.
const DefaultMinDescriptionLength = 50

// Status is the per-record extraction status written to the status column.
type Status string

const (
	StatusOK      Status = "ok"
	StatusPartial Status = "ok_partial"

	errorStatusPrefix = "error:"
)

// ErrorStatus renders err as an "error: <message>" status.
func ErrorStatus(err error) Status {
	if err == nil {
		return Status(errorStatusPrefix)
	}
	return Status(errorStatusPrefix + " " + err.Error())
}

// IsError reports whether the status carries an extraction failure.
func (s Status) IsError() bool {
	return strings.HasPrefix(string(s), errorStatusPrefix)
}

// Valid reports whether s is one of ok, ok_partial or an error status.
func (s Status) Valid() bool {
	return s == StatusOK || s == StatusPartial || s.IsError()
}

// DeriveStatus applies the ok/ok_partial policy: a description longer than
// minLength characters makes a record complete.
func DeriveStatus(description string, minLength int) Status {
	if description != "" && utf8.RuneCountInString(description) > minLength {
		return StatusOK
	}
	return StatusPartial
}

// JobRecord is one scraped job posting. Optional fields are empty when the page did
// not yield them.
type JobRecord struct {
	URL             string    `json:"url" validate:"required"`
	JobID           string    `json:"job_id,omitempty"`
	ScrapedAt       time.Time `json:"scraped_at"`
	JobTitle        string    `json:"job_title,omitempty"`
	CompanyName     string    `json:"company_name,omitempty"`
	CompanyLinkedIn string    `json:"company_linkedin,omitempty"`
	LocationText    string    `json:"location_text,omitempty"`
	DescriptionText string    `json:"description_text,omitempty"`
	DocumentTitle   string    `json:"document_title,omitempty"`
	Status          Status    `json:"status"`
}

// JobFields is the subset of a JobRecord the extractor fills from a page.
type JobFields struct {
	JobTitle        string
	CompanyName     string
	CompanyLinkedIn string
	LocationText    string
	DescriptionText string
	DocumentTitle   string
}

// Apply copies extracted fields onto the record.
func (r *JobRecord) Apply(f JobFields) {
	r.JobTitle = f.JobTitle
	r.CompanyName = f.CompanyName
	r.CompanyLinkedIn = f.CompanyLinkedIn
	r.LocationText = f.LocationText
	r.DescriptionText = f.DescriptionText
	r.DocumentTitle = f.DocumentTitle
}

// ScrapedAtString formats the scrape timestamp as UTC ISO-8601.
func (r *JobRecord) ScrapedAtString() string {
	if r.ScrapedAt.IsZero() {
		return ""
	}
	return r.ScrapedAt.UTC().Format(time.RFC3339Nano)
}
