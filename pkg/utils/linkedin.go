package utils

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// LinkedInURLType represents the type of LinkedIn URL
type LinkedInURLType int

const (
	LinkedInURLTypeUnknown       LinkedInURLType = iota
	LinkedInURLTypeJobView                       // Direct job view: /jobs/view/123
	LinkedInURLTypeJobCollection                 // Job list: /jobs/collections/... or /jobs/search/...
	LinkedInURLTypeNonJob                        // Non-job URLs: profiles, company pages, etc.
)

var (
	jobViewPathRegex = regexp.MustCompile(`/jobs/view/(\d+)`)
	jobListPathRegex = regexp.MustCompile(`/jobs/(collections|search)/`)
	jobPostingURN    = regexp.MustCompile(`jobPosting:(\d+)`)
	numericRegex     = regexp.MustCompile(`^\d+$`)
)

// LinkedInURLInfo contains information about a parsed LinkedIn URL
type LinkedInURLInfo struct {
	Type      LinkedInURLType
	JobID     string
	PublicURL string
}

// IsLinkedInURL checks if a URL points at a linkedin.com host
func IsLinkedInURL(urlStr string) bool {
	if urlStr == "" {
		return false
	}

	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return false
	}

	hostname := strings.ToLower(parsedURL.Hostname())
	return hostname == "linkedin.com" || strings.HasSuffix(hostname, ".linkedin.com")
}

// ParseJobID extracts the numeric id from a /jobs/view/<id> path segment.
// It returns "" when the URL carries no such segment.
func ParseJobID(urlStr string) string {
	if m := jobViewPathRegex.FindStringSubmatch(urlStr); len(m) > 1 {
		return m[1]
	}
	return ""
}

// JobIDFromURN extracts the id from a "urn:li:jobPosting:<id>" style attribute value
func JobIDFromURN(urn string) string {
	if m := jobPostingURN.FindStringSubmatch(urn); len(m) > 1 {
		return m[1]
	}
	return ""
}

// IsNumericID reports whether s is a bare numeric job id
func IsNumericID(s string) bool {
	return numericRegex.MatchString(s)
}

// JobViewURL builds the canonical public job view URL for an id
func JobViewURL(jobID string) string {
	return fmt.Sprintf("https://www.linkedin.com/jobs/view/%s/", jobID)
}

// ParseLinkedInURL analyzes a LinkedIn URL and returns information about its type and job ID
func ParseLinkedInURL(urlStr string) (*LinkedInURLInfo, error) {
	if !IsLinkedInURL(urlStr) {
		return nil, fmt.Errorf("not a LinkedIn URL: %s", urlStr)
	}

	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	info := &LinkedInURLInfo{Type: LinkedInURLTypeNonJob}

	if id := ParseJobID(parsedURL.Path); id != "" {
		info.Type = LinkedInURLTypeJobView
		info.JobID = id
		info.PublicURL = JobViewURL(id)
		return info, nil
	}

	if jobListPathRegex.MatchString(strings.ToLower(parsedURL.Path)) {
		info.Type = LinkedInURLTypeJobCollection
		if current := parsedURL.Query().Get("currentJobId"); IsNumericID(current) {
			info.JobID = current
			info.PublicURL = JobViewURL(current)
		}
	}

	return info, nil
}

// IsLinkedInJobListURL checks if a URL is a job search or collection page
func IsLinkedInJobListURL(urlStr string) bool {
	info, err := ParseLinkedInURL(urlStr)
	if err != nil {
		return false
	}
	return info.Type == LinkedInURLTypeJobCollection
}
