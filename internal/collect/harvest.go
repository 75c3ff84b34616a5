package collect

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"linkjd/pkg/utils"
)

// jobRefSelector matches every element that can carry a job id
const jobRefSelector = `a[href*="/jobs/view/"], a[href*="currentJobId="], ` +
	`[data-entity-urn*="jobPosting"], [data-urn*="jobPosting"], [data-job-id]`

// HarvestJobIDs returns the job ids referenced by a rendered list page, in
// document order without duplicates. Ids come from job-view links, posting
// URNs on result cards, data-job-id attributes and currentJobId links; the
// currentJobId parameter of pageURL comes last.
func HarvestJobIDs(html, pageURL string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse list HTML: %w", err)
	}

	seen := make(map[string]struct{})
	var ids []string
	add := func(id string) {
		if !utils.IsNumericID(id) {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	doc.Find(jobRefSelector).Each(func(_ int, s *goquery.Selection) {
		add(jobIDOf(s))
	})
	add(currentJobID(pageURL))

	return ids, nil
}

// jobIDOf reads the id an element refers to, or "" when it carries none
func jobIDOf(s *goquery.Selection) string {
	if href, ok := s.Attr("href"); ok {
		if id := utils.ParseJobID(href); id != "" {
			return id
		}
		if id := currentJobID(href); id != "" {
			return id
		}
	}
	for _, attr := range []string{"data-entity-urn", "data-urn"} {
		if id := utils.JobIDFromURN(s.AttrOr(attr, "")); id != "" {
			return id
		}
	}
	return strings.TrimSpace(s.AttrOr("data-job-id", ""))
}

func currentJobID(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Query().Get("currentJobId")
}
