package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"linkjd/pkg/models"
)

// Known top-card markup, tried in order. Used only for fields the text
// heuristics left empty.
var (
	titleSelectors = []string{
		".job-details-jobs-unified-top-card__job-title h1",
		"h1.top-card-layout__title",
		"h1.t-24",
		"h1",
	}
	companySelectors = []string{
		".job-details-jobs-unified-top-card__company-name a",
		".job-details-jobs-unified-top-card__company-name",
		".topcard__org-name-link",
	}
	locationSelectors = []string{
		".job-details-jobs-unified-top-card__primary-description-container span.tvm__text",
		".job-details-jobs-unified-top-card__bullet",
		".topcard__flavor--bullet",
	}
	descriptionSelectors = []string{
		"#job-details",
		".jobs-description__content",
		".jobs-description-content__text",
		".jobs-box__html-content",
		".show-more-less-html__markup",
	}
)

// fillFromTopCard fills empty fields from well-known top-card selectors. The
// description is only taken when withDescription is set, i.e. the page shows
// a description heading whose slice came out empty.
func fillFromTopCard(html string, fields *models.JobFields, withDescription bool) error {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return fmt.Errorf("failed to parse page HTML: %w", err)
	}

	if fields.JobTitle == "" {
		fields.JobTitle = firstLine(firstText(doc, titleSelectors))
	}
	if fields.CompanyName == "" {
		sel := firstMatch(doc, companySelectors)
		if sel != nil {
			fields.CompanyName = firstLine(NormalizeText(sel.Text()))
			if fields.CompanyLinkedIn == "" {
				if href, ok := companyHref(sel); ok {
					fields.CompanyLinkedIn = href
				}
			}
		}
	}
	if fields.LocationText == "" {
		fields.LocationText = firstLine(firstText(doc, locationSelectors))
	}
	if withDescription && fields.DescriptionText == "" {
		fields.DescriptionText = firstText(doc, descriptionSelectors)
	}
	return nil
}

func firstMatch(doc *goquery.Document, selectors []string) *goquery.Selection {
	for _, s := range selectors {
		sel := doc.Find(s).FilterFunction(func(_ int, el *goquery.Selection) bool {
			return strings.TrimSpace(el.Text()) != ""
		}).First()
		if sel.Length() > 0 {
			return sel
		}
	}
	return nil
}

func firstText(doc *goquery.Document, selectors []string) string {
	sel := firstMatch(doc, selectors)
	if sel == nil {
		return ""
	}
	return NormalizeText(sel.Text())
}

// companyHref returns the company link on sel itself or its first descendant
func companyHref(sel *goquery.Selection) (string, bool) {
	if href, ok := sel.Attr("href"); ok && companyPath.MatchString(href) {
		return absoluteLinkedIn(href), true
	}
	if href, ok := sel.Find(companySelector).First().Attr("href"); ok {
		return absoluteLinkedIn(href), true
	}
	return "", false
}

func absoluteLinkedIn(href string) string {
	if strings.HasPrefix(href, "/") {
		return "https://www.linkedin.com" + href
	}
	return href
}
