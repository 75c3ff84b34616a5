package collect

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkjd/internal/browser"
	"linkjd/internal/browser/browsertest"
	"linkjd/internal/logging"
)

func TestHarvestJobIDs(t *testing.T) {
	html := `<html><body><main>
		<ul class="scaffold-layout__list-container">
			<li data-occludable-job-id="1">
				<a href="/jobs/view/1001/?refId=abc">Backend Engineer</a>
				<a href="https://www.linkedin.com/jobs/view/1001/">Backend Engineer (dup)</a>
			</li>
			<li><div data-entity-urn="urn:li:jobPosting:1002">card</div></li>
			<li><div data-urn="urn:li:jobPosting:1003">card</div></li>
			<li><div data-job-id=" 1004 ">card</div></li>
			<li><div data-job-id="search-result">not numeric</div></li>
			<li><a href="/jobs/search/?currentJobId=1005&keywords=go">selected</a></li>
			<li><a href="/company/acme/">Acme</a></li>
		</ul>
	</main></body></html>`

	ids, err := HarvestJobIDs(html, "https://www.linkedin.com/jobs/collections/recommended/?currentJobId=1006")
	require.NoError(t, err)
	assert.Equal(t, []string{"1001", "1002", "1003", "1004", "1005", "1006"}, ids)
}

func TestHarvestJobIDsFollowsDocumentOrder(t *testing.T) {
	html := `<html><body><ul>
		<li><div data-entity-urn="urn:li:jobPosting:2001">card</div></li>
		<li><a href="/jobs/search/?currentJobId=2002">selected</a></li>
		<li><a href="/jobs/view/2003/">Platform Engineer</a></li>
		<li><div data-job-id="2004">card</div></li>
		<li><a href="/jobs/view/2001/">repeat</a></li>
	</ul></body></html>`

	ids, err := HarvestJobIDs(html, "https://www.linkedin.com/jobs/search/")
	require.NoError(t, err)
	assert.Equal(t, []string{"2001", "2002", "2003", "2004"}, ids)
}

func TestHarvestJobIDsEmptyPage(t *testing.T) {
	ids, err := HarvestJobIDs("<html><body></body></html>", "https://www.linkedin.com/jobs/search/")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

// listPage renders a result page holding the given ids
func listPage(ids ...int) string {
	var b strings.Builder
	b.WriteString("<html><body><ul>")
	for _, id := range ids {
		fmt.Fprintf(&b, `<li><a href="/jobs/view/%d/">Job %d</a></li>`, id, id)
	}
	b.WriteString("</ul></body></html>")
	return b.String()
}

// paginated builds a fake list whose "Next" control turns to the following
// page; the last page shows it disabled
func paginated(pages []string) (*browsertest.Page, *browsertest.Control) {
	current := 0
	page := &browsertest.Page{
		CurrentURL: "https://www.linkedin.com/jobs/search/?keywords=go",
		Markup:     pages[0],
	}
	next := &browsertest.Control{Aria: "View next page", Label: "Next"}
	next.OnClick = func() error {
		current++
		page.Markup = pages[current]
		next.Inactive = current == len(pages)-1
		return nil
	}
	next.Inactive = len(pages) == 1
	page.ControlsFor = func(selector string) []browser.Control {
		if selector == "button[aria-label]" {
			return []browser.Control{&browsertest.Control{Aria: "Dismiss"}, next}
		}
		return nil
	}
	return page, next
}

func newTestCollector(opts Options) *Collector {
	return New(opts, logging.NewNopLogger())
}

func TestCollectFollowsPagination(t *testing.T) {
	page, next := paginated([]string{listPage(1, 2), listPage(2, 3), listPage(4)})

	ids, err := newTestCollector(Options{MaxPages: 10, MaxJobs: 100, ScrollTimes: 3}).Collect(context.Background(), page)
	require.NoError(t, err)

	assert.Equal(t, []string{"1", "2", "3", "4"}, ids)
	assert.Equal(t, 2, next.Clicks())
	assert.Equal(t, 9, page.Scrolls())
}

func TestCollectStopsAtMaxPages(t *testing.T) {
	page, next := paginated([]string{listPage(1), listPage(2), listPage(3)})

	ids, err := newTestCollector(Options{MaxPages: 2, MaxJobs: 100}).Collect(context.Background(), page)
	require.NoError(t, err)

	assert.Equal(t, []string{"1", "2"}, ids)
	assert.Equal(t, 1, next.Clicks())
}

func TestCollectStopsAtMaxJobs(t *testing.T) {
	page, next := paginated([]string{listPage(1, 2, 3), listPage(4, 5)})

	ids, err := newTestCollector(Options{MaxPages: 10, MaxJobs: 2}).Collect(context.Background(), page)
	require.NoError(t, err)

	assert.Equal(t, []string{"1", "2"}, ids)
	assert.Zero(t, next.Clicks())
}

func TestCollectWithoutPaginationControl(t *testing.T) {
	page := &browsertest.Page{Markup: listPage(7, 8)}

	ids, err := newTestCollector(Options{MaxPages: 5, MaxJobs: 100}).Collect(context.Background(), page)
	require.NoError(t, err)
	assert.Equal(t, []string{"7", "8"}, ids)
}

func TestCollectReturnsPartialIDsOnPageFailure(t *testing.T) {
	page, next := paginated([]string{listPage(1), listPage(2)})
	next.OnClick = func() error {
		page.HTMLErr = errors.New("target crashed")
		return nil
	}

	ids, err := newTestCollector(Options{MaxPages: 5, MaxJobs: 100}).Collect(context.Background(), page)
	require.Error(t, err)
	assert.Equal(t, []string{"1"}, ids)
}
