package browser

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrConnect is returned when the remote debugging endpoint cannot be reached
	ErrConnect = errors.New("browser connect failed")
	// ErrNoPage is returned when no page handle could be obtained
	ErrNoPage = errors.New("no page available")
	// ErrNavigate wraps page-level navigation failures and timeouts
	ErrNavigate = errors.New("navigation failed")
)

// Anchor is a link as rendered by the browser (absolute href, visible text)
type Anchor struct {
	Href string
	Text string
}

// Control is one element found on the page. Text and AriaLabel are captured at
// lookup time.
type Control interface {
	Text() string
	AriaLabel() string
	Visible() bool
	Disabled() bool

	Click(ctx context.Context) error
	Fill(ctx context.Context, value string) error
	SetFiles(ctx context.Context, paths []string) error
}

// Page is the set of page primitives the extractor, navigator and collector use.
// Lookups never wait: a missing element is an empty result, not an error.
type Page interface {
	URL() string
	Navigate(ctx context.Context, url string, timeout time.Duration) error
	WaitFor(ctx context.Context, selector string, timeout time.Duration) error

	Title(ctx context.Context) (string, error)
	// InnerText returns the rendered text of the first element matching selector
	InnerText(ctx context.Context, selector string) (text string, found bool, err error)
	Anchors(ctx context.Context, selector string) ([]Anchor, error)
	HTML(ctx context.Context) (string, error)

	Controls(ctx context.Context, selector string) ([]Control, error)
	ScrollList(ctx context.Context, containerSelectors []string) error
	Screenshot(ctx context.Context) ([]byte, error)
}

// Settle blocks for d or until ctx is done
func Settle(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
