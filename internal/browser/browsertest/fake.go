// Package browsertest provides in-memory Page and Control implementations for
// exercising page-driving code without a browser.
package browsertest

import (
	"context"
	"strings"
	"sync"
	"time"

	"linkjd/internal/browser"
)

// Control is a scripted button, link or input
type Control struct {
	Label    string
	Aria     string
	Hidden   bool
	Inactive bool

	// OnClick runs on every click; a returned error fails the click
	OnClick func() error
	// FillErr fails every Fill call
	FillErr error

	mu     sync.Mutex
	clicks int
	filled []string
	files  []string
}

var _ browser.Control = (*Control)(nil)

func (c *Control) Text() string      { return c.Label }
func (c *Control) AriaLabel() string { return c.Aria }
func (c *Control) Visible() bool     { return !c.Hidden }
func (c *Control) Disabled() bool    { return c.Inactive }

func (c *Control) Click(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	c.clicks++
	c.mu.Unlock()
	if c.OnClick != nil {
		return c.OnClick()
	}
	return nil
}

func (c *Control) Fill(_ context.Context, value string) error {
	if c.FillErr != nil {
		return c.FillErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filled = append(c.filled, value)
	return nil
}

func (c *Control) SetFiles(_ context.Context, paths []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.files = append(c.files, paths...)
	return nil
}

// Clicks returns how many times the control was clicked
func (c *Control) Clicks() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clicks
}

// Filled returns every value written into the control
func (c *Control) Filled() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.filled...)
}

// Files returns every path attached to the control
func (c *Control) Files() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.files...)
}

// Page is a scripted page. Zero values behave like an empty document.
type Page struct {
	mu sync.Mutex

	CurrentURL string
	DocTitle   string
	// Texts maps a selector to the inner text of its first match
	Texts map[string]string
	// Links maps a selector to its anchors
	Links  map[string][]browser.Anchor
	Markup string
	PNG    []byte

	// ControlsFor returns the controls matching a selector in the current
	// page state. Unset means no controls.
	ControlsFor func(selector string) []browser.Control
	// OnNavigate runs after a successful navigation
	OnNavigate func(url string)
	// OnScroll runs on every ScrollList call
	OnScroll func()

	NavigateErr   error
	WaitErr       error
	TitleErr      error
	TextErr       error
	AnchorsErr    error
	HTMLErr       error
	ScreenshotErr error

	navigations []string
	waits       []string
	scrolls     int
	shots       int
}

var _ browser.Page = (*Page)(nil)

func (p *Page) URL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.CurrentURL
}

func (p *Page) Navigate(ctx context.Context, url string, _ time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	p.navigations = append(p.navigations, url)
	if p.NavigateErr != nil {
		err := p.NavigateErr
		p.mu.Unlock()
		return err
	}
	p.CurrentURL = url
	hook := p.OnNavigate
	p.mu.Unlock()

	if hook != nil {
		hook(url)
	}
	return nil
}

func (p *Page) WaitFor(_ context.Context, selector string, _ time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.waits = append(p.waits, selector)
	return p.WaitErr
}

func (p *Page) Title(context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.DocTitle, p.TitleErr
}

func (p *Page) InnerText(_ context.Context, selector string) (string, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.TextErr != nil {
		return "", false, p.TextErr
	}
	text, ok := p.Texts[selector]
	return text, ok, nil
}

func (p *Page) Anchors(_ context.Context, selector string) ([]browser.Anchor, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.AnchorsErr != nil {
		return nil, p.AnchorsErr
	}
	return append([]browser.Anchor(nil), p.Links[selector]...), nil
}

func (p *Page) HTML(context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Markup, p.HTMLErr
}

func (p *Page) Controls(_ context.Context, selector string) ([]browser.Control, error) {
	p.mu.Lock()
	fn := p.ControlsFor
	p.mu.Unlock()
	if fn == nil {
		return nil, nil
	}
	return fn(selector), nil
}

func (p *Page) ScrollList(context.Context, []string) error {
	p.mu.Lock()
	p.scrolls++
	hook := p.OnScroll
	p.mu.Unlock()
	if hook != nil {
		hook()
	}
	return nil
}

func (p *Page) Screenshot(context.Context) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ScreenshotErr != nil {
		return nil, p.ScreenshotErr
	}
	p.shots++
	if p.PNG == nil {
		return []byte("\x89PNG\r\n\x1a\n"), nil
	}
	return p.PNG, nil
}

// Navigations returns every URL passed to Navigate
func (p *Page) Navigations() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.navigations...)
}

// Waits returns every selector passed to WaitFor
func (p *Page) Waits() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.waits...)
}

// Scrolls returns the number of ScrollList calls
func (p *Page) Scrolls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.scrolls
}

// Screenshots returns the number of screenshots taken
func (p *Page) Screenshots() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.shots
}

// Static returns a ControlsFor func that serves the same controls for every
// selector containing one of the given substrings
func Static(controls []browser.Control, selectorParts ...string) func(string) []browser.Control {
	return func(selector string) []browser.Control {
		if len(selectorParts) == 0 {
			return controls
		}
		for _, part := range selectorParts {
			if strings.Contains(selector, part) {
				return controls
			}
		}
		return nil
	}
}
