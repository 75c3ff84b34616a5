package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// rodPage adapts a rod page to the Page interface
type rodPage struct {
	page *rod.Page
}

type elementInfo struct {
	Text     string `json:"text"`
	Aria     string `json:"aria"`
	Visible  bool   `json:"visible"`
	Disabled bool   `json:"disabled"`
}

const describeElementsJS = `(sel) => Array.from(document.querySelectorAll(sel)).map(el => {
	const r = el.getBoundingClientRect();
	return {
		text: (el.innerText || el.value || '').trim(),
		aria: (el.getAttribute('aria-label') || '').trim(),
		visible: !!(el.offsetParent || el.getClientRects().length) && r.width > 0 && r.height > 0,
		disabled: !!el.disabled || el.getAttribute('aria-disabled') === 'true',
	};
})`

const innerTextJS = `(sel) => {
	const el = document.querySelector(sel);
	return el ? { found: true, text: el.innerText || '' } : { found: false, text: '' };
}`

const anchorsJS = `(sel) => Array.from(document.querySelectorAll(sel))
	.map(a => ({ href: a.href || '', text: a.innerText || '' }))`

const scrollListJS = `(sels) => {
	let scroller = null;
	for (const sel of sels) {
		const el = document.querySelector(sel);
		if (el && el.scrollHeight > el.clientHeight) { scroller = el; break; }
	}
	scroller = scroller || document.scrollingElement || document.documentElement;
	const step = Math.max(300, Math.floor((scroller.clientHeight || 800) * 0.85));
	try { scroller.scrollBy({ top: step, left: 0, behavior: 'instant' }); }
	catch (e) { scroller.scrollTop = (scroller.scrollTop || 0) + step; }
	scroller.dispatchEvent(new Event('scroll', { bubbles: true }));
	return true;
}`

func (r *rodPage) URL() string {
	info, err := r.page.Info()
	if err != nil || info == nil {
		return ""
	}
	return info.URL
}

// Navigate loads url and waits for DOMContentLoaded within timeout
func (r *rodPage) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	navCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	p := r.page.Context(navCtx)
	wait := p.WaitNavigation(proto.PageLifecycleEventNameDOMContentLoaded)
	if err := p.Navigate(url); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrNavigate, url, err)
	}
	wait()

	if err := navCtx.Err(); err != nil {
		return fmt.Errorf("%w: %s: timeout after %s", ErrNavigate, url, timeout)
	}
	return nil
}

func (r *rodPage) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	if _, err := r.page.Context(ctx).Timeout(timeout).Element(selector); err != nil {
		return fmt.Errorf("element %q did not appear within %s: %w", selector, timeout, err)
	}
	return nil
}

func (r *rodPage) Title(ctx context.Context) (string, error) {
	res, err := r.page.Context(ctx).Eval(`() => document.title || ''`)
	if err != nil {
		return "", fmt.Errorf("failed to read document title: %w", err)
	}
	return res.Value.Str(), nil
}

func (r *rodPage) InnerText(ctx context.Context, selector string) (string, bool, error) {
	var out struct {
		Found bool   `json:"found"`
		Text  string `json:"text"`
	}
	if err := r.evalInto(ctx, &out, innerTextJS, selector); err != nil {
		return "", false, fmt.Errorf("failed to read text of %q: %w", selector, err)
	}
	return out.Text, out.Found, nil
}

func (r *rodPage) Anchors(ctx context.Context, selector string) ([]Anchor, error) {
	var out []struct {
		Href string `json:"href"`
		Text string `json:"text"`
	}
	if err := r.evalInto(ctx, &out, anchorsJS, selector); err != nil {
		return nil, fmt.Errorf("failed to list anchors %q: %w", selector, err)
	}
	anchors := make([]Anchor, 0, len(out))
	for _, a := range out {
		anchors = append(anchors, Anchor{Href: a.Href, Text: a.Text})
	}
	return anchors, nil
}

func (r *rodPage) HTML(ctx context.Context) (string, error) {
	html, err := r.page.Context(ctx).HTML()
	if err != nil {
		return "", fmt.Errorf("failed to get page HTML: %w", err)
	}
	return html, nil
}

// Controls lists every element matching selector in document order
func (r *rodPage) Controls(ctx context.Context, selector string) ([]Control, error) {
	p := r.page.Context(ctx)

	var infos []elementInfo
	if err := r.evalInto(ctx, &infos, describeElementsJS, selector); err != nil {
		return nil, fmt.Errorf("failed to describe %q: %w", selector, err)
	}

	elements, err := p.Elements(selector)
	if err != nil {
		return nil, fmt.Errorf("failed to query %q: %w", selector, err)
	}

	// The DOM may shift between the two queries; keep the common prefix
	n := len(elements)
	if len(infos) < n {
		n = len(infos)
	}
	controls := make([]Control, 0, n)
	for i := 0; i < n; i++ {
		controls = append(controls, &rodControl{el: elements[i], info: infos[i]})
	}
	return controls, nil
}

func (r *rodPage) ScrollList(ctx context.Context, containerSelectors []string) error {
	if _, err := r.page.Context(ctx).Eval(scrollListJS, containerSelectors); err != nil {
		return fmt.Errorf("failed to scroll list: %w", err)
	}
	return nil
}

// Screenshot captures the full scrollable page as PNG
func (r *rodPage) Screenshot(ctx context.Context) ([]byte, error) {
	shot, err := r.page.Context(ctx).Screenshot(true, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to capture screenshot: %w", err)
	}
	return shot, nil
}

func (r *rodPage) evalInto(ctx context.Context, out interface{}, js string, args ...interface{}) error {
	res, err := r.page.Context(ctx).Eval(js, args...)
	if err != nil {
		return err
	}
	raw, err := res.Value.MarshalJSON()
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

// rodControl adapts a rod element to the Control interface
type rodControl struct {
	el   *rod.Element
	info elementInfo
}

func (c *rodControl) Text() string      { return c.info.Text }
func (c *rodControl) AriaLabel() string { return c.info.Aria }
func (c *rodControl) Visible() bool     { return c.info.Visible }
func (c *rodControl) Disabled() bool    { return c.info.Disabled }

func (c *rodControl) Click(ctx context.Context) error {
	return c.el.Context(ctx).Click(proto.InputMouseButtonLeft, 1)
}

// Fill replaces the current value of an input
func (c *rodControl) Fill(ctx context.Context, value string) error {
	el := c.el.Context(ctx)
	if err := el.SelectAllText(); err != nil {
		return fmt.Errorf("failed to select input text: %w", err)
	}
	return el.Input(value)
}

func (c *rodControl) SetFiles(ctx context.Context, paths []string) error {
	return c.el.Context(ctx).SetFiles(paths)
}
