package browser

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"linkjd/internal/logging"
	"linkjd/internal/logging/types"
)

// Session is an attachment to an already-running, already-authenticated browser
// through its remote debugging endpoint. It owns exactly one page handle.
type Session struct {
	browser  *rod.Browser
	page     *rodPage
	ownsPage bool
	cancel   context.CancelFunc
	logger   types.Logger
	once     sync.Once
}

// Attach resolves the endpoint, connects and picks the page to drive: the first
// open tab of the profile, or a fresh tab when none exists.
func Attach(ctx context.Context, cdpURL string) (*Session, error) {
	logger := logging.GetGlobalLogger().WithField("cdp_url", cdpURL)

	wsURL, err := launcher.ResolveURL(cdpURL)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve %s: %v", ErrConnect, cdpURL, err)
	}

	sessionCtx, cancel := context.WithCancel(ctx)
	browser := rod.New().Context(sessionCtx).ControlURL(wsURL)
	if err := browser.Connect(); err != nil {
		cancel()
		return nil, fmt.Errorf("%w: %v", ErrConnect, err)
	}

	page, owns, err := pickPage(browser)
	if err != nil {
		cancel()
		return nil, err
	}

	logger.Info("Attached to remote browser", map[string]interface{}{
		"created_page": owns,
	})

	return &Session{
		browser:  browser,
		page:     &rodPage{page: page},
		ownsPage: owns,
		cancel:   cancel,
		logger:   logger,
	}, nil
}

func pickPage(browser *rod.Browser) (*rod.Page, bool, error) {
	pages, err := browser.Pages()
	if err != nil {
		return nil, false, fmt.Errorf("%w: list pages: %v", ErrNoPage, err)
	}
	if len(pages) > 0 {
		return pages[0], false, nil
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, false, fmt.Errorf("%w: create page: %v", ErrNoPage, err)
	}
	return page, true, nil
}

// Page returns the session's single page handle
func (s *Session) Page() Page {
	return s.page
}

// Close releases the session. A tab opened by Attach is closed; the browser
// process itself belongs to the operator and is left running.
func (s *Session) Close() error {
	var closeErr error
	s.once.Do(func() {
		if s.ownsPage && s.page != nil {
			if err := s.page.page.Close(); err != nil {
				closeErr = fmt.Errorf("failed to close page: %w", err)
			}
		}
		s.cancel()
		s.logger.Debug("Browser session released")
	})
	return closeErr
}
