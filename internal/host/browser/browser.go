// Package browser drives a Chrome instance through the DevTools protocol
// with go-rod. It either launches its own browser or attaches to a running
// one, so a logged-in session can be reused.
package browser

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/brogergvhs/pagegrab/internal/host"
)

type Options struct {
	URL string

	// ControlURL attaches to an already running Chrome instead of
	// launching one.
	ControlURL string

	ShowBrowser bool
	BrowserBin  string
	NoSandbox   bool

	UserAgent string
	Cookie    string

	// LoadTimeout bounds navigation and the initial load event.
	LoadTimeout time.Duration
}

type Host struct {
	browser  *rod.Browser
	page     *rod.Page
	launcher *launcher.Launcher
	ownPage  bool
}

// Open connects to Chrome and navigates to opts.URL. When attaching, a tab
// already showing the document is reused.
func Open(ctx context.Context, opts Options) (*Host, error) {
	if opts.URL == "" {
		return nil, errors.New("no document URL")
	}

	h := &Host{}

	controlURL := opts.ControlURL
	if controlURL == "" {
		l := launcher.New().
			Context(ctx).
			Headless(!opts.ShowBrowser).
			NoSandbox(opts.NoSandbox)
		if opts.BrowserBin != "" {
			l = l.Bin(opts.BrowserBin)
		}

		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("launch browser: %w", err)
		}
		h.launcher = l
		controlURL = u
	}

	h.browser = rod.New().ControlURL(controlURL).Context(ctx)
	if err := h.browser.Connect(); err != nil {
		h.Close()
		return nil, fmt.Errorf("connect to browser: %w", err)
	}

	if opts.ControlURL != "" {
		if p := h.findOpenTab(opts.URL); p != nil {
			h.page = p
			return h, nil
		}
	}

	if err := h.openTab(opts); err != nil {
		h.Close()
		return nil, err
	}

	return h, nil
}

func (h *Host) findOpenTab(target string) *rod.Page {
	tabs, err := h.browser.Pages()
	if err != nil {
		return nil
	}

	for _, p := range tabs {
		info, err := p.Info()
		if err != nil {
			continue
		}
		if sameDocument(info.URL, target) {
			return p
		}
	}

	return nil
}

func (h *Host) openTab(opts Options) error {
	page, err := h.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return fmt.Errorf("open tab: %w", err)
	}
	h.page = page
	h.ownPage = true

	if opts.UserAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: opts.UserAgent}); err != nil {
			return fmt.Errorf("set user agent: %w", err)
		}
	}

	if opts.Cookie != "" {
		if _, err := page.SetExtraHeaders([]string{"Cookie", opts.Cookie}); err != nil {
			return fmt.Errorf("set cookie header: %w", err)
		}
	}

	nav := page
	if opts.LoadTimeout > 0 {
		nav = page.Timeout(opts.LoadTimeout)
	}

	if err := nav.Navigate(opts.URL); err != nil {
		return fmt.Errorf("navigate to %s: %w", opts.URL, err)
	}
	if err := nav.WaitLoad(); err != nil {
		return fmt.Errorf("wait for %s: %w", opts.URL, err)
	}

	return nil
}

// Close shuts down a launched browser. An attached browser stays open;
// only a tab opened by Open is closed.
func (h *Host) Close() {
	if h.launcher == nil {
		if h.ownPage && h.page != nil {
			_ = h.page.Close()
		}
		return
	}

	if h.browser != nil {
		_ = h.browser.Close()
	}
	h.launcher.Kill()
	h.launcher.Cleanup()
}

func (h *Host) ElementByID(ctx context.Context, id string) (host.Element, bool, error) {
	return h.Query(ctx, fmt.Sprintf("[id=%q]", id))
}

func (h *Host) Query(ctx context.Context, selector string) (host.Element, bool, error) {
	ok, el, err := h.page.Context(ctx).Has(selector)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}

	return &element{el: el}, true, nil
}

// sameDocument compares two URLs ignoring the fragment.
func sameDocument(a, b string) bool {
	ua, err := url.Parse(a)
	if err != nil {
		return false
	}
	ub, err := url.Parse(b)
	if err != nil {
		return false
	}

	ua.Fragment, ub.Fragment = "", ""
	return ua.String() == ub.String()
}
