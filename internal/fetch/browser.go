package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// MinContentLength is the minimum main-content text length for an HTTP fetch
// to count as a rendered profile.
const MinContentLength = 200

// ShouldUseBrowser returns true if the extracted text is too short,
// indicating the page is rendered client side or gated.
func ShouldUseBrowser(extractedText string) bool {
	return len(strings.TrimSpace(extractedText)) < MinContentLength
}

// BrowserOptions configures headless rendering.
type BrowserOptions struct {
	Timeout time.Duration
	// WaitSelector must be ready before the HTML is captured.
	WaitSelector string
	// Settle is extra time for lazy sections after WaitSelector is ready.
	Settle    time.Duration
	Cookies   []*http.Cookie
	UserAgent string
	Headless  bool
	Logger    *slog.Logger
}

// DefaultBrowserOptions returns headless rendering defaults.
func DefaultBrowserOptions() *BrowserOptions {
	return &BrowserOptions{
		Timeout:      DefaultTimeout,
		WaitSelector: "main",
		Settle:       2 * time.Second,
		UserAgent:    DefaultUserAgent,
		Headless:     true,
	}
}

func (o *BrowserOptions) withDefaults() *BrowserOptions {
	d := DefaultBrowserOptions()
	if o == nil {
		o = d
	}
	out := *o
	if out.Timeout <= 0 {
		out.Timeout = d.Timeout
	}
	if out.WaitSelector == "" {
		out.WaitSelector = d.WaitSelector
	}
	if out.UserAgent == "" {
		out.UserAgent = d.UserAgent
	}
	if out.Logger == nil {
		out.Logger = slog.Default()
	}
	return &out
}

// WithBrowser renders a page in Chrome with the given session cookies and
// returns the rendered HTML once WaitSelector is ready.
// Requires Chrome/Chromium to be installed on the system.
func WithBrowser(ctx context.Context, urlStr string, opts *BrowserOptions) (*Result, error) {
	opts = opts.withDefaults()
	opts.Logger.Debug("starting headless browser", "url", urlStr)

	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", opts.Headless),
			chromedp.Flag("disable-blink-features", "AutomationControlled"),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.UserAgent(opts.UserAgent),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, opts.Timeout)
	defer cancel()

	var html, finalURL string
	err := chromedp.Run(browserCtx,
		network.Enable(),
		setCookies(opts.Cookies),
		chromedp.Navigate(urlStr),
		chromedp.WaitReady(opts.WaitSelector, chromedp.ByQuery),
		chromedp.Sleep(opts.Settle),
		chromedp.Location(&finalURL),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "browser rendering failed", Cause: err}
	}

	opts.Logger.Debug("rendered page", "url", finalURL, "bytes", len(html))
	return &Result{URL: urlStr, FinalURL: finalURL, HTML: html, StatusCode: http.StatusOK}, nil
}

// setCookies installs cookies in the browser before navigation.
func setCookies(cookies []*http.Cookie) chromedp.ActionFunc {
	return func(ctx context.Context) error {
		for _, p := range cookieParams(cookies) {
			if err := p.Do(ctx); err != nil {
				return fmt.Errorf("failed to set cookie %s: %w", p.Name, err)
			}
		}
		return nil
	}
}

// cookieParams converts cookies to CDP parameters, defaulting the domain to
// .linkedin.com.
func cookieParams(cookies []*http.Cookie) []*network.SetCookieParams {
	params := make([]*network.SetCookieParams, 0, len(cookies))
	for _, c := range cookies {
		if c == nil || c.Name == "" {
			continue
		}
		domain := c.Domain
		if domain == "" {
			domain = ".linkedin.com"
		}
		path := c.Path
		if path == "" {
			path = "/"
		}
		p := network.SetCookie(c.Name, c.Value).
			WithDomain(domain).
			WithPath(path).
			WithSecure(true).
			WithHTTPOnly(c.HttpOnly)
		if !c.Expires.IsZero() {
			expires := cdp.TimeSinceEpoch(c.Expires)
			p = p.WithExpires(&expires)
		}
		params = append(params, p)
	}
	return params
}
