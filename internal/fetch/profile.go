package fetch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jonathan/candidate-tracker/internal/extraction"
)

// Mode selects how ProfilePage acquires a page.
type Mode string

const (
	// ModeAuto fetches over HTTP and falls back to the browser when the
	// surface needs it or the response carries no profile content.
	ModeAuto Mode = "auto"
	// ModeHTTP never starts a browser.
	ModeHTTP Mode = "http"
	// ModeBrowser always renders in Chrome.
	ModeBrowser Mode = "browser"
)

// ProfileOptions configures ProfilePage.
type ProfileOptions struct {
	Mode    Mode
	HTTP    *Options
	Browser *BrowserOptions
	Logger  *slog.Logger
	// render replaces WithBrowser in tests.
	render func(ctx context.Context, url string, opts *BrowserOptions) (*Result, error)
}

// ProfilePage acquires urlStr and parses it into a page ready for the
// extractor.
func ProfilePage(ctx context.Context, urlStr string, opts *ProfileOptions) (*extraction.Page, error) {
	if opts == nil {
		opts = &ProfileOptions{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	render := opts.render
	if render == nil {
		render = WithBrowser
	}
	mode := opts.Mode
	if mode == "" {
		mode = ModeAuto
	}

	surface := DetectSurface(urlStr)
	if mode == ModeBrowser || (mode == ModeAuto && RequiresBrowser(surface)) {
		res, err := render(ctx, urlStr, opts.Browser)
		if err != nil {
			return nil, err
		}
		return newPage(res)
	}

	res, err := URL(ctx, urlStr, opts.HTTP)
	if err != nil {
		return nil, err
	}
	if mode == ModeHTTP {
		return newPage(res)
	}

	text, err := ExtractMainText(res.HTML, SurfaceContentSelectors(surface), SurfaceNoiseSelectors(surface)...)
	if err == nil && !ShouldUseBrowser(text) {
		return newPage(res)
	}

	logger.Debug("profile content missing from HTTP response, rendering in browser", "url", urlStr, "chars", len(text))
	rendered, err := render(ctx, urlStr, opts.Browser)
	if err != nil {
		return nil, fmt.Errorf("browser fallback: %w", err)
	}
	return newPage(rendered)
}

func newPage(res *Result) (*extraction.Page, error) {
	pageURL := res.FinalURL
	if pageURL == "" {
		pageURL = res.URL
	}
	return extraction.NewPage(pageURL, res.HTML)
}
