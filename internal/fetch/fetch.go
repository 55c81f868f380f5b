// Package fetch acquires profile pages over HTTP or through a headless
// browser and hands them to the extractor.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/codeGROOVE-dev/retry"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent is the user agent string for HTTP requests.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"

// DefaultAttempts is how many times a transient failure is tried.
const DefaultAttempts = 3

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 8 << 20

// ErrLoginRequired is the cause of an Error when the site redirects to its
// sign-in or authwall pages.
var ErrLoginRequired = errors.New("login required")

// Result holds the raw content from a URL fetch.
type Result struct {
	URL         string
	FinalURL    string
	HTML        string
	ContentType string
	StatusCode  int
}

// Error represents an error during URL fetching.
type Error struct {
	URL        string
	StatusCode int
	Message    string
	Retryable  bool
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Options configures the fetch behavior.
type Options struct {
	Timeout    time.Duration
	UserAgent  string
	Headers    map[string]string
	Cookies    []*http.Cookie
	Attempts   uint
	RetryDelay time.Duration
	Client     *http.Client
	Logger     *slog.Logger
}

// DefaultOptions returns sensible defaults for fetching.
func DefaultOptions() *Options {
	return &Options{
		Timeout:    DefaultTimeout,
		UserAgent:  DefaultUserAgent,
		Attempts:   DefaultAttempts,
		RetryDelay: 500 * time.Millisecond,
	}
}

func (o *Options) withDefaults() *Options {
	d := DefaultOptions()
	if o == nil {
		return d
	}
	out := *o
	if out.Timeout <= 0 {
		out.Timeout = d.Timeout
	}
	if out.UserAgent == "" {
		out.UserAgent = d.UserAgent
	}
	if out.Attempts == 0 {
		out.Attempts = d.Attempts
	}
	if out.RetryDelay <= 0 {
		out.RetryDelay = d.RetryDelay
	}
	if out.Logger == nil {
		out.Logger = slog.Default()
	}
	return &out
}

// URL retrieves HTML content from a URL, retrying transient failures. On an
// HTTP error status the partial result is returned with the error.
func URL(ctx context.Context, urlStr string, opts *Options) (*Result, error) {
	opts = opts.withDefaults()

	parsedURL, err := url.Parse(urlStr)
	if err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, &Error{URL: urlStr, Message: "invalid URL", Cause: err}
	}

	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}

	var last *Result
	result, err := retry.DoWithData(
		func() (*Result, error) {
			res, err := get(ctx, client, urlStr, opts)
			if res != nil {
				last = res
			}
			return res, err
		},
		retry.Context(ctx),
		retry.Attempts(opts.Attempts),
		retry.Delay(opts.RetryDelay),
		retry.MaxJitter(opts.RetryDelay/2),
		retry.RetryIf(IsRetryable),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			opts.Logger.Debug("retrying fetch", "attempt", n+1, "url", urlStr, "error", err)
		}),
	)
	if err != nil {
		return last, err
	}
	return result, nil
}

func get(ctx context.Context, client *http.Client, urlStr string, opts *Options) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}
	for _, c := range opts.Cookies {
		req.AddCookie(c)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "HTTP request failed", Retryable: ctx.Err() == nil, Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "failed to read response body", Retryable: true, Cause: err}
	}

	result := &Result{
		URL:         urlStr,
		FinalURL:    resp.Request.URL.String(),
		HTML:        string(body),
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
	}

	if isLoginURL(resp.Request.URL) {
		return result, &Error{URL: urlStr, StatusCode: resp.StatusCode, Message: "redirected to sign-in", Cause: ErrLoginRequired}
	}
	if resp.StatusCode != http.StatusOK {
		return result, &Error{
			URL:        urlStr,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("HTTP status %d", resp.StatusCode),
			Retryable:  retryableStatus(resp.StatusCode),
		}
	}
	return result, nil
}

// IsRetryable reports whether err is a transient fetch failure.
func IsRetryable(err error) bool {
	var fetchErr *Error
	if errors.As(err, &fetchErr) {
		return fetchErr.Retryable
	}
	return false
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

func isLoginURL(u *url.URL) bool {
	if !strings.HasSuffix(strings.ToLower(u.Hostname()), "linkedin.com") {
		return false
	}
	p := strings.ToLower(u.Path)
	for _, prefix := range []string{"/authwall", "/login", "/uas/login", "/checkpoint"} {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}

// ExtractMainText parses HTML and returns the main body text.
// It removes noise elements using noiseSelectors, then finds content using contentSelectors.
// If no content selectors match, it falls back to the body element.
func ExtractMainText(html string, contentSelectors []string, noiseSelectors ...string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("nav, footer, header, script, style, noscript, .cookie-banner, .popup").Remove()
	if len(noiseSelectors) > 0 {
		doc.Find(strings.Join(noiseSelectors, ", ")).Remove()
	}

	var mainContent *goquery.Selection
	for _, selector := range contentSelectors {
		if selection := doc.Find(selector); selection.Length() > 0 {
			mainContent = selection.First()
			break
		}
	}
	if mainContent == nil {
		mainContent = doc.Find("body")
	}

	return cleanWhitespace(mainContent.Text()), nil
}

// cleanWhitespace drops blank lines and trims the rest.
func cleanWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	var cleaned []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
