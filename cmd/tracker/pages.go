package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/jonathan/candidate-tracker/internal/config"
	"github.com/jonathan/candidate-tracker/internal/dom"
	"github.com/jonathan/candidate-tracker/internal/extraction"
	"github.com/jonathan/candidate-tracker/internal/fetch"
)

func isRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// profileOptions builds fetch settings from c, attaching the LinkedIn session
// when one can be found.
func profileOptions(ctx context.Context, c config.Config) *fetch.ProfileOptions {
	cookies, err := fetch.LinkedInCookies(ctx)
	switch {
	case errors.Is(err, fetch.ErrNoSession):
		slog.Warn("no LinkedIn session found, fetching anonymously")
	case err != nil:
		slog.Warn("failed to read LinkedIn cookies", "error", err)
	}
	return newProfileOptions(c, cookies)
}

func newProfileOptions(c config.Config, cookies []*http.Cookie) *fetch.ProfileOptions {
	httpOpts := fetch.DefaultOptions()
	httpOpts.Timeout = c.FetchTimeout()
	httpOpts.Cookies = cookies

	browserOpts := fetch.DefaultBrowserOptions()
	browserOpts.Timeout = c.FetchTimeout()
	browserOpts.Cookies = cookies

	mode := fetch.ModeAuto
	if c.UseBrowser {
		mode = fetch.ModeBrowser
	}
	return &fetch.ProfileOptions{
		Mode:    mode,
		HTTP:    httpOpts,
		Browser: browserOpts,
		Logger:  slog.Default(),
	}
}

// loadPage returns the page for source: a URL is fetched, anything else is
// read as a saved HTML file. pageURL overrides the location of saved files.
func loadPage(ctx context.Context, source, pageURL string, opts *fetch.ProfileOptions) (*extraction.Page, error) {
	if isRemote(source) {
		return fetch.ProfilePage(ctx, source, opts)
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", source, err)
	}
	page, err := extraction.NewPage(pageURL, string(data))
	if err != nil {
		return nil, err
	}
	if page.URL == "" {
		page.URL = savedPageURL(page.Root)
	}
	return page, nil
}

// savedPageURL recovers the address a saved page was captured from.
func savedPageURL(root dom.Node) string {
	if href := dom.AttrOf(root.First(`link[rel="canonical"]`), "href"); href != "" {
		return href
	}
	return dom.MetaContent(root, "og:url")
}
