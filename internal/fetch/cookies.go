package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/browserutils/kooky"
	_ "github.com/browserutils/kooky/browser/all" // register every browser cookie store
)

// ErrNoSession is returned when no li_at session cookie can be found.
var ErrNoSession = errors.New("no LinkedIn session cookie found; log in with a supported browser or set LINKEDIN_LI_AT")

// sessionCookieEnv maps environment variables to cookie names.
var sessionCookieEnv = map[string]string{
	"LINKEDIN_LI_AT":      "li_at",
	"LINKEDIN_JSESSIONID": "JSESSIONID",
}

// essentialCookies are the cookies an authenticated profile view needs.
var essentialCookies = map[string]bool{
	"li_at":      true,
	"JSESSIONID": true,
	"lidc":       true,
	"bcookie":    true,
}

// readBrowserCookies reads linkedin.com cookies from local browser stores.
var readBrowserCookies = func(ctx context.Context) ([]*kooky.Cookie, error) {
	return kooky.ReadCookies(ctx, kooky.Valid, kooky.DomainHasSuffix("linkedin.com"))
}

// LinkedInCookies returns the session cookies for linkedin.com. Cookies set in
// the environment win over those read from local browsers.
func LinkedInCookies(ctx context.Context) ([]*http.Cookie, error) {
	if env := cookiesFromEnv(); len(env) > 0 {
		slog.DebugContext(ctx, "using LinkedIn cookies from environment", "count", len(env))
		return env, nil
	}

	kookies, err := readBrowserCookies(ctx)
	if err != nil && len(kookies) == 0 {
		return nil, fmt.Errorf("failed to read browser cookies: %w", err)
	}

	var cookies []*http.Cookie
	hasSession := false
	for _, c := range kookies {
		if !essentialCookies[c.Name] {
			continue
		}
		hasSession = hasSession || c.Name == "li_at"
		cookies = append(cookies, &http.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  c.Expires,
			Secure:   c.Secure,
			HttpOnly: c.HttpOnly,
		})
	}
	if !hasSession {
		return nil, ErrNoSession
	}
	slog.DebugContext(ctx, "found LinkedIn browser cookies", "total", len(kookies), "essential", len(cookies))
	return cookies, nil
}

func cookiesFromEnv() []*http.Cookie {
	if strings.TrimSpace(os.Getenv("LINKEDIN_LI_AT")) == "" {
		return nil
	}
	var cookies []*http.Cookie
	for _, envVar := range []string{"LINKEDIN_LI_AT", "LINKEDIN_JSESSIONID"} {
		value := strings.TrimSpace(os.Getenv(envVar))
		if value == "" {
			continue
		}
		cookies = append(cookies, &http.Cookie{
			Name:     sessionCookieEnv[envVar],
			Value:    value,
			Domain:   ".linkedin.com",
			Path:     "/",
			Secure:   true,
			HttpOnly: true,
		})
	}
	return cookies
}
