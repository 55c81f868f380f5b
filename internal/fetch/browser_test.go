package fetch

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShouldUseBrowser(t *testing.T) {
	assert.True(t, ShouldUseBrowser("   "))
	assert.True(t, ShouldUseBrowser("Sign in to view Jane's profile"))
	assert.False(t, ShouldUseBrowser(strings.Repeat("x", MinContentLength)))
}

func TestBrowserOptions_Defaults(t *testing.T) {
	opts := (*BrowserOptions)(nil).withDefaults()
	assert.Equal(t, "main", opts.WaitSelector)
	assert.Equal(t, DefaultTimeout, opts.Timeout)
	assert.True(t, opts.Headless)
	assert.NotNil(t, opts.Logger)

	custom := (&BrowserOptions{WaitSelector: ".profile", Timeout: time.Second}).withDefaults()
	assert.Equal(t, ".profile", custom.WaitSelector)
	assert.Equal(t, time.Second, custom.Timeout)
	assert.Equal(t, DefaultUserAgent, custom.UserAgent)
}

func TestCookieParams(t *testing.T) {
	expires := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	params := cookieParams([]*http.Cookie{
		{Name: "li_at", Value: "token", HttpOnly: true, Expires: expires},
		{Name: "JSESSIONID", Value: "ajax:1", Domain: "www.linkedin.com", Path: "/talent"},
		nil,
		{Name: ""},
	})

	require.Len(t, params, 2)
	assert.Equal(t, "li_at", params[0].Name)
	assert.Equal(t, ".linkedin.com", params[0].Domain)
	assert.Equal(t, "/", params[0].Path)
	assert.True(t, params[0].Secure)
	assert.True(t, params[0].HTTPOnly)
	require.NotNil(t, params[0].Expires)
	assert.True(t, params[0].Expires.Time().Equal(expires))

	assert.Equal(t, "www.linkedin.com", params[1].Domain)
	assert.Equal(t, "/talent", params[1].Path)
	assert.Nil(t, params[1].Expires)
}
