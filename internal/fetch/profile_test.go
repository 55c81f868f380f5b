package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/candidate-tracker/internal/extraction"
)

type fakeRenderer struct {
	calls atomic.Int32
	html  string
	err   error
}

func (f *fakeRenderer) render(_ context.Context, url string, _ *BrowserOptions) (*Result, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return &Result{URL: url, FinalURL: url + "?rendered=1", HTML: f.html}, nil
}

func profileServer(t *testing.T, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

var fullProfile = `<html><body><main data-member-id="jane-doe">` +
	strings.Repeat("Staff Engineer at Acme Corp. ", 10) + `</main></body></html>`

const gatedProfile = `<html><body><main>Sign in to view</main></body></html>`

func TestProfilePage_HTTPContent(t *testing.T) {
	srv, hits := profileServer(t, fullProfile)
	r := &fakeRenderer{}

	page, err := ProfilePage(context.Background(), srv.URL+"/in/jane-doe/", &ProfileOptions{render: r.render})
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/in/jane-doe/", page.URL)
	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, int32(0), r.calls.Load())

	id, ok := extraction.ResolveMemberID(page)
	assert.True(t, ok)
	assert.Equal(t, "jane-doe", id)
}

func TestProfilePage_FallsBackToBrowser(t *testing.T) {
	srv, _ := profileServer(t, gatedProfile)
	r := &fakeRenderer{html: fullProfile}

	page, err := ProfilePage(context.Background(), srv.URL+"/in/jane-doe/", &ProfileOptions{render: r.render})
	require.NoError(t, err)
	assert.Equal(t, int32(1), r.calls.Load())
	assert.Equal(t, srv.URL+"/in/jane-doe/?rendered=1", page.URL)
}

func TestProfilePage_HTTPModeNeverRenders(t *testing.T) {
	srv, _ := profileServer(t, gatedProfile)
	r := &fakeRenderer{}

	page, err := ProfilePage(context.Background(), srv.URL, &ProfileOptions{Mode: ModeHTTP, render: r.render})
	require.NoError(t, err)
	assert.NotNil(t, page.Root)
	assert.Equal(t, int32(0), r.calls.Load())
}

func TestProfilePage_BrowserMode(t *testing.T) {
	srv, hits := profileServer(t, fullProfile)
	r := &fakeRenderer{html: fullProfile}

	_, err := ProfilePage(context.Background(), srv.URL, &ProfileOptions{Mode: ModeBrowser, render: r.render})
	require.NoError(t, err)
	assert.Equal(t, int32(0), hits.Load())
	assert.Equal(t, int32(1), r.calls.Load())
}

func TestProfilePage_RecruiterSurfaceRenders(t *testing.T) {
	r := &fakeRenderer{html: fullProfile}

	page, err := ProfilePage(context.Background(), "https://www.linkedin.com/talent/profile/AEMAAB", &ProfileOptions{render: r.render})
	require.NoError(t, err)
	assert.Equal(t, int32(1), r.calls.Load())
	assert.Contains(t, page.URL, "/talent/profile/AEMAAB")
}

func TestProfilePage_RenderError(t *testing.T) {
	srv, _ := profileServer(t, gatedProfile)
	boom := errors.New("chrome not found")
	r := &fakeRenderer{err: boom}

	_, err := ProfilePage(context.Background(), srv.URL, &ProfileOptions{render: r.render})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "browser fallback")
}
