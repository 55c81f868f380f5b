package store

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/candidate-tracker/internal/types"
)

func TestValidOutboundURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"", false},
		{"/", false},
		{"https://api.example.com/invalid/x", false},
		{"/api/candidates", false},
		{"ftp://api.example.com/api/candidates", false},
		{"api.example.com/api/candidates", false},
		{"https://", false},
		{"http://localhost:3000/api/candidates", true},
		{"https://api.example.com/api/candidates/abc", true},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidOutboundURL(tt.url))
		})
	}
}

// fakeAPI is a minimal in-memory stand-in for the candidates REST API.
type fakeAPI struct {
	mu         sync.Mutex
	candidates map[string]*types.Candidate
	auth       string
}

func newFakeAPI(t *testing.T) (*fakeAPI, *httptest.Server) {
	api := &fakeAPI{candidates: map[string]*types.Candidate{}}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	return api, srv
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.auth = r.Header.Get("Authorization")
	w.Header().Set("Content-Type", "application/json")

	id := strings.TrimPrefix(r.URL.Path, "/api/candidates/")
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/api/candidates":
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success":    true,
			"data":       []any{},
			"pagination": types.NewPagination(1, 1, len(f.candidates)),
		})
	case r.Method == http.MethodGet:
		c, ok := f.candidates[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]any{"exists": false, "message": "Candidate not found"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"exists": true, "candidate": c})
	case r.Method == http.MethodPost:
		var req types.UpsertCandidateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.MemberID == "" {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]any{"error": "Bad Request", "message": "member_id is required"})
			return
		}
		c, ok := f.candidates[req.MemberID]
		if !ok {
			c = &types.Candidate{}
			f.candidates[req.MemberID] = c
		}
		c.Apply(&req)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "candidate": c})
	case r.Method == http.MethodDelete:
		if _, ok := f.candidates[id]; !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		delete(f.candidates, id)
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true})
	default:
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": "Internal Server Error", "message": "Database error"})
	}
}

func TestAPIStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	api, srv := newFakeAPI(t)
	s := NewAPIStore(srv.URL+"/", WithToken("tok"))

	ex, err := s.Exists(ctx, "jane")
	require.NoError(t, err)
	assert.False(t, ex.Exists)
	assert.Equal(t, "Bearer tok", api.auth)

	require.NoError(t, s.Append(ctx, testProfile("jane")))
	require.NoError(t, s.Update(ctx, "jane", Fields{ProcessedBy: strPtr("sam"), Notes: strPtr("call")}))

	ex, err = s.Exists(ctx, "jane")
	require.NoError(t, err)
	assert.Equal(t, Existence{Exists: true, ProcessedBy: "sam"}, ex)
	assert.Equal(t, "Staff Engineer", api.candidates["jane"].Headline)
	assert.Equal(t, "call", api.candidates["jane"].Notes)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.ErrorIs(t, s.Update(ctx, "nobody", Fields{Notes: strPtr("x")}), ErrNotFound)

	removed, err := s.Delete(ctx, "jane")
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = s.Delete(ctx, "jane")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestAPIStore_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Internal Server Error","message":"Database error"}`))
	}))
	defer srv.Close()

	err := NewAPIStore(srv.URL).Append(context.Background(), testProfile("jane"))
	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, http.StatusInternalServerError, reqErr.StatusCode)
	assert.Equal(t, "Database error", reqErr.Message)
}

func TestAPIStore_BlockedURL(t *testing.T) {
	var blocked *BlockedURLError

	_, err := NewAPIStore("").Exists(context.Background(), "jane")
	assert.True(t, errors.As(err, &blocked))

	_, err = NewAPIStore("https://api.example.com/invalid").Count(context.Background())
	assert.True(t, errors.As(err, &blocked))
}
