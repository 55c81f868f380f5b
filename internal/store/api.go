package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jonathan/candidate-tracker/internal/types"
)

// DefaultAPITimeout bounds each request to the persistence API.
const DefaultAPITimeout = 15 * time.Second

// RequestError is a failed call to the persistence API.
type RequestError struct {
	Method     string
	URL        string
	StatusCode int
	Message    string
	Cause      error
}

func (e *RequestError) Error() string {
	switch {
	case e.Cause != nil:
		return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Cause)
	case e.Message != "":
		return fmt.Sprintf("%s %s: HTTP status %d: %s", e.Method, e.URL, e.StatusCode, e.Message)
	default:
		return fmt.Sprintf("%s %s: HTTP status %d", e.Method, e.URL, e.StatusCode)
	}
}

func (e *RequestError) Unwrap() error {
	return e.Cause
}

// BlockedURLError is returned, without any network call, for outbound URLs
// rejected by ValidOutboundURL.
type BlockedURLError struct {
	URL string
}

func (e *BlockedURLError) Error() string {
	return fmt.Sprintf("refusing request to invalid URL %q", e.URL)
}

// ValidOutboundURL reports whether raw may be requested: it must be an
// absolute http(s) URL other than "/" that does not contain "/invalid".
func ValidOutboundURL(raw string) bool {
	if raw == "" || raw == "/" || strings.Contains(raw, "/invalid") {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// APIStore talks to the candidate REST API.
type APIStore struct {
	baseURL string
	token   string
	client  *http.Client
}

// APIOption configures an APIStore.
type APIOption func(*APIStore)

// WithToken sends token as a Bearer credential on every request.
func WithToken(token string) APIOption {
	return func(s *APIStore) {
		s.token = token
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(client *http.Client) APIOption {
	return func(s *APIStore) {
		s.client = client
	}
}

// NewAPIStore creates a store for the API rooted at baseURL.
func NewAPIStore(baseURL string, opts ...APIOption) *APIStore {
	s := &APIStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: DefaultAPITimeout},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *APIStore) candidateURL(memberID string) string {
	return s.baseURL + "/api/candidates/" + url.PathEscape(memberID)
}

type candidateEnvelope struct {
	Exists    bool             `json:"exists"`
	Success   bool             `json:"success"`
	Message   string           `json:"message"`
	Candidate *types.Candidate `json:"candidate"`
}

type listEnvelope struct {
	Success    bool             `json:"success"`
	Pagination types.Pagination `json:"pagination"`
}

type errorEnvelope struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// do performs one request. It returns the status code; out is decoded only
// for 2xx responses. A 404 is returned as a status, not an error.
func (s *APIStore) do(ctx context.Context, method, target string, body, out any) (int, error) {
	if !ValidOutboundURL(target) {
		return 0, &BlockedURLError{URL: target}
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, &RequestError{Method: method, URL: target, Cause: err}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return 0, &RequestError{Method: method, URL: target, Cause: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, &RequestError{Method: method, URL: target, Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return resp.StatusCode, nil
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		var apiErr errorEnvelope
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return resp.StatusCode, &RequestError{
			Method:     method,
			URL:        target,
			StatusCode: resp.StatusCode,
			Message:    apiErr.Message,
		}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, &RequestError{Method: method, URL: target, StatusCode: resp.StatusCode, Cause: err}
		}
	}
	return resp.StatusCode, nil
}

func (s *APIStore) get(ctx context.Context, memberID string) (*types.Candidate, error) {
	var env candidateEnvelope
	status, err := s.do(ctx, http.MethodGet, s.candidateURL(memberID), nil, &env)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound || !env.Exists || env.Candidate == nil {
		return nil, nil
	}
	return env.Candidate, nil
}

// Exists checks for memberID through GET /api/candidates/{id}.
func (s *APIStore) Exists(ctx context.Context, memberID string) (Existence, error) {
	c, err := s.get(ctx, memberID)
	if err != nil {
		return Existence{}, wrap("check", memberID, err)
	}
	if c == nil {
		return Existence{}, nil
	}
	return Existence{Exists: true, ProcessedBy: c.ProcessedBy}, nil
}

// Append posts profile to the API.
func (s *APIStore) Append(ctx context.Context, profile *types.CandidateProfile) error {
	if _, err := s.do(ctx, http.MethodPost, s.baseURL+"/api/candidates", types.NewUpsertRequest(profile), nil); err != nil {
		return wrap("save", profile.MemberID, err)
	}
	return nil
}

// Update merges fields into the stored candidate.
func (s *APIStore) Update(ctx context.Context, memberID string, fields Fields) error {
	c, err := s.get(ctx, memberID)
	if err != nil {
		return wrap("update", memberID, err)
	}
	if c == nil {
		return wrap("update", memberID, ErrNotFound)
	}
	if _, err := s.do(ctx, http.MethodPost, s.baseURL+"/api/candidates", updateRequest(c, fields), nil); err != nil {
		return wrap("update", memberID, err)
	}
	return nil
}

// Delete removes memberID through DELETE /api/candidates/{id}.
func (s *APIStore) Delete(ctx context.Context, memberID string) (bool, error) {
	status, err := s.do(ctx, http.MethodDelete, s.candidateURL(memberID), nil, nil)
	if err != nil {
		return false, wrap("delete", memberID, err)
	}
	return status != http.StatusNotFound, nil
}

// Count reads the total from the list endpoint's pagination metadata.
func (s *APIStore) Count(ctx context.Context) (int, error) {
	var env listEnvelope
	if _, err := s.do(ctx, http.MethodGet, s.baseURL+"/api/candidates?page=1&limit=1", nil, &env); err != nil {
		return 0, fmt.Errorf("failed to count candidates: %w", err)
	}
	return env.Pagination.TotalCount, nil
}
