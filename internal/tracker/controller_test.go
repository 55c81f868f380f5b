package tracker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/candidate-tracker/internal/extraction"
	"github.com/jonathan/candidate-tracker/internal/store"
	"github.com/jonathan/candidate-tracker/internal/types"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func profilePage(t *testing.T, slug, name string) *extraction.Page {
	t.Helper()
	html := `<html><body><main><h1 class="text-heading-xlarge">` + name + `</h1>` +
		`<div class="text-body-medium">Staff Engineer at Acme Corp</div></main></body></html>`
	page, err := extraction.NewPage("https://www.linkedin.com/in/"+slug+"/", html)
	require.NoError(t, err)
	return page
}

func newTestController(t *testing.T, s store.CandidateStore, cfg Config) (*Controller, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	if cfg.Now == nil {
		cfg.Now = clock.Now
	}
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	c := NewController(s, nil, cfg)
	t.Cleanup(c.Stop)
	return c, clock
}

func TestProcess_AddsNewCandidate(t *testing.T) {
	s := store.NewMemoryStore()
	c, _ := newTestController(t, s, Config{})
	ctx := context.Background()

	out := c.Process(ctx, profilePage(t, "jane-doe", "Jane Doe"))
	require.NoError(t, out.Err)
	assert.Equal(t, StatusAdded, out.Status)
	assert.Equal(t, "jane-doe", out.MemberID)
	require.NotNil(t, out.Profile)
	assert.Equal(t, "Jane Doe", out.Profile.FullName)
	assert.Equal(t, "jane-doe", c.CurrentMemberID())

	stored, err := s.Get(ctx, "jane-doe")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", stored.FullName)
	assert.Equal(t, types.DefaultStatus, stored.Status)
}

func TestProcess_SameIdentifierShortCircuits(t *testing.T) {
	s := &countingStore{CandidateStore: store.NewMemoryStore()}
	c, clock := newTestController(t, s, Config{})
	ctx := context.Background()
	page := profilePage(t, "jane-doe", "Jane Doe")

	require.Equal(t, StatusAdded, c.Process(ctx, page).Status)
	clock.Advance(2 * time.Second)

	out := c.Process(ctx, page)
	assert.Equal(t, StatusUnchanged, out.Status)
	assert.Equal(t, 1, s.exists)
}

func TestProcess_ExistingCandidate(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()
	page := profilePage(t, "jane-doe", "Jane Doe")
	seed, err := extraction.NewExtractor().Extract(page)
	require.NoError(t, err)
	require.NoError(t, s.Append(ctx, seed))
	processedBy := "priya"
	require.NoError(t, s.Update(ctx, "jane-doe", store.Fields{ProcessedBy: &processedBy}))

	c, _ := newTestController(t, s, Config{})
	out := c.Process(ctx, page)
	assert.Equal(t, StatusExisting, out.Status)
	assert.Equal(t, "priya", out.ProcessedBy)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestProcess_RateGate(t *testing.T) {
	c, clock := newTestController(t, store.NewMemoryStore(), Config{})
	ctx := context.Background()

	require.Equal(t, StatusAdded, c.Process(ctx, profilePage(t, "a", "Alice Able")).Status)

	clock.Advance(time.Second)
	assert.Equal(t, StatusThrottled, c.Process(ctx, profilePage(t, "b", "Bob Baker")).Status)

	clock.Advance(500 * time.Millisecond)
	assert.Equal(t, StatusAdded, c.Process(ctx, profilePage(t, "b", "Bob Baker")).Status)
}

func TestProcess_InFlightGuard(t *testing.T) {
	s := &blockingStore{CandidateStore: store.NewMemoryStore(), entered: make(chan struct{}), release: make(chan struct{})}
	c, clock := newTestController(t, s, Config{})
	ctx := context.Background()

	done := make(chan Outcome)
	go func() { done <- c.Process(ctx, profilePage(t, "a", "Alice Able")) }()
	<-s.entered

	clock.Advance(time.Minute)
	assert.Equal(t, StatusBusy, c.Process(ctx, profilePage(t, "b", "Bob Baker")).Status)

	close(s.release)
	assert.Equal(t, StatusAdded, (<-done).Status)
}

func TestProcess_NoMemberID(t *testing.T) {
	c, _ := newTestController(t, store.NewMemoryStore(), Config{})
	page, err := extraction.NewPage("https://www.linkedin.com/feed/", "<html><body></body></html>")
	require.NoError(t, err)

	out := c.Process(context.Background(), page)
	assert.Equal(t, StatusNoMemberID, out.Status)
	assert.Empty(t, c.CurrentMemberID())
}

func TestProcess_UnknownNameNotStored(t *testing.T) {
	s := store.NewMemoryStore()
	c, _ := newTestController(t, s, Config{})
	page, err := extraction.NewPage("https://www.linkedin.com/in/ghost/", "<html><body></body></html>")
	require.NoError(t, err)

	out := c.Process(context.Background(), page)
	assert.Equal(t, StatusIncomplete, out.Status)
	assert.Equal(t, types.UnknownCandidate, out.Profile.FullName)

	n, err := s.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestProcess_StoreFailure(t *testing.T) {
	boom := errors.New("connection refused")
	c, _ := newTestController(t, &failingStore{err: boom}, Config{})

	out := c.Process(context.Background(), profilePage(t, "jane-doe", "Jane Doe"))
	assert.Equal(t, StatusFailed, out.Status)
	assert.ErrorIs(t, out.Err, boom)
}

func TestRecheck_ClearsCurrentCandidate(t *testing.T) {
	s := store.NewMemoryStore()
	c, clock := newTestController(t, s, Config{})
	ctx := context.Background()
	page := profilePage(t, "jane-doe", "Jane Doe")

	require.Equal(t, StatusAdded, c.Process(ctx, page).Status)
	clock.Advance(2 * time.Second)

	assert.Equal(t, StatusExisting, c.Recheck(ctx, page).Status)
}

func TestSaveAndRemove(t *testing.T) {
	s := store.NewMemoryStore()
	c, clock := newTestController(t, s, Config{})
	ctx := context.Background()
	page := profilePage(t, "jane-doe", "Jane Doe")

	assert.ErrorIs(t, c.Save(ctx, "", store.Fields{}), extraction.ErrNoMemberID)

	require.Equal(t, StatusAdded, c.Process(ctx, page).Status)
	assert.ErrorIs(t, c.Save(ctx, "", store.Fields{}), ErrNothingToSave)

	notes, years := "Strong Go background", "3"
	require.NoError(t, c.Save(ctx, "", store.Fields{Notes: &notes, TotalYears: &years}))
	stored, err := s.Get(ctx, "jane-doe")
	require.NoError(t, err)
	assert.Equal(t, notes, stored.Notes)
	assert.Equal(t, "3", stored.TotalExperience)

	removed, err := c.Remove(ctx, page)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Empty(t, c.CurrentMemberID())

	clock.Advance(2 * time.Second)
	assert.Equal(t, StatusAdded, c.Process(ctx, page).Status)
}

func TestRemove_NotStored(t *testing.T) {
	c, _ := newTestController(t, store.NewMemoryStore(), Config{})

	removed, err := c.Remove(context.Background(), profilePage(t, "jane-doe", "Jane Doe"))
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestNavigate_DebouncesToLatestURL(t *testing.T) {
	outcomes := make(chan Outcome, 4)
	c, _ := newTestController(t, store.NewMemoryStore(), Config{
		Debounce:         20 * time.Millisecond,
		MinNavigationGap: time.Millisecond,
		Now:              time.Now,
		OnOutcome:        func(o Outcome) { outcomes <- o },
	})
	ctx := context.Background()

	var loads sync.Map
	loader := func(slug, name string) PageLoader {
		return func(context.Context) (*extraction.Page, error) {
			loads.Store(slug, true)
			return profilePage(t, slug, name), nil
		}
	}

	assert.True(t, c.Navigate(ctx, "https://www.linkedin.com/in/a/", loader("a", "Alice Able")))
	assert.True(t, c.Navigate(ctx, "https://www.linkedin.com/in/b/", loader("b", "Bob Baker")))
	assert.False(t, c.Navigate(ctx, "https://www.linkedin.com/in/b/", loader("b", "Bob Baker")))

	select {
	case out := <-outcomes:
		assert.Equal(t, StatusAdded, out.Status)
		assert.Equal(t, "b", out.MemberID)
	case <-time.After(2 * time.Second):
		t.Fatal("debounced pass never ran")
	}

	select {
	case out := <-outcomes:
		t.Fatalf("unexpected second pass: %+v", out)
	case <-time.After(100 * time.Millisecond):
	}
	_, loadedA := loads.Load("a")
	assert.False(t, loadedA)
}

func TestNavigate_ResetsCurrentCandidate(t *testing.T) {
	c, _ := newTestController(t, store.NewMemoryStore(), Config{Debounce: time.Hour})
	ctx := context.Background()
	require.Equal(t, StatusAdded, c.Process(ctx, profilePage(t, "jane-doe", "Jane Doe")).Status)

	c.Navigate(ctx, "https://www.linkedin.com/in/other/", func(context.Context) (*extraction.Page, error) {
		return nil, errors.New("not reached")
	})
	assert.Empty(t, c.CurrentMemberID())
}

func TestNavigate_EnforcesMinimumGap(t *testing.T) {
	fired := make(chan time.Time, 2)
	c, _ := newTestController(t, store.NewMemoryStore(), Config{
		Debounce:           10 * time.Millisecond,
		MinNavigationGap:   150 * time.Millisecond,
		MinProcessInterval: time.Nanosecond,
		Now:                time.Now,
		OnOutcome:          func(Outcome) { fired <- time.Now() },
	})
	ctx := context.Background()

	c.Navigate(ctx, "https://www.linkedin.com/in/a/", func(context.Context) (*extraction.Page, error) {
		return profilePage(t, "a", "Alice Able"), nil
	})
	first := <-fired

	c.Navigate(ctx, "https://www.linkedin.com/in/b/", func(context.Context) (*extraction.Page, error) {
		return profilePage(t, "b", "Bob Baker"), nil
	})
	select {
	case second := <-fired:
		assert.GreaterOrEqual(t, second.Sub(first), 150*time.Millisecond)
	case <-time.After(2 * time.Second):
		t.Fatal("second pass never ran")
	}
}

func TestNavigate_LoadFailure(t *testing.T) {
	outcomes := make(chan Outcome, 1)
	c, _ := newTestController(t, store.NewMemoryStore(), Config{
		Debounce:  time.Millisecond,
		Now:       time.Now,
		OnOutcome: func(o Outcome) { outcomes <- o },
	})
	boom := errors.New("timeout")

	c.Navigate(context.Background(), "https://www.linkedin.com/in/a/", func(context.Context) (*extraction.Page, error) {
		return nil, boom
	})
	out := <-outcomes
	assert.Equal(t, StatusFailed, out.Status)
	assert.ErrorIs(t, out.Err, boom)
}

func TestStop_CancelsPendingPass(t *testing.T) {
	outcomes := make(chan Outcome, 1)
	c, _ := newTestController(t, store.NewMemoryStore(), Config{
		Debounce:  20 * time.Millisecond,
		Now:       time.Now,
		OnOutcome: func(o Outcome) { outcomes <- o },
	})

	c.Navigate(context.Background(), "https://www.linkedin.com/in/a/", func(context.Context) (*extraction.Page, error) {
		return profilePage(t, "a", "Alice Able"), nil
	})
	c.Stop()

	select {
	case out := <-outcomes:
		t.Fatalf("pass ran after Stop: %+v", out)
	case <-time.After(100 * time.Millisecond):
	}
}

type countingStore struct {
	store.CandidateStore
	exists int
}

func (s *countingStore) Exists(ctx context.Context, id string) (store.Existence, error) {
	s.exists++
	return s.CandidateStore.Exists(ctx, id)
}

type blockingStore struct {
	store.CandidateStore
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (s *blockingStore) Exists(ctx context.Context, id string) (store.Existence, error) {
	s.once.Do(func() { close(s.entered) })
	<-s.release
	return s.CandidateStore.Exists(ctx, id)
}

type failingStore struct {
	store.CandidateStore
	err error
}

func (s *failingStore) Exists(context.Context, string) (store.Existence, error) {
	return store.Existence{}, s.err
}
