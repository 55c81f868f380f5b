// Package tracker drives extraction for the page a recruiter is viewing: it
// gates how often profiles are processed, debounces navigation and records
// new candidates in a CandidateStore.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonathan/candidate-tracker/internal/extraction"
	"github.com/jonathan/candidate-tracker/internal/store"
	"github.com/jonathan/candidate-tracker/internal/types"
)

// Defaults for Config.
const (
	DefaultMinProcessInterval = 1500 * time.Millisecond
	DefaultDebounce           = 1500 * time.Millisecond
	DefaultMinNavigationGap   = 3 * time.Second
)

// ErrNothingToSave is returned by Save when no field is set.
var ErrNothingToSave = errors.New("no fields to save")

// Status classifies the result of a processing pass.
type Status string

const (
	// StatusAdded means a new candidate was appended to the store.
	StatusAdded Status = "added"
	// StatusExisting means the candidate was already tracked.
	StatusExisting Status = "existing"
	// StatusUnchanged means the page shows the current candidate.
	StatusUnchanged Status = "unchanged"
	// StatusNoMemberID means no identifier resolved from the page.
	StatusNoMemberID Status = "no_member_id"
	// StatusIncomplete means the profile had no name and was not stored.
	StatusIncomplete Status = "incomplete"
	// StatusBusy means another pass was in flight.
	StatusBusy Status = "busy"
	// StatusThrottled means the pass came too soon after the previous one.
	StatusThrottled Status = "throttled"
	// StatusStale means the recruiter navigated away during the pass.
	StatusStale Status = "stale"
	// StatusFailed means the store or page load failed.
	StatusFailed Status = "failed"
)

// Outcome is the result of one processing pass.
type Outcome struct {
	Status      Status
	MemberID    string
	Profile     *types.CandidateProfile
	ProcessedBy string
	Err         error
}

// PageLoader captures the page after a navigation settles.
type PageLoader func(ctx context.Context) (*extraction.Page, error)

// Config configures a Controller.
type Config struct {
	MinProcessInterval time.Duration
	Debounce           time.Duration
	MinNavigationGap   time.Duration
	// OnOutcome receives the result of debounced passes started by Navigate.
	OnOutcome func(Outcome)
	Logger    *slog.Logger
	Now       func() time.Time
}

// Controller owns the state of one tracking session.
type Controller struct {
	store     store.CandidateStore
	extractor *extraction.Extractor
	cfg       Config
	logger    *slog.Logger
	now       func() time.Time

	mu             sync.Mutex
	currentID      string
	inFlight       bool
	lastProcess    time.Time
	lastNavigation time.Time
	lastURL        string
	timer          *time.Timer
	generation     uint64
}

// NewController creates a controller writing to s. Zero durations in cfg take
// their defaults.
func NewController(s store.CandidateStore, extractor *extraction.Extractor, cfg Config) *Controller {
	if cfg.MinProcessInterval == 0 {
		cfg.MinProcessInterval = DefaultMinProcessInterval
	}
	if cfg.Debounce == 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.MinNavigationGap == 0 {
		cfg.MinNavigationGap = DefaultMinNavigationGap
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if extractor == nil {
		extractor = extraction.NewExtractor(extraction.WithClock(cfg.Now), extraction.WithLogger(cfg.Logger))
	}
	return &Controller{
		store:     s,
		extractor: extractor,
		cfg:       cfg,
		logger:    cfg.Logger,
		now:       cfg.Now,
	}
}

// CurrentMemberID returns the candidate the controller last processed.
func (c *Controller) CurrentMemberID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentID
}

// Process runs one pass over page: it resolves the member ID, checks the
// store and appends the profile when the candidate is new.
func (c *Controller) Process(ctx context.Context, page *extraction.Page) Outcome {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		c.logger.Debug("processing already in progress, skipping")
		return Outcome{Status: StatusBusy}
	}
	now := c.now()
	if !c.lastProcess.IsZero() && now.Sub(c.lastProcess) < c.cfg.MinProcessInterval {
		c.mu.Unlock()
		c.logger.Debug("processing called too frequently, skipping")
		return Outcome{Status: StatusThrottled}
	}
	c.lastProcess = now
	c.inFlight = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.inFlight = false
		c.mu.Unlock()
	}()

	memberID, ok := extraction.ResolveMemberID(page)
	if !ok {
		c.logger.Debug("no member id found, skipping")
		return Outcome{Status: StatusNoMemberID}
	}

	c.mu.Lock()
	if memberID == c.currentID {
		c.mu.Unlock()
		return Outcome{Status: StatusUnchanged, MemberID: memberID}
	}
	c.currentID = memberID
	c.mu.Unlock()

	c.logger.Info("processing candidate", "member_id", memberID)
	existence, err := c.store.Exists(ctx, memberID)
	if err != nil {
		c.logger.Error("existence check failed", "member_id", memberID, "error", err)
		return Outcome{Status: StatusFailed, MemberID: memberID, Err: err}
	}
	if c.CurrentMemberID() != memberID {
		return Outcome{Status: StatusStale, MemberID: memberID}
	}

	profile, err := c.extractor.BuildWithID(memberID, page)
	if err != nil {
		return Outcome{Status: StatusFailed, MemberID: memberID, Err: err}
	}
	if profile.FullName == types.UnknownCandidate {
		c.logger.Warn("could not extract profile name", "member_id", memberID)
		return Outcome{Status: StatusIncomplete, MemberID: memberID, Profile: profile}
	}

	if existence.Exists {
		return Outcome{Status: StatusExisting, MemberID: memberID, Profile: profile, ProcessedBy: existence.ProcessedBy}
	}

	if err := c.store.Append(ctx, profile); err != nil {
		c.logger.Error("failed to add candidate", "member_id", memberID, "error", err)
		return Outcome{Status: StatusFailed, MemberID: memberID, Profile: profile, Err: err}
	}
	c.logger.Info("candidate added", "member_id", memberID, "name", profile.FullName)
	return Outcome{Status: StatusAdded, MemberID: memberID, Profile: profile}
}

// Navigate records a URL change and schedules a debounced pass over the page
// returned by load. It reports whether a pass was scheduled; revisiting the
// current URL schedules nothing.
func (c *Controller) Navigate(ctx context.Context, url string, load PageLoader) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if url == c.lastURL {
		return false
	}
	c.lastURL = url
	c.currentID = ""

	if c.timer != nil {
		c.timer.Stop()
	}
	c.generation++
	gen := c.generation

	delay := c.cfg.Debounce
	if !c.lastNavigation.IsZero() {
		if remaining := c.cfg.MinNavigationGap - c.now().Sub(c.lastNavigation); remaining > 0 {
			delay += remaining
		}
	}

	c.logger.Debug("url changed, scheduling processing", "url", url, "delay", delay)
	c.timer = time.AfterFunc(delay, func() { c.fire(ctx, gen, load) })
	return true
}

func (c *Controller) fire(ctx context.Context, gen uint64, load PageLoader) {
	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return
	}
	c.lastNavigation = c.now()
	c.timer = nil
	c.mu.Unlock()

	if ctx.Err() != nil {
		return
	}

	var out Outcome
	page, err := load(ctx)
	if err != nil {
		c.logger.Error("failed to load page", "error", err)
		out = Outcome{Status: StatusFailed, Err: err}
	} else {
		out = c.Process(ctx, page)
	}
	if c.cfg.OnOutcome != nil {
		c.cfg.OnOutcome(out)
	}
}

// Recheck forgets the current candidate and processes page again.
func (c *Controller) Recheck(ctx context.Context, page *extraction.Page) Outcome {
	c.mu.Lock()
	c.currentID = ""
	c.mu.Unlock()
	return c.Process(ctx, page)
}

// Save writes the recruiter's edits for memberID, or for the current
// candidate when memberID is empty.
func (c *Controller) Save(ctx context.Context, memberID string, fields store.Fields) error {
	if memberID == "" {
		memberID = c.CurrentMemberID()
	}
	if memberID == "" {
		return extraction.ErrNoMemberID
	}
	if fields.IsEmpty() {
		return ErrNothingToSave
	}
	if err := c.store.Update(ctx, memberID, fields); err != nil {
		return fmt.Errorf("failed to save candidate %s: %w", memberID, err)
	}
	c.logger.Info("candidate updated", "member_id", memberID)
	return nil
}

// Remove deletes the candidate shown on page, or the current candidate when
// the page has no identifier, and resets state so it can be added again.
func (c *Controller) Remove(ctx context.Context, page *extraction.Page) (bool, error) {
	memberID, ok := extraction.ResolveMemberID(page)
	if !ok {
		memberID = c.CurrentMemberID()
	}
	if memberID == "" {
		return false, extraction.ErrNoMemberID
	}

	removed, err := c.store.Delete(ctx, memberID)
	if err != nil {
		return false, fmt.Errorf("failed to delete candidate %s: %w", memberID, err)
	}
	if removed {
		c.mu.Lock()
		if c.currentID == memberID {
			c.currentID = ""
		}
		c.mu.Unlock()
		c.logger.Info("candidate deleted", "member_id", memberID)
	}
	return removed, nil
}

// Stop cancels a pending debounced pass.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
