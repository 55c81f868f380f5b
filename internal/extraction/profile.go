package extraction

import (
	"log/slog"
	"time"

	"github.com/jonathan/candidate-tracker/internal/types"
)

// Extractor builds CandidateProfiles from page snapshots.
type Extractor struct {
	now    func() time.Time
	logger *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithClock sets the clock used for ExtractedAt.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) {
		e.now = now
	}
}

// WithLogger sets the logger used for extraction diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		e.logger = logger
	}
}

// NewExtractor creates an Extractor.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract resolves the member ID of page and builds its profile. It returns
// ErrNoMemberID, and no profile, when the page has no identifier.
func (e *Extractor) Extract(page *Page) (*types.CandidateProfile, error) {
	id, ok := ResolveMemberID(page)
	if !ok {
		return nil, ErrNoMemberID
	}
	return e.BuildWithID(id, page)
}

// BuildWithID builds the profile of page for an already resolved member ID.
func (e *Extractor) BuildWithID(memberID string, page *Page) (*types.CandidateProfile, error) {
	if memberID == "" || page == nil {
		return nil, ErrNoMemberID
	}
	root := page.Root
	if root == nil {
		root = emptyRoot()
	}

	profile := &types.CandidateProfile{
		MemberID:    memberID,
		ProfileURL:  CanonicalProfileURL(page.URL),
		ExtractedAt: e.now().UTC(),
	}
	profile.FullName = e.field("full_name", func() string { return Name(root) })
	if profile.FullName == "" {
		profile.FullName = types.UnknownCandidate
	}
	profile.Headline = e.field("headline", func() string { return Headline(root) })
	profile.Location = e.field("location", func() string { return Location(root) })
	profile.Industry = e.field("industry", func() string { return Industry(root) })
	profile.ConnectionsCount = e.field("connections_count", func() string { return Connections(root) })

	var exp ExperienceSummary
	e.guard("experience", func() {
		exp = LatestExperience(&Page{URL: page.URL, Root: root})
	})
	profile.CurrentTitle = exp.Title
	profile.Experience = types.Experience{
		CurrentRoleDuration: exp.CurrentRoleDuration,
		TotalExperience:     exp.TotalExperience,
	}
	profile.Designation = exp.Company
	if profile.Designation == "" {
		profile.Designation = e.field("designation", func() string { return TopCardCompany(root) })
	}

	e.guard("education", func() {
		profile.Education = LatestEducation(root)
	})

	profile.TopSkills = []string{}
	e.guard("top_skills", func() {
		profile.TopSkills = Skills(root)
	})

	e.logger.Debug("extracted profile",
		"member_id", profile.MemberID,
		"full_name", profile.FullName,
		"designation", profile.Designation,
		"total_experience", profile.Experience.TotalExperience)
	return profile, nil
}

// field runs one string extractor, degrading to "" if it panics.
func (e *Extractor) field(name string, fn func() string) (value string) {
	e.guard(name, func() {
		value = fn()
	})
	return value
}

func (e *Extractor) guard(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("field extractor failed", "field", name, "panic", r)
		}
	}()
	fn()
}
