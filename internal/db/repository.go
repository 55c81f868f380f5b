package db

import (
	"context"
	"errors"

	"github.com/jonathan/candidate-tracker/internal/types"
)

// ErrNotFound is returned when no candidate has the requested member ID.
var ErrNotFound = errors.New("candidate not found")

// Pagination bounds for ListCandidates.
const (
	DefaultPageLimit = 50
	MaxPageLimit     = 100
)

// Repository persists candidates keyed by member ID.
type Repository interface {
	// GetCandidate returns ErrNotFound when memberID is unknown.
	GetCandidate(ctx context.Context, memberID string) (*types.Candidate, error)
	// UpsertCandidate inserts a candidate or merges the request into the
	// stored row, keeping stored values for unset optional fields.
	UpsertCandidate(ctx context.Context, req *types.UpsertCandidateRequest) (*types.Candidate, error)
	// ListCandidates returns one page of candidates, newest first, and the
	// total row count.
	ListCandidates(ctx context.Context, page, limit int) ([]types.Candidate, int, error)
	// DeleteCandidate removes and returns the candidate, or ErrNotFound.
	DeleteCandidate(ctx context.Context, memberID string) (*types.Candidate, error)
	CountCandidates(ctx context.Context) (int, error)
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

var (
	_ Repository = (*DB)(nil)
	_ Repository = (*SQLite)(nil)
	_ Repository = (*Memory)(nil)
)

// NormalizePage clamps page to at least 1 and limit to [1, MaxPageLimit],
// defaulting limit to DefaultPageLimit.
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return page, limit
}

// offset is the number of rows before page.
func offset(page, limit int) int {
	return (page - 1) * limit
}

// upsertArgs flattens req in the column order of insertColumns. Unset
// optional fields become nil so the store keeps the existing value.
func upsertArgs(req *types.UpsertCandidateRequest) []any {
	var school, degree, qualification, passout *string
	if e := req.Education; e != nil {
		school, degree, qualification, passout = e.School, e.Degree, e.QualificationCode, e.PassoutYear
	}
	var roleDuration, totalExperience *string
	if x := req.Experience; x != nil {
		roleDuration, totalExperience = x.CurrentRoleDuration, x.TotalExperience
	}
	return []any{
		req.MemberID,
		req.FullName,
		req.ProfileURL,
		req.Headline,
		req.Location,
		req.Designation,
		req.CurrentTitle,
		req.Industry,
		school,
		degree,
		qualification,
		passout,
		roleDuration,
		totalExperience,
		req.TopSkills,
		req.ConnectionsCount,
		req.ProcessedBy,
		req.Notes,
		req.Status,
		req.ExtractedAt,
	}
}

// insertColumns matches the order of upsertArgs.
var insertColumns = []string{
	"member_id",
	"full_name",
	"profile_url",
	"headline",
	"location",
	"designation",
	"current_title",
	"industry",
	"school",
	"degree",
	"qualification_code",
	"passout_year",
	"current_role_duration",
	"total_experience",
	"top_skills",
	"connections_count",
	"processed_by",
	"notes",
	"status",
	"extracted_at",
}

// mergedColumns are overwritten only when the request sets them.
var mergedColumns = insertColumns[3:]
