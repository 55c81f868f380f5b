// Package store defines CandidateStore, the tracking side's view of where
// candidates are kept, and its implementations: the REST API, a repository,
// a local workbook and a Google Sheets spreadsheet.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonathan/candidate-tracker/internal/types"
)

// ErrNotFound is returned by Update when the candidate is not stored.
var ErrNotFound = errors.New("candidate not found in store")

// Existence is the result of an existence check.
type Existence struct {
	Exists      bool
	ProcessedBy string
}

// Fields are the recruiter-editable values of a stored candidate. Nil fields
// are left unchanged.
type Fields struct {
	Company        *string
	Notes          *string
	ProcessedBy    *string
	YearsAtCurrent *string
	TotalYears     *string
}

// IsEmpty reports whether no field is set.
func (f Fields) IsEmpty() bool {
	return f.Company == nil && f.Notes == nil && f.ProcessedBy == nil &&
		f.YearsAtCurrent == nil && f.TotalYears == nil
}

// CandidateStore is a destination for extracted candidates.
type CandidateStore interface {
	Exists(ctx context.Context, memberID string) (Existence, error)
	Append(ctx context.Context, profile *types.CandidateProfile) error
	Update(ctx context.Context, memberID string, fields Fields) error
	// Delete reports whether a candidate was removed.
	Delete(ctx context.Context, memberID string) (bool, error)
	Count(ctx context.Context) (int, error)
}

var (
	_ CandidateStore = (*APIStore)(nil)
	_ CandidateStore = (*RepositoryStore)(nil)
	_ CandidateStore = (*WorkbookStore)(nil)
	_ CandidateStore = (*SheetsStore)(nil)
)

// Columns of the spreadsheet layout, A..O.
const (
	ColFullName = iota
	ColMemberID
	ColHeadline
	ColDesignation
	ColLocation
	ColCurrentTitle
	ColProfileURL
	ColNotes
	ColStatus
	ColAdded
	ColQualification
	ColPassout
	ColProcessedBy
	ColYearsAtCurrent
	ColTotalYears
	numColumns
)

// Header is the first row of a candidate sheet.
var Header = []string{
	"Full Name",
	"LinkedIn ID",
	"Headline",
	"Designation",
	"Location",
	"Current Title",
	"Profile URL",
	"Notes",
	"Status",
	"Added",
	"Qualification",
	"Passout",
	"Processed By",
	"Years at Current Company",
	"Total Years of Experience",
}

// ColumnName returns the spreadsheet letter of column index col.
func ColumnName(col int) string {
	return string(rune('A' + col))
}

// Row renders profile as a sheet row added on the given day.
func Row(p *types.CandidateProfile, added time.Time) []string {
	row := make([]string, numColumns)
	row[ColFullName] = p.FullName
	row[ColMemberID] = p.MemberID
	row[ColHeadline] = p.Headline
	row[ColDesignation] = p.Designation
	row[ColLocation] = p.Location
	row[ColCurrentTitle] = p.CurrentTitle
	row[ColProfileURL] = p.ProfileURL
	row[ColStatus] = types.DefaultStatus
	row[ColAdded] = added.Format(time.DateOnly)
	row[ColQualification] = p.Education.QualificationCode
	row[ColPassout] = p.Education.PassoutYear
	row[ColYearsAtCurrent] = p.Experience.CurrentRoleDuration
	row[ColTotalYears] = p.Experience.TotalExperience
	return row
}

// cellUpdates maps the set fields to their columns.
func cellUpdates(f Fields) map[int]string {
	updates := make(map[int]string)
	set := func(col int, v *string) {
		if v != nil {
			updates[col] = *v
		}
	}
	set(ColDesignation, f.Company)
	set(ColNotes, f.Notes)
	set(ColProcessedBy, f.ProcessedBy)
	set(ColYearsAtCurrent, f.YearsAtCurrent)
	set(ColTotalYears, f.TotalYears)
	return updates
}

// findRow returns the 0-based index of the data row whose member ID column
// equals memberID, skipping the header row, or -1. memberCol is the column
// of the member ID within rows.
func findRow(rows [][]string, memberCol int, memberID string) int {
	for i := 1; i < len(rows); i++ {
		if memberCol < len(rows[i]) && rows[i][memberCol] == memberID {
			return i
		}
	}
	return -1
}

// cell returns rows[i][col] or "" for short rows.
func cell(row []string, col int) string {
	if col < len(row) {
		return row[col]
	}
	return ""
}

// updateRequest rebuilds an upsert request for an existing candidate with
// fields applied.
func updateRequest(c *types.Candidate, f Fields) *types.UpsertCandidateRequest {
	req := &types.UpsertCandidateRequest{
		MemberID:    c.MemberID,
		FullName:    c.FullName,
		ProfileURL:  c.ProfileURL,
		Designation: f.Company,
		Notes:       f.Notes,
		ProcessedBy: f.ProcessedBy,
	}
	if f.YearsAtCurrent != nil || f.TotalYears != nil {
		req.Experience = &types.ExperienceUpdate{
			CurrentRoleDuration: f.YearsAtCurrent,
			TotalExperience:     f.TotalYears,
		}
	}
	return req
}

func wrap(op, memberID string, err error) error {
	return fmt.Errorf("failed to %s candidate %s: %w", op, memberID, err)
}
