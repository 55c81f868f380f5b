package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jonathan/candidate-tracker/internal/types"
)

const candidateSelect = `SELECT id, member_id, full_name, profile_url,
	COALESCE(headline, ''), COALESCE(location, ''), COALESCE(designation, ''),
	COALESCE(current_title, ''), COALESCE(industry, ''), COALESCE(school, ''),
	COALESCE(degree, ''), COALESCE(qualification_code, ''), COALESCE(passout_year, ''),
	COALESCE(current_role_duration, ''), COALESCE(total_experience, ''),
	COALESCE(top_skills, '{}'), COALESCE(connections_count, ''),
	COALESCE(processed_by, ''), COALESCE(notes, ''), COALESCE(status, 'NEW'),
	extracted_at, created_at, updated_at
	FROM candidates`

// upsertCandidateSQL keeps stored values for columns the request leaves NULL.
var upsertCandidateSQL = buildUpsertSQL(insertColumns, func(i int) string { return fmt.Sprintf("$%d", i) }, "NOW()")

// buildUpsertSQL renders the candidate upsert. placeholder must name its
// parameter by position because status is referenced twice: a new row
// defaults it to NEW, an existing row keeps its own.
func buildUpsertSQL(columns []string, placeholder func(int) string, touch string) string {
	params := make([]string, len(columns))
	statusParam := ""
	for i, col := range columns {
		params[i] = placeholder(i + 1)
		if col == "status" {
			statusParam = params[i]
			params[i] = fmt.Sprintf("COALESCE(%s, '%s')", statusParam, types.DefaultStatus)
		}
	}
	sets := make([]string, 0, len(mergedColumns)+3)
	sets = append(sets,
		"full_name = EXCLUDED.full_name",
		"profile_url = EXCLUDED.profile_url",
	)
	for _, col := range mergedColumns {
		if col == "status" {
			sets = append(sets, fmt.Sprintf("status = COALESCE(%s, candidates.status)", statusParam))
			continue
		}
		sets = append(sets, fmt.Sprintf("%s = COALESCE(EXCLUDED.%s, candidates.%s)", col, col, col))
	}
	sets = append(sets, "updated_at = "+touch)
	return fmt.Sprintf(`INSERT INTO candidates (%s) VALUES (%s)
		ON CONFLICT (member_id) DO UPDATE SET %s`,
		strings.Join(columns, ", "),
		strings.Join(params, ", "),
		strings.Join(sets, ", "))
}

func scanCandidate(row pgx.Row) (*types.Candidate, error) {
	var c types.Candidate
	err := row.Scan(
		&c.ID, &c.MemberID, &c.FullName, &c.ProfileURL,
		&c.Headline, &c.Location, &c.Designation,
		&c.CurrentTitle, &c.Industry, &c.School,
		&c.Degree, &c.QualificationCode, &c.PassoutYear,
		&c.CurrentRoleDuration, &c.TotalExperience,
		&c.TopSkills, &c.ConnectionsCount,
		&c.ProcessedBy, &c.Notes, &c.Status,
		&c.ExtractedAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetCandidate retrieves a candidate by member ID
func (db *DB) GetCandidate(ctx context.Context, memberID string) (*types.Candidate, error) {
	c, err := scanCandidate(db.pool.QueryRow(ctx, candidateSelect+` WHERE member_id = $1`, memberID))
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get candidate %s: %w", memberID, err)
	}
	return c, nil
}

// UpsertCandidate inserts or merges a candidate and returns the stored row
func (db *DB) UpsertCandidate(ctx context.Context, req *types.UpsertCandidateRequest) (*types.Candidate, error) {
	c, err := scanCandidate(db.pool.QueryRow(ctx,
		`WITH upserted AS (`+upsertCandidateSQL+` RETURNING *) `+
			strings.Replace(candidateSelect, "FROM candidates", "FROM upserted", 1),
		upsertArgs(req)...,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert candidate %s: %w", req.MemberID, err)
	}
	return c, nil
}

// ListCandidates retrieves one page of candidates, newest first
func (db *DB) ListCandidates(ctx context.Context, page, limit int) ([]types.Candidate, int, error) {
	page, limit = NormalizePage(page, limit)

	total, err := db.CountCandidates(ctx)
	if err != nil {
		return nil, 0, err
	}

	rows, err := db.pool.Query(ctx,
		candidateSelect+` ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`,
		limit, offset(page, limit),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list candidates: %w", err)
	}
	defer rows.Close()

	candidates := []types.Candidate{}
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan candidate: %w", err)
		}
		candidates = append(candidates, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate candidates: %w", err)
	}
	return candidates, total, nil
}

// DeleteCandidate removes a candidate and returns the deleted row
func (db *DB) DeleteCandidate(ctx context.Context, memberID string) (*types.Candidate, error) {
	c, err := scanCandidate(db.pool.QueryRow(ctx,
		`WITH deleted AS (DELETE FROM candidates WHERE member_id = $1 RETURNING *) `+
			strings.Replace(candidateSelect, "FROM candidates", "FROM deleted", 1),
		memberID,
	))
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to delete candidate %s: %w", memberID, err)
	}
	return c, nil
}

// CountCandidates returns the number of stored candidates
func (db *DB) CountCandidates(ctx context.Context) (int, error) {
	var n int
	if err := db.pool.QueryRow(ctx, `SELECT COUNT(*) FROM candidates`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count candidates: %w", err)
	}
	return n, nil
}
