package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/jonathan/candidate-tracker/internal/types"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS candidates (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	member_id TEXT UNIQUE NOT NULL,
	full_name TEXT NOT NULL,
	profile_url TEXT NOT NULL,
	headline TEXT,
	location TEXT,
	designation TEXT,
	current_title TEXT,
	industry TEXT,
	school TEXT,
	degree TEXT,
	qualification_code TEXT,
	passout_year TEXT,
	current_role_duration TEXT,
	total_experience TEXT,
	top_skills TEXT,
	connections_count TEXT,
	processed_by TEXT,
	notes TEXT,
	status TEXT DEFAULT 'NEW',
	extracted_at TIMESTAMP,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_candidates_created_at ON candidates(created_at);`

// SQLite stores candidates in a local SQLite file. Skills are kept as a JSON
// array.
type SQLite struct {
	conn *sql.DB
	now  func() time.Time
}

// OpenSQLite opens (creating if needed) the database at path and applies the
// schema.
func OpenSQLite(path string) (*SQLite, error) {
	conn, err := sql.Open("sqlite3", fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_timeout=5000", path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't support multiple writers
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(time.Hour)

	s := &SQLite{conn: conn, now: time.Now}
	if err := s.Migrate(context.Background()); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

// Migrate creates the candidates table if it does not exist.
func (s *SQLite) Migrate(ctx context.Context) error {
	if _, err := s.conn.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *SQLite) Close() error {
	return s.conn.Close()
}

// Ping verifies the database file is usable.
func (s *SQLite) Ping(ctx context.Context) error {
	return s.conn.PingContext(ctx)
}

var sqliteSelect = strings.NewReplacer("'{}'", "'[]'").Replace(candidateSelect)

var sqliteUpsertSQL = buildUpsertSQL(
	append(append([]string{}, insertColumns...), "created_at", "updated_at"),
	func(i int) string { return fmt.Sprintf("?%d", i) },
	"excluded.updated_at",
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteCandidate(row rowScanner) (*types.Candidate, error) {
	var c types.Candidate
	var skills string
	var extractedAt sql.NullTime
	err := row.Scan(
		&c.ID, &c.MemberID, &c.FullName, &c.ProfileURL,
		&c.Headline, &c.Location, &c.Designation,
		&c.CurrentTitle, &c.Industry, &c.School,
		&c.Degree, &c.QualificationCode, &c.PassoutYear,
		&c.CurrentRoleDuration, &c.TotalExperience,
		&skills, &c.ConnectionsCount,
		&c.ProcessedBy, &c.Notes, &c.Status,
		&extractedAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(skills), &c.TopSkills); err != nil {
		return nil, fmt.Errorf("failed to decode top_skills: %w", err)
	}
	if c.TopSkills == nil {
		c.TopSkills = []string{}
	}
	if extractedAt.Valid {
		t := extractedAt.Time
		c.ExtractedAt = &t
	}
	return &c, nil
}

// GetCandidate retrieves a candidate by member ID
func (s *SQLite) GetCandidate(ctx context.Context, memberID string) (*types.Candidate, error) {
	c, err := scanSQLiteCandidate(s.conn.QueryRowContext(ctx, sqliteSelect+` WHERE member_id = ?`, memberID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get candidate %s: %w", memberID, err)
	}
	return c, nil
}

// UpsertCandidate inserts or merges a candidate and returns the stored row
func (s *SQLite) UpsertCandidate(ctx context.Context, req *types.UpsertCandidateRequest) (*types.Candidate, error) {
	args := upsertArgs(req)
	if req.TopSkills != nil {
		encoded, err := json.Marshal(req.TopSkills)
		if err != nil {
			return nil, fmt.Errorf("failed to encode top_skills: %w", err)
		}
		args[14] = string(encoded)
	} else {
		args[14] = nil
	}
	if req.ExtractedAt != nil {
		args[19] = req.ExtractedAt.UTC()
	} else {
		args[19] = nil
	}

	now := s.now().UTC()
	args = append(args, now, now)

	if _, err := s.conn.ExecContext(ctx, sqliteUpsertSQL, args...); err != nil {
		return nil, fmt.Errorf("failed to upsert candidate %s: %w", req.MemberID, err)
	}
	return s.GetCandidate(ctx, req.MemberID)
}

// ListCandidates retrieves one page of candidates, newest first
func (s *SQLite) ListCandidates(ctx context.Context, page, limit int) ([]types.Candidate, int, error) {
	page, limit = NormalizePage(page, limit)

	total, err := s.CountCandidates(ctx)
	if err != nil {
		return nil, 0, err
	}

	rows, err := s.conn.QueryContext(ctx,
		sqliteSelect+` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		limit, offset(page, limit),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list candidates: %w", err)
	}
	defer rows.Close()

	candidates := []types.Candidate{}
	for rows.Next() {
		c, err := scanSQLiteCandidate(rows)
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
func (s *SQLite) DeleteCandidate(ctx context.Context, memberID string) (*types.Candidate, error) {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	c, err := scanSQLiteCandidate(tx.QueryRowContext(ctx, sqliteSelect+` WHERE member_id = ?`, memberID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get candidate %s: %w", memberID, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM candidates WHERE member_id = ?`, memberID); err != nil {
		return nil, fmt.Errorf("failed to delete candidate %s: %w", memberID, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit delete: %w", err)
	}
	return c, nil
}

// CountCandidates returns the number of stored candidates
func (s *SQLite) CountCandidates(ctx context.Context) (int, error) {
	var n int
	if err := s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM candidates`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count candidates: %w", err)
	}
	return n, nil
}
