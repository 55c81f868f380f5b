package db

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jonathan/candidate-tracker/internal/types"
)

// Memory is an in-process Repository used by tests and the memory:// URL.
type Memory struct {
	mu     sync.RWMutex
	rows   map[string]*types.Candidate
	nextID int64
	now    func() time.Time
}

// NewMemory creates an empty in-memory repository.
func NewMemory() *Memory {
	return &Memory{
		rows: make(map[string]*types.Candidate),
		now:  time.Now,
	}
}

// WithClock replaces the clock used for created_at and updated_at.
func (m *Memory) WithClock(now func() time.Time) *Memory {
	m.now = now
	return m
}

func (m *Memory) GetCandidate(_ context.Context, memberID string) (*types.Candidate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.rows[memberID]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(c), nil
}

func (m *Memory) UpsertCandidate(_ context.Context, req *types.UpsertCandidateRequest) (*types.Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now().UTC()
	c, ok := m.rows[req.MemberID]
	if !ok {
		m.nextID++
		c = &types.Candidate{ID: m.nextID, CreatedAt: now}
		m.rows[req.MemberID] = c
	}
	c.Apply(req)
	c.UpdatedAt = now
	return clone(c), nil
}

func (m *Memory) ListCandidates(_ context.Context, page, limit int) ([]types.Candidate, int, error) {
	page, limit = NormalizePage(page, limit)

	m.mu.RLock()
	all := make([]types.Candidate, 0, len(m.rows))
	for _, c := range m.rows {
		all = append(all, *clone(c))
	}
	m.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})

	start := offset(page, limit)
	if start >= len(all) {
		return []types.Candidate{}, len(all), nil
	}
	end := min(start+limit, len(all))
	return all[start:end], len(all), nil
}

func (m *Memory) DeleteCandidate(_ context.Context, memberID string) (*types.Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.rows[memberID]
	if !ok {
		return nil, ErrNotFound
	}
	delete(m.rows, memberID)
	return c, nil
}

func (m *Memory) CountCandidates(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rows), nil
}

func (m *Memory) Migrate(context.Context) error { return nil }

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) Close() error { return nil }

func clone(c *types.Candidate) *types.Candidate {
	cp := *c
	cp.TopSkills = append([]string{}, c.TopSkills...)
	if c.ExtractedAt != nil {
		t := *c.ExtractedAt
		cp.ExtractedAt = &t
	}
	return &cp
}
