package store

import (
	"context"
	"errors"

	"github.com/jonathan/candidate-tracker/internal/db"
	"github.com/jonathan/candidate-tracker/internal/types"
)

// RepositoryStore writes straight to a db.Repository, skipping the REST API.
type RepositoryStore struct {
	repo db.Repository
}

// NewRepositoryStore wraps repo.
func NewRepositoryStore(repo db.Repository) *RepositoryStore {
	return &RepositoryStore{repo: repo}
}

// NewMemoryStore returns a store backed by an in-memory repository.
func NewMemoryStore() *RepositoryStore {
	return NewRepositoryStore(db.NewMemory())
}

func (s *RepositoryStore) Exists(ctx context.Context, memberID string) (Existence, error) {
	c, err := s.repo.GetCandidate(ctx, memberID)
	if errors.Is(err, db.ErrNotFound) {
		return Existence{}, nil
	}
	if err != nil {
		return Existence{}, wrap("check", memberID, err)
	}
	return Existence{Exists: true, ProcessedBy: c.ProcessedBy}, nil
}

func (s *RepositoryStore) Append(ctx context.Context, profile *types.CandidateProfile) error {
	if _, err := s.repo.UpsertCandidate(ctx, types.NewUpsertRequest(profile)); err != nil {
		return wrap("save", profile.MemberID, err)
	}
	return nil
}

func (s *RepositoryStore) Update(ctx context.Context, memberID string, fields Fields) error {
	c, err := s.repo.GetCandidate(ctx, memberID)
	if errors.Is(err, db.ErrNotFound) {
		return wrap("update", memberID, ErrNotFound)
	}
	if err != nil {
		return wrap("update", memberID, err)
	}
	if _, err := s.repo.UpsertCandidate(ctx, updateRequest(c, fields)); err != nil {
		return wrap("update", memberID, err)
	}
	return nil
}

func (s *RepositoryStore) Delete(ctx context.Context, memberID string) (bool, error) {
	_, err := s.repo.DeleteCandidate(ctx, memberID)
	if errors.Is(err, db.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, wrap("delete", memberID, err)
	}
	return true, nil
}

func (s *RepositoryStore) Count(ctx context.Context) (int, error) {
	return s.repo.CountCandidates(ctx)
}

// Get returns the stored candidate, for callers that need the full row.
func (s *RepositoryStore) Get(ctx context.Context, memberID string) (*types.Candidate, error) {
	return s.repo.GetCandidate(ctx, memberID)
}
