package db

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/candidate-tracker/internal/types"
)

func TestNormalizePage(t *testing.T) {
	tests := []struct {
		page, limit         int
		wantPage, wantLimit int
	}{
		{0, 0, 1, 50},
		{-3, 10, 1, 10},
		{2, 500, 2, 100},
		{4, 100, 4, 100},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d/%d", tt.page, tt.limit), func(t *testing.T) {
			page, limit := NormalizePage(tt.page, tt.limit)
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantLimit, limit)
		})
	}
}

func TestUpsertSQL(t *testing.T) {
	assert.Contains(t, upsertCandidateSQL, "ON CONFLICT (member_id) DO UPDATE SET")
	assert.Contains(t, upsertCandidateSQL, "headline = COALESCE(EXCLUDED.headline, candidates.headline)")
	assert.Contains(t, upsertCandidateSQL, "full_name = EXCLUDED.full_name")
	assert.Contains(t, upsertCandidateSQL, "updated_at = NOW()")
	assert.Contains(t, upsertCandidateSQL, "$20)")
	assert.NotContains(t, upsertCandidateSQL, "$21")

	assert.Contains(t, upsertCandidateSQL, "COALESCE($19, 'NEW')")
	assert.Contains(t, upsertCandidateSQL, "status = COALESCE($19, candidates.status)")

	assert.Equal(t, 23, strings.Count(sqliteUpsertSQL, "?"))
	assert.Contains(t, sqliteUpsertSQL, "?22)")
	assert.Contains(t, sqliteUpsertSQL, "COALESCE(?19, 'NEW')")
	assert.Contains(t, sqliteUpsertSQL, "updated_at = excluded.updated_at")
}

func TestUpsertArgs_Order(t *testing.T) {
	req := newRequest("m1", "Jane")
	req.Education = &types.EducationUpdate{PassoutYear: strPtr("2019")}
	args := upsertArgs(req)
	require.Len(t, args, len(insertColumns))
	assert.Equal(t, "m1", args[0])
	assert.Equal(t, strPtr("2019"), args[11])
	assert.Equal(t, []string{"Go"}, args[14])
	assert.Nil(t, args[8].(*string))
}

func strPtr(s string) *string { return &s }

func newRequest(memberID, name string) *types.UpsertCandidateRequest {
	return &types.UpsertCandidateRequest{
		MemberID:   memberID,
		FullName:   name,
		ProfileURL: "https://www.linkedin.com/in/" + memberID + "/",
		Headline:   strPtr("Engineer"),
		TopSkills:  []string{"Go"},
	}
}

// steppingClock advances one second per call so rows have distinct
// creation times.
func steppingClock() func() time.Time {
	t := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

// runRepositoryTests exercises the behavior every Repository must share.
func runRepositoryTests(t *testing.T, open func(t *testing.T) Repository) {
	ctx := context.Background()

	t.Run("get unknown", func(t *testing.T) {
		repo := open(t)
		_, err := repo.GetCandidate(ctx, "nobody")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("insert defaults", func(t *testing.T) {
		repo := open(t)
		c, err := repo.UpsertCandidate(ctx, &types.UpsertCandidateRequest{
			MemberID:   "m1",
			FullName:   "Jane",
			ProfileURL: "https://www.linkedin.com/in/m1/",
		})
		require.NoError(t, err)
		assert.Equal(t, types.DefaultStatus, c.Status)
		assert.Equal(t, []string{}, c.TopSkills)
		assert.Equal(t, "", c.Headline)
		assert.Nil(t, c.ExtractedAt)
		assert.NotZero(t, c.ID)
	})

	t.Run("second upsert keeps second name and unset fields", func(t *testing.T) {
		repo := open(t)
		first := newRequest("m1", "Jane")
		first.Notes = strPtr("call back")
		_, err := repo.UpsertCandidate(ctx, first)
		require.NoError(t, err)

		second := &types.UpsertCandidateRequest{
			MemberID:   "m1",
			FullName:   "Jane Doe",
			ProfileURL: "https://www.linkedin.com/in/m1/",
			Status:     strPtr("CONTACTED"),
		}
		_, err = repo.UpsertCandidate(ctx, second)
		require.NoError(t, err)

		got, err := repo.GetCandidate(ctx, "m1")
		require.NoError(t, err)
		assert.Equal(t, "Jane Doe", got.FullName)
		assert.Equal(t, "Engineer", got.Headline)
		assert.Equal(t, "call back", got.Notes)
		assert.Equal(t, "CONTACTED", got.Status)
		assert.Equal(t, []string{"Go"}, got.TopSkills)

		n, err := repo.CountCandidates(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("empty string overwrites", func(t *testing.T) {
		repo := open(t)
		_, err := repo.UpsertCandidate(ctx, newRequest("m1", "Jane"))
		require.NoError(t, err)
		req := newRequest("m1", "Jane")
		req.Headline = strPtr("")
		got, err := repo.UpsertCandidate(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, "", got.Headline)
	})

	t.Run("list newest first with pagination", func(t *testing.T) {
		repo := open(t)
		for i := 1; i <= 5; i++ {
			_, err := repo.UpsertCandidate(ctx, newRequest(fmt.Sprintf("m%d", i), "C"))
			require.NoError(t, err)
		}

		page, total, err := repo.ListCandidates(ctx, 1, 2)
		require.NoError(t, err)
		assert.Equal(t, 5, total)
		require.Len(t, page, 2)
		assert.Equal(t, "m5", page[0].MemberID)
		assert.Equal(t, "m4", page[1].MemberID)

		page, _, err = repo.ListCandidates(ctx, 3, 2)
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, "m1", page[0].MemberID)

		page, total, err = repo.ListCandidates(ctx, 9, 2)
		require.NoError(t, err)
		assert.Equal(t, 5, total)
		assert.Empty(t, page)
		assert.NotNil(t, page)
	})

	t.Run("delete", func(t *testing.T) {
		repo := open(t)
		_, err := repo.UpsertCandidate(ctx, newRequest("m1", "Jane"))
		require.NoError(t, err)

		deleted, err := repo.DeleteCandidate(ctx, "m1")
		require.NoError(t, err)
		assert.Equal(t, "Jane", deleted.FullName)

		_, err = repo.DeleteCandidate(ctx, "m1")
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = repo.GetCandidate(ctx, "m1")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("extracted at round trips", func(t *testing.T) {
		repo := open(t)
		at := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
		req := newRequest("m1", "Jane")
		req.ExtractedAt = &at
		_, err := repo.UpsertCandidate(ctx, req)
		require.NoError(t, err)

		got, err := repo.GetCandidate(ctx, "m1")
		require.NoError(t, err)
		require.NotNil(t, got.ExtractedAt)
		assert.True(t, at.Equal(*got.ExtractedAt))
	})
}

func TestMemoryRepository(t *testing.T) {
	runRepositoryTests(t, func(t *testing.T) Repository {
		return NewMemory().WithClock(steppingClock())
	})
}

func TestMemory_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory()
	c, err := repo.UpsertCandidate(ctx, newRequest("m1", "Jane"))
	require.NoError(t, err)
	c.TopSkills[0] = "mutated"
	c.FullName = "mutated"

	got, err := repo.GetCandidate(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "Jane", got.FullName)
	assert.Equal(t, []string{"Go"}, got.TopSkills)
}

func TestOpen_Memory(t *testing.T) {
	repo, err := Open(context.Background(), "memory://")
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, repo)
	assert.NoError(t, repo.Ping(context.Background()))
}
