package query

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/finzen-app/finzen-engine/internal/domain/gamification"
	"github.com/finzen-app/finzen-engine/internal/domain/shared"
	"github.com/finzen-app/finzen-engine/pkg/logger"
)

type stubProfileRepo struct {
	profile *gamification.Profile
	top     []gamification.LeaderboardEntry
	topErr  error
	limitIn int
}

func (r *stubProfileRepo) GetOrCreate(ctx context.Context, userID shared.UserID) (*gamification.Profile, error) {
	if r.profile != nil {
		return r.profile, nil
	}
	return gamification.NewProfile(userID), nil
}

func (r *stubProfileRepo) Save(ctx context.Context, profile *gamification.Profile) error {
	return nil
}

func (r *stubProfileRepo) Top(ctx context.Context, limit int) ([]gamification.LeaderboardEntry, error) {
	r.limitIn = limit
	return r.top, r.topErr
}

type stubLeaderboardCache struct {
	top    []gamification.LeaderboardEntry
	topErr error
}

func (c *stubLeaderboardCache) GetTop(ctx context.Context, limit int) ([]gamification.LeaderboardEntry, error) {
	return c.top, c.topErr
}

func (c *stubLeaderboardCache) Update(ctx context.Context, entry gamification.LeaderboardEntry) error {
	return nil
}

func (c *stubLeaderboardCache) Invalidate(ctx context.Context) error {
	return nil
}

func discardLogger() *logger.Logger {
	return logger.New(logger.Options{Output: io.Discard})
}

func sampleEntries() []gamification.LeaderboardEntry {
	return []gamification.LeaderboardEntry{
		{UserID: 10, DisplayName: "Ana", Points: 3200, Level: 4, CurrentStreak: 9},
		{UserID: 20, DisplayName: "Luis", Points: 1500, Level: 2, CurrentStreak: 3},
		{UserID: 30, DisplayName: "Marta", Points: 900, Level: 1, CurrentStreak: 1},
		{UserID: 40, DisplayName: "Pablo", Points: 100, Level: 1, CurrentStreak: 0},
	}
}

func TestGetLeaderboard_FromRepository(t *testing.T) {
	repo := &stubProfileRepo{top: sampleEntries()}
	h := NewGetLeaderboardHandler(repo, nil, discardLogger())

	result, err := h.Handle(context.Background(), GetLeaderboardQuery{Limit: 10})

	assert.NoError(t, err)
	assert.False(t, result.FromCache)
	assert.Len(t, result.Entries, 4)

	assert.Equal(t, 1, result.Entries[0].Rank)
	assert.Equal(t, "🥇", result.Entries[0].Medal)
	assert.Equal(t, "🥈", result.Entries[1].Medal)
	assert.Equal(t, "🥉", result.Entries[2].Medal)
	assert.Equal(t, "", result.Entries[3].Medal)
}

func TestGetLeaderboard_FromCache(t *testing.T) {
	repo := &stubProfileRepo{}
	cache := &stubLeaderboardCache{top: sampleEntries()}
	h := NewGetLeaderboardHandler(repo, cache, discardLogger())

	result, err := h.Handle(context.Background(), GetLeaderboardQuery{Limit: 10})

	assert.NoError(t, err)
	assert.True(t, result.FromCache)
	assert.Equal(t, 0, repo.limitIn, "repository is not consulted on a cache hit")
}

func TestGetLeaderboard_CacheMissFallsBack(t *testing.T) {
	repo := &stubProfileRepo{top: sampleEntries()}
	cache := &stubLeaderboardCache{} // empty = miss
	h := NewGetLeaderboardHandler(repo, cache, discardLogger())

	result, err := h.Handle(context.Background(), GetLeaderboardQuery{Limit: 10})

	assert.NoError(t, err)
	assert.False(t, result.FromCache)
	assert.Len(t, result.Entries, 4)
}

func TestGetLeaderboard_CacheErrorFallsBack(t *testing.T) {
	repo := &stubProfileRepo{top: sampleEntries()}
	cache := &stubLeaderboardCache{topErr: errors.New("redis down")}
	h := NewGetLeaderboardHandler(repo, cache, discardLogger())

	result, err := h.Handle(context.Background(), GetLeaderboardQuery{Limit: 10})

	assert.NoError(t, err)
	assert.False(t, result.FromCache)
	assert.Len(t, result.Entries, 4)
}

func TestGetLeaderboard_HighlightsRequester(t *testing.T) {
	repo := &stubProfileRepo{top: sampleEntries()}
	h := NewGetLeaderboardHandler(repo, nil, discardLogger())

	result, err := h.Handle(context.Background(), GetLeaderboardQuery{
		Limit:           10,
		HighlightUserID: shared.UserID(20),
	})

	assert.NoError(t, err)
	assert.False(t, result.Entries[0].IsYou)
	assert.True(t, result.Entries[1].IsYou)
}

func TestGetLeaderboard_LimitDefaultsAndCaps(t *testing.T) {
	repo := &stubProfileRepo{}
	h := NewGetLeaderboardHandler(repo, nil, discardLogger())

	_, err := h.Handle(context.Background(), GetLeaderboardQuery{})
	assert.NoError(t, err)
	assert.Equal(t, 20, repo.limitIn)

	_, err = h.Handle(context.Background(), GetLeaderboardQuery{Limit: 500})
	assert.NoError(t, err)
	assert.Equal(t, 100, repo.limitIn)

	_, err = h.Handle(context.Background(), GetLeaderboardQuery{Limit: -1})
	assert.Error(t, err)
}

func TestGetLeaderboard_RepositoryError(t *testing.T) {
	repo := &stubProfileRepo{topErr: errors.New("connection refused")}
	h := NewGetLeaderboardHandler(repo, nil, discardLogger())

	_, err := h.Handle(context.Background(), GetLeaderboardQuery{Limit: 10})

	assert.Error(t, err)
}
