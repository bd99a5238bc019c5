package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/finzen-app/finzen-engine/internal/domain/gamification"
	"github.com/finzen-app/finzen-engine/internal/domain/shared"
	"github.com/finzen-app/finzen-engine/pkg/circuitbreaker"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEADERBOARD CACHE
// ══════════════════════════════════════════════════════════════════════════════

// Key layout for the leaderboard projection.
const (
	// keyLeaderboardPoints is the sorted set mapping userID -> points.
	keyLeaderboardPoints = PrefixLeaderboard + "points"

	// keyLeaderboardInfo is the hash mapping userID -> entry details JSON.
	keyLeaderboardInfo = PrefixLeaderboard + "info"
)

// entryInfo is the JSON shape stored in the info hash. Points live in the
// sorted set score; the hash carries what the score cannot.
type entryInfo struct {
	DisplayName   string `json:"display_name"`
	CurrentStreak int    `json:"current_streak"`
}

// LeaderboardCache implements gamification.LeaderboardCache on Redis.
//
// Architecture:
//   - Sorted set "leaderboard:points" stores userID -> points
//   - Hash "leaderboard:info" stores userID -> display details JSON
//
// The projection is updated by the points-awarded event handler and read by
// the leaderboard query. An empty GetTop result counts as a miss; the query
// then falls back to PostgreSQL, so losing this data is always safe.
//
// Reads and writes go through a circuit breaker: while Redis is down the
// breaker opens and calls fail fast instead of waiting on timeouts.
type LeaderboardCache struct {
	cache   *Cache
	breaker *circuitbreaker.CircuitBreaker
}

// NewLeaderboardCache creates a new LeaderboardCache instance.
func NewLeaderboardCache(cache *Cache) *LeaderboardCache {
	return &LeaderboardCache{
		cache:   cache,
		breaker: circuitbreaker.RedisBreaker(nil),
	}
}

// GetTop returns the top N entries by points, best first.
// An empty result means the projection is cold and the caller should fall
// back to the primary store.
func (l *LeaderboardCache) GetTop(ctx context.Context, limit int) ([]gamification.LeaderboardEntry, error) {
	var entries []gamification.LeaderboardEntry
	err := l.breaker.Execute(ctx, func(ctx context.Context) error {
		var opErr error
		entries, opErr = l.getTop(ctx, limit)
		return opErr
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (l *LeaderboardCache) getTop(ctx context.Context, limit int) ([]gamification.LeaderboardEntry, error) {
	if limit <= 0 {
		return nil, nil
	}

	members, err := l.cache.Client().ZRevRangeWithScores(ctx, keyLeaderboardPoints, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read leaderboard: %w", err)
	}
	if len(members) == 0 {
		return nil, nil
	}

	ids := make([]string, len(members))
	for i, m := range members {
		ids[i] = m.Member.(string)
	}

	infos, err := l.cache.Client().HMGet(ctx, keyLeaderboardInfo, ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read leaderboard details: %w", err)
	}

	entries := make([]gamification.LeaderboardEntry, 0, len(members))
	for i, m := range members {
		userID, err := strconv.ParseInt(ids[i], 10, 64)
		if err != nil {
			continue
		}

		points := shared.Points(int(m.Score))
		entry := gamification.LeaderboardEntry{
			UserID: shared.UserID(userID),
			Points: points,
			Level:  points.Level(),
		}

		if raw, ok := infos[i].(string); ok {
			var info entryInfo
			if err := json.Unmarshal([]byte(raw), &info); err == nil {
				entry.DisplayName = info.DisplayName
				entry.CurrentStreak = info.CurrentStreak
			}
		}

		entries = append(entries, entry)
	}
	return entries, nil
}

// Update upserts a user's position in the projection.
func (l *LeaderboardCache) Update(ctx context.Context, entry gamification.LeaderboardEntry) error {
	return l.breaker.Execute(ctx, func(ctx context.Context) error {
		return l.update(ctx, entry)
	})
}

func (l *LeaderboardCache) update(ctx context.Context, entry gamification.LeaderboardEntry) error {
	member := strconv.FormatInt(entry.UserID.Int64(), 10)

	info, err := json.Marshal(entryInfo{
		DisplayName:   entry.DisplayName,
		CurrentStreak: entry.CurrentStreak,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCacheSerialization, err)
	}

	pipe := l.cache.Client().Pipeline()
	pipe.ZAdd(ctx, keyLeaderboardPoints, redis.Z{
		Score:  float64(entry.Points.Int()),
		Member: member,
	})
	pipe.HSet(ctx, keyLeaderboardInfo, member, info)
	pipe.Expire(ctx, keyLeaderboardPoints, TTLLeaderboard)
	pipe.Expire(ctx, keyLeaderboardInfo, TTLLeaderboard)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to update leaderboard: %w", err)
	}
	return nil
}

// Invalidate drops the whole projection. The next read falls back to
// PostgreSQL and the projection warms up again from events.
func (l *LeaderboardCache) Invalidate(ctx context.Context) error {
	if err := l.cache.Delete(ctx, keyLeaderboardPoints, keyLeaderboardInfo); err != nil {
		return fmt.Errorf("failed to invalidate leaderboard: %w", err)
	}
	return nil
}

// Rebuild replaces the projection with a full set of entries, typically
// loaded from ProfileRepository.Top by the background worker.
func (l *LeaderboardCache) Rebuild(ctx context.Context, entries []gamification.LeaderboardEntry) error {
	pipe := l.cache.Client().TxPipeline()
	pipe.Del(ctx, keyLeaderboardPoints, keyLeaderboardInfo)

	if len(entries) > 0 {
		zMembers := make([]redis.Z, 0, len(entries))
		hashData := make(map[string]interface{}, len(entries))

		for _, entry := range entries {
			member := strconv.FormatInt(entry.UserID.Int64(), 10)
			zMembers = append(zMembers, redis.Z{
				Score:  float64(entry.Points.Int()),
				Member: member,
			})
			info, err := json.Marshal(entryInfo{
				DisplayName:   entry.DisplayName,
				CurrentStreak: entry.CurrentStreak,
			})
			if err != nil {
				return fmt.Errorf("%w: %v", ErrCacheSerialization, err)
			}
			hashData[member] = info
		}

		pipe.ZAdd(ctx, keyLeaderboardPoints, zMembers...)
		pipe.HSet(ctx, keyLeaderboardInfo, hashData)
		pipe.Expire(ctx, keyLeaderboardPoints, TTLLeaderboard)
		pipe.Expire(ctx, keyLeaderboardInfo, TTLLeaderboard)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to rebuild leaderboard: %w", err)
	}
	return nil
}
