// Copyright (c) 2026 Tallyboard. All rights reserved.
// Author: dev@tallyboard.app

package leaderboard

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/tallyboard/tallyboard/internal/platform/constants"
)

// RedisStore implements [CacheStore] on Redis sorted sets.
//
// Each ranking lives in one sorted set keyed by constants.RedisKeyAllTime or
// constants.RedisPrefixCategory + slug, member = username, score = total
// duration seconds.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a new Redis-backed ranking cache.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Top returns up to limit cached entries in descending score order.
//
// An absent or expired key yields an empty slice; the caller treats that as
// a cache miss and rebuilds from the aggregate store.
func (store *RedisStore) Top(ctx context.Context, key string, limit int) ([]Entry, error) {
	members, err := store.client.ZRevRangeWithScores(ctx, key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis_leaderboard_top_failed: %w", err)
	}

	entries := make([]Entry, 0, len(members))
	for _, member := range members {
		username, ok := member.Member.(string)
		if !ok {
			continue
		}
		entries = append(entries, Entry{
			Username: username,
			Score:    int64(member.Score),
		})
	}

	return entries, nil
}

// Populate atomically replaces the ranking under key and arms its expiry.
//
// The swap happens inside a pipeline so readers never observe a half-built
// set. An empty ranking leaves no key behind, so an empty board falls
// through to the aggregate store on each read — cheap, since it has no rows.
func (store *RedisStore) Populate(ctx context.Context, key string, entries []Entry) error {
	members := make([]redis.Z, 0, len(entries))
	for _, entry := range entries {
		members = append(members, redis.Z{
			Member: entry.Username,
			Score:  float64(entry.Score),
		})
	}

	pipeline := store.client.TxPipeline()
	pipeline.Del(ctx, key)
	if len(members) > 0 {
		pipeline.ZAdd(ctx, key, members...)
	}
	pipeline.Expire(ctx, key, constants.LeaderboardCacheTTL)

	if _, err := pipeline.Exec(ctx); err != nil {
		return fmt.Errorf("redis_leaderboard_populate_failed: %w", err)
	}

	return nil
}

// IncrementIfPresent bumps username's score by delta when the ranking is
// already cached.
//
// Implemented as EXISTS + ZINCRBY. The pair is not transactional; if the key
// expires in between, ZINCRBY recreates it as a one-member set. The ExpireNX
// afterwards guarantees such a set still carries a TTL and cannot shadow the
// authoritative aggregate past one cache cycle.
func (store *RedisStore) IncrementIfPresent(ctx context.Context, key, username string, delta int64) error {
	exists, err := store.client.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("redis_leaderboard_exists_failed: %w", err)
	}
	if exists == 0 {
		// Not cached: the next read rebuilds from Postgres, which already
		// includes the event this increment represents.
		return nil
	}

	if err := store.client.ZIncrBy(ctx, key, float64(delta), username).Err(); err != nil {
		return fmt.Errorf("redis_leaderboard_incr_failed: %w", err)
	}

	if err := store.client.ExpireNX(ctx, key, constants.LeaderboardCacheTTL).Err(); err != nil {
		return fmt.Errorf("redis_leaderboard_expire_failed: %w", err)
	}

	return nil
}
