// Copyright (c) 2026 Tallyboard. All rights reserved.
// Author: dev@tallyboard.app

package leaderboard

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tallyboard/tallyboard/internal/platform/constants"
	"github.com/tallyboard/tallyboard/internal/platform/ctxutil"
)

// Service implements the ranking read path and the intake-side score feed.
//
// # Read-Through Caching
//
// Reads try the Redis sorted set first; on a miss the ranking is rebuilt
// from the PostgreSQL aggregate and cached with a TTL. The cache is an
// optimization only — every answer it gives is reproducible from Postgres.
type Service struct {
	aggregate AggregateStore
	cache     CacheStore
}

// NewService constructs a new [Service] with necessary dependencies.
func NewService(aggregate AggregateStore, cache CacheStore) *Service {
	return &Service{
		aggregate: aggregate,
		cache:     cache,
	}
}

// TopAllTime returns the all-time ranking, best score first.
func (service *Service) TopAllTime(ctx context.Context) ([]Entry, error) {
	return service.top(ctx, constants.RedisKeyAllTime, func(ctx context.Context) ([]Entry, error) {
		return service.aggregate.AllTime(ctx, constants.LeaderboardSize)
	})
}

// TopByCategory returns the ranking within one category, best score first.
//
// The category argument is matched against the slug-normalized value stored
// at ingest; callers pass the URL path segment through unchanged.
func (service *Service) TopByCategory(ctx context.Context, categorySlug string) ([]Entry, error) {
	key := constants.RedisPrefixCategory + categorySlug
	return service.top(ctx, key, func(ctx context.Context) ([]Entry, error) {
		return service.aggregate.ByCategory(ctx, categorySlug, constants.LeaderboardSize)
	})
}

// Record feeds one ingested event's contribution into the cached rankings.
//
// It implements [event.ScoreRecorder]. Only already-populated sets are
// touched; Postgres remains authoritative for anything not cached yet.
func (service *Service) Record(ctx context.Context, username, categorySlug string, duration int64) error {
	if duration == 0 {
		return nil
	}

	if err := service.cache.IncrementIfPresent(ctx, constants.RedisKeyAllTime, username, duration); err != nil {
		return err
	}

	if categorySlug != "" {
		key := constants.RedisPrefixCategory + categorySlug
		if err := service.cache.IncrementIfPresent(ctx, key, username, duration); err != nil {
			return err
		}
	}

	return nil
}

// top serves one ranking read-through: cache hit, or rebuild-and-populate.
func (service *Service) top(ctx context.Context, key string, rebuild func(context.Context) ([]Entry, error)) ([]Entry, error) {
	// ── 1. Cache Read ─────────────────────────────────────────────────────

	cached, err := service.cache.Top(ctx, key, constants.LeaderboardSize)
	if err != nil {
		// A cache outage degrades to direct aggregation rather than failing
		// the read.
		ctxutil.GetLogger(ctx).WarnContext(ctx, "leaderboard_cache_read_failed",
			slog.String("key", key),
			slog.Any("error", err),
		)
	} else if len(cached) > 0 {
		return cached, nil
	}

	// ── 2. Authoritative Rebuild ──────────────────────────────────────────

	entries, err := rebuild(ctx)
	if err != nil {
		return nil, fmt.Errorf("leaderboard_service_rebuild_failed: %w", err)
	}

	// ── 3. Cache Population (best effort) ─────────────────────────────────

	if populateErr := service.cache.Populate(ctx, key, entries); populateErr != nil {
		ctxutil.GetLogger(ctx).WarnContext(ctx, "leaderboard_cache_populate_failed",
			slog.String("key", key),
			slog.Any("error", populateErr),
		)
	}

	return entries, nil
}
