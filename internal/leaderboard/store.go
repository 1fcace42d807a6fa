// Copyright (c) 2026 Tallyboard. All rights reserved.
// Author: dev@tallyboard.app

package leaderboard

import (
	"context"
)

// AggregateStore defines the authoritative ranking queries over the events table.
//
// # Implementations
//
// The canonical implementation is PostgreSQL ([PostgresStore]).
type AggregateStore interface {
	// AllTime returns the top users by total event duration, descending.
	AllTime(ctx context.Context, limit int) ([]Entry, error)

	// ByCategory returns the top users within a category slug, descending.
	ByCategory(ctx context.Context, categorySlug string, limit int) ([]Entry, error)
}

// CacheStore defines the volatile ranking cache.
//
// # Implementations
//
// The canonical implementation is Redis sorted sets ([RedisStore]).
type CacheStore interface {
	// Top returns up to limit entries from the cached ranking, descending.
	// An absent key returns an empty slice, not an error.
	Top(ctx context.Context, key string, limit int) ([]Entry, error)

	// Populate replaces the cached ranking under key with entries and arms
	// its expiry.
	Populate(ctx context.Context, key string, entries []Entry) error

	// IncrementIfPresent adds delta to username's score under key, but only
	// when the key already holds a populated ranking. Incrementing into an
	// absent key would create a partial set that shadows the authoritative
	// aggregate until its TTL fires.
	IncrementIfPresent(ctx context.Context, key, username string, delta int64) error
}
