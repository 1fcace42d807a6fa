// Copyright (c) 2026 Tallyboard. All rights reserved.
// Author: dev@tallyboard.app

package leaderboard

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements [AggregateStore] by aggregating the events table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL implementation of the aggregate store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// AllTime returns the top users by total event duration across all categories.
func (store *PostgresStore) AllTime(ctx context.Context, limit int) ([]Entry, error) {
	const query = `
		SELECT u.username, COALESCE(SUM(e.duration), 0)::bigint AS score
		FROM events e
		JOIN users u ON u.id = e.user_id
		GROUP BY u.username
		ORDER BY score DESC, u.username ASC
		LIMIT $1`

	return store.queryEntries(ctx, query, limit)
}

// ByCategory returns the top users by total event duration within one category.
//
// Category slugs are normalized at ingest, so the comparison here is a plain
// equality match on the stored column.
func (store *PostgresStore) ByCategory(ctx context.Context, categorySlug string, limit int) ([]Entry, error) {
	const query = `
		SELECT u.username, COALESCE(SUM(e.duration), 0)::bigint AS score
		FROM events e
		JOIN users u ON u.id = e.user_id
		WHERE e.category = $1
		GROUP BY u.username
		ORDER BY score DESC, u.username ASC
		LIMIT $2`

	return store.queryEntries(ctx, query, categorySlug, limit)
}

// queryEntries executes a ranking query and scans its rows.
func (store *PostgresStore) queryEntries(ctx context.Context, query string, args ...any) ([]Entry, error) {
	rows, err := store.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres_leaderboard_query_failed: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		var entry Entry
		if err := rows.Scan(&entry.Username, &entry.Score); err != nil {
			return nil, fmt.Errorf("postgres_leaderboard_scan_failed: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_leaderboard_rows_failed: %w", err)
	}

	return entries, nil
}
