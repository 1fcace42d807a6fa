// Copyright (c) 2026 Tallyboard. All rights reserved.
// Author: dev@tallyboard.app

package event

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements the [Store] interface using pgx.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL implementation of the event store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// InsertBatch persists all events inside a single transaction.
//
// The inserts are queued as one [pgx.Batch] and sent over a single round
// trip; any failure rolls the whole transaction back, so retrying clients
// never leave a half-written batch behind.
func (store *PostgresStore) InsertBatch(ctx context.Context, events []*Event) error {
	if len(events) == 0 {
		return nil
	}

	const query = `
		INSERT INTO events (
			id, user_id, timestamp, duration, category, data, created_at
		) VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7)`

	tx, err := store.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres_event_store_begin_failed: %w", err)
	}
	// Rollback is a no-op once the transaction has committed.
	defer func() { _ = tx.Rollback(ctx) }()

	now := time.Now()
	batch := &pgx.Batch{}
	for _, evt := range events {
		if evt.CreatedAt.IsZero() {
			evt.CreatedAt = now
		}
		batch.Queue(query,
			evt.ID,
			evt.UserID,
			evt.Timestamp,
			evt.Duration,
			evt.Category,
			evt.Data,
			evt.CreatedAt,
		)
	}

	results := tx.SendBatch(ctx, batch)
	for range events {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return fmt.Errorf("postgres_event_store_insert_failed: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("postgres_event_store_batch_close_failed: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres_event_store_commit_failed: %w", err)
	}

	return nil
}
