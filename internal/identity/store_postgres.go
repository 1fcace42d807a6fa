// Copyright (c) 2026 Tallyboard. All rights reserved.
// Author: dev@tallyboard.app

package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tallyboard/tallyboard/internal/platform/apperr"
	"github.com/tallyboard/tallyboard/internal/platform/dberr"
)

// PostgresStore implements the [Store] interface using pgx.
//
// # Error Mapping
//
// Storage-specific errors (pgx.ErrNoRows, SQLSTATE 23505) are mapped to
// domain-friendly [apperr.AppError] values so no storage implementation
// details leak upward.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL implementation of the credential store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Create persists a new user record into the users table.
//
// The insert is autocommitted: once Create returns nil, the row is durable
// and visible to subsequent reads on this pool. A unique-constraint violation
// on either username or email becomes the canonical duplicate-identity
// conflict.
func (store *PostgresStore) Create(ctx context.Context, user *User) error {
	const query = `
		INSERT INTO users (
			id, username, email, password_hash, is_active, created_at
		) VALUES ($1, $2, $3, $4, $5, $6)`

	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	_, err := store.pool.Exec(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.IsActive,
		user.CreatedAt,
	)

	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict(fmt.Sprintf(
				"User with username %s or email %s already exists",
				user.Username, user.Email,
			))
		}
		return fmt.Errorf("postgres_user_store_create_failed: %w", err)
	}

	return nil
}

// FindByID retrieves a user record by their unique ID.
func (store *PostgresStore) FindByID(ctx context.Context, id string) (*User, error) {
	const query = `
		SELECT id, username, email, password_hash, is_active, created_at
		FROM users
		WHERE id = $1`

	return store.scanOne(ctx, query, id)
}

// FindByUsername retrieves a user record by their unique username.
//
// The lookup is case-sensitive: "Alice" and "alice" are distinct accounts.
func (store *PostgresStore) FindByUsername(ctx context.Context, username string) (*User, error) {
	const query = `
		SELECT id, username, email, password_hash, is_active, created_at
		FROM users
		WHERE username = $1`

	return store.scanOne(ctx, query, username)
}

// FindByEmail retrieves a user record by their unique email address.
func (store *PostgresStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	const query = `
		SELECT id, username, email, password_hash, is_active, created_at
		FROM users
		WHERE email = $1`

	return store.scanOne(ctx, query, email)
}

// scanOne executes a single-row user query and maps absence to [apperr.NotFound].
func (store *PostgresStore) scanOne(ctx context.Context, query string, arg any) (*User, error) {
	user := &User{}
	err := store.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.IsActive,
		&user.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_user_store_find_failed: %w", err)
	}

	return user, nil
}
