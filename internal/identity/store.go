// Copyright (c) 2026 Tallyboard. All rights reserved.
// Author: dev@tallyboard.app

package identity

import (
	"context"
)

// Store defines the data access contract for user accounts — the credential
// store of the platform.
//
// # Review Process
//
// This interface is placed in a separate file from user.go so entity changes
// and storage-contract changes can be reviewed independently by the team.
//
// # Implementations
//
// The canonical implementation for Tallyboard is PostgreSQL ([PostgresStore]).
type Store interface {
	// Create persists a brand-new user account.
	//
	// Uniqueness of username and email is enforced by the storage layer's
	// unique constraints, NOT by a lookup-then-insert in application code:
	// two racing registrations are decided by the database, and the loser
	// receives [apperr.Conflict]. The record is durably committed before
	// Create returns, so a follow-up read on the same store sees it.
	Create(ctx context.Context, user *User) error

	// FindByID returns the account with the given ID.
	//
	// Returns [apperr.NotFound] if the account does not exist.
	FindByID(ctx context.Context, id string) (*User, error)

	// FindByUsername returns the account with the given username.
	//
	// Returns [apperr.NotFound] if the username is available.
	FindByUsername(ctx context.Context, username string) (*User, error)

	// FindByEmail returns the account with the given email.
	//
	// Returns [apperr.NotFound] if no user is registered with this email.
	FindByEmail(ctx context.Context, email string) (*User, error)
}
