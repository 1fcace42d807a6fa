// Copyright (c) 2026 Tallyboard. All rights reserved.
// Author: dev@tallyboard.app

// Package identity owns user accounts and credential verification for the
// Tallyboard platform.
//
// # Architecture
//
// Entities in this package represent the "Truth" of the identity subsystem.
// They have no dependencies on outer layers (like databases, APIs, or libraries).
// This makes the core logic highly testable and resilient to technology changes.
package identity

import (
	"time"
)

// User represents a registered member of the Tallyboard platform.
//
// # Rules
//   - Username is unique, case-sensitive, and immutable after creation.
//   - Email is unique and immutable after creation.
//   - PasswordHash is generated via bcrypt exclusively by the [Service]
//     and never leaves the credential store boundary.
//   - IsActive defaults to true; inactive accounts cannot log in.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Explicitly omitted from JSON for security.
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}
