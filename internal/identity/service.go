// Copyright (c) 2026 Tallyboard. All rights reserved.
// Author: dev@tallyboard.app

package identity

import (
	"context"
	"fmt"

	"github.com/tallyboard/tallyboard/internal/platform/apperr"
	"github.com/tallyboard/tallyboard/internal/platform/sec"
	"github.com/tallyboard/tallyboard/internal/platform/validate"
	"github.com/tallyboard/tallyboard/pkg/uuidv7"
)

// TokenProvider defines the contract for issuing and verifying access tokens.
type TokenProvider interface {
	// Issue creates a signed access token whose subject is the username.
	Issue(username string) (string, error)

	// Verify checks signature and expiry, returning the embedded claims.
	Verify(tokenStr string) (*sec.Claims, error)
}

// Service implements the identity use cases: registration, credential
// verification, token issuance, and token-to-user resolution.
//
// # Concurrency
//
// Service holds no mutable state of its own. It is a stateless coordinator
// over the credential store and token provider and is safe to call from many
// request goroutines without external locking.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, registration,
// or login logic must be reviewed by the security team.
type Service struct {
	store         Store
	tokenProvider TokenProvider
}

// NewService constructs a new [Service] with necessary dependencies.
func NewService(store Store, tokenProvider TokenProvider) *Service {
	return &Service{
		store:         store,
		tokenProvider: tokenProvider,
	}
}

// RegisterInput holds the data required to enroll a new member.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// Register validates, hashes, and persists a brand new user account.
//
// # Parameters
//   - ctx: Context for the database operation.
//   - input: The user-provided registration details.
//
// # Returns
//   - A pointer to the newly created [*User] (PasswordHash never marshals).
//   - Returns [apperr.Conflict] if username or email already exists.
//
// # Business Rules
//   - Uniqueness is decided by the storage layer's constraints, not by a
//     pre-check, so racing registrations cannot both win.
//   - The plaintext password is hashed immediately and never logged.
func (service *Service) Register(ctx context.Context, input RegisterInput) (*User, error) {
	// ── 1. Boundary Validation ────────────────────────────────────────────

	v := &validate.Validator{}
	err := v.
		Required("username", input.Username).
		MinLen("username", input.Username, 3).
		MaxLen("username", input.Username, 64).
		Required("email", input.Email).
		Email("email", input.Email).
		Required("password", input.Password).
		MinLen("password", input.Password, 8).
		Err()
	if err != nil {
		return nil, err
	}

	// ── 2. Security ───────────────────────────────────────────────────────

	// Prevent storing plain-text passwords. Default cost is used for balance
	// between security and CPU utilization during registration spikes.
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("identity_service_hash_failed: %w", err)
	}

	// ── 3. Entity Construction ────────────────────────────────────────────

	user := &User{
		ID:           uuidv7.New(), // Time-sortable ID to prevent PG index fragmentation.
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hashedPassword,
		IsActive:     true,
	}

	// ── 4. Persistence ────────────────────────────────────────────────────

	// The store surfaces [apperr.Conflict] when a unique constraint fires;
	// that error passes through to the caller unwrapped.
	if err := service.store.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// VerifyCredentials resolves the identifier (username or email, in that
// order) and checks the password against the stored hash.
//
// # Returns
//   - (*User, nil) when the credentials match an active account.
//   - (nil, nil) for every failure mode: unknown identifier, wrong password,
//     or inactive account. The caller cannot distinguish which factor was
//     wrong — that indistinguishability is a deliberate security property,
//     not an omission.
func (service *Service) VerifyCredentials(ctx context.Context, identifier, password string) (*User, error) {
	user, err := service.store.FindByUsername(ctx, identifier)
	if err != nil {
		user, err = service.store.FindByEmail(ctx, identifier)
	}

	if err != nil {
		if ae := apperr.As(err); ae != nil && ae.Code == "NOT_FOUND" {
			return nil, nil
		}
		// Infrastructure failure: not a credential mismatch, never masked.
		return nil, fmt.Errorf("identity_service_lookup_failed: %w", err)
	}

	// bcrypt compares in constant time.
	if !sec.CheckPasswordHash(password, user.PasswordHash) {
		return nil, nil
	}

	if !user.IsActive {
		return nil, nil
	}

	return user, nil
}

// Login verifies credentials and issues a bearer access token.
//
// # Returns
//   - A signed token whose subject is the account's username.
//   - Returns [apperr.Unauthorized] with the canonical message when
//     credentials do not match; the message never reveals which factor
//     was wrong.
func (service *Service) Login(ctx context.Context, identifier, password string) (string, error) {
	user, err := service.VerifyCredentials(ctx, identifier, password)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", apperr.Unauthorized("Incorrect username or password")
	}

	token, err := service.tokenProvider.Issue(user.Username)
	if err != nil {
		return "", fmt.Errorf("identity_service_token_issue_failed: %w", err)
	}

	return token, nil
}

// ResolveRequired decodes a bearer token and resolves its subject to a user.
//
// # Flow
//  1. Verify signature and expiry via the [TokenProvider].
//  2. Look the subject up by username.
//  3. Fail with [apperr.Unauthorized] if either step fails — including the
//     case where the token is valid but the user no longer exists.
func (service *Service) ResolveRequired(ctx context.Context, token string) (*User, error) {
	claims, err := service.tokenProvider.Verify(token)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid authentication credentials")
	}

	user, err := service.store.FindByUsername(ctx, claims.Subject)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid authentication credentials")
	}

	return user, nil
}

// ResolveOptional resolves a bearer token to a user when possible.
//
// # Returns
//   - (nil, nil) when no token is supplied, the token fails verification,
//     or the subject no longer exists. Absence is a valid outcome here —
//     anonymous visitors are not an error.
func (service *Service) ResolveOptional(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, nil
	}

	user, err := service.ResolveRequired(ctx, token)
	if err != nil {
		return nil, nil
	}

	return user, nil
}
