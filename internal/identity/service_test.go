// Copyright (c) 2026 Tallyboard. All rights reserved.
// Author: dev@tallyboard.app

package identity_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyboard/tallyboard/internal/identity"
	"github.com/tallyboard/tallyboard/internal/platform/apperr"
	"github.com/tallyboard/tallyboard/internal/platform/sec"
)

// # Test Fixtures

// memoryStore is an in-memory [identity.Store] used in unit tests.
//
// It mirrors the real store's contract: unique constraints on username and
// email decide racing creates, and absence maps to [apperr.NotFound].
type memoryStore struct {
	users []*identity.User
}

func (store *memoryStore) Create(_ context.Context, user *identity.User) error {
	for _, existing := range store.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return apperr.Conflict("User with username " + user.Username + " or email " + user.Email + " already exists")
		}
	}

	stored := *user
	stored.CreatedAt = time.Now()
	store.users = append(store.users, &stored)
	return nil
}

func (store *memoryStore) FindByID(_ context.Context, id string) (*identity.User, error) {
	for _, user := range store.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (store *memoryStore) FindByUsername(_ context.Context, username string) (*identity.User, error) {
	for _, user := range store.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (store *memoryStore) FindByEmail(_ context.Context, email string) (*identity.User, error) {
	for _, user := range store.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, apperr.NotFound("User")
}

// newTestService wires a Service against the in-memory store and a real
// token service with a short-lived test key.
func newTestService(t *testing.T) (*identity.Service, *memoryStore) {
	t.Helper()

	tokenService, err := sec.NewTokenService("test-signing-key", "tallyboard.test", time.Hour)
	require.NoError(t, err)

	store := &memoryStore{}
	return identity.NewService(store, tokenService), store
}

// # Registration

/*
TestRegister_Success verifies the happy path: valid input produces a persisted
user with a hashed password and an active account.
*/
func TestRegister_Success(t *testing.T) {
	service, store := newTestService(t)

	user, err := service.Register(context.Background(), identity.RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "s3cret-password",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.True(t, user.IsActive)

	// The plaintext must never be stored.
	assert.NotEqual(t, "s3cret-password", user.PasswordHash)
	assert.True(t, sec.CheckPasswordHash("s3cret-password", user.PasswordHash))

	// The account is immediately visible to a follow-up read.
	found, err := store.FindByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
}

/*
TestRegister_Validation verifies boundary validation: short usernames, bad
emails, and short passwords are rejected before any persistence happens.
*/
func TestRegister_Validation(t *testing.T) {
	testCases := []struct {
		name  string
		input identity.RegisterInput
	}{
		{
			name:  "missing username",
			input: identity.RegisterInput{Email: "a@example.com", Password: "longenough"},
		},
		{
			name:  "username too short",
			input: identity.RegisterInput{Username: "ab", Email: "a@example.com", Password: "longenough"},
		},
		{
			name:  "invalid email",
			input: identity.RegisterInput{Username: "alice", Email: "not-an-email", Password: "longenough"},
		},
		{
			name:  "password too short",
			input: identity.RegisterInput{Username: "alice", Email: "a@example.com", Password: "short"},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			service, store := newTestService(t)

			user, err := service.Register(context.Background(), testCase.input)

			require.Error(t, err)
			assert.Nil(t, user)
			assert.Empty(t, store.users, "nothing may be persisted on validation failure")
		})
	}
}

/*
TestRegister_Duplicate verifies that a second registration reusing the same
username or email surfaces the storage layer's conflict untouched.
*/
func TestRegister_Duplicate(t *testing.T) {
	service, _ := newTestService(t)

	_, err := service.Register(context.Background(), identity.RegisterInput{
		Username: "alice", Email: "alice@example.com", Password: "s3cret-password",
	})
	require.NoError(t, err)

	testCases := []struct {
		name  string
		input identity.RegisterInput
	}{
		{
			name:  "same username",
			input: identity.RegisterInput{Username: "alice", Email: "other@example.com", Password: "s3cret-password"},
		},
		{
			name:  "same email",
			input: identity.RegisterInput{Username: "bob", Email: "alice@example.com", Password: "s3cret-password"},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			user, err := service.Register(context.Background(), testCase.input)

			require.Error(t, err)
			assert.Nil(t, user)

			appError := apperr.As(err)
			require.NotNil(t, appError)
			assert.Equal(t, "CONFLICT", appError.Code)
		})
	}
}

// # Credential Verification

/*
TestVerifyCredentials verifies the resolution order (username first, then
email) and that every failure mode collapses to the same (nil, nil) outcome.
*/
func TestVerifyCredentials(t *testing.T) {
	service, store := newTestService(t)

	_, err := service.Register(context.Background(), identity.RegisterInput{
		Username: "alice", Email: "alice@example.com", Password: "s3cret-password",
	})
	require.NoError(t, err)

	t.Run("by username", func(t *testing.T) {
		user, err := service.VerifyCredentials(context.Background(), "alice", "s3cret-password")
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, "alice", user.Username)
	})

	t.Run("by email", func(t *testing.T) {
		user, err := service.VerifyCredentials(context.Background(), "alice@example.com", "s3cret-password")
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, "alice", user.Username)
	})

	t.Run("unknown identifier", func(t *testing.T) {
		user, err := service.VerifyCredentials(context.Background(), "nobody", "s3cret-password")
		require.NoError(t, err)
		assert.Nil(t, user)
	})

	t.Run("wrong password", func(t *testing.T) {
		user, err := service.VerifyCredentials(context.Background(), "alice", "wrong-password")
		require.NoError(t, err)
		assert.Nil(t, user)
	})

	t.Run("inactive account", func(t *testing.T) {
		store.users[0].IsActive = false
		defer func() { store.users[0].IsActive = true }()

		user, err := service.VerifyCredentials(context.Background(), "alice", "s3cret-password")
		require.NoError(t, err)
		assert.Nil(t, user)
	})
}

// # Login

/*
TestLogin verifies token issuance on success and the canonical unauthorized
error on any credential mismatch — identical wording for every failure mode.
*/
func TestLogin(t *testing.T) {
	service, _ := newTestService(t)

	_, err := service.Register(context.Background(), identity.RegisterInput{
		Username: "alice", Email: "alice@example.com", Password: "s3cret-password",
	})
	require.NoError(t, err)

	t.Run("success issues resolvable token", func(t *testing.T) {
		token, err := service.Login(context.Background(), "alice", "s3cret-password")
		require.NoError(t, err)
		require.NotEmpty(t, token)

		user, err := service.ResolveRequired(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
	})

	t.Run("failure modes share one message", func(t *testing.T) {
		for _, attempt := range []struct{ identifier, password string }{
			{"nobody", "s3cret-password"}, // unknown identifier
			{"alice", "wrong-password"},   // wrong password
		} {
			token, err := service.Login(context.Background(), attempt.identifier, attempt.password)
			require.Error(t, err)
			assert.Empty(t, token)

			appError := apperr.As(err)
			require.NotNil(t, appError)
			assert.Equal(t, "UNAUTHORIZED", appError.Code)
			assert.Equal(t, "Incorrect username or password", appError.Message)
		}
	})
}

// # Token Resolution

/*
TestResolveRequired verifies token-to-user resolution, including the case
where a structurally valid token references a vanished account.
*/
func TestResolveRequired(t *testing.T) {
	service, store := newTestService(t)

	_, err := service.Register(context.Background(), identity.RegisterInput{
		Username: "alice", Email: "alice@example.com", Password: "s3cret-password",
	})
	require.NoError(t, err)

	token, err := service.Login(context.Background(), "alice", "s3cret-password")
	require.NoError(t, err)

	t.Run("valid token", func(t *testing.T) {
		user, err := service.ResolveRequired(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
	})

	t.Run("garbage token", func(t *testing.T) {
		user, err := service.ResolveRequired(context.Background(), "not-a-token")
		require.Error(t, err)
		assert.Nil(t, user)

		appError := apperr.As(err)
		require.NotNil(t, appError)
		assert.Equal(t, "Invalid authentication credentials", appError.Message)
	})

	t.Run("subject no longer exists", func(t *testing.T) {
		store.users = nil

		user, err := service.ResolveRequired(context.Background(), token)
		require.Error(t, err)
		assert.Nil(t, user)

		appError := apperr.As(err)
		require.NotNil(t, appError)
		assert.Equal(t, "UNAUTHORIZED", appError.Code)
	})
}

/*
TestResolveOptional verifies that anonymous access is a valid outcome, not an
error: empty and invalid tokens both resolve to no user.
*/
func TestResolveOptional(t *testing.T) {
	service, _ := newTestService(t)

	_, err := service.Register(context.Background(), identity.RegisterInput{
		Username: "alice", Email: "alice@example.com", Password: "s3cret-password",
	})
	require.NoError(t, err)

	token, err := service.Login(context.Background(), "alice", "s3cret-password")
	require.NoError(t, err)

	t.Run("valid token resolves", func(t *testing.T) {
		user, err := service.ResolveOptional(context.Background(), token)
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, "alice", user.Username)
	})

	t.Run("empty token is anonymous", func(t *testing.T) {
		user, err := service.ResolveOptional(context.Background(), "")
		require.NoError(t, err)
		assert.Nil(t, user)
	})

	t.Run("invalid token is anonymous", func(t *testing.T) {
		user, err := service.ResolveOptional(context.Background(), "not-a-token")
		require.NoError(t, err)
		assert.Nil(t, user)
	})
}
