// Copyright (c) 2026 Tallyboard. All rights reserved.
// Author: dev@tallyboard.app

package ctxutil_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"

	"github.com/tallyboard/tallyboard/internal/platform/ctxutil"
	"github.com/tallyboard/tallyboard/internal/platform/sec"
)

/*
TestContext_RequestID verifies that Request IDs can be injected and retrieved.
*/
func TestContext_RequestID(t *testing.T) {
	ctx := context.Background()
	requestID := "test-request-id"

	// 1. Initially should be empty
	assert.Empty(t, ctxutil.GetRequestID(ctx))

	// 2. Inject and retrieve
	ctx = ctxutil.WithRequestID(ctx, requestID)
	assert.Equal(t, requestID, ctxutil.GetRequestID(ctx))
}

/*
TestContext_Logger verifies that a custom logger can be stored in context.
*/
func TestContext_Logger(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// 1. Initially should return the default logger
	assert.Equal(t, slog.Default(), ctxutil.GetLogger(ctx))

	// 2. Inject and retrieve
	ctx = ctxutil.WithLogger(ctx, logger)
	assert.Equal(t, logger, ctxutil.GetLogger(ctx))
}

/*
TestContext_Claims verifies that verified token claims can be stored in context.
*/
func TestContext_Claims(t *testing.T) {
	ctx := context.Background()
	claims := &sec.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "alice"},
	}

	// 1. Initially should be nil (anonymous request)
	assert.Nil(t, ctxutil.GetClaims(ctx))

	// 2. Inject and retrieve
	ctx = ctxutil.WithClaims(ctx, claims)
	retrieved := ctxutil.GetClaims(ctx)

	assert.NotNil(t, retrieved)
	assert.Equal(t, "alice", retrieved.Subject)
}

/*
TestContext_BearerToken verifies that the raw bearer token can be stored in
context for handlers that re-resolve the subject.
*/
func TestContext_BearerToken(t *testing.T) {
	ctx := context.Background()

	// 1. Initially should be empty
	assert.Empty(t, ctxutil.GetBearerToken(ctx))

	// 2. Inject and retrieve
	ctx = ctxutil.WithBearerToken(ctx, "raw.jwt.token")
	assert.Equal(t, "raw.jwt.token", ctxutil.GetBearerToken(ctx))
}
