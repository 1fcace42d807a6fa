// Copyright (c) 2026 Tallyboard. All rights reserved.
// Author: dev@tallyboard.app

// Package ctxutil provides helpers for interacting with values stored in [context.Context].
package ctxutil

import (
	"context"
	"log/slog"

	"github.com/tallyboard/tallyboard/internal/platform/ctxkey"
	"github.com/tallyboard/tallyboard/internal/platform/sec"
)

// # Request Tracing

// WithRequestID returns a new context with the provided request ID attached.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxkey.KeyRequestID, id)
}

// GetRequestID retrieves the request ID from the context.
// Returns an empty string if not found.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxkey.KeyRequestID).(string)
	return id
}

// # Structured Logging

// WithLogger returns a new context with the provided logger attached.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxkey.KeyLogger, logger)
}

// GetLogger retrieves the logger from the context.
// If no logger is found, it returns the global default logger.
func GetLogger(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(ctxkey.KeyLogger).(*slog.Logger)
	if !ok {
		return slog.Default()
	}
	return logger
}

// # Identity & Access

// WithClaims returns a new context with verified token claims attached.
func WithClaims(ctx context.Context, claims *sec.Claims) context.Context {
	return context.WithValue(ctx, ctxkey.KeyClaims, claims)
}

// GetClaims retrieves the [*sec.Claims] from the [context.Context].
// Returns nil for anonymous requests.
func GetClaims(ctx context.Context) *sec.Claims {
	claims, ok := ctx.Value(ctxkey.KeyClaims).(*sec.Claims)
	if !ok {
		return nil
	}
	return claims
}

// WithBearerToken returns a new context with the raw bearer token attached.
//
// Handlers that must re-resolve the subject against the user store (rather
// than trusting the self-contained claims) read the token back from here.
func WithBearerToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, ctxkey.KeyBearerToken, token)
}

// GetBearerToken retrieves the raw bearer token from the context.
// Returns an empty string if the request carried no token.
func GetBearerToken(ctx context.Context) string {
	token, _ := ctx.Value(ctxkey.KeyBearerToken).(string)
	return token
}
