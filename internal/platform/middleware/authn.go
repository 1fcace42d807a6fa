// Copyright (c) 2026 Tallyboard. All rights reserved.
// Author: dev@tallyboard.app

package middleware

import (
	"net/http"
	"strings"

	"github.com/tallyboard/tallyboard/internal/platform/apperr"
	"github.com/tallyboard/tallyboard/internal/platform/constants"
	"github.com/tallyboard/tallyboard/internal/platform/ctxutil"
	"github.com/tallyboard/tallyboard/internal/platform/respond"
	"github.com/tallyboard/tallyboard/internal/platform/sec"
)

// TokenVerifier defines the interface needed to verify tokens in middleware.
//
// # Why an interface?
//
// Defining TokenVerifier here decouples the middleware from the [sec]
// implementation, allowing us to easily inject mocks during unit testing.
type TokenVerifier interface {
	Verify(tokenStr string) (*sec.Claims, error)
}

// Authenticate extracts and verifies the bearer token from the Authorization header.
//
// # Flow
//  1. Check for 'Authorization: Bearer <token>' header.
//  2. If absent or malformed, the request proceeds as anonymous.
//  3. If present, verify the token via [TokenVerifier].
//  4. On success, inject [*sec.Claims] and the raw token into the context.
//  5. On failure, the request still proceeds as anonymous — endpoints that
//     require identity reject it in [RequireAuth] with the canonical message.
//
// Passing invalid tokens through as anonymous (rather than rejecting here) is
// what lets pages render differently for anonymous vs. authenticated visitors
// without forcing a login round trip.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			authHeader := request.Header.Get(constants.HeaderAuthorization)

			// ── 1. Anonymous Access ───────────────────────────────────────────
			if authHeader == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 2. Format Validation ──────────────────────────────────────────
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 3. Token Verification ─────────────────────────────────────────
			tokenStr := parts[1]
			claims, err := verifier.Verify(tokenStr)
			if err != nil {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 4. Context Injection ──────────────────────────────────────────
			ctx := ctxutil.WithClaims(request.Context(), claims)
			ctx = ctxutil.WithBearerToken(ctx, tokenStr)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth blocks requests that are not authenticated.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate].
//
// Missing, malformed, expired, and forged tokens all produce the identical
// 401 response so the failure mode leaks nothing about the token's state.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		claims := ctxutil.GetClaims(request.Context())
		if claims == nil {
			respond.Error(writer, request, apperr.Unauthorized("Invalid authentication credentials"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}
