// Copyright (c) 2026 Tallyboard. All rights reserved.
// Author: dev@tallyboard.app

package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyboard/tallyboard/internal/platform/ctxutil"
	"github.com/tallyboard/tallyboard/internal/platform/middleware"
	"github.com/tallyboard/tallyboard/internal/platform/sec"
)

func newTokenService(t *testing.T) *sec.TokenService {
	t.Helper()
	service, err := sec.NewTokenService("test-signing-key", "tallyboard.test", time.Hour)
	require.NoError(t, err)
	return service
}

/*
TestAuthenticate verifies the token extraction matrix: valid tokens inject
claims and the raw token, everything else passes through as anonymous.
*/
func TestAuthenticate(t *testing.T) {
	tokenService := newTokenService(t)

	validToken, err := tokenService.Issue("alice")
	require.NoError(t, err)

	expiredService, err := sec.NewTokenService("test-signing-key", "tallyboard.test", -time.Minute)
	require.NoError(t, err)
	expiredToken, err := expiredService.Issue("alice")
	require.NoError(t, err)

	testCases := []struct {
		name            string
		header          string
		expectedSubject string // empty means anonymous
	}{
		{name: "no header", header: "", expectedSubject: ""},
		{name: "malformed header", header: "Basic abc123", expectedSubject: ""},
		{name: "garbage token", header: "Bearer not-a-token", expectedSubject: ""},
		{name: "expired token", header: "Bearer " + expiredToken, expectedSubject: ""},
		{name: "valid token", header: "Bearer " + validToken, expectedSubject: "alice"},
		{name: "case-insensitive scheme", header: "bearer " + validToken, expectedSubject: "alice"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			var capturedSubject string
			var capturedToken string

			next := http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
				if claims := ctxutil.GetClaims(request.Context()); claims != nil {
					capturedSubject = claims.Subject
				}
				capturedToken = ctxutil.GetBearerToken(request.Context())
				writer.WriteHeader(http.StatusOK)
			})

			handler := middleware.Authenticate(tokenService)(next)

			request := httptest.NewRequest(http.MethodGet, "/", nil)
			if testCase.header != "" {
				request.Header.Set("Authorization", testCase.header)
			}

			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, request)

			// Authenticate never rejects on its own; RequireAuth does that.
			assert.Equal(t, http.StatusOK, recorder.Code)
			assert.Equal(t, testCase.expectedSubject, capturedSubject)

			if testCase.expectedSubject != "" {
				assert.NotEmpty(t, capturedToken, "the raw token must be available for re-resolution")
			} else {
				assert.Empty(t, capturedToken)
			}
		})
	}
}

/*
TestRequireAuth verifies that unauthenticated requests are blocked with the
canonical 401 body and WWW-Authenticate header, while authenticated ones pass.
*/
func TestRequireAuth(t *testing.T) {
	tokenService := newTokenService(t)

	validToken, err := tokenService.Issue("alice")
	require.NoError(t, err)

	next := http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusOK)
	})
	handler := middleware.Authenticate(tokenService)(middleware.RequireAuth(next))

	t.Run("anonymous is rejected", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)

		require.Equal(t, http.StatusUnauthorized, recorder.Code)
		assert.Equal(t, "Bearer", recorder.Header().Get("WWW-Authenticate"))
		assert.Contains(t, recorder.Body.String(), "Invalid authentication credentials")
	})

	t.Run("invalid token is rejected identically", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set("Authorization", "Bearer not-a-token")

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)

		require.Equal(t, http.StatusUnauthorized, recorder.Code)
		assert.Contains(t, recorder.Body.String(), "Invalid authentication credentials")
	})

	t.Run("authenticated passes", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set("Authorization", "Bearer "+validToken)

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusOK, recorder.Code)
	})
}
