// Copyright (c) 2026 Tallyboard. All rights reserved.
// Author: dev@tallyboard.app

package identity_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyboard/tallyboard/internal/identity"
	"github.com/tallyboard/tallyboard/internal/platform/middleware"
	"github.com/tallyboard/tallyboard/internal/platform/sec"
)

// newTestRouter mounts the identity routes behind the real authentication
// middleware, mirroring the production server wiring.
func newTestRouter(t *testing.T) (chi.Router, *identity.Service) {
	t.Helper()

	tokenService, err := sec.NewTokenService("test-signing-key", "tallyboard.test", time.Hour)
	require.NoError(t, err)

	service := identity.NewService(&memoryStore{}, tokenService)

	router := chi.NewRouter()
	router.Use(middleware.Authenticate(tokenService))
	router.Mount("/users", identity.NewHandler(service).Routes())
	return router, service
}

// postForm performs an application/x-www-form-urlencoded POST.
func postForm(router http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	request := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

// # Registration Endpoint

/*
TestHTTP_Register verifies POST /users/register: 201 with the public user
representation on success, and that the password hash never leaks.
*/
func TestHTTP_Register(t *testing.T) {
	router, _ := newTestRouter(t)

	recorder := postForm(router, "/users/register", url.Values{
		"username": {"alice"},
		"email":    {"alice@example.com"},
		"password": {"s3cret-password"},
	})

	require.Equal(t, http.StatusCreated, recorder.Code)

	var envelope struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))

	assert.Equal(t, "alice", envelope.Data["username"])
	assert.Equal(t, "alice@example.com", envelope.Data["email"])
	assert.Equal(t, true, envelope.Data["is_active"])
	assert.NotContains(t, recorder.Body.String(), "password")
}

/*
TestHTTP_Register_Duplicate verifies that re-registering a taken username
returns 409 with the documented conflict message.
*/
func TestHTTP_Register_Duplicate(t *testing.T) {
	router, _ := newTestRouter(t)

	form := url.Values{
		"username": {"alice"},
		"email":    {"alice@example.com"},
		"password": {"s3cret-password"},
	}
	require.Equal(t, http.StatusCreated, postForm(router, "/users/register", form).Code)

	recorder := postForm(router, "/users/register", form)
	require.Equal(t, http.StatusConflict, recorder.Code)

	var envelope struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	assert.Equal(t, "CONFLICT", envelope.Code)
	assert.Equal(t, "User with username alice or email alice@example.com already exists", envelope.Error)
}

/*
TestHTTP_Register_Validation verifies that invalid input returns 400 with
field-level details.
*/
func TestHTTP_Register_Validation(t *testing.T) {
	router, _ := newTestRouter(t)

	recorder := postForm(router, "/users/register", url.Values{
		"username": {"ab"},
		"email":    {"not-an-email"},
		"password": {"short"},
	})

	require.Equal(t, http.StatusBadRequest, recorder.Code)

	var envelope struct {
		Code    string           `json:"code"`
		Details []map[string]any `json:"details"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	assert.Equal(t, "VALIDATION_ERROR", envelope.Code)
	assert.NotEmpty(t, envelope.Details)
}

// # Token Endpoint

/*
TestHTTP_Token verifies POST /users/token: the OAuth2 password-grant response
shape on success and the canonical 401 with WWW-Authenticate on failure.
*/
func TestHTTP_Token(t *testing.T) {
	router, _ := newTestRouter(t)

	require.Equal(t, http.StatusCreated, postForm(router, "/users/register", url.Values{
		"username": {"alice"},
		"email":    {"alice@example.com"},
		"password": {"s3cret-password"},
	}).Code)

	t.Run("success", func(t *testing.T) {
		recorder := postForm(router, "/users/token", url.Values{
			"username": {"alice"},
			"password": {"s3cret-password"},
		})

		require.Equal(t, http.StatusOK, recorder.Code)

		// OAuth2 clients expect the fields at the top level, unenveloped.
		var body struct {
			AccessToken string `json:"access_token"`
			TokenType   string `json:"token_type"`
		}
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
		assert.NotEmpty(t, body.AccessToken)
		assert.Equal(t, "bearer", body.TokenType)
	})

	t.Run("email as identifier", func(t *testing.T) {
		recorder := postForm(router, "/users/token", url.Values{
			"username": {"alice@example.com"},
			"password": {"s3cret-password"},
		})
		assert.Equal(t, http.StatusOK, recorder.Code)
	})

	t.Run("bad credentials", func(t *testing.T) {
		recorder := postForm(router, "/users/token", url.Values{
			"username": {"alice"},
			"password": {"wrong-password"},
		})

		require.Equal(t, http.StatusUnauthorized, recorder.Code)
		assert.Equal(t, "Bearer", recorder.Header().Get("WWW-Authenticate"))

		var envelope struct {
			Error string `json:"error"`
		}
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
		assert.Equal(t, "Incorrect username or password", envelope.Error)
	})

	t.Run("unknown user gets identical message", func(t *testing.T) {
		recorder := postForm(router, "/users/token", url.Values{
			"username": {"nobody"},
			"password": {"s3cret-password"},
		})

		require.Equal(t, http.StatusUnauthorized, recorder.Code)

		var envelope struct {
			Error string `json:"error"`
		}
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
		assert.Equal(t, "Incorrect username or password", envelope.Error)
	})
}

// # Current User Endpoint

/*
TestHTTP_Me verifies GET /users/me: a valid bearer token resolves to the
account, and missing or invalid tokens produce the canonical 401.
*/
func TestHTTP_Me(t *testing.T) {
	router, _ := newTestRouter(t)

	require.Equal(t, http.StatusCreated, postForm(router, "/users/register", url.Values{
		"username": {"alice"},
		"email":    {"alice@example.com"},
		"password": {"s3cret-password"},
	}).Code)

	tokenRecorder := postForm(router, "/users/token", url.Values{
		"username": {"alice"},
		"password": {"s3cret-password"},
	})
	require.Equal(t, http.StatusOK, tokenRecorder.Code)

	var grant struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(tokenRecorder.Body.Bytes(), &grant))

	t.Run("with valid token", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/users/me", nil)
		request.Header.Set("Authorization", "Bearer "+grant.AccessToken)

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, request)

		require.Equal(t, http.StatusOK, recorder.Code)

		var envelope struct {
			Data map[string]any `json:"data"`
		}
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
		assert.Equal(t, "alice", envelope.Data["username"])
	})

	t.Run("without token", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/users/me", nil)

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, request)

		require.Equal(t, http.StatusUnauthorized, recorder.Code)
		assert.Equal(t, "Bearer", recorder.Header().Get("WWW-Authenticate"))

		var envelope struct {
			Error string `json:"error"`
		}
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
		assert.Equal(t, "Invalid authentication credentials", envelope.Error)
	})

	t.Run("with forged token", func(t *testing.T) {
		otherService, err := sec.NewTokenService("some-other-key", "tallyboard.test", time.Hour)
		require.NoError(t, err)

		forged, err := otherService.Issue("alice")
		require.NoError(t, err)

		request := httptest.NewRequest(http.MethodGet, "/users/me", nil)
		request.Header.Set("Authorization", "Bearer "+forged)

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})
}
