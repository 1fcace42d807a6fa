// Copyright (c) 2026 Tallyboard. All rights reserved.
// Author: dev@tallyboard.app

package identity

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tallyboard/tallyboard/internal/platform/ctxutil"
	"github.com/tallyboard/tallyboard/internal/platform/middleware"
	"github.com/tallyboard/tallyboard/internal/platform/respond"
	"github.com/tallyboard/tallyboard/internal/platform/validate"
)

// Handler implements the user-facing identity endpoints.
//
// # Scope
//
// This handler manages the user lifecycle entry points: registration, token
// issuance (login), and current-user resolution. It contains NO business
// logic or database queries.
//
// # Wire Format
//
// Register and token endpoints accept application/x-www-form-urlencoded
// bodies rather than JSON: the token endpoint follows the OAuth2 password
// grant shape, and uploader clients submit both forms the same way.
type Handler struct {
	service *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] configured with identity-specific routes.
//
// # Endpoints
//   - POST /register : Creates a new account.
//   - POST /token    : Authenticates and returns a bearer token (OAuth2 password grant).
//   - GET  /me       : Returns the authenticated account.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/register", handler.register)
	router.Post("/token", handler.token)

	router.Group(func(protected chi.Router) {
		protected.Use(middleware.RequireAuth)
		protected.Get("/me", handler.me)
	})

	return router
}

// register handles POST /users/register requests.
//
// # Returns
//   - Writes HTTP 201 Created on success with the public user representation.
//   - Writes HTTP 400 Bad Request if validation rules fail.
//   - Writes HTTP 409 Conflict if username or email is taken.
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	// ── 1. Payload Extraction ─────────────────────────────────────────────

	if err := request.ParseForm(); err != nil {
		respond.Error(writer, request, validate.RequiredError("body", "must be form-encoded"))
		return
	}

	input := RegisterInput{
		Username: request.PostFormValue("username"),
		Email:    request.PostFormValue("email"),
		Password: request.PostFormValue("password"),
	}

	// ── 2. Application Execution ──────────────────────────────────────────

	// Service handles validation, uniqueness, and bcrypt hashing. Domain
	// errors map to HTTP status codes inside the respond helper.
	user, err := handler.service.Register(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 3. Presentation Output ────────────────────────────────────────────

	// The User entity marshals without its password hash.
	respond.Created(writer, user)
}

// tokenResponse is the OAuth2 password-grant response shape.
//
// It is deliberately NOT wrapped in the standard success envelope: OAuth2
// clients expect access_token and token_type at the top level.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// token handles POST /users/token requests (OAuth2 password grant).
//
// The 'username' form field accepts either a username or an email address.
//
// # Returns
//   - Writes HTTP 200 OK with {access_token, token_type: "bearer"}.
//   - Writes HTTP 401 Unauthorized with 'WWW-Authenticate: Bearer' for bad
//     credentials; the message never reveals which factor was wrong.
func (handler *Handler) token(writer http.ResponseWriter, request *http.Request) {
	// ── 1. Payload Extraction ─────────────────────────────────────────────

	if err := request.ParseForm(); err != nil {
		respond.Error(writer, request, validate.RequiredError("body", "must be form-encoded"))
		return
	}

	identifier := request.PostFormValue("username")
	password := request.PostFormValue("password")

	// ── 2. Boundary Validation ────────────────────────────────────────────

	if identifier == "" || password == "" {
		respond.Error(writer, request, validate.RequiredError("username/password", "are required"))
		return
	}

	// ── 3. Application Execution ──────────────────────────────────────────

	accessToken, err := handler.service.Login(request.Context(), identifier, password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 4. Presentation Output ────────────────────────────────────────────

	respond.JSON(writer, http.StatusOK, tokenResponse{
		AccessToken: accessToken,
		TokenType:   "bearer",
	})
}

// me handles GET /users/me requests.
//
// The subject is re-resolved against the credential store on every call, so
// a token for a since-removed account is rejected even though its signature
// still verifies.
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	user, err := handler.service.ResolveRequired(request.Context(), ctxutil.GetBearerToken(request.Context()))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}
