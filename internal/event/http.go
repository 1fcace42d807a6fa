// Copyright (c) 2026 Tallyboard. All rights reserved.
// Author: dev@tallyboard.app

package event

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tallyboard/tallyboard/internal/identity"
	"github.com/tallyboard/tallyboard/internal/platform/ctxutil"
	"github.com/tallyboard/tallyboard/internal/platform/middleware"
	"github.com/tallyboard/tallyboard/internal/platform/respond"
	"github.com/tallyboard/tallyboard/internal/platform/validate"
)

// Handler implements the event upload endpoint.
type Handler struct {
	service  *Service
	identity *identity.Service
}

// NewHandler constructs a new [Handler] with its service dependencies.
func NewHandler(service *Service, identityService *identity.Service) *Handler {
	return &Handler{
		service:  service,
		identity: identityService,
	}
}

// Routes returns a [chi.Router] configured with event-specific routes.
//
// # Endpoints
//   - POST / : Uploads a batch of events for the authenticated user.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Group(func(protected chi.Router) {
		protected.Use(middleware.RequireAuth)
		protected.Post("/", handler.upload)
	})

	return router
}

// upload handles POST /events requests.
//
// # Returns
//   - Writes HTTP 200 OK with {ingested, message} on success.
//   - Writes HTTP 400 Bad Request when any event in the batch is malformed
//     (the whole batch is rejected).
//   - Writes HTTP 401 Unauthorized for missing/invalid bearer tokens.
func (handler *Handler) upload(writer http.ResponseWriter, request *http.Request) {
	// ── 1. Owner Resolution ───────────────────────────────────────────────

	// Re-resolve the token subject against the credential store: a token
	// for a removed account must not ingest events.
	owner, err := handler.identity.ResolveRequired(request.Context(), ctxutil.GetBearerToken(request.Context()))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 2. Payload Extraction ─────────────────────────────────────────────

	var batch []Input
	if err := json.NewDecoder(request.Body).Decode(&batch); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	// ── 3. Application Execution ──────────────────────────────────────────

	count, err := handler.service.Ingest(request.Context(), owner, batch)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 4. Presentation Output ────────────────────────────────────────────

	respond.OK(writer, map[string]any{
		"ingested": count,
		"message":  "Events uploaded successfully",
	})
}
