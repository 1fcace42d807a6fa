// Copyright (c) 2026 Tallyboard. All rights reserved.
// Author: dev@tallyboard.app

package leaderboard

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tallyboard/tallyboard/internal/platform/respond"
	"github.com/tallyboard/tallyboard/pkg/slug"
)

// Handler implements the public leaderboard endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] configured with leaderboard-specific routes.
//
// # Endpoints
//   - GET /all-time            : All-time ranking.
//   - GET /category/{category} : Ranking within one category.
//
// Both endpoints are public: rankings contain no credential material.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/all-time", handler.allTime)
	router.Get("/category/{category}", handler.byCategory)

	return router
}

// allTime handles GET /leaderboard/all-time requests.
func (handler *Handler) allTime(writer http.ResponseWriter, request *http.Request) {
	entries, err := handler.service.TopAllTime(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, entries)
}

// byCategory handles GET /leaderboard/category/{category} requests.
//
// The path segment is slug-normalized before lookup so human-entered
// category names ("Deep Work") resolve to the same board as their slugs.
func (handler *Handler) byCategory(writer http.ResponseWriter, request *http.Request) {
	category := slug.From(chi.URLParam(request, "category"))

	entries, err := handler.service.TopByCategory(request.Context(), category)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, entries)
}
