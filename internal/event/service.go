// Copyright (c) 2026 Tallyboard. All rights reserved.
// Author: dev@tallyboard.app

package event

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tallyboard/tallyboard/internal/identity"
	"github.com/tallyboard/tallyboard/internal/platform/apperr"
	"github.com/tallyboard/tallyboard/internal/platform/ctxutil"
	"github.com/tallyboard/tallyboard/pkg/slug"
	"github.com/tallyboard/tallyboard/pkg/uuidv7"
)

// ScoreRecorder receives the score contribution of freshly ingested events.
//
// # Why an interface?
//
// The leaderboard cache implements this; defining the contract here keeps
// the intake path decoupled from ranking internals and lets tests inject a
// recording fake.
type ScoreRecorder interface {
	// Record adds duration seconds to the user's all-time score, and to the
	// category score when categorySlug is non-empty.
	Record(ctx context.Context, username, categorySlug string, duration int64) error
}

// Input is one event as submitted by an uploader client.
//
// Timestamp arrives as an RFC 3339 string and is parsed during validation;
// Data is carried through verbatim.
type Input struct {
	Timestamp string         `json:"timestamp"`
	Duration  int64          `json:"duration"`
	Data      map[string]any `json:"data"`
}

// Service implements the event intake use case.
type Service struct {
	store    Store
	recorder ScoreRecorder
}

// NewService constructs a new [Service] with necessary dependencies.
func NewService(store Store, recorder ScoreRecorder) *Service {
	return &Service{
		store:    store,
		recorder: recorder,
	}
}

// Ingest validates and persists a batch of events on behalf of owner.
//
// # Atomicity
//
// The whole batch is validated before anything touches storage, and the
// store commits it in one transaction: one malformed event (unparseable
// timestamp, negative duration) rejects the entire batch with a
// VALIDATION_ERROR naming the offending index, and nothing is persisted.
//
// # Returns
//   - The number of events ingested.
//   - [apperr.ValidationError] when any event in the batch is malformed.
//   - A wrapped storage error (surfaced as 500) when the transaction fails.
func (service *Service) Ingest(ctx context.Context, owner *identity.User, batch []Input) (int, error) {
	if owner == nil {
		return 0, apperr.Unauthorized("Invalid authentication credentials")
	}
	if len(batch) == 0 {
		return 0, nil
	}

	// ── 1. Validate the whole batch up front ──────────────────────────────

	events := make([]*Event, 0, len(batch))
	for index, input := range batch {
		timestamp, err := time.Parse(time.RFC3339, input.Timestamp)
		if err != nil {
			return 0, apperr.ValidationError("Invalid event batch", apperr.FieldError{
				Field:   fmt.Sprintf("events[%d].timestamp", index),
				Message: "Must be a valid RFC 3339 timestamp",
			})
		}
		if input.Duration < 0 {
			return 0, apperr.ValidationError("Invalid event batch", apperr.FieldError{
				Field:   fmt.Sprintf("events[%d].duration", index),
				Message: "Must not be negative",
			})
		}

		events = append(events, &Event{
			ID:        uuidv7.New(),
			UserID:    owner.ID,
			Timestamp: timestamp,
			Duration:  input.Duration,
			Category:  categoryOf(input.Data),
			Data:      input.Data,
		})
	}

	// ── 2. Persist all-or-nothing ─────────────────────────────────────────

	if err := service.store.InsertBatch(ctx, events); err != nil {
		return 0, fmt.Errorf("event_service_ingest_failed: %w", err)
	}

	// ── 3. Feed the ranking cache (best effort) ───────────────────────────

	// Postgres is authoritative; a cache failure is logged and swallowed so
	// a Redis hiccup never fails an otherwise committed upload.
	if service.recorder != nil {
		logger := ctxutil.GetLogger(ctx)
		for _, evt := range events {
			if err := service.recorder.Record(ctx, owner.Username, evt.Category, evt.Duration); err != nil {
				logger.WarnContext(ctx, "leaderboard_cache_record_failed",
					slog.String("username", owner.Username),
					slog.Any("error", err),
				)
				break
			}
		}
	}

	return len(events), nil
}

// categoryOf extracts and slug-normalizes the optional "category" payload key.
//
// Events without a category only count toward the all-time ranking.
func categoryOf(data map[string]any) string {
	raw, ok := data["category"].(string)
	if !ok {
		return ""
	}
	return slug.From(raw)
}
