// Copyright (c) 2026 Tallyboard. All rights reserved.
// Author: dev@tallyboard.app

// Package event implements activity-event intake for the Tallyboard platform.
//
// Events are the raw material every ranking is computed from. An event is a
// timestamped activity sample owned by exactly one user; its payload is an
// open-ended document so that future scoring metrics can be derived without
// schema migrations.
package event

import (
	"time"
)

// Event is a single user activity sample.
//
// # Rules
//   - UserID must reference an existing user (enforced by a foreign key).
//   - Duration is non-negative, in seconds.
//   - Data is schema-free JSONB; the only key the platform itself interprets
//     is "category", which is slug-normalized into the Category column at
//     ingest so rankings can filter on it.
//   - Events are immutable once ingested.
type Event struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	Timestamp time.Time      `json:"timestamp"`
	Duration  int64          `json:"duration"`
	Category  string         `json:"category,omitempty"`
	Data      map[string]any `json:"data"`
	CreatedAt time.Time      `json:"created_at"`
}
