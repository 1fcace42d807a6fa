// Copyright (c) 2026 Tallyboard. All rights reserved.
// Author: dev@tallyboard.app

package event

import (
	"context"
)

// Store defines the data access contract for activity events.
type Store interface {
	// InsertBatch persists a batch of events atomically: either every event
	// in the slice is committed or none is. Partial writes are a correctness
	// bug — a ranking engine consuming these events would double-count or
	// undercount on client retry.
	InsertBatch(ctx context.Context, events []*Event) error
}
