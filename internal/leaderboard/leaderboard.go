// Copyright (c) 2026 Tallyboard. All rights reserved.
// Author: dev@tallyboard.app

// Package leaderboard computes and serves activity rankings.
//
// # Architecture
//
// PostgreSQL is the single source of truth: a ranking is a SUM of event
// durations grouped by user. Redis sorted sets act as a read-through cache
// so leaderboard pages do not re-aggregate the events table on every hit;
// event intake incrementally bumps scores in already-populated sets.
package leaderboard

// Entry is one row of a ranking: a user and their accumulated score.
//
// Score is the total event duration in seconds.
type Entry struct {
	Username string `json:"username"`
	Score    int64  `json:"score"`
}
