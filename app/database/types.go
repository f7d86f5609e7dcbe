package database

import (
	"time"
)

type Run struct {
	ID         int64
	StartedAt  time.Time
	FinishedAt *time.Time // nil while the run is in progress
	FeedCount  int        // sources attempted
	BlogCount  int        // blogs in the digest after filtering
	PostCount  int        // posts in the digest after filtering
	DigestHTML string     // not loaded by ListRuns
}

type FeedResult struct {
	ID           int64
	RunID        int64
	Position     int // index of the source in the run's source list
	URL          string
	Title        string
	Status       string
	PostCount    int
	DroppedCount int
	Error        string
	Duration     time.Duration
}
