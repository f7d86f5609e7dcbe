package database

import (
	"time"
)

type RunRepository interface {
	CreateRun(startedAt time.Time, feedCount int) (int64, error)
	FinishRun(runID int64, finishedAt time.Time, blogCount, postCount int, digestHTML string) error
	AddFeedResult(runID int64, result FeedResult) error

	GetRun(runID int64) (*Run, error)
	GetLatestRun() (*Run, error)
	ListRuns(limit int) ([]Run, error)
	GetFeedResults(runID int64) ([]FeedResult, error)
	GetRunCount() (int, error)
}

var _ RunRepository = (*SQLRunRepository)(nil)
