package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/feed-digest/app/database"
	"github.com/lysyi3m/feed-digest/app/feed"
	"github.com/lysyi3m/feed-digest/app/sources"
)

type Digest struct {
	RunID  int64
	HTML   string
	Report *Report
}

// Digester produces one digest per Run: fetch every source, render the
// recent posts and record the run.
type Digester struct {
	pool      *Pool
	generator *feed.Generator
	runRepo   database.RunRepository
	sources   []sources.Source
	location  *time.Location
	now       func() time.Time
}

func NewDigester(pool *Pool, generator *feed.Generator, runRepo database.RunRepository, srcs []sources.Source, location *time.Location) *Digester {
	if location == nil {
		location = time.UTC
	}

	return &Digester{
		pool:      pool,
		generator: generator,
		runRepo:   runRepo,
		sources:   srcs,
		location:  location,
		now:       time.Now,
	}
}

func (d *Digester) Run(ctx context.Context) (*Digest, error) {
	startedAt := d.now()

	runID, err := d.runRepo.CreateRun(startedAt, len(d.sources))
	if err != nil {
		return nil, fmt.Errorf("failed to record run start: %w", err)
	}

	report := d.pool.Run(ctx, d.sources)

	html, err := d.generator.Run(report.Blogs, d.now().In(d.location))
	if err != nil {
		return nil, fmt.Errorf("failed to generate digest: %w", err)
	}

	failed := 0
	for _, result := range report.Results {
		if result.Status == StatusFailed {
			failed++
		}
		if err := d.runRepo.AddFeedResult(runID, result); err != nil {
			return nil, fmt.Errorf("failed to record feed result: %w", err)
		}
	}

	postCount := report.PostCount()
	if err := d.runRepo.FinishRun(runID, d.now(), len(report.Blogs), postCount, html); err != nil {
		return nil, fmt.Errorf("failed to record run finish: %w", err)
	}

	slog.Info("Digest built",
		"run_id", runID,
		"duration", time.Since(startedAt),
		"feeds", len(d.sources),
		"failed", failed,
		"blogs", len(report.Blogs),
		"posts", postCount)

	return &Digest{RunID: runID, HTML: html, Report: report}, nil
}
