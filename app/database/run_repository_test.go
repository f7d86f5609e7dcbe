package database

import (
	"path/filepath"
	"testing"
	"time"
)

func setupTestDB(t *testing.T) *SQLRunRepository {
	t.Helper()

	db, err := NewConnection(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	version, dirty, err := RunMigrations(db)
	if err != nil {
		t.Fatal(err)
	}
	if version != 2 || dirty {
		t.Fatalf("Expected clean migration version 2, got %d (dirty: %t)", version, dirty)
	}

	return NewRunRepository(db)
}

func TestRunMigrationsIdempotent(t *testing.T) {
	db, err := NewConnection(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	if _, _, err := RunMigrations(db); err != nil {
		t.Fatal(err)
	}
	version, _, err := RunMigrations(db)
	if err != nil {
		t.Fatalf("Expected second migration run to succeed, got: %v", err)
	}
	if version != 2 {
		t.Errorf("Expected version 2, got %d", version)
	}
}

func TestRunLifecycle(t *testing.T) {
	repo := setupTestDB(t)

	latest, err := repo.GetLatestRun()
	if err != nil {
		t.Fatal(err)
	}
	if latest != nil {
		t.Fatalf("Expected no latest run, got %+v", latest)
	}

	started := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	runID, err := repo.CreateRun(started, 3)
	if err != nil {
		t.Fatal(err)
	}

	// Unfinished runs are not served as the latest digest
	latest, err = repo.GetLatestRun()
	if err != nil {
		t.Fatal(err)
	}
	if latest != nil {
		t.Error("Expected unfinished run to be ignored")
	}

	results := []FeedResult{
		{Position: 1, URL: "https://example.org/rss", Status: "failed", Error: "deserialize error: no known feed dialect matched", Duration: 1500 * time.Millisecond},
		{Position: 0, URL: "https://example.com/feed", Title: "Example", Status: "ok", PostCount: 4, DroppedCount: 1, Duration: 250 * time.Millisecond},
	}
	for _, result := range results {
		if err := repo.AddFeedResult(runID, result); err != nil {
			t.Fatal(err)
		}
	}

	finished := started.Add(5 * time.Second)
	if err := repo.FinishRun(runID, finished, 1, 4, "<html></html>"); err != nil {
		t.Fatal(err)
	}

	run, err := repo.GetLatestRun()
	if err != nil {
		t.Fatal(err)
	}
	if run == nil {
		t.Fatal("Expected latest run")
	}
	if run.ID != runID {
		t.Errorf("Expected run ID %d, got %d", runID, run.ID)
	}
	if !run.StartedAt.Equal(started) {
		t.Errorf("Expected started at %v, got %v", started, run.StartedAt)
	}
	if run.FinishedAt == nil || !run.FinishedAt.Equal(finished) {
		t.Errorf("Expected finished at %v, got %v", finished, run.FinishedAt)
	}
	if run.FeedCount != 3 || run.BlogCount != 1 || run.PostCount != 4 {
		t.Errorf("Unexpected counts: %+v", run)
	}
	if run.DigestHTML != "<html></html>" {
		t.Errorf("Expected digest HTML to round-trip, got %q", run.DigestHTML)
	}

	stored, err := repo.GetFeedResults(runID)
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 2 {
		t.Fatalf("Expected 2 feed results, got %d", len(stored))
	}
	if stored[0].URL != "https://example.com/feed" {
		t.Errorf("Expected results ordered by position, got %s first", stored[0].URL)
	}
	if stored[0].PostCount != 4 || stored[0].DroppedCount != 1 || stored[0].Title != "Example" {
		t.Errorf("Unexpected first result: %+v", stored[0])
	}
	if stored[1].Duration != 1500*time.Millisecond {
		t.Errorf("Expected duration 1.5s, got %v", stored[1].Duration)
	}
}

func TestListRuns(t *testing.T) {
	repo := setupTestDB(t)
	base := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		runID, err := repo.CreateRun(base.Add(time.Duration(i)*time.Hour), i)
		if err != nil {
			t.Fatal(err)
		}
		if err := repo.FinishRun(runID, base.Add(time.Duration(i)*time.Hour+time.Minute), 0, 0, "digest"); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := repo.ListRuns(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("Expected 2 runs, got %d", len(runs))
	}
	if runs[0].FeedCount != 2 {
		t.Errorf("Expected newest run first, got feed count %d", runs[0].FeedCount)
	}
	if runs[0].DigestHTML != "" {
		t.Error("Expected ListRuns to skip digest HTML")
	}

	count, err := repo.GetRunCount()
	if err != nil {
		t.Fatal(err)
	}
	if count != 3 {
		t.Errorf("Expected 3 runs, got %d", count)
	}
}

func TestGetRunNotFound(t *testing.T) {
	repo := setupTestDB(t)

	run, err := repo.GetRun(42)
	if err != nil {
		t.Fatal(err)
	}
	if run != nil {
		t.Errorf("Expected nil run, got %+v", run)
	}

	if err := repo.FinishRun(42, time.Now(), 0, 0, ""); err == nil {
		t.Error("Expected error finishing unknown run")
	}
}
