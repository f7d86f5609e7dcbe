package tasks

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/lysyi3m/feed-digest/app/database"
	"github.com/lysyi3m/feed-digest/app/feed"
	"github.com/lysyi3m/feed-digest/app/sources"
)

// MockRunRepository keeps runs in memory
type MockRunRepository struct {
	mu      sync.Mutex
	runs    []database.Run
	results map[int64][]database.FeedResult
	err     error
}

var _ database.RunRepository = (*MockRunRepository)(nil)

func (m *MockRunRepository) CreateRun(startedAt time.Time, feedCount int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	id := int64(len(m.runs) + 1)
	m.runs = append(m.runs, database.Run{ID: id, StartedAt: startedAt, FeedCount: feedCount})
	return id, nil
}

func (m *MockRunRepository) FinishRun(runID int64, finishedAt time.Time, blogCount, postCount int, digestHTML string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	run := &m.runs[runID-1]
	run.FinishedAt = &finishedAt
	run.BlogCount = blogCount
	run.PostCount = postCount
	run.DigestHTML = digestHTML
	return nil
}

func (m *MockRunRepository) AddFeedResult(runID int64, result database.FeedResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.results == nil {
		m.results = make(map[int64][]database.FeedResult)
	}
	result.RunID = runID
	m.results[runID] = append(m.results[runID], result)
	return nil
}

func (m *MockRunRepository) GetRun(runID int64) (*database.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if runID < 1 || int(runID) > len(m.runs) {
		return nil, nil
	}
	run := m.runs[runID-1]
	return &run, nil
}

func (m *MockRunRepository) GetLatestRun() (*database.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.runs) - 1; i >= 0; i-- {
		if m.runs[i].FinishedAt != nil {
			run := m.runs[i]
			return &run, nil
		}
	}
	return nil, nil
}

func (m *MockRunRepository) ListRuns(limit int) ([]database.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var runs []database.Run
	for i := len(m.runs) - 1; i >= 0 && len(runs) < limit; i-- {
		runs = append(runs, m.runs[i])
	}
	return runs, nil
}

func (m *MockRunRepository) GetFeedResults(runID int64) ([]database.FeedResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.results[runID], nil
}

func (m *MockRunRepository) GetRunCount() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.runs), nil
}

func TestDigesterRun(t *testing.T) {
	now := time.Now().UTC()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, rssFeed("Digest Blog", now))
	}))
	defer server.Close()

	repo := &MockRunRepository{}
	pool := newTestPool(PoolConfig{WorkerCount: 2, Days: 7})
	srcs := []sources.Source{{URL: server.URL + "/feed"}, {URL: server.URL + "/missing"}}
	digester := NewDigester(pool, feed.NewGenerator("test"), repo, srcs, time.UTC)

	digest, err := digester.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(digest.HTML, "<h2>Digest Blog</h2>") {
		t.Errorf("Expected blog heading in digest, got: %s", digest.HTML)
	}
	if !strings.Contains(digest.HTML, "Feed Digest - "+now.Format(time.DateOnly)) {
		t.Errorf("Expected dated heading in digest")
	}

	run, err := repo.GetLatestRun()
	if err != nil {
		t.Fatal(err)
	}
	if run == nil || run.ID != digest.RunID {
		t.Fatalf("Expected finished run %d, got %+v", digest.RunID, run)
	}
	if run.FeedCount != 2 || run.BlogCount != 1 || run.PostCount != 1 {
		t.Errorf("Unexpected run counts: %+v", run)
	}
	if run.DigestHTML != digest.HTML {
		t.Error("Expected stored digest to match generated HTML")
	}

	results, _ := repo.GetFeedResults(digest.RunID)
	if len(results) != 2 {
		t.Fatalf("Expected 2 feed results, got %d", len(results))
	}
	if results[0].Status != StatusOK || results[1].Status != StatusFailed {
		t.Errorf("Expected ok then failed, got %s then %s", results[0].Status, results[1].Status)
	}
}

func TestDigesterRunStoreError(t *testing.T) {
	repo := &MockRunRepository{err: errors.New("disk full")}
	digester := NewDigester(newTestPool(PoolConfig{}), feed.NewGenerator("test"), repo, nil, nil)

	if _, err := digester.Run(context.Background()); err == nil {
		t.Error("Expected error when run cannot be recorded")
	}
}

func TestDigesterRunNoSources(t *testing.T) {
	repo := &MockRunRepository{}
	digester := NewDigester(newTestPool(PoolConfig{}), feed.NewGenerator("test"), repo, nil, nil)

	digest, err := digester.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(digest.HTML, "No new posts.") {
		t.Errorf("Expected empty digest, got: %s", digest.HTML)
	}
}
