package tasks

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/lysyi3m/feed-digest/app/feed"
	"github.com/lysyi3m/feed-digest/app/sources"
)

// FetchError is returned for non-200 responses.
type FetchError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("HTTP error: %s", e.Status)
}

type FetchFeedTask struct {
	Task
	Source   sources.Source
	Position int

	// Set by Execute on success.
	Blog        *feed.Blog
	Dropped     int
	NotModified bool

	cache      *FetchCache
	httpClient *http.Client
	parser     *feed.Parser
	userAgent  string
	timeout    time.Duration
	terminal   bool
}

func NewFetchFeedTask(position int, source sources.Source, httpClient *http.Client, parser *feed.Parser, userAgent string, timeout time.Duration) *FetchFeedTask {
	return &FetchFeedTask{
		Task:       NewTask(TaskTypeFetchFeed, source.URL),
		Source:     source,
		Position:   position,
		httpClient: httpClient,
		parser:     parser,
		userAgent:  userAgent,
		timeout:    timeout,
	}
}

// CanRetry reports false once the feed has been downloaded but failed to
// parse. Fetching the same bytes again would fail the same way.
func (t *FetchFeedTask) CanRetry() bool {
	return !t.terminal && t.Task.CanRetry()
}

func (t *FetchFeedTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	data, err := t.fetchFeed(ctx, t.URL)
	if err != nil {
		return fmt.Errorf("failed to fetch feed: %w", err)
	}

	dropped := 0
	blog, err := t.parser.RunWithDropped(data, func(feed.EntryError) {
		dropped++
	})
	if err != nil {
		t.terminal = true
		return fmt.Errorf("failed to parse feed: %w", err)
	}

	t.Blog = blog
	t.Dropped = dropped

	slog.Info("Task completed",
		"type", string(t.Type),
		"feed", t.Source.Label(),
		"duration", t.GetDuration(),
		"posts", len(blog.Posts),
		"dropped", dropped)

	return nil
}

func (t *FetchFeedTask) fetchFeed(ctx context.Context, url string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", t.userAgent)

	cached, hasCached := t.cache.get(url)
	if hasCached {
		if cached.ETag != "" {
			req.Header.Set("If-None-Match", cached.ETag)
		}
		if cached.LastModified != "" {
			req.Header.Set("If-Modified-Since", cached.LastModified)
		}
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified && hasCached {
		t.NotModified = true
		slog.Debug("Feed not modified", "url", url)
		return cached.Body, nil
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	t.cache.set(url, cachedFeed{
		ETag:         resp.Header.Get("ETag"),
		LastModified: resp.Header.Get("Last-Modified"),
		Body:         data,
	})

	return data, nil
}
