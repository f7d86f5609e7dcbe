package tasks

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/lysyi3m/feed-digest/app/database"
	"github.com/lysyi3m/feed-digest/app/feed"
	"github.com/lysyi3m/feed-digest/app/sources"
)

const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

type PoolConfig struct {
	WorkerCount int
	MaxRetries  int
	Timeout     time.Duration
	UserAgent   string
	Days        int
	RetryBase   time.Duration // first retry delay, doubled per attempt
}

// Pool fetches and parses a list of sources concurrently.
type Pool struct {
	httpClient *http.Client
	parser     *feed.Parser
	filterer   *feed.Filterer
	cfg        PoolConfig
	cache      *FetchCache
	now        func() time.Time
}

// Report holds one pool run. Blogs and Results follow the order of the
// sources passed to Run. Blogs only contains feeds with recent posts.
type Report struct {
	Blogs   []feed.Blog
	Results []database.FeedResult
}

func (r *Report) PostCount() int {
	count := 0
	for _, blog := range r.Blogs {
		count += len(blog.Posts)
	}
	return count
}

func NewPool(httpClient *http.Client, parser *feed.Parser, filterer *feed.Filterer, cfg PoolConfig) *Pool {
	if cfg.WorkerCount < 1 {
		cfg.WorkerCount = 1
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = time.Second
	}

	return &Pool{
		httpClient: httpClient,
		parser:     parser,
		filterer:   filterer,
		cfg:        cfg,
		now:        time.Now,
	}
}

// WithCache enables conditional requests across runs.
func (p *Pool) WithCache(cache *FetchCache) *Pool {
	p.cache = cache
	return p
}

func (p *Pool) Run(ctx context.Context, srcs []sources.Source) *Report {
	report := &Report{
		Blogs:   []feed.Blog{},
		Results: make([]database.FeedResult, 0, len(srcs)),
	}
	if len(srcs) == 0 {
		return report
	}

	queue := make(chan *FetchFeedTask, len(srcs))
	done := make(chan *FetchFeedTask, len(srcs))
	errs := make([]error, len(srcs))
	durations := make([]time.Duration, len(srcs))

	var pending sync.WaitGroup
	pending.Add(len(srcs))
	for i, source := range srcs {
		task := NewFetchFeedTask(i, source, p.httpClient, p.parser, p.cfg.UserAgent, p.cfg.Timeout)
		task.MaxRetries = p.cfg.MaxRetries
		task.cache = p.cache
		queue <- task
	}

	finish := func(task *FetchFeedTask, err error) {
		errs[task.Position] = err
		durations[task.Position] = task.GetDuration()
		done <- task
		pending.Done()
	}

	workerCount := min(p.cfg.WorkerCount, len(srcs))
	var workers sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		workers.Add(1)
		go func(workerID int) {
			defer workers.Done()
			for task := range queue {
				p.executeTask(ctx, workerID, task, queue, finish)
			}
		}(i)
	}

	pending.Wait()
	close(queue)
	workers.Wait()
	close(done)

	tasks := make([]*FetchFeedTask, 0, len(srcs))
	for task := range done {
		tasks = append(tasks, task)
	}
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].Position < tasks[j].Position
	})

	now := p.now()
	for _, task := range tasks {
		result := database.FeedResult{
			Position: task.Position,
			URL:      task.URL,
			Title:    task.Source.Name,
			Duration: durations[task.Position],
		}

		if err := errs[task.Position]; err != nil {
			result.Status = StatusFailed
			result.Error = err.Error()
			report.Results = append(report.Results, result)
			continue
		}

		result.Status = StatusOK
		result.Title = task.Blog.Title
		result.DroppedCount = task.Dropped

		recent := p.filterer.Run([]feed.Blog{*task.Blog}, p.cfg.Days, now)
		if len(recent) > 0 {
			result.PostCount = len(recent[0].Posts)
			report.Blogs = append(report.Blogs, recent[0])
		}

		report.Results = append(report.Results, result)
	}

	return report
}

// executeTask runs one attempt. Retryable failures are put back on the queue
// after a backoff; everything else is handed to finish.
func (p *Pool) executeTask(ctx context.Context, workerID int, task *FetchFeedTask, queue chan<- *FetchFeedTask, finish func(*FetchFeedTask, error)) {
	task.Start()

	err := task.Execute(ctx)
	if err == nil {
		finish(task, nil)
		return
	}

	slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "url", task.GetURL(), "retry_count", task.GetRetryCount(), "error", err)

	if !task.CanRetry() || ctx.Err() != nil {
		if task.GetRetryCount() > 0 {
			slog.Error("Task failed after retries", "type", string(task.GetType()), "url", task.GetURL(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		}
		finish(task, err)
		return
	}

	task.IncrementRetryCount()
	delay := retryDelay(p.cfg.RetryBase, task.GetRetryCount())

	slog.Warn("Task retry scheduled", "type", string(task.GetType()), "url", task.GetURL(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", delay.String())

	go func() {
		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			slog.Debug("Run cancelled, skipping task retry", "type", string(task.GetType()), "url", task.GetURL())
			finish(task, err)
		case <-timer.C:
			queue <- task
		}
	}()
}
