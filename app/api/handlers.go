package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/feed-digest/app/database"
	"github.com/lysyi3m/feed-digest/app/tasks"
)

const (
	defaultRunsLimit = 20
	maxRunsLimit     = 100
)

func NewHandler(runRepo database.RunRepository, scheduler tasks.SchedulerInterface, version string) *Handler {
	return &Handler{
		runRepo:   runRepo,
		scheduler: scheduler,
		version:   version,
	}
}

func (h *Handler) GetDigest(c *gin.Context) {
	run, err := h.runRepo.GetLatestRun()
	if err != nil {
		slog.Error("Database error", "operation", "get_latest_run", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	if run == nil {
		c.String(http.StatusNotFound, "No digest has been built yet")
		return
	}

	c.Header("X-Digest-Run", strconv.FormatInt(run.ID, 10))
	c.Header("X-Digest-Posts", strconv.Itoa(run.PostCount))
	if run.FinishedAt != nil {
		c.Header("X-Last-Updated", run.FinishedAt.Format(time.RFC3339))
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(run.DigestHTML))
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if runCount, err := h.runRepo.GetRunCount(); err == nil {
		health["runs"] = runCount
	}

	if run, err := h.runRepo.GetLatestRun(); err == nil && run != nil {
		health["last_run_at"] = run.FinishedAt
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) ListRuns(c *gin.Context) {
	limit := defaultRunsLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(parsed, maxRunsLimit)
	}

	runs, err := h.runRepo.ListRuns(limit)
	if err != nil {
		slog.Error("Database error", "operation", "list_runs", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	items := make([]gin.H, 0, len(runs))
	for _, run := range runs {
		items = append(items, runJSON(run))
	}

	c.JSON(http.StatusOK, gin.H{
		"runs":  items,
		"total": len(items),
	})
}

func (h *Handler) GetRun(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid run id"})
		return
	}

	run, err := h.runRepo.GetRun(id)
	if err != nil {
		slog.Error("Database error", "operation", "get_run", "run_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if run == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Run not found"})
		return
	}

	results, err := h.runRepo.GetFeedResults(id)
	if err != nil {
		slog.Error("Database error", "operation", "get_feed_results", "run_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	feeds := make([]gin.H, 0, len(results))
	for _, result := range results {
		feeds = append(feeds, gin.H{
			"url":         result.URL,
			"title":       result.Title,
			"status":      result.Status,
			"posts":       result.PostCount,
			"dropped":     result.DroppedCount,
			"error":       result.Error,
			"duration_ms": result.Duration.Milliseconds(),
		})
	}

	details := runJSON(*run)
	details["feeds"] = feeds

	c.JSON(http.StatusOK, details)
}

func (h *Handler) APIRefresh(c *gin.Context) {
	if h.scheduler == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Scheduler is not running"})
		return
	}

	err := h.scheduler.Trigger()
	if errors.Is(err, tasks.ErrRunPending) {
		c.JSON(http.StatusConflict, gin.H{
			"error":   "Refresh already pending",
			"details": err.Error(),
		})
		return
	}
	if err != nil {
		slog.Error("Error triggering digest run", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to trigger refresh",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"message": "Digest refresh scheduled",
	})
}

func runJSON(run database.Run) gin.H {
	return gin.H{
		"id":          run.ID,
		"started_at":  run.StartedAt,
		"finished_at": run.FinishedAt,
		"feed_count":  run.FeedCount,
		"blog_count":  run.BlogCount,
		"post_count":  run.PostCount,
	}
}
