package api

import (
	"github.com/lysyi3m/feed-digest/app/database"
	"github.com/lysyi3m/feed-digest/app/tasks"
)

type Handler struct {
	runRepo   database.RunRepository
	scheduler tasks.SchedulerInterface
	version   string
}
