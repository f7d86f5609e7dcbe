package tasks

import "context"

// SchedulerInterface is what the HTTP API needs from the background
// scheduler.
//
//	scheduler := NewScheduler(digester, interval)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.Trigger()
type SchedulerInterface interface {
	Start()
	Stop()
	Trigger() error
}

// DigestRunner builds and records one digest.
type DigestRunner interface {
	Run(ctx context.Context) (*Digest, error)
}

var (
	_ SchedulerInterface = (*Scheduler)(nil)
	_ DigestRunner       = (*Digester)(nil)
	_ TaskInterface      = (*FetchFeedTask)(nil)
)
