package tasks

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

var ErrRunPending = errors.New("a digest run is already pending")

// Scheduler rebuilds the digest at startup, on every interval tick and on
// demand. Runs never overlap.
type Scheduler struct {
	digester DigestRunner
	interval time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	trigger  chan struct{}
}

func NewScheduler(digester DigestRunner, interval time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		digester: digester,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
		trigger:  make(chan struct{}, 1),
	}
}

func (s *Scheduler) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.runDigest("startup")

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.runDigest("interval")
			case <-s.trigger:
				s.runDigest("trigger")
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

// Trigger requests a run as soon as the current one, if any, completes.
func (s *Scheduler) Trigger() error {
	select {
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
	}

	select {
	case s.trigger <- struct{}{}:
		return nil
	default:
		return ErrRunPending
	}
}

func (s *Scheduler) runDigest(reason string) {
	slog.Debug("Starting digest run", "reason", reason)

	digest, err := s.digester.Run(s.ctx)
	if err != nil {
		slog.Error("Digest run failed", "reason", reason, "error", err)
		return
	}

	slog.Debug("Digest run finished", "reason", reason, "run_id", digest.RunID)
}
