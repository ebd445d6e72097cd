package sched

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
)

// NewScheduler returns a scheduler dispatching through the given
// provider.
func NewScheduler(l hclog.Logger, c CapacityProvider) *Scheduler {
	return &Scheduler{
		l:                l.Named("scheduler"),
		capacityProvider: c,
		queueMutex:       new(sync.Mutex),
	}
}

// Enqueue appends builds that are not already queued or running.
func (s *Scheduler) Enqueue(builds ...Build) {
	current, err := s.capacityProvider.ListBuilds()
	if err != nil {
		s.l.Warn("Unable to list running builds", "error", err)
	}

	s.queueMutex.Lock()
	defer s.queueMutex.Unlock()
	for _, b := range builds {
		if s.known(current, b) {
			continue
		}
		s.queue = append(s.queue, b)
	}
	s.l.Debug("Queue updated", "depth", len(s.queue))
}

// known must be called with the queue mutex held.
func (s *Scheduler) known(current []Build, b Build) bool {
	for _, cur := range current {
		if b.Equal(cur) {
			return true
		}
	}
	for _, queued := range s.queue {
		if b.Equal(queued) {
			return true
		}
	}
	return false
}

// QueueDepth returns how many builds are waiting to dispatch.
func (s *Scheduler) QueueDepth() int {
	s.queueMutex.Lock()
	defer s.queueMutex.Unlock()
	return len(s.queue)
}

// Pops a build off the queue and hands it off to the
// CapacityProvider.
func (s *Scheduler) send() error {
	s.queueMutex.Lock()
	defer s.queueMutex.Unlock()

	if len(s.queue) == 0 {
		return errors.New("none in queue")
	}
	if err := s.capacityProvider.DispatchBuild(s.queue[0]); err != nil {
		s.l.Trace("Unable to dispatch right now", "build", s.queue[0], "err", err)
		return err
	}
	s.l.Trace("Dispatching", "build", s.queue[0])
	s.queue = s.queue[1:]
	return nil
}

// Run dispatches until the context is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if err := s.send(); err != nil {
			// Don't try to send too often.
			time.Sleep(time.Second)
		}
	}
}
