// Package scheduler runs periodic background jobs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
)

// warmTimeout bounds a single cache warming run.
const warmTimeout = 2 * time.Minute

// CacheWarmer refreshes cached prices. *service.MarketService implements it.
type CacheWarmer interface {
	WarmCache(ctx context.Context) (int, error)
}

// Scheduler re-warms the price cache on a cron schedule. Runs never overlap:
// a tick that fires while the previous run is still going is skipped.
type Scheduler struct {
	cron    *cron.Cron
	warmer  CacheWarmer
	initial sync.WaitGroup
	running atomic.Bool
	runs    atomic.Int64
}

// New creates a Scheduler for spec, which accepts the standard five-field
// cron format and descriptors such as "@every 5m".
func New(warmer CacheWarmer, spec string) (*Scheduler, error) {
	s := &Scheduler{
		cron:   cron.New(),
		warmer: warmer,
	}
	if _, err := s.cron.AddFunc(spec, s.warm); err != nil {
		return nil, fmt.Errorf("invalid warm schedule %q: %w", spec, err)
	}
	return s, nil
}

// Start warms the cache once immediately, then runs on schedule.
func (s *Scheduler) Start() {
	s.initial.Go(s.warm)
	s.cron.Start()
	log.Printf("scheduler: price cache warming started")
}

// Stop halts the schedule and waits, until ctx is done, for any running job
// including the initial warm started by Start.
func (s *Scheduler) Stop(ctx context.Context) {
	cronDone := s.cron.Stop().Done()
	done := make(chan struct{})
	go func() {
		<-cronDone
		s.initial.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		log.Printf("scheduler: stopped before warm run finished")
	}
}

// Runs returns the number of completed warm runs.
func (s *Scheduler) Runs() int64 {
	return s.runs.Load()
}

func (s *Scheduler) warm() {
	if !s.running.CompareAndSwap(false, true) {
		log.Printf("scheduler: previous warm run still in progress, skipping")
		return
	}
	defer s.running.Store(false)

	ctx, cancel := context.WithTimeout(context.Background(), warmTimeout)
	defer cancel()

	start := time.Now()
	n, err := s.warmer.WarmCache(ctx)
	s.runs.Add(1)
	if err != nil {
		log.Printf("scheduler: cache warm failed: %v", err)
		return
	}
	log.Printf("scheduler: refreshed %d symbols in %s", n, time.Since(start).Round(time.Millisecond))
}
