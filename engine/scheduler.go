package engine

import (
	"runtime"
	"sync"

	"github.com/marben/mandel_explorer/grid"
)

// tracer is what the scheduler runs on a handed-off region.
type tracer interface {
	trace(r grid.Region)
}

type job struct {
	t      tracer
	region grid.Region
}

// scheduler is a fixed pool of goroutines that pick up regions through a
// single handoff slot.
//
// Workers park on work until a region is published. A region is only
// published when some worker is idle and the slot is empty; otherwise the
// caller keeps the region and recurses on its own goroutine. The pass is
// over once every worker is idle with nothing in the slot, which is
// announced on quiet.
//
// Thread safety: scheduler is safe for concurrent use.
type scheduler struct {
	workers int

	mu     sync.Mutex
	work   *sync.Cond // workers wait here for a handoff
	quiet  *sync.Cond // the controller waits here for completion
	idle   int
	slot   *job
	closed bool

	wg sync.WaitGroup
}

// newScheduler starts the pool. If workers is 0 or negative, GOMAXPROCS
// is used.
func newScheduler(workers int) *scheduler {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = max(workers, 1)

	s := &scheduler{
		workers: workers,
		idle:    workers,
	}
	s.work = sync.NewCond(&s.mu)
	s.quiet = sync.NewCond(&s.mu)

	s.wg.Add(workers)
	for range workers {
		go s.worker()
	}
	return s
}

func (s *scheduler) worker() {
	defer s.wg.Done()

	s.mu.Lock()
	defer s.mu.Unlock()
	for {
		for s.slot == nil && !s.closed {
			s.work.Wait()
		}
		if s.closed {
			return
		}

		j := s.slot
		s.slot = nil
		s.idle--
		s.mu.Unlock()

		j.t.trace(j.region)

		s.mu.Lock()
		s.idle++
		if s.quiescent() {
			s.quiet.Broadcast()
		}
	}
}

// offer hands r to an idle worker. It returns false when no worker is
// idle, a handoff is already pending or the pool is closed; the caller
// must then trace r itself.
func (s *scheduler) offer(t tracer, r grid.Region) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.idle == 0 || s.slot != nil {
		return false
	}
	s.slot = &job{t: t, region: r}
	s.work.Signal()
	return true
}

// quiescent must be called with mu held.
func (s *scheduler) quiescent() bool {
	return s.slot == nil && s.idle == s.workers
}

// wait blocks until every worker is idle and no handoff is pending.
func (s *scheduler) wait() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for !s.quiescent() {
		s.quiet.Wait()
	}
}

// idleWorkers returns the number of parked workers.
func (s *scheduler) idleWorkers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.idle
}

// close stops the workers. A pending handoff is dropped, so close must
// only be called once the current pass is cancelled or finished.
// close is safe to call multiple times.
func (s *scheduler) close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.slot = nil
	s.work.Broadcast()
	s.quiet.Broadcast()
	s.mu.Unlock()

	s.wg.Wait()
}
