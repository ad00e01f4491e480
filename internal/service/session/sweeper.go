package session

import (
	"context"
	"log"
	"sync"
	"time"
)

const (
	// DefaultSweepInterval is how often the background sweep runs.
	DefaultSweepInterval = 30 * time.Minute
	// DefaultMaxAge is the age past which a session is evicted.
	DefaultMaxAge = time.Hour
)

// Sweeper periodically evicts expired sessions from a store. A single
// goroutine consumes the ticker, so sweeps never overlap: ticks that fire
// while a sweep is still running are dropped.
type Sweeper struct {
	store    *Store
	interval time.Duration
	maxAge   time.Duration

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewSweeper creates a sweeper for the given store. Non-positive interval or
// max age fall back to the defaults.
func NewSweeper(store *Store, interval, maxAge time.Duration) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &Sweeper{store: store, interval: interval, maxAge: maxAge}
}

// Start launches the background sweep loop. Starting an already running
// sweeper is a no-op.
func (s *Sweeper) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running = true

	go s.run(loopCtx)
}

// Stop cancels the sweep loop and waits for it to finish.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	cancel := s.cancel
	done := s.done
	s.mu.Unlock()

	cancel()
	<-done
}

// IsRunning reports whether the sweep loop is active.
func (s *Sweeper) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// RunOnce performs a single eviction pass and returns the number of sessions
// removed. Exposed so tests and operators can drive eviction without waiting
// on the wall clock.
func (s *Sweeper) RunOnce(ctx context.Context) int {
	evicted := s.store.EvictExpired(ctx, s.maxAge)
	if evicted > 0 {
		log.Printf("[session] evicted %d expired sessions, %d remaining", evicted, s.store.Count())
	}
	return evicted
}

func (s *Sweeper) run(ctx context.Context) {
	defer func() {
		s.mu.Lock()
		s.running = false
		close(s.done)
		s.mu.Unlock()
	}()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("[session] sweeper stopping")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}
