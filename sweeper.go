package backoffice

import (
	"sync"
	"time"
)

// Sweeper periodically purges abandoned sessions from a registry so memory
// stays bounded even when clients never come back. It is an optimization
// only: Guard.Authorize enforces the idle timeout lazily on every check, so
// a session looks expired to callers no later than idleTimeout after its
// last activity whether or not a sweep has run.
type Sweeper struct {
	registry    *Registry
	idleTimeout time.Duration
	interval    time.Duration
	logger      Logger
	clock       func() time.Time
	done        chan struct{}
	stopOnce    sync.Once
}

// NewSweeper builds a sweeper for the registry. interval controls how often
// the purge runs; it defaults to the idle timeout itself when zero.
func NewSweeper(registry *Registry, idleTimeout, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = idleTimeout
	}
	return &Sweeper{
		registry:    registry,
		idleTimeout: idleTimeout,
		interval:    interval,
		logger:      defLogger{},
		clock:       time.Now,
		done:        make(chan struct{}),
	}
}

func (s *Sweeper) WithLogger(logger Logger) *Sweeper {
	s.logger = logger
	return s
}

// Start launches the background purge loop. Call Stop to terminate it.
func (s *Sweeper) Start() {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if purged := s.registry.PurgeIdle(s.clock(), s.idleTimeout); purged > 0 {
					s.logger.Debug("sweeper purged %d idle sessions", purged)
				}
			case <-s.done:
				return
			}
		}
	}()
}

// Stop terminates the purge loop. Idempotent.
func (s *Sweeper) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
	})
}
