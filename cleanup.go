package correlate

import (
	"sync"
	"time"
)

// DefaultCleanupInterval is the sweep interval used when none is given.
const DefaultCleanupInterval = 30 * time.Second

// CleanupScheduler runs CleanupExpired on a periodic timer. The sweep is
// idempotent, so a scheduled run overlapping a manual CleanupExpired call
// is harmless. A scheduler runs once: after Stop it cannot be restarted.
type CleanupScheduler struct {
	service  *MessageCorrelationService
	interval time.Duration
	logger   Logger

	mu      sync.Mutex
	running bool
	stopped bool
	stop    chan struct{}
	done    chan struct{}
}

// NewCleanupScheduler creates a scheduler sweeping the service every
// interval. Non-positive intervals fall back to DefaultCleanupInterval.
func NewCleanupScheduler(service *MessageCorrelationService, interval time.Duration, opts ...SchedulerOption) *CleanupScheduler {
	if interval <= 0 {
		interval = DefaultCleanupInterval
	}

	s := &CleanupScheduler{
		service:  service,
		interval: interval,
		logger:   NewNoOpLogger(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// SchedulerOption configures a CleanupScheduler.
type SchedulerOption func(*CleanupScheduler)

// WithSchedulerLogger sets the logger. Nil is ignored.
func WithSchedulerLogger(logger Logger) SchedulerOption {
	return func(s *CleanupScheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Start launches the sweep goroutine.
func (s *CleanupScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return ErrSchedulerStopped
	}
	if s.running {
		return ErrSchedulerRunning
	}

	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	s.running = true

	go s.run(s.stop, s.done)

	s.logger.Debug("cleanup scheduler started", LogFields{
		LogFieldDuration: s.interval,
	})
	return nil
}

// Stop halts the sweep goroutine and waits for it to exit. Safe to call
// more than once and before Start.
func (s *CleanupScheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.stopped = true
		s.mu.Unlock()
		return
	}
	s.running = false
	s.stopped = true
	stop, done := s.stop, s.done
	s.mu.Unlock()

	close(stop)
	<-done
}

// IsRunning reports whether the sweep goroutine is active.
func (s *CleanupScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.running
}

func (s *CleanupScheduler) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := s.service.CleanupExpired(); n > 0 {
				s.logger.Debug("scheduled sweep hid expired correlations", LogFields{
					LogFieldCount: n,
				})
			}
		case <-stop:
			return
		}
	}
}
