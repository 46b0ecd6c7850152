package correlate

import (
	"time"

	"golang.org/x/time/rate"
)

// CorrelationOption configures a MessageCorrelationService.
type CorrelationOption func(*MessageCorrelationService)

// WithCorrelationLogger sets the logger. Nil is ignored.
func WithCorrelationLogger(logger Logger) CorrelationOption {
	return func(s *MessageCorrelationService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithCorrelationMetrics sets the metrics collector. Nil is ignored.
func WithCorrelationMetrics(metrics Metrics) CorrelationOption {
	return func(s *MessageCorrelationService) {
		if metrics != nil {
			s.metrics = metrics
		}
	}
}

// WithDefaultTTL sets the TTL applied by RegisterRequest. The value must
// be positive or TTLNever; zero (expire immediately) is only meaningful
// per registration and is ignored here.
func WithDefaultTTL(ttl time.Duration) CorrelationOption {
	return func(s *MessageCorrelationService) {
		if ttl > 0 || ttl == TTLNever {
			s.defaultTTL = ttl
		}
	}
}

// WithWarnRateLimit caps how often duplicate-registration and
// orphan-response conditions are logged.
func WithWarnRateLimit(limit rate.Limit, burst int) CorrelationOption {
	return func(s *MessageCorrelationService) {
		s.warnLimiter = rate.NewLimiter(limit, burst)
	}
}
