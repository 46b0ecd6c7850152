package correlate

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultTTL is the time-to-live applied to registrations made without an
// explicit TTL.
const DefaultTTL = 5 * time.Minute

// TTLNever disables expiry for a registration.
const TTLNever time.Duration = -1

// CorrelationStatistics is an on-demand snapshot of the correlation index.
// Hidden entries count toward memory usage but not toward active totals.
type CorrelationStatistics struct {
	// ActiveCorrelations is the number of pending plus received entries.
	ActiveCorrelations int

	// PendingCorrelations is the number of entries awaiting a response.
	PendingCorrelations int

	// ReceivedCorrelations is the number of entries with at least one
	// linked response.
	ReceivedCorrelations int

	// EstimatedMemoryUsageBytes approximates index memory consumption.
	EstimatedMemoryUsageBytes int
}

// StatusListener receives correlation status transitions. Listeners are
// invoked synchronously on the goroutine that caused the transition and
// must not block; UI-thread marshalling is the subscriber's concern.
type StatusListener func(requestMessageID string, oldStatus, newStatus ResponseStatus)

// MessageCorrelationService owns the correlation index and implements the
// register/link/query/cleanup lifecycle. All methods are safe for
// concurrent use from multiple goroutines without external locking.
type MessageCorrelationService struct {
	index       *CorrelationIndex
	logger      Logger
	metrics     Metrics
	defaultTTL  time.Duration
	warnLimiter *rate.Limiter

	mu        sync.RWMutex
	listeners []StatusListener
}

// NewMessageCorrelationService creates a correlation service. Without
// options it uses DefaultTTL, a no-op logger and no-op metrics.
func NewMessageCorrelationService(opts ...CorrelationOption) *MessageCorrelationService {
	s := &MessageCorrelationService{
		index:      NewCorrelationIndex(),
		logger:     NewNoOpLogger(),
		metrics:    &NoOpMetrics{},
		defaultTTL: DefaultTTL,
		// Duplicate registrations and orphan responses are routine MQTT
		// traffic (retained replays, responses after timeout); cap the
		// warning volume they generate.
		warnLimiter: rate.NewLimiter(rate.Every(time.Second), 10),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// OnStatusChanged subscribes to correlation status transitions.
func (s *MessageCorrelationService) OnStatusChanged(fn StatusListener) {
	if fn == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.listeners = append(s.listeners, fn)
}

// notifyStatusChanged fires listeners outside the index lock.
func (s *MessageCorrelationService) notifyStatusChanged(requestMessageID string, oldStatus, newStatus ResponseStatus) {
	s.mu.RLock()
	listeners := make([]StatusListener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.RUnlock()

	for _, fn := range listeners {
		fn(requestMessageID, oldStatus, newStatus)
	}
}

// RegisterRequest registers an outgoing request with the default TTL.
func (s *MessageCorrelationService) RegisterRequest(requestMessageID string, correlationData []byte, responseTopic string) (bool, error) {
	return s.RegisterRequestWithTTL(requestMessageID, correlationData, responseTopic, s.defaultTTL)
}

// RegisterRequestWithTTL registers an outgoing request as pending.
//
// It returns false when there is nothing to correlate on (empty correlation
// data or response topic) or when an equal, still-live key is already
// registered; the first registration stays authoritative. A ttl of zero
// marks the entry expired immediately; TTLNever disables expiry. An empty
// request message id is a caller bug and returns an error.
func (s *MessageCorrelationService) RegisterRequestWithTTL(requestMessageID string, correlationData []byte, responseTopic string, ttl time.Duration) (bool, error) {
	if requestMessageID == "" {
		return false, ErrEmptyRequestMessageID
	}

	key := NewCorrelationKey(correlationData, responseTopic)
	if key.IsZero() {
		s.logger.Debug("request has no correlation data, not tracked", LogFields{
			LogFieldRequestID: requestMessageID,
		})
		return false, nil
	}

	now := time.Now()
	entry := &CorrelationEntry{
		RequestMessageID: requestMessageID,
		Key:              key,
		ResponseTopic:    responseTopic,
		Status:           StatusPending,
		RegisteredAt:     now,
	}

	switch {
	case ttl > 0:
		entry.ExpiresAt = now.Add(ttl)
	case ttl == 0:
		entry.ExpiresAt = now
	}

	inserted, displaced := s.index.TryInsert(entry, now)
	if displaced != nil {
		s.metrics.Counter("correlation_expired", nil).Inc()
		s.metrics.Gauge("correlation_active", nil).Dec()
		s.notifyStatusChanged(displaced.RequestMessageID, displaced.Status, StatusHidden)
	}

	if !inserted {
		s.metrics.Counter("correlation_duplicate_registrations", nil).Inc()
		if s.warnLimiter.Allow() {
			s.logger.Warn("duplicate correlation key, registration rejected", LogFields{
				LogFieldRequestID:      requestMessageID,
				LogFieldCorrelationKey: key.String(),
			})
		}
		return false, nil
	}

	s.metrics.Counter("correlation_requests_registered", nil).Inc()
	s.metrics.Gauge("correlation_active", nil).Inc()
	s.logger.Debug("request registered", LogFields{
		LogFieldRequestID:      requestMessageID,
		LogFieldResponseTopic:  responseTopic,
		LogFieldCorrelationKey: key.String(),
	})
	return true, nil
}

// LinkResponse links an incoming response to the pending request holding
// the key (correlationData, responseTopic).
//
// Linking appends the response id and flips the entry to StatusReceived in
// one atomic index update, so concurrent responses never double-count and
// a concurrent expiry sweep never observes a half-linked entry. The status
// flip is idempotent: later responses append without a second transition.
//
// A response with no matching live request is an orphan and returns false.
// Orphans are normal traffic, not errors.
func (s *MessageCorrelationService) LinkResponse(responseMessageID string, correlationData []byte, responseTopic string) (bool, error) {
	if responseMessageID == "" {
		return false, ErrEmptyResponseMessageID
	}

	key := NewCorrelationKey(correlationData, responseTopic)
	if key.IsZero() {
		return false, nil
	}

	var oldStatus, newStatus ResponseStatus
	requestID, ok := s.index.MutateByKey(key, time.Now(), func(e *CorrelationEntry) {
		oldStatus = e.Status
		e.ResponseMessageIDs = append(e.ResponseMessageIDs, responseMessageID)
		if e.Status == StatusPending {
			e.Status = StatusReceived
		}
		newStatus = e.Status
	})

	if !ok {
		s.metrics.Counter("correlation_orphan_responses", nil).Inc()
		if s.warnLimiter.Allow() {
			s.logger.Debug("orphan response, no pending request", LogFields{
				LogFieldResponseID:     responseMessageID,
				LogFieldCorrelationKey: key.String(),
			})
		}
		return false, nil
	}

	s.metrics.Counter("correlation_responses_linked", nil).Inc()
	s.logger.Debug("response linked", LogFields{
		LogFieldRequestID:  requestID,
		LogFieldResponseID: responseMessageID,
		LogFieldStatus:     newStatus.String(),
	})

	if oldStatus != newStatus {
		s.notifyStatusChanged(requestID, oldStatus, newStatus)
	}
	return true, nil
}

// ObserveMessage routes an inbound message: requests are registered, and
// messages carrying correlation data are linked as responses to the topic
// they arrived on. Messages with neither are ignored.
func (s *MessageCorrelationService) ObserveMessage(msg Message) (bool, error) {
	if msg.MessageID == "" {
		return false, ErrEmptyMessageID
	}

	if msg.IsRequest {
		return s.RegisterRequest(msg.MessageID, msg.CorrelationData, msg.ResponseTopic)
	}
	if len(msg.CorrelationData) > 0 {
		return s.LinkResponse(msg.MessageID, msg.CorrelationData, msg.Topic)
	}
	return false, nil
}

// ResponseStatus returns the lifecycle status for a request, or false if
// the request was never registered (or has been removed after eviction).
func (s *MessageCorrelationService) ResponseStatus(requestMessageID string) (ResponseStatus, bool) {
	entry, ok := s.index.GetByRequestID(requestMessageID)
	if !ok {
		return 0, false
	}
	return entry.Status, true
}

// ResponseMessageIDs returns the linked response ids in arrival order.
// The slice is empty if no response has arrived or the request is unknown.
func (s *MessageCorrelationService) ResponseMessageIDs(requestMessageID string) []string {
	entry, ok := s.index.GetByRequestID(requestMessageID)
	if !ok || entry.ResponseMessageIDs == nil {
		return []string{}
	}
	return entry.ResponseMessageIDs
}

// ResponseTopic returns the topic the request expects its response on.
func (s *MessageCorrelationService) ResponseTopic(requestMessageID string) (string, bool) {
	entry, ok := s.index.GetByRequestID(requestMessageID)
	if !ok {
		return "", false
	}
	return entry.ResponseTopic, true
}

// CorrelationEntry returns a copy of the full entry for a request.
func (s *MessageCorrelationService) CorrelationEntry(requestMessageID string) (*CorrelationEntry, bool) {
	return s.index.GetByRequestID(requestMessageID)
}

// CleanupExpired hides every correlation whose TTL has passed and returns
// the number of entries hidden. Intended to run on a periodic timer (see
// CleanupScheduler); idempotent and safe against overlapping invocations.
func (s *MessageCorrelationService) CleanupExpired() int {
	hidden := s.index.RemoveExpiredBefore(time.Now())
	if len(hidden) == 0 {
		return 0
	}

	gauge := s.metrics.Gauge("correlation_active", nil)
	counter := s.metrics.Counter("correlation_expired", nil)
	for _, entry := range hidden {
		counter.Inc()
		gauge.Dec()
		s.notifyStatusChanged(entry.RequestMessageID, entry.Status, StatusHidden)
	}

	s.logger.Info("expired correlations hidden", LogFields{
		LogFieldCount: len(hidden),
	})
	return len(hidden)
}

// RemoveRequest drops a correlation entirely. Hosts call this when the
// request's underlying message is evicted from the message buffer; after
// removal the request id no longer answers status queries.
func (s *MessageCorrelationService) RemoveRequest(requestMessageID string) (bool, error) {
	if requestMessageID == "" {
		return false, ErrEmptyRequestMessageID
	}

	entry, ok := s.index.GetByRequestID(requestMessageID)
	if !ok {
		return false, nil
	}

	if !s.index.Remove(requestMessageID) {
		return false, nil
	}

	if entry.Status == StatusPending || entry.Status == StatusReceived {
		s.metrics.Gauge("correlation_active", nil).Dec()
	}
	s.logger.Debug("correlation removed", LogFields{
		LogFieldRequestID: requestMessageID,
	})
	return true, nil
}

// Statistics computes a point-in-time snapshot of the index.
func (s *MessageCorrelationService) Statistics() CorrelationStatistics {
	return s.index.Stats()
}
