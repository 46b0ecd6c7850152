package correlate

import (
	"sync"
)

// MemorySubscriptionSet is a reference SubscriptionChecker backed by a set
// of MQTT topic filters. Hosts with a real subscription manager implement
// SubscriptionChecker themselves; tests and examples use this one.
type MemorySubscriptionSet struct {
	mu      sync.RWMutex
	filters map[string]struct{}
}

// NewMemorySubscriptionSet creates an empty subscription set.
func NewMemorySubscriptionSet() *MemorySubscriptionSet {
	return &MemorySubscriptionSet{
		filters: make(map[string]struct{}),
	}
}

// Subscribe adds a topic filter. Wildcards (+, #) are supported.
func (s *MemorySubscriptionSet) Subscribe(filter string) error {
	if err := ValidateTopicFilter(filter); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.filters[filter] = struct{}{}
	return nil
}

// Unsubscribe removes a topic filter. Returns false if it was not present.
func (s *MemorySubscriptionSet) Unsubscribe(filter string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.filters[filter]; !ok {
		return false
	}
	delete(s.filters, filter)
	return true
}

// IsTopicSubscribed implements SubscriptionChecker. A topic is subscribed
// if any active filter matches it.
func (s *MemorySubscriptionSet) IsTopicSubscribed(topic string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for filter := range s.filters {
		if TopicMatch(filter, topic) {
			return true
		}
	}
	return false
}

// Filters returns the active topic filters.
func (s *MemorySubscriptionSet) Filters() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	filters := make([]string, 0, len(s.filters))
	for filter := range s.filters {
		filters = append(filters, filter)
	}
	return filters
}

// Count returns the number of active filters.
func (s *MemorySubscriptionSet) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.filters)
}
