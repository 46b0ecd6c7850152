package correlate

import (
	"sync"
	"time"
)

// Message is the inbound message tuple the correlation core consumes. The
// core never parses MQTT packets; the host extracts these fields from its
// transport and hands them over.
type Message struct {
	// MessageID is the host's opaque identifier for the message.
	MessageID string

	// Topic is the topic the message arrived on.
	Topic string

	// Payload is the message body. The core never inspects it.
	Payload []byte

	// CorrelationData is the MQTT v5.0 correlation data property, if any.
	CorrelationData []byte

	// ResponseTopic is the MQTT v5.0 response topic property, if any.
	ResponseTopic string

	// IsRequest marks messages the host classified as outgoing requests.
	IsRequest bool

	// ReceivedAt is when the host observed the message.
	ReceivedAt time.Time
}

// SubscriptionChecker reports whether a topic is currently subscribed. The
// host's subscription manager implements this; MemorySubscriptionSet is a
// reference implementation.
type SubscriptionChecker interface {
	// IsTopicSubscribed returns true if the topic matches an active
	// subscription.
	IsTopicSubscribed(topic string) bool
}

// MessageStore reports whether a message is still retrievable from the
// host's message buffer. Buffers are typically bounded rings, so a linked
// response may have been evicted by the time the user navigates to it.
type MessageStore interface {
	// Contains returns true if the message is still retrievable.
	Contains(messageID string) bool
}

// MessageSelector is the UI selection sink. A successful navigation calls
// SelectMessage so the presentation layer can highlight the message.
type MessageSelector interface {
	// SelectMessage selects the message in the host UI.
	SelectMessage(messageID, topic string)
}

// MemoryMessageStore is an in-memory MessageStore for tests, examples and
// hosts without their own buffer index.
type MemoryMessageStore struct {
	mu       sync.RWMutex
	messages map[string]Message
}

// NewMemoryMessageStore creates an empty store.
func NewMemoryMessageStore() *MemoryMessageStore {
	return &MemoryMessageStore{
		messages: make(map[string]Message),
	}
}

// Add stores a message keyed by its MessageID. Messages without an id are
// ignored.
func (s *MemoryMessageStore) Add(msg Message) {
	if msg.MessageID == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages[msg.MessageID] = msg
}

// Remove deletes a message, mimicking ring-buffer eviction.
func (s *MemoryMessageStore) Remove(messageID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.messages[messageID]; !ok {
		return false
	}
	delete(s.messages, messageID)
	return true
}

// Contains implements MessageStore.
func (s *MemoryMessageStore) Contains(messageID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.messages[messageID]
	return ok
}

// Get retrieves a stored message.
func (s *MemoryMessageStore) Get(messageID string) (Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msg, ok := s.messages[messageID]
	return msg, ok
}

// Len returns the number of stored messages.
func (s *MemoryMessageStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.messages)
}
