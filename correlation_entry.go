package correlate

import (
	"time"
)

// CorrelationEntry is one pending-or-resolved correlation tracked by the
// index. Callers receive copies; the index owns the canonical entry and all
// mutation goes through CorrelationIndex.Mutate.
type CorrelationEntry struct {
	// RequestMessageID identifies the originating request message.
	RequestMessageID string

	// Key is the correlation key the entry is indexed under.
	Key CorrelationKey

	// ResponseTopic is the topic a response is expected on. Duplicated
	// from Key for direct access and debugging.
	ResponseTopic string

	// ResponseMessageIDs lists linked response message ids in arrival
	// order. A request may receive zero, one or many responses.
	ResponseMessageIDs []string

	// Status is the current lifecycle state.
	Status ResponseStatus

	// RegisteredAt is when the request was registered.
	RegisteredAt time.Time

	// ExpiresAt is when the entry becomes stale. Zero means the entry
	// never expires.
	ExpiresAt time.Time
}

// IsExpired reports whether the entry's TTL has passed at the given time.
// Entries without a deadline never expire.
func (e *CorrelationEntry) IsExpired(now time.Time) bool {
	if e.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(e.ExpiresAt)
}

// LatestResponseID returns the most recently linked response message id.
func (e *CorrelationEntry) LatestResponseID() (string, bool) {
	if len(e.ResponseMessageIDs) == 0 {
		return "", false
	}
	return e.ResponseMessageIDs[len(e.ResponseMessageIDs)-1], true
}

// clone returns a deep copy safe to hand to callers.
func (e *CorrelationEntry) clone() *CorrelationEntry {
	c := *e
	if e.ResponseMessageIDs != nil {
		c.ResponseMessageIDs = make([]string, len(e.ResponseMessageIDs))
		copy(c.ResponseMessageIDs, e.ResponseMessageIDs)
	}
	return &c
}

// estimatedSize approximates the entry's memory footprint in bytes for
// statistics reporting.
func (e *CorrelationEntry) estimatedSize() int {
	const entryOverhead = 160 // struct, map slots, slice header

	size := entryOverhead
	size += len(e.RequestMessageID)
	size += len(e.Key.data) + len(e.Key.responseTopic)
	size += len(e.ResponseTopic)
	for _, id := range e.ResponseMessageIDs {
		size += len(id) + 16
	}
	return size
}
