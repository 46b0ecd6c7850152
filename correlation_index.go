package correlate

import (
	"sync"
	"time"
)

// CorrelationIndex is a thread-safe double index over correlation entries:
// by correlation key for response linking, and by request message id for
// status and navigation lookups.
//
// Live entries (pending or received, not yet expired) own their correlation
// key exclusively. Expired entries flip to StatusHidden: they stay reachable
// by request id for status queries, but their key is released so a later
// request may reuse it.
type CorrelationIndex struct {
	mu        sync.RWMutex
	byKey     map[CorrelationKey]*CorrelationEntry
	byRequest map[string]*CorrelationEntry
}

// NewCorrelationIndex creates an empty index.
func NewCorrelationIndex() *CorrelationIndex {
	return &CorrelationIndex{
		byKey:     make(map[CorrelationKey]*CorrelationEntry),
		byRequest: make(map[string]*CorrelationEntry),
	}
}

// TryInsert inserts the entry if no live entry holds its key and no entry
// is tracked under its request id. The second registration with an equal
// live key loses; the first stays authoritative.
//
// If the key is held by an entry that has already expired but not yet been
// swept, that entry is hidden in place and the insert succeeds. The hidden
// entry is returned (pre-transition status preserved in the copy) so the
// caller can emit a status notification for it.
func (idx *CorrelationIndex) TryInsert(entry *CorrelationEntry, now time.Time) (bool, *CorrelationEntry) {
	if entry == nil || entry.Key.IsZero() || entry.RequestMessageID == "" {
		return false, nil
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	if _, ok := idx.byRequest[entry.RequestMessageID]; ok {
		return false, nil
	}

	var displaced *CorrelationEntry
	if existing, ok := idx.byKey[entry.Key]; ok {
		if !existing.IsExpired(now) {
			return false, nil
		}

		// Expired but unswept: hide it and free the key.
		displaced = existing.clone()
		existing.Status = StatusHidden
		delete(idx.byKey, existing.Key)
	}

	idx.byKey[entry.Key] = entry
	idx.byRequest[entry.RequestMessageID] = entry
	return true, displaced
}

// GetByRequestID returns a copy of the entry for a request id, hidden
// entries included.
func (idx *CorrelationIndex) GetByRequestID(requestMessageID string) (*CorrelationEntry, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	entry, ok := idx.byRequest[requestMessageID]
	if !ok {
		return nil, false
	}
	return entry.clone(), true
}

// GetByKey returns a copy of the entry holding the key. Only non-hidden
// entries hold keys; the caller decides whether an expired-but-unswept
// entry still counts as live.
func (idx *CorrelationIndex) GetByKey(key CorrelationKey) (*CorrelationEntry, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	entry, ok := idx.byKey[key]
	if !ok {
		return nil, false
	}
	return entry.clone(), true
}

// Mutate applies fn to the entry for a request id under the index write
// lock. The update is atomic with respect to concurrent Mutate, TryInsert
// and RemoveExpiredBefore calls; fn must not call back into the index.
// Returns false if the request id is unknown.
func (idx *CorrelationIndex) Mutate(requestMessageID string, fn func(*CorrelationEntry)) bool {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	entry, ok := idx.byRequest[requestMessageID]
	if !ok {
		return false
	}
	fn(entry)
	return true
}

// MutateByKey applies fn to the live entry holding the key, atomically with
// lookup. Entries that have expired at now are not live and are left
// untouched. Returns the request id of the mutated entry.
func (idx *CorrelationIndex) MutateByKey(key CorrelationKey, now time.Time, fn func(*CorrelationEntry)) (string, bool) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	entry, ok := idx.byKey[key]
	if !ok || entry.IsExpired(now) {
		return "", false
	}
	fn(entry)
	return entry.RequestMessageID, true
}

// RemoveExpiredBefore hides every entry whose deadline has passed at now,
// releasing their correlation keys. It returns pre-transition copies of the
// hidden entries so the caller can emit notifications. Safe to call
// concurrently with itself; an entry is only ever hidden once.
func (idx *CorrelationIndex) RemoveExpiredBefore(now time.Time) []*CorrelationEntry {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	var hidden []*CorrelationEntry
	for key, entry := range idx.byKey {
		if !entry.IsExpired(now) {
			continue
		}
		hidden = append(hidden, entry.clone())
		entry.Status = StatusHidden
		delete(idx.byKey, key)
	}
	return hidden
}

// Remove deletes an entry entirely, hidden or not. Used when the request's
// underlying message is evicted from the host's message buffer.
func (idx *CorrelationIndex) Remove(requestMessageID string) bool {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	entry, ok := idx.byRequest[requestMessageID]
	if !ok {
		return false
	}

	delete(idx.byRequest, requestMessageID)
	if held, ok := idx.byKey[entry.Key]; ok && held == entry {
		delete(idx.byKey, entry.Key)
	}
	return true
}

// Len returns the number of tracked entries, hidden included.
func (idx *CorrelationIndex) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return len(idx.byRequest)
}

// Stats computes a statistics snapshot in one pass. Snapshots are computed
// on demand rather than maintained incrementally, so they can never drift
// from the index contents.
func (idx *CorrelationIndex) Stats() CorrelationStatistics {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var stats CorrelationStatistics
	for _, entry := range idx.byRequest {
		stats.EstimatedMemoryUsageBytes += entry.estimatedSize()

		switch entry.Status {
		case StatusPending:
			stats.ActiveCorrelations++
			stats.PendingCorrelations++
		case StatusReceived:
			stats.ActiveCorrelations++
			stats.ReceivedCorrelations++
		}
	}
	return stats
}
