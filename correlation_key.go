package correlate

import (
	"encoding/hex"
)

// CorrelationKey identifies a pending request by its correlation data and
// response topic. MQTT v5.0 correlation data is only unique within the scope
// of a response topic by convention, so the key carries both.
//
// Keys are immutable value types: two keys are equal iff the correlation
// data bytes and the response topic are identical. The zero value is not a
// valid key.
type CorrelationKey struct {
	data          string
	responseTopic string
}

// NewCorrelationKey builds a key from raw correlation data bytes and a
// response topic. The bytes are copied; mutating the input afterwards does
// not affect the key.
func NewCorrelationKey(correlationData []byte, responseTopic string) CorrelationKey {
	return CorrelationKey{
		data:          string(correlationData),
		responseTopic: responseTopic,
	}
}

// CorrelationData returns a copy of the raw correlation data bytes.
func (k CorrelationKey) CorrelationData() []byte {
	return []byte(k.data)
}

// ResponseTopic returns the response topic half of the key.
func (k CorrelationKey) ResponseTopic() string {
	return k.responseTopic
}

// IsZero reports whether the key has no correlation data or no response
// topic. Zero keys are rejected by the index.
func (k CorrelationKey) IsZero() bool {
	return len(k.data) == 0 || k.responseTopic == ""
}

// String returns a loggable representation. Correlation data is often
// binary, so it is hex-encoded and truncated.
func (k CorrelationKey) String() string {
	const maxData = 16

	data := k.data
	truncated := false
	if len(data) > maxData {
		data = data[:maxData]
		truncated = true
	}

	enc := hex.EncodeToString([]byte(data))
	if truncated {
		enc += "..."
	}

	return enc + "@" + k.responseTopic
}
