package correlate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCorrelationKey(t *testing.T) {
	t.Run("equality requires both fields", func(t *testing.T) {
		a := NewCorrelationKey([]byte("abc"), "resp/topic")
		b := NewCorrelationKey([]byte("abc"), "resp/topic")
		c := NewCorrelationKey([]byte("abc"), "other/topic")
		d := NewCorrelationKey([]byte("abd"), "resp/topic")

		assert.Equal(t, a, b)
		assert.NotEqual(t, a, c)
		assert.NotEqual(t, a, d)
	})

	t.Run("usable as map key", func(t *testing.T) {
		m := map[CorrelationKey]int{
			NewCorrelationKey([]byte{0x01, 0x02}, "t"): 1,
		}

		_, ok := m[NewCorrelationKey([]byte{0x01, 0x02}, "t")]
		assert.True(t, ok)
	})

	t.Run("immutable against input mutation", func(t *testing.T) {
		data := []byte("abc")
		key := NewCorrelationKey(data, "t")

		data[0] = 'x'

		assert.Equal(t, []byte("abc"), key.CorrelationData())
	})

	t.Run("data accessor returns a copy", func(t *testing.T) {
		key := NewCorrelationKey([]byte("abc"), "t")

		got := key.CorrelationData()
		got[0] = 'x'

		assert.Equal(t, []byte("abc"), key.CorrelationData())
	})

	t.Run("zero detection", func(t *testing.T) {
		assert.True(t, CorrelationKey{}.IsZero())
		assert.True(t, NewCorrelationKey(nil, "t").IsZero())
		assert.True(t, NewCorrelationKey([]byte("abc"), "").IsZero())
		assert.False(t, NewCorrelationKey([]byte("abc"), "t").IsZero())
	})

	t.Run("string encodes and truncates data", func(t *testing.T) {
		short := NewCorrelationKey([]byte("ab"), "resp/topic")
		assert.Equal(t, "6162@resp/topic", short.String())

		long := NewCorrelationKey([]byte("0123456789abcdefgh"), "t")
		assert.Contains(t, long.String(), "...")
	})
}
