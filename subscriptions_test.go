package correlate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySubscriptionSet(t *testing.T) {
	t.Run("exact subscription", func(t *testing.T) {
		subs := NewMemorySubscriptionSet()
		require.NoError(t, subs.Subscribe("resp/topic"))

		assert.True(t, subs.IsTopicSubscribed("resp/topic"))
		assert.False(t, subs.IsTopicSubscribed("resp/other"))
	})

	t.Run("wildcard subscription", func(t *testing.T) {
		subs := NewMemorySubscriptionSet()
		require.NoError(t, subs.Subscribe("devices/+/reply"))
		require.NoError(t, subs.Subscribe("logs/#"))

		assert.True(t, subs.IsTopicSubscribed("devices/42/reply"))
		assert.False(t, subs.IsTopicSubscribed("devices/42/status"))
		assert.True(t, subs.IsTopicSubscribed("logs/app/errors"))
	})

	t.Run("invalid filter rejected", func(t *testing.T) {
		subs := NewMemorySubscriptionSet()

		assert.Error(t, subs.Subscribe(""))
		assert.Error(t, subs.Subscribe("a/#/b"))
		assert.Equal(t, 0, subs.Count())
	})

	t.Run("unsubscribe", func(t *testing.T) {
		subs := NewMemorySubscriptionSet()
		require.NoError(t, subs.Subscribe("resp/topic"))

		assert.True(t, subs.Unsubscribe("resp/topic"))
		assert.False(t, subs.Unsubscribe("resp/topic"))
		assert.False(t, subs.IsTopicSubscribed("resp/topic"))
	})

	t.Run("filters listing", func(t *testing.T) {
		subs := NewMemorySubscriptionSet()
		require.NoError(t, subs.Subscribe("a"))
		require.NoError(t, subs.Subscribe("b"))

		assert.ElementsMatch(t, []string{"a", "b"}, subs.Filters())
		assert.Equal(t, 2, subs.Count())
	})
}
