package correlate

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// iconFixture wires correlation, navigation and icon services with req-1
// registered and resp/topic subscribed.
type iconFixture struct {
	correlation *MessageCorrelationService
	subs        *MemorySubscriptionSet
	store       *MemoryMessageStore
	icons       *ResponseIconService
}

func newIconFixture(t *testing.T, opts ...IconOption) *iconFixture {
	t.Helper()

	f := &iconFixture{
		correlation: NewMessageCorrelationService(),
		subs:        NewMemorySubscriptionSet(),
		store:       NewMemoryMessageStore(),
	}
	nav := NewResponseNavigationService(f.correlation, f.subs, f.store, &recordingSelector{})
	f.icons = NewResponseIconService(f.correlation, nav, opts...)

	require.NoError(t, f.subs.Subscribe("resp/topic"))

	ok, err := f.correlation.RegisterRequest("req-1", []byte("abc"), "resp/topic")
	require.NoError(t, err)
	require.True(t, ok)
	return f
}

func (f *iconFixture) linkResponse(t *testing.T, responseID string) {
	t.Helper()

	ok, err := f.correlation.LinkResponse(responseID, []byte("abc"), "resp/topic")
	require.NoError(t, err)
	require.True(t, ok)
	f.store.Add(Message{MessageID: responseID, Topic: "resp/topic"})
}

func TestResponseIconService(t *testing.T) {
	t.Run("no response topic means no icon", func(t *testing.T) {
		f := newIconFixture(t)

		assert.Nil(t, f.icons.CreateIconViewModel("req-1", false, true))
		assert.Equal(t, 0, f.icons.IconCount())
	})

	t.Run("unknown request means no icon", func(t *testing.T) {
		f := newIconFixture(t)

		assert.Nil(t, f.icons.CreateIconViewModel("missing", true, true))
	})

	t.Run("pending icon", func(t *testing.T) {
		f := newIconFixture(t)

		vm := f.icons.CreateIconViewModel("req-1", true, true)
		require.NotNil(t, vm)
		assert.Equal(t, StatusPending, vm.Status)
		assert.Equal(t, DefaultIconConfiguration().ClockIconPath, vm.IconPath)
		assert.False(t, vm.Clickable)
		assert.NotEmpty(t, vm.Tooltip)
	})

	t.Run("unsubscribed topic shows navigation disabled", func(t *testing.T) {
		f := newIconFixture(t)

		vm := f.icons.CreateIconViewModel("req-1", true, false)
		require.NotNil(t, vm)
		assert.Equal(t, StatusNavigationDisabled, vm.Status)
		assert.Equal(t, DefaultIconConfiguration().DisabledClockIconPath, vm.IconPath)
		assert.False(t, vm.Clickable)
	})

	t.Run("icon follows correlation status", func(t *testing.T) {
		f := newIconFixture(t)
		require.NotNil(t, f.icons.CreateIconViewModel("req-1", true, true))

		f.linkResponse(t, "r-1")

		vm := f.icons.IconViewModel("req-1")
		require.NotNil(t, vm)
		assert.Equal(t, StatusReceived, vm.Status)
		assert.Equal(t, DefaultIconConfiguration().ArrowIconPath, vm.IconPath)
		assert.True(t, vm.Clickable)
	})

	t.Run("expiry hides the icon status", func(t *testing.T) {
		f := newIconFixture(t)

		ok, _ := f.correlation.RegisterRequestWithTTL("req-2", []byte("def"), "resp/topic", 0)
		require.True(t, ok)
		require.NotNil(t, f.icons.CreateIconViewModel("req-2", true, true))

		f.correlation.CleanupExpired()

		vm := f.icons.IconViewModel("req-2")
		require.NotNil(t, vm)
		assert.Equal(t, StatusHidden, vm.Status)
	})

	t.Run("resubscribe restores underlying status", func(t *testing.T) {
		f := newIconFixture(t)
		require.NotNil(t, f.icons.CreateIconViewModel("req-1", true, true))
		f.linkResponse(t, "r-1")

		require.True(t, f.icons.SetTopicSubscribed("req-1", false))
		assert.Equal(t, StatusNavigationDisabled, f.icons.IconViewModel("req-1").Status)

		// Status transitions while disabled are retained, not displayed.
		require.True(t, f.icons.SetTopicSubscribed("req-1", true))
		assert.Equal(t, StatusReceived, f.icons.IconViewModel("req-1").Status)
	})

	t.Run("update status requires an icon", func(t *testing.T) {
		f := newIconFixture(t)

		assert.False(t, f.icons.UpdateIconStatus("req-1", StatusReceived))
	})

	t.Run("status change notifications", func(t *testing.T) {
		f := newIconFixture(t)
		require.NotNil(t, f.icons.CreateIconViewModel("req-1", true, true))

		var mu sync.Mutex
		type change struct {
			id       string
			from, to ResponseStatus
		}
		var seen []change
		f.icons.OnIconStatusChanged(func(id string, oldStatus, newStatus ResponseStatus) {
			mu.Lock()
			defer mu.Unlock()
			seen = append(seen, change{id, oldStatus, newStatus})
		})

		f.linkResponse(t, "r-1")

		mu.Lock()
		defer mu.Unlock()
		require.Len(t, seen, 1)
		assert.Equal(t, change{"req-1", StatusPending, StatusReceived}, seen[0])
	})

	t.Run("click on received navigates", func(t *testing.T) {
		f := newIconFixture(t)
		require.NotNil(t, f.icons.CreateIconViewModel("req-1", true, true))
		f.linkResponse(t, "r-1")

		result := f.icons.HandleIconClick("req-1")
		assert.True(t, result.Handled)
		assert.True(t, result.NavigationTriggered)
		assert.Empty(t, result.ErrorMessage)
		assert.Equal(t, ":gotoresponse req-1", result.NavigationCommand)
	})

	t.Run("click on pending is handled without navigation", func(t *testing.T) {
		f := newIconFixture(t)
		require.NotNil(t, f.icons.CreateIconViewModel("req-1", true, true))

		result := f.icons.HandleIconClick("req-1")
		assert.True(t, result.Handled)
		assert.False(t, result.NavigationTriggered)
	})

	t.Run("click while navigation disabled explains why", func(t *testing.T) {
		f := newIconFixture(t)
		require.NotNil(t, f.icons.CreateIconViewModel("req-1", true, false))

		result := f.icons.HandleIconClick("req-1")
		assert.True(t, result.Handled)
		assert.False(t, result.NavigationTriggered)
		assert.Contains(t, result.ErrorMessage, "not subscribed")
	})

	t.Run("click without icon is unhandled", func(t *testing.T) {
		f := newIconFixture(t)

		result := f.icons.HandleIconClick("req-1")
		assert.False(t, result.Handled)
		assert.NotEmpty(t, result.ErrorMessage)
	})

	t.Run("click notifications", func(t *testing.T) {
		f := newIconFixture(t)
		require.NotNil(t, f.icons.CreateIconViewModel("req-1", true, true))

		var mu sync.Mutex
		clicks := 0
		f.icons.OnIconClicked(func(string, IconClickResult) {
			mu.Lock()
			defer mu.Unlock()
			clicks++
		})

		f.icons.HandleIconClick("req-1")

		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, 1, clicks)
	})

	t.Run("remove icon", func(t *testing.T) {
		f := newIconFixture(t)
		require.NotNil(t, f.icons.CreateIconViewModel("req-1", true, true))

		assert.True(t, f.icons.RemoveIcon("req-1"))
		assert.False(t, f.icons.RemoveIcon("req-1"))
		assert.Nil(t, f.icons.IconViewModel("req-1"))
	})

	t.Run("configuration replace", func(t *testing.T) {
		f := newIconFixture(t)

		cfg := DefaultIconConfiguration()
		cfg.IconSize = 24
		require.NoError(t, f.icons.UpdateIconConfiguration(cfg))
		assert.Equal(t, float64(24), f.icons.IconConfiguration().IconSize)

		cfg.IconSize = 0
		assert.Error(t, f.icons.UpdateIconConfiguration(cfg))
		assert.Equal(t, float64(24), f.icons.IconConfiguration().IconSize)
	})

	t.Run("custom configuration option", func(t *testing.T) {
		cfg := DefaultIconConfiguration()
		cfg.ClockIconPath = "custom/clock.svg"
		f := newIconFixture(t, WithIconConfiguration(cfg))

		vm := f.icons.CreateIconViewModel("req-1", true, true)
		require.NotNil(t, vm)
		assert.Equal(t, "custom/clock.svg", vm.IconPath)
	})
}
