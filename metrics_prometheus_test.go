package correlate

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusMetrics(t *testing.T) {
	t.Run("counter registers and counts", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		m := NewPrometheusMetrics("correlate", reg)

		c := m.Counter("requests_registered", nil)
		c.Inc()
		c.Add(2)

		assert.Equal(t, float64(3), c.Value())

		families, err := reg.Gather()
		require.NoError(t, err)
		require.Len(t, families, 1)
		assert.Equal(t, "correlate_requests_registered", families[0].GetName())
	})

	t.Run("gauge tracks ups and downs", func(t *testing.T) {
		m := NewPrometheusMetrics("correlate", prometheus.NewRegistry())

		g := m.Gauge("active", nil)
		g.Set(5)
		g.Inc()
		g.Dec()
		g.Dec()

		assert.Equal(t, float64(4), g.Value())
	})

	t.Run("histogram observes durations", func(t *testing.T) {
		m := NewPrometheusMetrics("correlate", prometheus.NewRegistry())

		h := m.Histogram("navigation_seconds", nil)
		h.Observe(0.25)
		h.ObserveDuration(250 * time.Millisecond)

		assert.Equal(t, uint64(2), h.Count())
		assert.InDelta(t, 0.5, h.Sum(), 0.001)
	})

	t.Run("same name reuses the collector", func(t *testing.T) {
		m := NewPrometheusMetrics("correlate", prometheus.NewRegistry())

		m.Counter("hits", nil).Inc()
		m.Counter("hits", nil).Inc()

		assert.Equal(t, float64(2), m.Counter("hits", nil).Value())
	})

	t.Run("works as correlation service collector", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		m := NewPrometheusMetrics("correlate", reg)
		svc := NewMessageCorrelationService(WithCorrelationMetrics(m))

		ok, err := svc.RegisterRequest("req-1", []byte("abc"), "t")
		require.NoError(t, err)
		require.True(t, ok)

		families, err := reg.Gather()
		require.NoError(t, err)
		assert.NotEmpty(t, families)
	})
}
