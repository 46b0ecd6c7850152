package correlate

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemoryMetrics(t *testing.T) {
	t.Run("counter", func(t *testing.T) {
		m := NewMemoryMetrics()

		c := m.Counter("requests", nil)
		c.Inc()
		c.Add(2.5)

		assert.Equal(t, 3.5, c.Value())
		assert.Equal(t, 3.5, m.CounterValue("requests", nil))
	})

	t.Run("gauge", func(t *testing.T) {
		m := NewMemoryMetrics()

		g := m.Gauge("active", nil)
		g.Set(10)
		g.Inc()
		g.Dec()
		g.Dec()

		assert.Equal(t, float64(9), g.Value())
	})

	t.Run("histogram", func(t *testing.T) {
		m := NewMemoryMetrics()

		h := m.Histogram("latency", nil)
		h.Observe(0.5)
		h.ObserveDuration(500 * time.Millisecond)

		assert.Equal(t, uint64(2), h.Count())
		assert.InDelta(t, 1.0, h.Sum(), 0.001)
	})

	t.Run("same name returns same metric", func(t *testing.T) {
		m := NewMemoryMetrics()

		m.Counter("hits", nil).Inc()
		m.Counter("hits", nil).Inc()

		assert.Equal(t, float64(2), m.CounterValue("hits", nil))
	})

	t.Run("labels separate series", func(t *testing.T) {
		m := NewMemoryMetrics()

		m.Counter("hits", MetricLabels{"outcome": "ok"}).Inc()
		m.Counter("hits", MetricLabels{"outcome": "fail"}).Inc()
		m.Counter("hits", MetricLabels{"outcome": "ok"}).Inc()

		assert.Equal(t, float64(2), m.CounterValue("hits", MetricLabels{"outcome": "ok"}))
		assert.Equal(t, float64(1), m.CounterValue("hits", MetricLabels{"outcome": "fail"}))
		assert.Equal(t, float64(0), m.CounterValue("hits", nil))
	})

	t.Run("unused metrics read zero", func(t *testing.T) {
		m := NewMemoryMetrics()

		assert.Equal(t, float64(0), m.CounterValue("never", nil))
		assert.Equal(t, float64(0), m.GaugeValue("never", nil))
	})

	t.Run("concurrent updates", func(t *testing.T) {
		m := NewMemoryMetrics()

		var wg sync.WaitGroup
		for i := 0; i < 32; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					m.Counter("spins", nil).Inc()
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, float64(3200), m.CounterValue("spins", nil))
	})
}
