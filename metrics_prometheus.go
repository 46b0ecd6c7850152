package correlate

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetrics implements Metrics on top of a Prometheus registerer.
// Metrics are registered lazily on first use; a collector that is already
// registered (for example after a service restart within the same process)
// is reused instead of failing.
type PrometheusMetrics struct {
	namespace  string
	registerer prometheus.Registerer

	mu         sync.Mutex
	counters   map[string]*promCounter
	gauges     map[string]*promGauge
	histograms map[string]*promHistogram
}

// NewPrometheusMetrics creates a Prometheus-backed metrics collector. The
// namespace prefixes every metric name. A nil registerer falls back to
// prometheus.DefaultRegisterer.
func NewPrometheusMetrics(namespace string, registerer prometheus.Registerer) *PrometheusMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	return &PrometheusMetrics{
		namespace:  namespace,
		registerer: registerer,
		counters:   make(map[string]*promCounter),
		gauges:     make(map[string]*promGauge),
		histograms: make(map[string]*promHistogram),
	}
}

// Counter returns the counter for name, registering it on first use.
func (m *PrometheusMetrics) Counter(name string, labels MetricLabels) Counter {
	key := metricKey(name, labels)

	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.counters[key]; ok {
		return c
	}

	c := &promCounter{
		counter: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   m.namespace,
			Name:        name,
			ConstLabels: prometheus.Labels(labels),
		}),
	}
	m.register(c.counter)
	m.counters[key] = c
	return c
}

// Gauge returns the gauge for name, registering it on first use.
func (m *PrometheusMetrics) Gauge(name string, labels MetricLabels) Gauge {
	key := metricKey(name, labels)

	m.mu.Lock()
	defer m.mu.Unlock()

	if g, ok := m.gauges[key]; ok {
		return g
	}

	g := &promGauge{
		gauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   m.namespace,
			Name:        name,
			ConstLabels: prometheus.Labels(labels),
		}),
	}
	m.register(g.gauge)
	m.gauges[key] = g
	return g
}

// Histogram returns the histogram for name, registering it on first use.
func (m *PrometheusMetrics) Histogram(name string, labels MetricLabels) Histogram {
	key := metricKey(name, labels)

	m.mu.Lock()
	defer m.mu.Unlock()

	if h, ok := m.histograms[key]; ok {
		return h
	}

	h := &promHistogram{
		histogram: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Name:        name,
			ConstLabels: prometheus.Labels(labels),
		}),
	}
	m.register(h.histogram)
	m.histograms[key] = h
	return h
}

func (m *PrometheusMetrics) register(c prometheus.Collector) {
	if err := m.registerer.Register(c); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
			// Same semantics as prometheus.MustRegister.
			panic(err)
		}
	}
}

// promCounter mirrors the value locally because the Prometheus client does
// not expose reads outside of gathering.
type promCounter struct {
	counter prometheus.Counter
	shadow  memoryCounter
}

func (c *promCounter) Inc() {
	c.counter.Inc()
	c.shadow.Inc()
}

func (c *promCounter) Add(delta float64) {
	c.counter.Add(delta)
	c.shadow.Add(delta)
}

func (c *promCounter) Value() float64 {
	return c.shadow.Value()
}

type promGauge struct {
	gauge  prometheus.Gauge
	shadow memoryGauge
}

func (g *promGauge) Set(value float64) {
	g.gauge.Set(value)
	g.shadow.Set(value)
}

func (g *promGauge) Inc() {
	g.gauge.Inc()
	g.shadow.Inc()
}

func (g *promGauge) Dec() {
	g.gauge.Dec()
	g.shadow.Dec()
}

func (g *promGauge) Value() float64 {
	return g.shadow.Value()
}

type promHistogram struct {
	histogram prometheus.Histogram
	shadow    memoryHistogram
}

func (h *promHistogram) Observe(value float64) {
	h.histogram.Observe(value)
	h.shadow.Observe(value)
}

func (h *promHistogram) ObserveDuration(d time.Duration) {
	h.Observe(d.Seconds())
}

func (h *promHistogram) Count() uint64 {
	return h.shadow.Count()
}

func (h *promHistogram) Sum() float64 {
	return h.shadow.Sum()
}
