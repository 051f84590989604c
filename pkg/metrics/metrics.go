package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the monitor metrics on a private registry. All methods are
// safe to call on a nil Collector.
type Collector struct {
	reg *prometheus.Registry

	Refreshes       *prometheus.CounterVec // outcome, reason
	RefreshDuration prometheus.Histogram
	Monitors        prometheus.Gauge
	PublishErrors   prometheus.Counter
	SetupAttempts   prometheus.Counter
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		Refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wienerlinien_refresh_total",
			Help: "Line monitor refreshes by outcome.",
		}, []string{"outcome", "reason"}),
		RefreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "wienerlinien_refresh_duration_seconds",
			Help:    "Duration of a line monitor refresh including the fetch.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
		Monitors: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "wienerlinien_monitors",
			Help: "Number of registered line monitors.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wienerlinien_publish_errors_total",
			Help: "Sensor snapshots that failed to publish to a sink.",
		}),
		SetupAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wienerlinien_setup_attempts_total",
			Help: "Platform setup attempts.",
		}),
	}

	reg.MustRegister(c.Refreshes, c.RefreshDuration, c.Monitors, c.PublishErrors, c.SetupAttempts)

	return c
}

func (c *Collector) ObserveRefresh(outcome string, reason string, d time.Duration) {
	if c == nil {
		return
	}

	c.Refreshes.WithLabelValues(outcome, reason).Inc()
	c.RefreshDuration.Observe(d.Seconds())
}

func (c *Collector) SetMonitors(n int) {
	if c == nil {
		return
	}

	c.Monitors.Set(float64(n))
}

func (c *Collector) PublishErrorInc() {
	if c == nil {
		return
	}

	c.PublishErrors.Inc()
}

func (c *Collector) SetupAttemptInc() {
	if c == nil {
		return
	}

	c.SetupAttempts.Inc()
}

func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}

	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{})
}
