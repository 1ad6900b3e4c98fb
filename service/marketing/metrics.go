package marketing

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics observes the latency of every backend call. A nil *Metrics is a no-op.
type Metrics struct {
	duration *prometheus.HistogramVec
}

// NewMetrics ...
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "marketing",
			Subsystem: "client",
			Name:      "request_duration_seconds",
			Help:      "Duration of marketing backend calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "code"}),
	}
	reg.MustRegister(m.duration)
	return m
}

func (m *Metrics) observe(op string, statusCode int, d time.Duration) {
	if m == nil {
		return
	}
	code := "error"
	if statusCode > 0 {
		code = strconv.Itoa(statusCode)
	}
	m.duration.WithLabelValues(op, code).Observe(d.Seconds())
}
