package transport

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// collector records one observation per Do call
type collector struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

func newCollector(reg prometheus.Registerer) *collector {
	c := &collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stytch_client_requests_total",
			Help: "Requests sent to the Stytch API by path and outcome",
		}, []string{"path", "status_code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stytch_client_request_duration_seconds",
			Help:    "Latency of Stytch API requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"path"}),
	}

	reg.MustRegister(c.requests, c.latency)

	return c
}

// observe records a finished request. statusCode is 0 when no response arrived.
func (c *collector) observe(path string, statusCode int, elapsed time.Duration) {
	if c == nil {
		return
	}
	status := "error"
	if statusCode > 0 {
		status = strconv.Itoa(statusCode)
	}
	c.requests.WithLabelValues(path, status).Inc()
	c.latency.WithLabelValues(path).Observe(elapsed.Seconds())
}
