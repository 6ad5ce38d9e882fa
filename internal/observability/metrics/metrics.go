package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTPMetrics captures request counts and latency per route.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

var (
	httpOnce    sync.Once
	httpMetrics *HTTPMetrics
)

func NewHTTPMetrics() *HTTPMetrics {
	httpOnce.Do(func() {
		httpMetrics = &HTTPMetrics{
			requests: promauto.NewCounterVec(prometheus.CounterOpts{
				Namespace: "opshub",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "HTTP requests by route, method and status.",
			}, []string{"route", "method", "status"}),
			duration: promauto.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "opshub",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request latency by route.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"route", "method"}),
		}
	})
	return httpMetrics
}

// GinMiddleware records per-request metrics using the matched route template.
func GinMiddleware(m *HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}
