package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "medmcq_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "medmcq_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2},
		},
		[]string{"method", "endpoint"},
	)

	Selections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "medmcq_question_selections_total",
			Help: "Question selections by mode and outcome",
		},
		[]string{"mode", "outcome"},
	)

	VoteWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "medmcq_vote_writes_total",
			Help: "Tag and specialty vote writes",
		},
		[]string{"kind", "op"},
	)

	CacheInvalidationFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "medmcq_cache_invalidation_failures_total",
			Help: "Cache invalidations that failed after a committed write",
		},
	)
)

// Register adds the collectors to reg.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(RequestCounter, RequestDuration, Selections, VoteWrites, CacheInvalidationFailures)
}

func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(c.Writer.Status()),
		).Inc()
		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(time.Since(start).Seconds())
	}
}

func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
