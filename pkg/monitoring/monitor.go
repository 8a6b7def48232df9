package monitoring

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
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	QueueDepth = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "judge_queue_depth",
			Help: "Judge queue depth by state",
		},
		[]string{"state"},
	)

	JudgeRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "judge_runs_total",
			Help: "Completed judge runs by outcome",
		},
		[]string{"outcome"},
	)

	JudgeDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "judge_run_duration_seconds",
			Help:    "End-to-end duration of one judge run",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60},
		},
	)

	TrustRecomputes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "trust_recomputes_total",
			Help: "Trust score recomputations performed",
		},
	)
)

func Init() {
	prometheus.MustRegister(RequestCounter)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(QueueDepth)
	prometheus.MustRegister(JudgeRuns)
	prometheus.MustRegister(JudgeDuration)
	prometheus.MustRegister(TrustRecomputes)
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
