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

	// 准备度业务指标
	SubmissionCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "readiness_submissions_total",
			Help: "Readiness assessment submissions by outcome",
		},
		[]string{"outcome"},
	)

	CycleTransitionCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "readiness_cycle_transitions_total",
			Help: "Cycle state machine transitions on login and submission",
		},
		[]string{"transition"},
	)

	KPIScore = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "readiness_kpi_score",
			Help:    "Distribution of computed assignment KPI scores",
			Buckets: []float64{50, 55, 60, 65, 70, 75, 80, 85, 90, 95, 100},
		},
	)

	LiveSubscribers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "readiness_live_subscribers",
			Help: "Websocket subscribers connected to this instance",
		},
	)
)

func Init() {
	prometheus.MustRegister(RequestCounter)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(SubmissionCounter)
	prometheus.MustRegister(CycleTransitionCounter)
	prometheus.MustRegister(KPIScore)
	prometheus.MustRegister(LiveSubscribers)
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
