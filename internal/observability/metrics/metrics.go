package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const metricPrefix = "device_registry_"

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metricPrefix + "http_requests_total",
			Help: "HTTP requests by method, route and status code",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    metricPrefix + "http_request_duration_seconds",
			Help:    "HTTP request latency by method and route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// RowCounter provides the table counts exported as gauges.
type RowCounter interface {
	CountDevices(ctx context.Context) (int64, error)
	CountUsers(ctx context.Context) (int64, error)
}

// Register wires all collectors into the default registry. Call once.
func Register(counter RowCounter, logger *zap.Logger) {
	prometheus.MustRegister(httpRequestsTotal, httpRequestDuration)

	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "devices_total",
			Help: "Device rows in the registry",
		},
		func() float64 { return queryCount(counter.CountDevices, logger) },
	))

	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "users_total",
			Help: "User rows in the registry",
		},
		func() float64 { return queryCount(counter.CountUsers, logger) },
	))
}

func queryCount(count func(context.Context) (int64, error), logger *zap.Logger) float64 {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	n, err := count(ctx)
	if err != nil {
		if logger != nil {
			logger.Warn("Metrics count query failed", zap.Error(err))
		}
		return 0
	}
	return float64(n)
}

// Middleware records request counts and latency per route. The route
// template (not the raw path) keeps cardinality bounded.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		httpRequestsTotal.WithLabelValues(
			c.Request.Method, route, strconv.Itoa(c.Writer.Status()),
		).Inc()
		httpRequestDuration.WithLabelValues(
			c.Request.Method, route,
		).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the default registry for GET /metrics.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
