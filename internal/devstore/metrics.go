package devstore

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the devstore's Prometheus collectors. Each Metrics owns its
// registry so several servers can run in one process.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	LikesToggledTotal   *prometheus.CounterVec
	PostsCreatedTotal   prometheus.Counter
	PostsDeletedTotal   prometheus.Counter
	CommentsTotal       *prometheus.CounterVec
	WebSocketClients    prometheus.Gauge
}

// NewMetrics registers every collector on a fresh registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "devstore_http_requests_total",
			Help: "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "devstore_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		LikesToggledTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "devstore_likes_toggled_total",
			Help: "Like toggles by target type",
		}, []string{"target"}),
		PostsCreatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "devstore_posts_created_total",
			Help: "Posts created",
		}),
		PostsDeletedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "devstore_posts_deleted_total",
			Help: "Posts deleted",
		}),
		CommentsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "devstore_comments_created_total",
			Help: "Comments and replies created",
		}, []string{"kind"}),
		WebSocketClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "devstore_websocket_clients",
			Help: "Connected websocket clients",
		}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.LikesToggledTotal,
		m.PostsCreatedTotal,
		m.PostsDeletedTotal,
		m.CommentsTotal,
		m.WebSocketClients,
	)
	return m
}

// Middleware records request counts and latency by route template
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
