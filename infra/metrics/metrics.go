package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	CartMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_cart_mutations_total",
			Help: "Cart add/remove operations by outcome",
		},
		[]string{"op", "outcome"},
	)
	OrderSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_order_submissions_total",
			Help: "Order submissions by result",
		},
		[]string{"result"},
	)
	InventoryDrift = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_inventory_drift_total",
			Help: "Order lines whose inventory propagation failed",
		},
	)
)

func Middleware(c *gin.Context) {
	if c.Request.URL.Path == "/metrics" {
		c.Next()
		return
	}
	start := time.Now()
	c.Next()
	duration := time.Since(start).Seconds()
	route := c.FullPath()
	if route == "" {
		route = "unmatched"
	}
	status := strconv.Itoa(c.Writer.Status())
	RequestTotal.WithLabelValues(c.Request.Method, route, status).Inc()
	RequestDuration.WithLabelValues(c.Request.Method, route).Observe(duration)
}
