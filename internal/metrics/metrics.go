package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

// Metrics owns a private registry so several instances can coexist in tests.
type Metrics struct {
	registry      *prometheus.Registry
	Requests      *prometheus.CounterVec
	LatencyMS     *prometheus.HistogramVec
	OrdersCreated prometheus.Counter
	OrderValue    prometheus.Histogram
}

func New(service string) *Metrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "laundrypos",
		Subsystem: service,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"route", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "laundrypos",
		Subsystem: service,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"route"})
	orders := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "laundrypos",
		Subsystem: service,
		Name:      "orders_created_total",
		Help:      "Orders persisted by the Order service.",
	})
	value := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "laundrypos",
		Subsystem: service,
		Name:      "order_total",
		Help:      "Order totals including VAT.",
		Buckets:   []float64{100, 250, 500, 1000, 2500, 5000, 10000, 25000},
	})

	reg := prometheus.NewRegistry()
	reg.MustRegister(requests, latency, orders, value)
	return &Metrics{registry: reg, Requests: requests, LatencyMS: latency, OrdersCreated: orders, OrderValue: value}
}

// Middleware records a counter and a latency sample per request.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		route := c.Route().Path
		m.Requests.WithLabelValues(route, strconv.Itoa(c.Response().StatusCode())).Inc()
		m.LatencyMS.WithLabelValues(route).Observe(float64(time.Since(start).Milliseconds()))
		return err
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

// ObserveOrder is safe to call on a nil *Metrics.
func (m *Metrics) ObserveOrder(total decimal.Decimal) {
	if m == nil {
		return
	}
	m.OrdersCreated.Inc()
	m.OrderValue.Observe(total.InexactFloat64())
}
