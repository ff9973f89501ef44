package service

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService owns the Prometheus registry for HTTP, cache and ledger activity.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
	cacheLatency    prometheus.Histogram
	dbQueryDuration *prometheus.HistogramVec
	paymentsTotal   *prometheus.CounterVec
	paymentAmount   *prometheus.CounterVec
	dispensedLitres *prometheus.CounterVec
	stockRejections *prometheus.CounterVec
	rateLimited     *prometheus.CounterVec
}

// NewMetricsService registers the collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	m := &MetricsService{
		registry: registry,
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cache_lookups_total",
			Help: "Cache lookups by result",
		}, []string{"result"}),
		cacheLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cache_latency_seconds",
			Help:    "Latency for cache operations",
			Buckets: prometheus.DefBuckets,
		}),
		dbQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Duration of database queries",
			Buckets: prometheus.DefBuckets,
		}, []string{"query"}),
		paymentsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fee_payments_recorded_total",
			Help: "Student fee payments recorded, by method",
		}, []string{"method"}),
		paymentAmount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fee_payments_amount_total",
			Help: "Sum of recorded student fee payments, by method",
		}, []string{"method"}),
		dispensedLitres: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "inventory_dispensed_litres_total",
			Help: "Litres dispensed from depot stock",
		}, []string{"category"}),
		stockRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "inventory_insufficient_stock_total",
			Help: "Dispenses rejected because stock ran out",
		}, []string{"category"}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rate_limited_requests_total",
			Help: "Requests rejected by the rate limiter",
		}, []string{"scope"}),
	}

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(m.requestDuration, m.requestTotal, m.cacheLookups, m.cacheLatency, m.dbQueryDuration,
		m.paymentsTotal, m.paymentAmount, m.dispensedLitres, m.stockRejections, m.rateLimited, goroutines)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registry exposes the underlying registry, mainly for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveHTTPRequest records request latency and count.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheOperation records a cache lookup.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// ObserveDBQuery records database query timing.
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(label).Observe(duration.Seconds())
}

// RecordPayment counts a collected fee.
func (m *MetricsService) RecordPayment(method string, amount float64) {
	if m == nil {
		return
	}
	m.paymentsTotal.WithLabelValues(method).Inc()
	m.paymentAmount.WithLabelValues(method).Add(amount)
}

// RecordDispense counts litres issued from stock.
func (m *MetricsService) RecordDispense(category string, litres float64) {
	if m == nil {
		return
	}
	m.dispensedLitres.WithLabelValues(category).Add(litres)
}

// RecordStockRejection counts a dispense refused for lack of stock.
func (m *MetricsService) RecordStockRejection(category string) {
	if m == nil {
		return
	}
	m.stockRejections.WithLabelValues(category).Inc()
}

// RecordRateLimited counts a throttled request.
func (m *MetricsService) RecordRateLimited(scope string) {
	if m == nil {
		return
	}
	m.rateLimited.WithLabelValues(scope).Inc()
}
