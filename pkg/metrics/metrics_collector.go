package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsCollector 指标收集器
// 所有方法允许 nil 接收者，未启用指标时调用方无需判断
type MetricsCollector struct {
	// HTTP 指标
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// 缓存指标
	cacheHitsTotal   *prometheus.CounterVec
	cacheMissesTotal *prometheus.CounterVec

	// 业务指标
	ordersCreatedTotal     prometheus.Counter
	stockRejectionsTotal   prometheus.Counter
	returnTransitionsTotal *prometheus.CounterVec
	ticketTransitionsTotal *prometheus.CounterVec
}

// NewMetricsCollector 创建指标收集器并注册到 reg
func NewMetricsCollector(reg prometheus.Registerer) *MetricsCollector {
	factory := promauto.With(reg)

	return &MetricsCollector{
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),

		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		cacheHitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_hits_total",
				Help: "Total number of cache hits",
			},
			[]string{"key_prefix"},
		),

		cacheMissesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_misses_total",
				Help: "Total number of cache misses",
			},
			[]string{"key_prefix"},
		),

		ordersCreatedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "shop_orders_created_total",
				Help: "Total number of orders created",
			},
		),

		stockRejectionsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "shop_order_stock_rejections_total",
				Help: "Orders rejected because of insufficient stock",
			},
		),

		returnTransitionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shop_return_transitions_total",
				Help: "Return workflow transitions by target status",
			},
			[]string{"status"},
		),

		ticketTransitionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shop_ticket_transitions_total",
				Help: "Support ticket transitions by target status",
			},
			[]string{"status"},
		),
	}
}

// NewRegistry 创建带 Go 运行时与进程指标的独立注册表
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// RecordHTTPRequest 记录 HTTP 请求指标
func (m *MetricsCollector) RecordHTTPRequest(method, endpoint string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, endpoint, getStatusCategory(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordCacheOperation 记录缓存命中情况
func (m *MetricsCollector) RecordCacheOperation(keyPrefix string, hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheHitsTotal.WithLabelValues(keyPrefix).Inc()
	} else {
		m.cacheMissesTotal.WithLabelValues(keyPrefix).Inc()
	}
}

// RecordOrderCreated 记录下单成功
func (m *MetricsCollector) RecordOrderCreated() {
	if m == nil {
		return
	}
	m.ordersCreatedTotal.Inc()
}

// RecordStockRejection 记录库存不足导致的下单失败
func (m *MetricsCollector) RecordStockRejection() {
	if m == nil {
		return
	}
	m.stockRejectionsTotal.Inc()
}

// RecordReturnTransition 记录退货状态流转
func (m *MetricsCollector) RecordReturnTransition(status string) {
	if m == nil {
		return
	}
	m.returnTransitionsTotal.WithLabelValues(status).Inc()
}

// RecordTicketTransition 记录工单状态流转
func (m *MetricsCollector) RecordTicketTransition(status string) {
	if m == nil {
		return
	}
	m.ticketTransitionsTotal.WithLabelValues(status).Inc()
}

// getStatusCategory 获取状态分类
func getStatusCategory(status int) string {
	switch {
	case status >= 200 && status < 300:
		return "2xx"
	case status >= 300 && status < 400:
		return "3xx"
	case status >= 400 && status < 500:
		return "4xx"
	case status >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}
