package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector 指标收集器
type MetricsCollector struct {
	registry *prometheus.Registry

	// HTTP 指标
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// 数据库指标
	dbConnectionsOpen  prometheus.Gauge
	dbConnectionsInUse prometheus.Gauge
	dbConnectionsIdle  prometheus.Gauge
	dbWaitCount        prometheus.Gauge

	// 缓存指标
	cacheHitsTotal         *prometheus.CounterVec
	cacheMissesTotal       *prometheus.CounterVec
	cacheOperationDuration *prometheus.HistogramVec

	// 业务指标
	postsSubmittedTotal    prometheus.Counter
	moderationTotal        *prometheus.CounterVec
	ordersCreatedTotal     prometheus.Counter
	notificationsSentTotal *prometheus.CounterVec
}

// NewMetricsCollector 创建指标收集器，所有指标注册在独立的 registry 上
func NewMetricsCollector() *MetricsCollector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &MetricsCollector{
		registry: reg,

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

		dbConnectionsOpen: factory.NewGauge(prometheus.GaugeOpts{
			Name: "db_connections_open",
			Help: "Number of established database connections",
		}),
		dbConnectionsInUse: factory.NewGauge(prometheus.GaugeOpts{
			Name: "db_connections_in_use",
			Help: "Number of database connections currently in use",
		}),
		dbConnectionsIdle: factory.NewGauge(prometheus.GaugeOpts{
			Name: "db_connections_idle",
			Help: "Number of idle database connections",
		}),
		dbWaitCount: factory.NewGauge(prometheus.GaugeOpts{
			Name: "db_connections_wait_count",
			Help: "Total number of connections waited for",
		}),

		cacheHitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_hits_total",
				Help: "Total number of cache hits",
			},
			[]string{"cache_type", "key_prefix"},
		),
		cacheMissesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_misses_total",
				Help: "Total number of cache misses",
			},
			[]string{"cache_type", "key_prefix"},
		),
		cacheOperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cache_operation_duration_seconds",
				Help:    "Cache operation duration in seconds",
				Buckets: []float64{.0005, .001, .005, .01, .05, .1},
			},
			[]string{"operation", "cache_type"},
		),

		postsSubmittedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "community_posts_submitted_total",
			Help: "Posts submitted for moderation",
		}),
		moderationTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "moderation_decisions_total",
				Help: "Moderation decisions by subject and decision",
			},
			[]string{"subject", "decision"},
		),
		ordersCreatedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "shop_orders_created_total",
			Help: "Orders created",
		}),
		notificationsSentTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notifications_sent_total",
				Help: "Notifications delivered by channel and result",
			},
			[]string{"channel", "result"},
		),
	}
}

// Handler /metrics 处理器
func (m *MetricsCollector) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry 供测试读取指标
func (m *MetricsCollector) Registry() *prometheus.Registry {
	return m.registry
}

// RecordHTTPRequest 记录 HTTP 请求指标
func (m *MetricsCollector) RecordHTTPRequest(method, endpoint string, status int, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, endpoint, getStatusCategory(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordCacheOperation 记录缓存操作指标
func (m *MetricsCollector) RecordCacheOperation(operation, cacheType, keyPrefix string, duration time.Duration, hit bool) {
	if hit {
		m.cacheHitsTotal.WithLabelValues(cacheType, keyPrefix).Inc()
	} else {
		m.cacheMissesTotal.WithLabelValues(cacheType, keyPrefix).Inc()
	}

	m.cacheOperationDuration.WithLabelValues(operation, cacheType).Observe(duration.Seconds())
}

// UpdateDBConnections 更新数据库连接指标
func (m *MetricsCollector) UpdateDBConnections(open, inUse, idle int, waitCount int64) {
	m.dbConnectionsOpen.Set(float64(open))
	m.dbConnectionsInUse.Set(float64(inUse))
	m.dbConnectionsIdle.Set(float64(idle))
	m.dbWaitCount.Set(float64(waitCount))
}

func (m *MetricsCollector) RecordPostSubmitted() {
	m.postsSubmittedTotal.Inc()
}

// RecordModeration subject: post, registration, review, report
func (m *MetricsCollector) RecordModeration(subject, decision string) {
	m.moderationTotal.WithLabelValues(subject, decision).Inc()
}

func (m *MetricsCollector) RecordOrderCreated() {
	m.ordersCreatedTotal.Inc()
}

func (m *MetricsCollector) RecordNotification(channel string, ok bool) {
	result := "success"
	if !ok {
		result = "error"
	}
	m.notificationsSentTotal.WithLabelValues(channel, result).Inc()
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

var (
	globalCollector *MetricsCollector
	initOnce        sync.Once
)

// InitMetrics 初始化全局指标收集器
func InitMetrics() {
	initOnce.Do(func() {
		globalCollector = NewMetricsCollector()
	})
}

// GetGlobalCollector 获取全局指标收集器
func GetGlobalCollector() *MetricsCollector {
	InitMetrics()
	return globalCollector
}
