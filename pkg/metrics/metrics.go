// Package metrics 提供 Prometheus 指标集合，覆盖 HTTP、读穿透缓存、失效协议、文件去重与审核流程
package metrics

import (
	"context"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wyfcoding/scamreport/pkg/logger"
)

const namespace = "scamreport"

// Metrics 指标集合
type Metrics struct {
	// HTTP 请求计数
	HTTPRequestsTotal *prometheus.CounterVec
	// HTTP 请求耗时
	HTTPRequestDuration *prometheus.HistogramVec

	// 缓存访问结果：hit / miss，按 key 命名空间区分
	CacheRequestsTotal *prometheus.CounterVec
	// 缓存操作失败（已被吞掉）
	CacheErrorsTotal *prometheus.CounterVec

	// 失效协议删除的 key 数量，按目标区分
	InvalidatedKeysTotal *prometheus.CounterVec
	// 失效协议中失败的步骤
	InvalidationFailuresTotal *prometheus.CounterVec

	// 文件去重解析结果：cache / blob / new
	DedupResolutionsTotal *prometheus.CounterVec
	// 上传校验失败或存储失败的文件数
	UploadFailuresTotal prometheus.Counter

	// 提交的案件数
	CasesSubmittedTotal prometheus.Counter
	// 审核结果计数
	CaseReviewsTotal *prometheus.CounterVec

	registry *prometheus.Registry
}

// New 创建指标实例
func New(serviceName string) *Metrics {
	constLabels := prometheus.Labels{"service": serviceName}
	return &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "http_requests_total",
			Help:        "Total HTTP requests",
			ConstLabels: constLabels,
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration in seconds",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: constLabels,
		}, []string{"method", "path"}),

		CacheRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "cache",
			Name:        "requests_total",
			Help:        "Read-through cache lookups by namespace and result",
			ConstLabels: constLabels,
		}, []string{"namespace", "result"}),
		CacheErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "cache",
			Name:        "errors_total",
			Help:        "Swallowed cache errors by namespace and operation",
			ConstLabels: constLabels,
		}, []string{"namespace", "op"}),

		InvalidatedKeysTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "invalidation",
			Name:        "keys_total",
			Help:        "Cache keys removed by the invalidation protocol",
			ConstLabels: constLabels,
		}, []string{"target"}),
		InvalidationFailuresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "invalidation",
			Name:        "failures_total",
			Help:        "Invalidation steps that failed and were skipped",
			ConstLabels: constLabels,
		}, []string{"target"}),

		DedupResolutionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "dedup",
			Name:        "resolutions_total",
			Help:        "How uploaded content was resolved to a storage key",
			ConstLabels: constLabels,
		}, []string{"source"}),
		UploadFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "dedup",
			Name:        "upload_failures_total",
			Help:        "Files rejected or failed within upload batches",
			ConstLabels: constLabels,
		}),

		CasesSubmittedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "cases_submitted_total",
			Help:        "Scam reports submitted",
			ConstLabels: constLabels,
		}),
		CaseReviewsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "case_reviews_total",
			Help:        "Case reviews by resulting status",
			ConstLabels: constLabels,
		}, []string{"status"}),

		registry: prometheus.NewRegistry(),
	}
}

// Register 注册所有指标以及 Go 运行时指标
func (m *Metrics) Register() error {
	cs := []prometheus.Collector{
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.CacheRequestsTotal,
		m.CacheErrorsTotal,
		m.InvalidatedKeysTotal,
		m.InvalidationFailuresTotal,
		m.DedupResolutionsTotal,
		m.UploadFailuresTotal,
		m.CasesSubmittedTotal,
		m.CaseReviewsTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	}

	for _, c := range cs {
		if err := m.registry.Register(c); err != nil {
			logger.Error(context.Background(), "Failed to register metric", "error", err)
			return err
		}
	}

	logger.Info(context.Background(), "Metrics registered successfully")
	return nil
}

// Handler 返回暴露本实例指标的 HTTP handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Gatherer 返回底层注册表，供测试读取
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// RecordHTTPRequest 记录 HTTP 请求
func (m *Metrics) RecordHTTPRequest(method, path string, status int, seconds float64) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(seconds)
}

// CacheHit 实现 cache.Recorder
func (m *Metrics) CacheHit(ns string) {
	m.CacheRequestsTotal.WithLabelValues(ns, "hit").Inc()
}

// CacheMiss 实现 cache.Recorder
func (m *Metrics) CacheMiss(ns string) {
	m.CacheRequestsTotal.WithLabelValues(ns, "miss").Inc()
}

// CacheError 实现 cache.Recorder
func (m *Metrics) CacheError(ns, op string) {
	m.CacheErrorsTotal.WithLabelValues(ns, op).Inc()
}

// RecordInvalidation 记录一次失效步骤的结果
func (m *Metrics) RecordInvalidation(target string, keys int, err error) {
	if err != nil {
		m.InvalidationFailuresTotal.WithLabelValues(target).Inc()
		return
	}
	m.InvalidatedKeysTotal.WithLabelValues(target).Add(float64(keys))
}

// RecordDedup 记录文件去重的解析来源
func (m *Metrics) RecordDedup(source string) {
	m.DedupResolutionsTotal.WithLabelValues(source).Inc()
}

// RecordUploadFailure 记录批量上传中失败的文件
func (m *Metrics) RecordUploadFailure() {
	m.UploadFailuresTotal.Inc()
}

// RecordSubmission 记录案件提交
func (m *Metrics) RecordSubmission() {
	m.CasesSubmittedTotal.Inc()
}

// RecordReview 记录审核结果
func (m *Metrics) RecordReview(status string) {
	m.CaseReviewsTotal.WithLabelValues(status).Inc()
}
