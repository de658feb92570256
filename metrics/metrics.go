// Package metrics 定义推荐服务的 Prometheus 指标。
//
// 被吸收的错误（缓存读写失败、语义检索失败）不会传给调用方，
// 但必须在这里可观测，避免线上静默地整体降级。
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "placerec_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "placerec_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	// 推荐结果缓存
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "placerec_cache_hits_total",
			Help: "Total number of recommendation cache hits",
		},
		[]string{"backend"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "placerec_cache_misses_total",
			Help: "Total number of recommendation cache misses",
		},
		[]string{"backend"},
	)

	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "placerec_cache_errors_total",
			Help: "Total number of swallowed cache backend errors",
		},
		[]string{"backend", "op"},
	)

	// 语义检索
	EmbeddingRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "placerec_embedding_requests_total",
			Help: "Embedding search calls by result (ok, empty, error, rejected, disabled)",
		},
		[]string{"result"},
	)

	EmbeddingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "placerec_embedding_request_duration_seconds",
			Help:    "Embedding search latency in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "placerec_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// 编排
	RecallSource = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "placerec_recall_source_total",
			Help: "Which recall source produced the candidate set",
		},
		[]string{"source"},
	)

	PipelineStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "placerec_pipeline_stage_duration_seconds",
			Help:    "Duration of each pipeline node in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"node"},
	)

	FilteredCandidates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "placerec_filtered_candidates_total",
			Help: "Candidates dropped by each filter",
		},
		[]string{"filter"},
	)

	StorageErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "placerec_storage_errors_total",
			Help: "Place/review storage failures surfaced as internal_error",
		},
		[]string{"op"},
	)
)
