// Package metrics 提供 Prometheus 指標，所有 Record 方法在 nil 接收者上為 no-op
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "cookmate"

// Metrics 服務指標
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	substitutionsTotal *prometheus.CounterVec
	aiRequestsTotal    *prometheus.CounterVec
	aiRequestDuration  *prometheus.HistogramVec
	cacheLookupsTotal  *prometheus.CounterVec

	shoppingListsTotal  *prometheus.CounterVec
	shoppingListItems   prometheus.Histogram
	recommendationTotal *prometheus.CounterVec
}

// New 創建並註冊指標
func New(registry *prometheus.Registry) (*Metrics, error) {
	m := &Metrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) initMetrics() {
	m.httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)

	m.httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Time taken for HTTP requests",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	m.substitutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "substitutions_total",
			Help:      "Substitution lookups by result source",
		},
		[]string{"source"}, // source: rule-based, ai, none
	)

	m.aiRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ai_requests_total",
			Help:      "AI provider requests by outcome",
		},
		[]string{"provider", "status"}, // status: success, error
	)

	m.aiRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ai_request_duration_seconds",
			Help:      "Time taken for AI provider requests",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
		},
		[]string{"provider"},
	)

	m.cacheLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "AI result cache lookups",
		},
		[]string{"backend", "result"}, // result: hit, miss, error
	)

	m.shoppingListsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shopping_lists_total",
			Help:      "Shopping lists built by origin",
		},
		[]string{"origin", "status"}, // origin: recipes, meal_plans
	)

	m.shoppingListItems = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "shopping_list_items",
			Help:      "Number of aggregated items per shopping list",
			Buckets:   prometheus.LinearBuckets(0, 10, 10),
		},
	)

	m.recommendationTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recommendations_total",
			Help:      "Recommendation requests by kind",
		},
		[]string{"kind", "status"},
	)
}

func (m *Metrics) getCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.substitutionsTotal,
		m.aiRequestsTotal,
		m.aiRequestDuration,
		m.cacheLookupsTotal,
		m.shoppingListsTotal,
		m.shoppingListItems,
		m.recommendationTotal,
	}
}

// Describe implements the Collector interface
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	for _, collector := range m.getCollectors() {
		collector.Describe(ch)
	}
}

// Collect implements the Collector interface
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	for _, collector := range m.getCollectors() {
		collector.Collect(ch)
	}
}

// Registry 回傳註冊用的 registry，供 /metrics 使用
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordHTTPRequest 記錄 HTTP 請求
func (m *Metrics) RecordHTTPRequest(method, path string, statusCode int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	m.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordSubstitution 記錄替代建議結果來源
func (m *Metrics) RecordSubstitution(source string) {
	if m == nil {
		return
	}
	m.substitutionsTotal.WithLabelValues(source).Inc()
}

// RecordAIRequest 記錄 AI 請求
func (m *Metrics) RecordAIRequest(provider string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.aiRequestsTotal.WithLabelValues(provider, status(err)).Inc()
	m.aiRequestDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordCacheLookup 記錄快取查詢，result 為 hit、miss 或 error
func (m *Metrics) RecordCacheLookup(backend, result string) {
	if m == nil {
		return
	}
	m.cacheLookupsTotal.WithLabelValues(backend, result).Inc()
}

// RecordShoppingList 記錄購物清單建立
func (m *Metrics) RecordShoppingList(origin string, items int, err error) {
	if m == nil {
		return
	}
	m.shoppingListsTotal.WithLabelValues(origin, status(err)).Inc()
	if err == nil {
		m.shoppingListItems.Observe(float64(items))
	}
}

// RecordRecommendation 記錄推薦請求
func (m *Metrics) RecordRecommendation(kind string, err error) {
	if m == nil {
		return
	}
	m.recommendationTotal.WithLabelValues(kind, status(err)).Inc()
}
