package http

import (
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
)

const metricsNamespace = "fiber_topology"

// Metrics holds the service's Prometheus collectors on a private registry.
type Metrics struct {
	registry  *prometheus.Registry
	startedAt time.Time

	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	GraphBuildDuration prometheus.Histogram
	GraphNodes         prometheus.Histogram
	GraphEdges         prometheus.Histogram
	GraphConflicts     prometheus.Counter
	GraphCacheLookups  *prometheus.CounterVec

	DatasetReloads *prometheus.CounterVec
	DatasetRecords prometheus.Gauge
	DatasetUploads *prometheus.CounterVec
	UptimeSeconds  prometheus.GaugeFunc
}

// NewMetrics creates a registry with every collector initialized.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{registry: reg, startedAt: time.Now()}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m.initHTTPMetrics()
	m.initDBMetrics()
	m.initGraphMetrics()
	m.initDatasetMetrics()
	return m
}

func (m *Metrics) initHTTPMetrics() {
	m.HTTPRequestsTotal = promauto.With(m.registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests handled by this app.",
		},
		[]string{"method", "path", "status"},
	)

	m.HTTPRequestDuration = promauto.With(m.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	m.HTTPRequestsInFlight = promauto.With(m.registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "http_requests_in_flight",
			Help:      "In-flight HTTP requests currently served by this app.",
		},
	)
}

func (m *Metrics) initDBMetrics() {
	m.DBQueryDuration = promauto.With(m.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "db_query_duration_seconds",
			Help:      "Database query duration in seconds by connector/operation.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"connector", "operation"},
	)

	m.DBQueryErrors = promauto.With(m.registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "db_query_errors_total",
			Help:      "Database query errors by connector/operation.",
		},
		[]string{"connector", "operation"},
	)
}

func (m *Metrics) initGraphMetrics() {
	m.GraphBuildDuration = promauto.With(m.registry).NewHistogram(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "graph_build_duration_seconds",
			Help:      "Time to build one ring graph.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		},
	)

	m.GraphNodes = promauto.With(m.registry).NewHistogram(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "graph_nodes",
			Help:      "Nodes per built ring graph.",
			Buckets:   []float64{2, 4, 8, 16, 32, 64, 128, 256},
		},
	)

	m.GraphEdges = promauto.With(m.registry).NewHistogram(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "graph_edges",
			Help:      "Edges per built ring graph.",
			Buckets:   []float64{2, 4, 8, 16, 32, 64, 128, 256},
		},
	)

	m.GraphConflicts = promauto.With(m.registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "graph_attribute_conflicts_total",
			Help:      "Node attributes that differed between records of the same node.",
		},
	)

	m.GraphCacheLookups = promauto.With(m.registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "graph_cache_lookups_total",
			Help:      "Graph cache lookups by result.",
		},
		[]string{"result"}, // hit, miss
	)
}

func (m *Metrics) initDatasetMetrics() {
	m.DatasetReloads = promauto.With(m.registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "dataset_reloads_total",
			Help:      "Dataset reload attempts by result.",
		},
		[]string{"result"},
	)

	m.DatasetRecords = promauto.With(m.registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "dataset_records",
			Help:      "Link records in the active dataset.",
		},
	)

	m.DatasetUploads = promauto.With(m.registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "dataset_uploads_total",
			Help:      "Dataset uploads by result.",
		},
		[]string{"result"},
	)

	m.UptimeSeconds = promauto.With(m.registry).NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "uptime_seconds",
			Help:      "Process uptime in seconds.",
		},
		func() float64 { return time.Since(m.startedAt).Seconds() },
	)
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordHTTPRequest records a finished request.
func (m *Metrics) RecordHTTPRequest(method, path string, status int, d time.Duration) {
	code := strconv.Itoa(status)
	m.HTTPRequestsTotal.WithLabelValues(method, path, code).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path, code).Observe(d.Seconds())
}

// RecordDBQuery records one database call.
func (m *Metrics) RecordDBQuery(connector, operation string, d time.Duration, err error) {
	if connector == "" || operation == "" {
		return
	}
	m.DBQueryDuration.WithLabelValues(connector, operation).Observe(d.Seconds())
	if err != nil {
		m.DBQueryErrors.WithLabelValues(connector, operation).Inc()
	}
}

// RecordGraphBuild records one uncached ring graph build.
func (m *Metrics) RecordGraphBuild(d time.Duration, nodes, edges, conflicts int) {
	m.GraphBuildDuration.Observe(d.Seconds())
	m.GraphNodes.Observe(float64(nodes))
	m.GraphEdges.Observe(float64(edges))
	m.GraphConflicts.Add(float64(conflicts))
}

// RecordCacheLookup records a graph cache hit or miss.
func (m *Metrics) RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.GraphCacheLookups.WithLabelValues(result).Inc()
}

// RecordReload records a dataset reload attempt.
func (m *Metrics) RecordReload(err error, records int) {
	if err != nil {
		m.DatasetReloads.WithLabelValues("error").Inc()
		return
	}
	m.DatasetReloads.WithLabelValues("ok").Inc()
	m.DatasetRecords.Set(float64(records))
}

func metricsHandler(m *Metrics) http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func appMetricsSummaryHandler(m *Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		type endpointRow struct {
			Method  string  `json:"method"`
			Path    string  `json:"path"`
			Status  string  `json:"status"`
			Count   uint64  `json:"count"`
			AvgMS   float64 `json:"avg_ms"`
			TotalMS float64 `json:"total_ms"`
		}
		type dbRow struct {
			Connector string  `json:"connector"`
			Operation string  `json:"operation"`
			Count     uint64  `json:"count"`
			Errors    uint64  `json:"errors"`
			AvgMS     float64 `json:"avg_ms"`
		}

		families, err := m.registry.Gather()
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "failed to gather metrics"})
			return
		}

		httpRows := make([]endpointRow, 0)
		dbRows := make([]dbRow, 0)
		dbErrors := map[[2]string]uint64{}
		var totalDBErrors uint64
		var cacheHits, cacheMisses float64

		for _, mf := range families {
			switch mf.GetName() {
			case metricsNamespace + "_http_request_duration_seconds":
				for _, metric := range mf.GetMetric() {
					h := metric.GetHistogram()
					httpRows = append(httpRows, endpointRow{
						Method:  labelValue(metric, "method"),
						Path:    labelValue(metric, "path"),
						Status:  labelValue(metric, "status"),
						Count:   h.GetSampleCount(),
						AvgMS:   avgMS(h),
						TotalMS: h.GetSampleSum() * 1000.0,
					})
				}
			case metricsNamespace + "_db_query_duration_seconds":
				for _, metric := range mf.GetMetric() {
					h := metric.GetHistogram()
					dbRows = append(dbRows, dbRow{
						Connector: labelValue(metric, "connector"),
						Operation: labelValue(metric, "operation"),
						Count:     h.GetSampleCount(),
						AvgMS:     avgMS(h),
					})
				}
			case metricsNamespace + "_db_query_errors_total":
				for _, metric := range mf.GetMetric() {
					n := uint64(metric.GetCounter().GetValue())
					dbErrors[[2]string{labelValue(metric, "connector"), labelValue(metric, "operation")}] = n
					totalDBErrors += n
				}
			case metricsNamespace + "_graph_cache_lookups_total":
				for _, metric := range mf.GetMetric() {
					switch labelValue(metric, "result") {
					case "hit":
						cacheHits = metric.GetCounter().GetValue()
					case "miss":
						cacheMisses = metric.GetCounter().GetValue()
					}
				}
			}
		}
		for i := range dbRows {
			dbRows[i].Errors = dbErrors[[2]string{dbRows[i].Connector, dbRows[i].Operation}]
		}

		sort.Slice(httpRows, func(i, j int) bool { return httpRows[i].AvgMS > httpRows[j].AvgMS })
		sort.Slice(dbRows, func(i, j int) bool { return dbRows[i].AvgMS > dbRows[j].AvgMS })

		topHTTP := httpRows
		if len(topHTTP) > 5 {
			topHTTP = topHTTP[:5]
		}
		topDB := dbRows
		if len(topDB) > 5 {
			topDB = topDB[:5]
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"meta": map[string]any{
				"generated_at":   time.Now().UTC(),
				"uptime_seconds": int64(time.Since(m.startedAt).Seconds()),
			},
			"data": map[string]any{
				"top_http_slowest_avg_ms": topHTTP,
				"top_db_slowest_avg_ms":   topDB,
				"graph_cache": map[string]any{
					"hits":   uint64(cacheHits),
					"misses": uint64(cacheMisses),
				},
				"errors": map[string]any{
					"db_query_total": totalDBErrors,
				},
			},
		})
	}
}

func labelValue(metric *dto.Metric, name string) string {
	for _, lp := range metric.GetLabel() {
		if lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}

func avgMS(h *dto.Histogram) float64 {
	if h.GetSampleCount() == 0 {
		return 0
	}
	return h.GetSampleSum() / float64(h.GetSampleCount()) * 1000.0
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func observabilityMiddleware(m *Metrics, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		m.HTTPRequestsInFlight.Inc()
		defer m.HTTPRequestsInFlight.Dec()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		m.RecordHTTPRequest(r.Method, normalizeMetricPath(r.URL.Path), rec.status, time.Since(start))
	})
}

var metricRoutes = map[string]struct{}{
	"/":                       {},
	"/favicon.ico":            {},
	"/metrics":                {},
	"/health":                 {},
	"/ready":                  {},
	"/api/v1/metrics/app":     {},
	"/api/v1/topology":        {},
	"/api/v1/rings":           {},
	"/api/v1/links":           {},
	"/api/v1/schema":          {},
	"/api/v1/styles":          {},
	"/api/v1/datasets":        {},
	"/api/v1/reload":          {},
	"/api/v1/status/services": {},
}

// normalizeMetricPath collapses path parameters and folds unknown paths into
// "other" so label cardinality stays bounded.
func normalizeMetricPath(path string) string {
	if _, ok := metricRoutes[path]; ok {
		return path
	}
	if rest, ok := strings.CutPrefix(path, "/api/v1/rings/"); ok {
		if ring, ok := strings.CutSuffix(rest, "/topology"); ok && ring != "" && !strings.Contains(ring, "/") {
			return "/api/v1/rings/{ring_id}/topology"
		}
		return "other"
	}
	if rest, ok := strings.CutPrefix(path, "/api/v1/datasets/"); ok {
		parts := strings.Split(strings.TrimSuffix(rest, "/"), "/")
		switch {
		case len(parts) == 1 && parts[0] != "":
			return "/api/v1/datasets/{id}"
		case len(parts) == 2 && parts[0] != "" && parts[1] == "activate":
			return "/api/v1/datasets/{id}/activate"
		}
	}
	return "other"
}
