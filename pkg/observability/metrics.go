package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics implements every hook interface on top of Prometheus collectors.
// Create it with [NewMetrics] and register it with the Set*Hooks functions.
type Metrics struct {
	layoutPasses   prometheus.Counter
	layoutDuration prometheus.Histogram
	layoutNodes    prometheus.Gauge
	populates      *prometheus.CounterVec
	contentIgnored prometheus.Counter
	stageDuration  *prometheus.HistogramVec
	stageErrors    *prometheus.CounterVec
	cacheOps       *prometheus.CounterVec
	cacheBytes     *prometheus.CounterVec
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	httpInFlight   prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg. It panics
// if registration fails, like [prometheus.MustRegister].
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		layoutPasses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kintower_layout_passes_total",
			Help: "Total number of full diagram layout passes",
		}),
		layoutDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "kintower_layout_duration_seconds",
			Help:    "Duration of full diagram layout passes",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		layoutNodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "kintower_layout_nodes",
			Help: "Number of placed nodes in the most recent layout pass",
		}),
		populates: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kintower_populate_total",
				Help: "Populate transitions by phase and outcome",
			},
			[]string{"phase", "applied"},
		),
		contentIgnored: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kintower_content_ignored_total",
			Help: "Content changes dropped while a populate was in flight",
		}),
		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "kintower_pipeline_stage_duration_seconds",
				Help:    "Duration of pipeline stages",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
		stageErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kintower_pipeline_stage_errors_total",
				Help: "Pipeline stage failures",
			},
			[]string{"stage"},
		),
		cacheOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kintower_cache_operations_total",
				Help: "Cache operations by key type and result",
			},
			[]string{"key_type", "result"},
		),
		cacheBytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kintower_cache_written_bytes_total",
				Help: "Bytes written to the cache by key type",
			},
			[]string{"key_type"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kintower_http_requests_total",
				Help: "HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "kintower_http_request_duration_seconds",
				Help:    "HTTP handler duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "kintower_http_in_flight_requests",
			Help: "Requests currently being served",
		}),
	}

	reg.MustRegister(
		m.layoutPasses,
		m.layoutDuration,
		m.layoutNodes,
		m.populates,
		m.contentIgnored,
		m.stageDuration,
		m.stageErrors,
		m.cacheOps,
		m.cacheBytes,
		m.httpRequests,
		m.httpDuration,
		m.httpInFlight,
	)
	return m
}

// Register installs m as the diagram, pipeline, cache and HTTP hooks.
func (m *Metrics) Register() {
	SetDiagramHooks(m)
	SetPipelineHooks(m)
	SetCacheHooks(m)
	SetHTTPHooks(m)
}

func (m *Metrics) OnLayout(_ string, _, nodes, _ int, d time.Duration) {
	m.layoutPasses.Inc()
	m.layoutDuration.Observe(d.Seconds())
	m.layoutNodes.Set(float64(nodes))
}

func (m *Metrics) OnPopulateBegin(string) {
	m.populates.WithLabelValues("begin", "true").Inc()
}

func (m *Metrics) OnPopulateCommit(_ string, applied bool) {
	m.populates.WithLabelValues("commit", strconv.FormatBool(applied)).Inc()
}

func (m *Metrics) OnContentIgnored() { m.contentIgnored.Inc() }

func (m *Metrics) OnLoadStart(context.Context, string) {}

func (m *Metrics) OnLoadComplete(_ context.Context, _ string, _ int, d time.Duration, err error) {
	m.observeStage("load", d, err)
}

func (m *Metrics) OnLayoutStart(context.Context, string, int) {}

func (m *Metrics) OnLayoutComplete(_ context.Context, _ string, d time.Duration, err error) {
	m.observeStage("layout", d, err)
}

func (m *Metrics) OnRenderStart(context.Context, []string) {}

func (m *Metrics) OnRenderComplete(_ context.Context, _ []string, d time.Duration, err error) {
	m.observeStage("render", d, err)
}

func (m *Metrics) observeStage(stage string, d time.Duration, err error) {
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
	if err != nil {
		m.stageErrors.WithLabelValues(stage).Inc()
	}
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheOps.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheOps.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.cacheOps.WithLabelValues(keyType, "set").Inc()
	m.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (m *Metrics) OnRequest(context.Context, string, string) {
	m.httpInFlight.Inc()
}

func (m *Metrics) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	m.httpInFlight.Dec()
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
