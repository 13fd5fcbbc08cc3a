package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus implements every hook interface by recording Prometheus
// metrics. Create it with [NewPrometheus] and install it with
// [Prometheus.Install].
type Prometheus struct {
	ingestTotal     *prometheus.CounterVec
	ingestDuration  *prometheus.HistogramVec
	layoutTotal     *prometheus.CounterVec
	layoutDuration  *prometheus.HistogramVec
	solverNodes     *prometheus.HistogramVec
	renderTotal     *prometheus.CounterVec
	cacheEvents     *prometheus.CounterVec
	cacheBytes      *prometheus.CounterVec
	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestErrors   *prometheus.CounterVec
}

var (
	_ PipelineHooks = (*Prometheus)(nil)
	_ CacheHooks    = (*Prometheus)(nil)
	_ HTTPHooks     = (*Prometheus)(nil)
)

// NewPrometheus creates the collectors and registers them with reg.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	f := promauto.With(reg)
	const ns = "keyforge"
	return &Prometheus{
		ingestTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Subsystem: "ingest", Name: "total",
			Help: "Transition matrices built, by source and outcome.",
		}, []string{"source", "outcome"}),
		ingestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns, Subsystem: "ingest", Name: "duration_seconds",
			Help:    "Time spent building transition matrices.",
			Buckets: prometheus.DefBuckets,
		}, []string{"source"}),
		layoutTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Subsystem: "layout", Name: "total",
			Help: "Layouts computed, by strategy and outcome.",
		}, []string{"strategy", "outcome"}),
		layoutDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns, Subsystem: "layout", Name: "duration_seconds",
			Help:    "Time spent computing layouts.",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
		}, []string{"strategy"}),
		solverNodes: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns, Subsystem: "layout", Name: "solver_nodes",
			Help:    "Branch-and-bound nodes explored per layout.",
			Buckets: prometheus.ExponentialBuckets(1, 10, 8),
		}, []string{"strategy"}),
		renderTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Subsystem: "render", Name: "total",
			Help: "Render calls, by format and outcome.",
		}, []string{"format", "outcome"}),
		cacheEvents: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Subsystem: "cache", Name: "events_total",
			Help: "Cache hits, misses and writes, by key type.",
		}, []string{"key_type", "event"}),
		cacheBytes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Subsystem: "cache", Name: "written_bytes_total",
			Help: "Bytes written to the cache, by key type.",
		}, []string{"key_type"}),
		requestTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Subsystem: "api", Name: "requests_total",
			Help: "API requests, by method, route and status.",
		}, []string{"method", "route", "status"}),
		requestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns, Subsystem: "api", Name: "request_duration_seconds",
			Help:    "API request duration in seconds.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
		}, []string{"method", "route"}),
		requestErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Subsystem: "api", Name: "errors_total",
			Help: "API requests answered with an error body.",
		}, []string{"method", "route"}),
	}
}

// Install registers p as the global pipeline, cache and HTTP hooks.
func (p *Prometheus) Install() {
	SetPipelineHooks(p)
	SetCacheHooks(p)
	SetHTTPHooks(p)
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (p *Prometheus) OnIngestStart(context.Context, string) {}

func (p *Prometheus) OnIngestComplete(_ context.Context, source string, _ int, d time.Duration, err error) {
	p.ingestTotal.WithLabelValues(source, outcome(err)).Inc()
	p.ingestDuration.WithLabelValues(source).Observe(d.Seconds())
}

func (p *Prometheus) OnLayoutStart(context.Context, string, int) {}

func (p *Prometheus) OnLayoutComplete(_ context.Context, strategy string, nodes int, d time.Duration, err error) {
	p.layoutTotal.WithLabelValues(strategy, outcome(err)).Inc()
	if err != nil {
		return
	}
	p.layoutDuration.WithLabelValues(strategy).Observe(d.Seconds())
	p.solverNodes.WithLabelValues(strategy).Observe(float64(nodes))
}

func (p *Prometheus) OnRenderStart(context.Context, []string) {}

func (p *Prometheus) OnRenderComplete(_ context.Context, formats []string, _ time.Duration, err error) {
	for _, f := range formats {
		p.renderTotal.WithLabelValues(f, outcome(err)).Inc()
	}
}

func (p *Prometheus) OnCacheHit(_ context.Context, keyType string) {
	p.cacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (p *Prometheus) OnCacheMiss(_ context.Context, keyType string) {
	p.cacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (p *Prometheus) OnCacheSet(_ context.Context, keyType string, size int) {
	p.cacheEvents.WithLabelValues(keyType, "set").Inc()
	p.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (p *Prometheus) OnRequest(context.Context, string, string) {}

func (p *Prometheus) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	p.requestTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	p.requestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (p *Prometheus) OnError(_ context.Context, method, route string, _ error) {
	p.requestErrors.WithLabelValues(method, route).Inc()
}
