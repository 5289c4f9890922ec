package metrics

import (
	"net/http"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once              sync.Once
	registry          *prom.Registry
	stageDuration     *prom.HistogramVec
	buildDuration     prom.Histogram
	stageResults      *prom.CounterVec
	buildOutcome      *prom.CounterVec
	filesRendered     prom.Counter
	assetCacheHits    prom.Counter
	assetCacheMisses  prom.Counter
	renderConcurrency prom.Gauge
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{registry: reg}
	pr.once.Do(func() {
		pr.stageDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "sitebuilder",
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual build stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"})
		pr.buildDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "sitebuilder",
			Name:      "build_duration_seconds",
			Help:      "Total build duration",
			Buckets:   prom.DefBuckets,
		})
		pr.stageResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "sitebuilder",
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"stage", "result"})
		pr.buildOutcome = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "sitebuilder",
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final status",
		}, []string{"outcome"})
		pr.filesRendered = prom.NewCounter(prom.CounterOpts{
			Namespace: "sitebuilder",
			Name:      "files_rendered_total",
			Help:      "Content files rendered across all builds",
		})
		pr.assetCacheHits = prom.NewCounter(prom.CounterOpts{
			Namespace: "sitebuilder",
			Name:      "asset_cache_hits_total",
			Help:      "Asset pipeline results served from the hash cache",
		})
		pr.assetCacheMisses = prom.NewCounter(prom.CounterOpts{
			Namespace: "sitebuilder",
			Name:      "asset_cache_misses_total",
			Help:      "Asset pipeline results recomputed",
		})
		pr.renderConcurrency = prom.NewGauge(prom.GaugeOpts{
			Namespace: "sitebuilder",
			Name:      "render_concurrency",
			Help:      "Worker pool size used for the render stage",
		})
		reg.MustRegister(
			pr.stageDuration, pr.buildDuration, pr.stageResults, pr.buildOutcome,
			pr.filesRendered, pr.assetCacheHits, pr.assetCacheMisses, pr.renderConcurrency,
		)
	})
	return pr
}

// Handler returns an HTTP handler exposing the registry for the preview server.
func (pr *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(pr.registry, promhttp.HandlerOpts{})
}

func (pr *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	pr.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (pr *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	pr.buildDuration.Observe(d.Seconds())
}

func (pr *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	pr.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (pr *PrometheusRecorder) IncBuildOutcome(outcome string) {
	pr.buildOutcome.WithLabelValues(outcome).Inc()
}

func (pr *PrometheusRecorder) IncFilesRendered(n int) {
	pr.filesRendered.Add(float64(n))
}

func (pr *PrometheusRecorder) IncAssetCacheHit() { pr.assetCacheHits.Inc() }

func (pr *PrometheusRecorder) IncAssetCacheMiss() { pr.assetCacheMisses.Inc() }

func (pr *PrometheusRecorder) SetRenderConcurrency(n int) {
	pr.renderConcurrency.Set(float64(n))
}
