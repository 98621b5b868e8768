package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "sitesmith"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	stepDuration  *prom.HistogramVec
	stepResults   *prom.CounterVec
	runDuration   *prom.HistogramVec
	runOutcomes   *prom.CounterVec
	buildDuration prom.Histogram
	pagesRendered prom.Counter
}

// NewPrometheusRecorder constructs the collectors and registers them on reg
// (a fresh registry when nil).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		stepDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "step_duration_seconds",
			Help:      "Duration of individual recipe steps",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600},
		}, []string{"recipe", "step"}),
		stepResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "step_results_total",
			Help:      "Recipe step results by outcome",
		}, []string{"recipe", "step", "result"}),
		runDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Total recipe run duration",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		}, []string{"recipe"}),
		runOutcomes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "run_outcomes_total",
			Help:      "Recipe runs by final outcome",
		}, []string{"recipe", "outcome"}),
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "site_build_duration_seconds",
			Help:      "Static site build duration",
			Buckets:   prom.DefBuckets,
		}),
		pagesRendered: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "pages_rendered_total",
			Help:      "Pages and posts written to the output directory",
		}),
	}
	reg.MustRegister(pr.stepDuration, pr.stepResults, pr.runDuration, pr.runOutcomes, pr.buildDuration, pr.pagesRendered)
	return pr
}

func (p *PrometheusRecorder) ObserveStepDuration(recipe, step string, d time.Duration) {
	if p == nil {
		return
	}
	p.stepDuration.WithLabelValues(recipe, step).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStepResult(recipe, step string, result ResultLabel) {
	if p == nil {
		return
	}
	p.stepResults.WithLabelValues(recipe, step, string(result)).Inc()
}

func (p *PrometheusRecorder) ObserveRunDuration(recipe string, d time.Duration) {
	if p == nil {
		return
	}
	p.runDuration.WithLabelValues(recipe).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncRunOutcome(recipe string, outcome OutcomeLabel) {
	if p == nil {
		return
	}
	p.runOutcomes.WithLabelValues(recipe, string(outcome)).Inc()
}

func (p *PrometheusRecorder) ObserveSiteBuildDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) AddPagesRendered(n int) {
	if p == nil || n <= 0 {
		return
	}
	p.pagesRendered.Add(float64(n))
}
