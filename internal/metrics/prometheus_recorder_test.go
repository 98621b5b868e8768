package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)

	pr.ObserveStepDuration("check", "vet", 150*time.Millisecond)
	pr.IncStepResult("check", "vet", ResultSuccess)
	pr.IncStepResult("check", "test", ResultFailed)
	pr.IncStepResult("check", "doc", ResultSkipped)
	pr.ObserveRunDuration("check", 2*time.Second)
	pr.IncRunOutcome("check", OutcomeFailed)
	pr.ObserveSiteBuildDuration(40 * time.Millisecond)
	pr.AddPagesRendered(3)
	pr.AddPagesRendered(0)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, mfs)

	require.InDelta(t, 1, counterValue(t, reg, "sitesmith_step_results_total", "test"), 0)
	require.InDelta(t, 1, counterValue(t, reg, "sitesmith_run_outcomes_total", "failed"), 0)
	require.InDelta(t, 3, counterValue(t, reg, "sitesmith_pages_rendered_total", ""), 0)
}

// counterValue sums a counter family, optionally restricted to series carrying labelValue.
func counterValue(t *testing.T, reg *prom.Registry, name, labelValue string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	var total float64
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if labelValue != "" {
				found := false
				for _, lp := range m.GetLabel() {
					if lp.GetValue() == labelValue {
						found = true
					}
				}
				if !found {
					continue
				}
			}
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

func TestPrometheusRecorderNilSafe(t *testing.T) {
	var pr *PrometheusRecorder
	pr.ObserveStepDuration("check", "vet", time.Second)
	pr.IncRunOutcome("check", OutcomeSuccess)
	pr.AddPagesRendered(1)
}

func TestHTTPHandler(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.IncRunOutcome("check", OutcomeSuccess)

	rec := httptest.NewRecorder()
	HTTPHandler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.Contains(rec.Body.String(), "sitesmith_run_outcomes_total"))
}

func TestNewServerMountsPath(t *testing.T) {
	reg := prom.NewRegistry()
	NewPrometheusRecorder(reg).AddPagesRendered(3)
	srv := NewServer("127.0.0.1:0", "/custom", reg)

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/custom", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "sitesmith_pages_rendered_total 3")

	rec = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

var _ Recorder = NoopRecorder{}
var _ Recorder = (*PrometheusRecorder)(nil)
