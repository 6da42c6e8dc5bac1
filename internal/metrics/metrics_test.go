package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveBuild(t *testing.T) {
	before := testutil.ToFloat64(scenarioBuildsTotal.WithLabelValues(ResultOK))
	beforeErr := testutil.ToFloat64(scenarioBuildsTotal.WithLabelValues(ResultError))

	ObserveBuild(ResultOK, 10*time.Millisecond)
	ObserveBuild(ResultOK, 20*time.Millisecond)
	ObserveBuild(ResultError, time.Millisecond)

	if got := testutil.ToFloat64(scenarioBuildsTotal.WithLabelValues(ResultOK)) - before; got != 2 {
		t.Errorf("expected 2 ok builds, got %f", got)
	}
	if got := testutil.ToFloat64(scenarioBuildsTotal.WithLabelValues(ResultError)) - beforeErr; got != 1 {
		t.Errorf("expected 1 failed build, got %f", got)
	}
	if n := testutil.CollectAndCount(scenarioBuildDuration); n != 1 {
		t.Errorf("expected one histogram series, got %d", n)
	}
}

func TestRecordFlatSizes(t *testing.T) {
	RecordFlatTopology(20, 20)
	if got := testutil.ToFloat64(flatEntities); got != 20 {
		t.Errorf("expected 20 entities, got %f", got)
	}
	if got := testutil.ToFloat64(flatLinks); got != 20 {
		t.Errorf("expected 20 links, got %f", got)
	}

	RecordFlatApplication("vid_case", 7, map[string]int{"SOURCE": 2, "MODULE": 4, "SINK": 1})
	if got := testutil.ToFloat64(appMessages.WithLabelValues("vid_case")); got != 7 {
		t.Errorf("expected 7 messages, got %f", got)
	}
	if got := testutil.ToFloat64(appModules.WithLabelValues("vid_case", "MODULE")); got != 4 {
		t.Errorf("expected 4 compute modules, got %f", got)
	}
}

func TestRecordDeployments(t *testing.T) {
	before := testutil.ToFloat64(moduleDeploymentsTotal.WithLabelValues("metrics_test"))
	RecordDeployments("metrics_test", 4)
	if got := testutil.ToFloat64(moduleDeploymentsTotal.WithLabelValues("metrics_test")) - before; got != 4 {
		t.Errorf("expected 4 deployments, got %f", got)
	}

	beforeErr := testutil.ToFloat64(deploymentErrorsTotal.WithLabelValues("metrics_test"))
	RecordDeploymentError("metrics_test")
	if got := testutil.ToFloat64(deploymentErrorsTotal.WithLabelValues("metrics_test")) - beforeErr; got != 1 {
		t.Errorf("expected 1 deployment error, got %f", got)
	}

	SetStoredRuns(3)
	if got := testutil.ToFloat64(storedRuns); got != 3 {
		t.Errorf("expected 3 stored runs, got %f", got)
	}
}

func TestHandler(t *testing.T) {
	RecordFlatTopology(5, 4)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, name := range []string{"mecsim_flat_topology_entities 5", "mecsim_flat_topology_links 4", "go_goroutines"} {
		if !strings.Contains(body, name) {
			t.Errorf("expected exposition to contain %q", name)
		}
	}
}
