package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Build results
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Registry holds every collector exported by the daemon
var Registry = prometheus.NewRegistry()

var (
	scenarioBuildsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mecsim_scenario_builds_total",
			Help: "Number of scenario builds by result.",
		},
		[]string{"result"},
	)
	scenarioBuildDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mecsim_scenario_build_duration_seconds",
			Help:    "Time taken to build, flatten and place a scenario.",
			Buckets: prometheus.DefBuckets,
		},
	)

	flatEntities = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "mecsim_flat_topology_entities",
			Help: "Number of entities in the last flattened topology.",
		},
	)
	flatLinks = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "mecsim_flat_topology_links",
			Help: "Number of links in the last flattened topology.",
		},
	)
	appMessages = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "mecsim_application_messages",
			Help: "Number of messages in the last flattened application, by application.",
		},
		[]string{"app"},
	)
	appModules = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "mecsim_application_modules",
			Help: "Number of modules in the last flattened application, by application and role.",
		},
		[]string{"app", "role"},
	)

	moduleDeploymentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mecsim_module_deployments_total",
			Help: "Total number of module instances deployed, by application.",
		},
		[]string{"app"},
	)
	deploymentErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mecsim_deployment_errors_total",
			Help: "Total number of failed initial allocations, by application.",
		},
		[]string{"app"},
	)

	storedRuns = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "mecsim_stored_runs",
			Help: "Number of scenario runs held in memory.",
		},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		scenarioBuildsTotal,
		scenarioBuildDuration,
		flatEntities,
		flatLinks,
		appMessages,
		appModules,
		moduleDeploymentsTotal,
		deploymentErrorsTotal,
		storedRuns,
	)
}

// Handler serves the registry in the Prometheus exposition format
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// ObserveBuild records one scenario build and its duration
func ObserveBuild(result string, elapsed time.Duration) {
	scenarioBuildsTotal.WithLabelValues(result).Inc()
	scenarioBuildDuration.Observe(elapsed.Seconds())
}

// RecordFlatTopology records the size of a flattened topology
func RecordFlatTopology(entities, links int) {
	flatEntities.Set(float64(entities))
	flatLinks.Set(float64(links))
}

// RecordFlatApplication records the size of a flattened application.
// roles maps a module role to its count.
func RecordFlatApplication(app string, messages int, roles map[string]int) {
	appMessages.WithLabelValues(app).Set(float64(messages))
	for role, n := range roles {
		appModules.WithLabelValues(app, role).Set(float64(n))
	}
}

// RecordDeployments adds n successful module deployments for app
func RecordDeployments(app string, n int) {
	moduleDeploymentsTotal.WithLabelValues(app).Add(float64(n))
}

// RecordDeploymentError counts a failed initial allocation for app
func RecordDeploymentError(app string) {
	deploymentErrorsTotal.WithLabelValues(app).Inc()
}

// SetStoredRuns records the number of runs held by the store
func SetStoredRuns(n int) {
	storedRuns.Set(float64(n))
}
