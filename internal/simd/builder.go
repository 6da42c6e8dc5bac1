package simd

import (
	"fmt"
	"time"

	"github.com/GoSim-25-26J-441/mec-simulation-core/internal/appgraph"
	"github.com/GoSim-25-26J-441/mec-simulation-core/internal/metrics"
	"github.com/GoSim-25-26J-441/mec-simulation-core/internal/placement"
	"github.com/GoSim-25-26J-441/mec-simulation-core/internal/resource"
	"github.com/GoSim-25-26J-441/mec-simulation-core/internal/topology"
	"github.com/GoSim-25-26J-441/mec-simulation-core/pkg/config"
	"github.com/GoSim-25-26J-441/mec-simulation-core/pkg/logger"
)

// Summary describes a built scenario at a glance
type Summary struct {
	App         string `json:"app"`
	CloudMDC    string `json:"cloud_mdc"`
	Root        string `json:"root"`
	MDCs        int    `json:"mdcs"`
	Servers     int    `json:"servers"`
	Entities    int    `json:"entities"`
	Links       int    `json:"links"`
	Modules     int    `json:"modules"`
	Messages    int    `json:"messages"`
	Placement   string `json:"placement"`
	Deployments int    `json:"deployments"`

	AvgLinkBandwidth   float64 `json:"avg_link_bandwidth,omitempty"`
	AvgServerFrequency float64 `json:"avg_server_frequency,omitempty"`
}

// Result is everything produced from one scenario: both flattened
// descriptors and the deployments replayed from its placement
type Result struct {
	Summary      Summary                   `json:"summary"`
	Topology     *topology.FlatTopology    `json:"topology"`
	Application  *appgraph.FlatApplication `json:"application"`
	Deployments  []resource.Deployment     `json:"deployments"`
	ServerMemory map[string]float64        `json:"server_memory"` // memory left per server after deployment

	// placed is a fork of the declared topology carrying the memory debits
	placed *topology.Topology
}

// Placed returns the topology with deployment memory debited
func (r *Result) Placed() *topology.Topology {
	return r.placed
}

// Build constructs the topology and application graph of a validated
// scenario, flattens both, and replays the scenario's placement into a fresh
// resource manager. A scenario without a placement mapping fails with
// placement.ErrNotPreloaded.
func Build(sc *config.Scenario) (res *Result, err error) {
	start := time.Now()
	log := logger.Component("builder").With("app", sc.Application.Name)
	defer func() {
		result := metrics.ResultOK
		if err != nil {
			result = metrics.ResultError
			log.Error("scenario build failed", "error", err)
		}
		metrics.ObserveBuild(result, time.Since(start))
	}()

	topo, err := topology.FromConfig(sc.MDCs, sc.Network)
	if err != nil {
		return nil, fmt.Errorf("build topology: %w", err)
	}
	flatTopo := topo.Flatten()
	metrics.RecordFlatTopology(len(flatTopo.Entities), len(flatTopo.Links))

	graph, err := appgraph.New(sc.Application.Name, sc.Application.Nodes, sc.Application.Edges)
	if err != nil {
		return nil, fmt.Errorf("build application: %w", err)
	}
	flatApp := graph.Flatten(appgraph.FlattenOptions{
		EmissionInterval: sc.Application.EmissionInterval,
		ModuleRAM:        sc.Application.ModuleRAM,
	})
	roles := make(map[string]int)
	for _, m := range flatApp.Modules {
		roles[string(m.Role)]++
	}
	metrics.RecordFlatApplication(flatApp.Name, len(flatApp.Messages), roles)

	mgr := resource.NewManager()
	mgr.LoadTopology(flatTopo)
	if err := mgr.RegisterApplication(flatApp); err != nil {
		return nil, err
	}

	placer, err := newPlacer(sc.Placement, flatTopo, flatApp)
	if err != nil {
		return nil, err
	}
	if err := placer.InitialAllocation(mgr, flatApp.Name); err != nil {
		metrics.RecordDeploymentError(flatApp.Name)
		return nil, fmt.Errorf("initial allocation: %w", err)
	}
	deployments := mgr.Deployments()
	metrics.RecordDeployments(flatApp.Name, len(deployments))

	placed := topo.Clone()
	serverMemory, err := debitServers(placed, deployments)
	if err != nil {
		return nil, err
	}

	res = &Result{
		Summary: Summary{
			App:         flatApp.Name,
			CloudMDC:    topo.CloudID(),
			Root:        graph.Root().ID,
			MDCs:        len(topo.MDCs()),
			Servers:     len(topo.Servers()),
			Entities:    len(flatTopo.Entities),
			Links:       len(flatTopo.Links),
			Modules:     len(flatApp.Modules),
			Messages:    len(flatApp.Messages),
			Placement:   placer.Name(),
			Deployments: len(deployments),
		},
		Topology:     flatTopo,
		Application:  flatApp,
		Deployments:  deployments,
		ServerMemory: serverMemory,
		placed:       placed,
	}
	if bw, freq, err := topo.Averages(); err == nil {
		res.Summary.AvgLinkBandwidth = bw
		res.Summary.AvgServerFrequency = freq
	} else {
		log.Debug("averages unavailable", "error", err)
	}

	log.Info("scenario built",
		"entities", res.Summary.Entities,
		"links", res.Summary.Links,
		"messages", res.Summary.Messages,
		"deployments", res.Summary.Deployments,
		"duration", time.Since(start))

	return res, nil
}

// debitServers charges each deployment's RAM to its server and returns the
// memory left on every server
func debitServers(topo *topology.Topology, deployments []resource.Deployment) (map[string]float64, error) {
	for _, d := range deployments {
		server, ok := topo.FindServer(d.Server)
		if !ok {
			return nil, fmt.Errorf("deployment %s: %w: %s", d.InstanceID, topology.ErrServerNotFound, d.Server)
		}
		server.DebitMemory(d.RAM)
	}
	remaining := make(map[string]float64)
	for _, s := range topo.Servers() {
		remaining[s.ID] = s.Memory
	}
	return remaining, nil
}

// newPlacer picks the placement form declared by the scenario. Without any
// mapping the static placement is returned empty.
func newPlacer(p *config.Placement, flat *topology.FlatTopology, app *appgraph.FlatApplication) (placement.Placer, error) {
	if p != nil && len(p.InitialAllocation) > 0 {
		return placement.NewListPlacement("initial_allocation", p.InitialAllocation), nil
	}

	static := placement.NewStaticPlacement("static")
	if p == nil || len(p.Assignments) == 0 {
		return static, nil
	}
	mapping, err := placement.ResolveServers(p.Assignments, flat)
	if err != nil {
		return nil, fmt.Errorf("resolve placement: %w", err)
	}
	if err := mapping.Validate(app, flat); err != nil {
		return nil, err
	}
	static.Preload(mapping)
	return static, nil
}
