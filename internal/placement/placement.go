package placement

import (
	"errors"
	"fmt"
	"sort"

	"github.com/GoSim-25-26J-441/mec-simulation-core/internal/appgraph"
	"github.com/GoSim-25-26J-441/mec-simulation-core/internal/topology"
	"github.com/GoSim-25-26J-441/mec-simulation-core/pkg/config"
	"github.com/GoSim-25-26J-441/mec-simulation-core/pkg/logger"
)

var (
	ErrNotPreloaded   = errors.New("placement mapping must be preloaded before initial allocation")
	ErrUnknownServer  = errors.New("unknown server")
	ErrInvalidMapping = errors.New("invalid placement mapping")
)

// Deployer is the deployment entry point of the simulation engine
type Deployer interface {
	DeployModule(app, module string, entity int) error
}

// Placer replays a placement decision into a Deployer
type Placer interface {
	Name() string
	InitialAllocation(d Deployer, app string) error
}

// Assignment places a module on a flattened entity
type Assignment struct {
	Module   string `json:"module"`
	Resource int    `json:"resource"`
}

// Mapping is an ordered placement; order is deployment order
type Mapping []Assignment

// MappingFromMap builds a mapping ordered by module name
func MappingFromMap(m map[string]int) Mapping {
	modules := make([]string, 0, len(m))
	for module := range m {
		modules = append(modules, module)
	}
	sort.Strings(modules)

	mapping := make(Mapping, len(modules))
	for i, module := range modules {
		mapping[i] = Assignment{Module: module, Resource: m[module]}
	}
	return mapping
}

// ResolveServers translates module-to-server assignments into entity ids
func ResolveServers(assignments []config.Assignment, flat *topology.FlatTopology) (Mapping, error) {
	mapping := make(Mapping, 0, len(assignments))
	for _, a := range assignments {
		entity, ok := flat.ServerEntities[a.Server]
		if !ok {
			return nil, fmt.Errorf("module %s: %w %q", a.Module, ErrUnknownServer, a.Server)
		}
		mapping = append(mapping, Assignment{Module: a.Module, Resource: entity})
	}
	return mapping, nil
}

// Validate checks that every assignment names a compute module of app and
// a server entity of flat, and that no module is placed twice
func (m Mapping) Validate(app *appgraph.FlatApplication, flat *topology.FlatTopology) error {
	seen := make(map[string]bool, len(m))
	for i, a := range m {
		if seen[a.Module] {
			return fmt.Errorf("%w: assignment %d: module %s assigned twice", ErrInvalidMapping, i, a.Module)
		}
		seen[a.Module] = true

		mod, ok := app.Module(a.Module)
		if !ok {
			return fmt.Errorf("%w: assignment %d: module %s does not exist in %s", ErrInvalidMapping, i, a.Module, app.Name)
		}
		if mod.Role != appgraph.RoleModule {
			return fmt.Errorf("%w: assignment %d: %s module %s cannot be placed", ErrInvalidMapping, i, mod.Role, a.Module)
		}
		entity, ok := flat.Entity(a.Resource)
		if !ok {
			return fmt.Errorf("%w: assignment %d: entity %d does not exist", ErrInvalidMapping, i, a.Resource)
		}
		if entity.Tag != topology.TagServer {
			return fmt.Errorf("%w: assignment %d: entity %d is a %s, not a server", ErrInvalidMapping, i, a.Resource, entity.Tag)
		}
	}
	return nil
}

// StaticPlacement deploys a precomputed mapping
type StaticPlacement struct {
	name    string
	mapping Mapping
}

// NewStaticPlacement creates a placement with nothing preloaded
func NewStaticPlacement(name string) *StaticPlacement {
	return &StaticPlacement{name: name}
}

// Name returns the placement name
func (p *StaticPlacement) Name() string {
	return p.name
}

// Preload stores the mapping replayed by InitialAllocation
func (p *StaticPlacement) Preload(m Mapping) {
	p.mapping = append(Mapping(nil), m...)
}

// Mapping returns a copy of the preloaded mapping
func (p *StaticPlacement) Mapping() Mapping {
	return append(Mapping(nil), p.mapping...)
}

// InitialAllocation deploys every preloaded assignment in order and stops
// at the first failure. It returns ErrNotPreloaded when no mapping was
// supplied.
func (p *StaticPlacement) InitialAllocation(d Deployer, app string) error {
	if len(p.mapping) == 0 {
		return fmt.Errorf("%s: %w", p.name, ErrNotPreloaded)
	}
	for _, a := range p.mapping {
		if err := d.DeployModule(app, a.Module, a.Resource); err != nil {
			return fmt.Errorf("deploy %s/%s on entity %d: %w", app, a.Module, a.Resource, err)
		}
		logger.Debug("module deployed", "placement", p.name, "app", app, "module", a.Module, "entity", a.Resource)
	}
	logger.Info("initial allocation complete", "placement", p.name, "app", app, "modules", len(p.mapping))
	return nil
}

// ListPlacement deploys an allocation list covering one or more
// applications, selecting the entries of the requested one
type ListPlacement struct {
	name        string
	allocations []config.Allocation
}

// NewListPlacement creates a placement over an allocation list
func NewListPlacement(name string, allocations []config.Allocation) *ListPlacement {
	return &ListPlacement{name: name, allocations: allocations}
}

// Name returns the placement name
func (p *ListPlacement) Name() string {
	return p.name
}

// Mapping returns the allocations of app in list order
func (p *ListPlacement) Mapping(app string) Mapping {
	var m Mapping
	for _, a := range p.allocations {
		if a.App == app {
			m = append(m, Assignment{Module: a.ModuleName, Resource: a.IDResource})
		}
	}
	return m
}

// InitialAllocation deploys the allocations of app in list order. An
// application without entries deploys nothing.
func (p *ListPlacement) InitialAllocation(d Deployer, app string) error {
	m := p.Mapping(app)
	for _, a := range m {
		if err := d.DeployModule(app, a.Module, a.Resource); err != nil {
			return fmt.Errorf("deploy %s/%s on entity %d: %w", app, a.Module, a.Resource, err)
		}
	}
	logger.Info("initial allocation complete", "placement", p.name, "app", app, "modules", len(m))
	return nil
}
