package resource

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/GoSim-25-26J-441/mec-simulation-core/internal/appgraph"
	"github.com/GoSim-25-26J-441/mec-simulation-core/internal/topology"
	"github.com/GoSim-25-26J-441/mec-simulation-core/pkg/logger"
	"github.com/GoSim-25-26J-441/mec-simulation-core/pkg/utils"
)

var (
	ErrUnknownEntity      = errors.New("unknown entity")
	ErrNotDeployable      = errors.New("entity cannot host modules")
	ErrUnknownApplication = errors.New("unknown application")
	ErrUnknownModule      = errors.New("unknown module")
	ErrInsufficientMemory = errors.New("insufficient memory")
	ErrNoFreeSlot         = errors.New("no free slot")
	ErrInstanceNotFound   = errors.New("instance not found")
)

// Deployment is a serializable view of a module instance
type Deployment struct {
	InstanceID string  `json:"instance_id"`
	App        string  `json:"app"`
	Module     string  `json:"module"`
	Entity     int     `json:"entity"`
	Server     string  `json:"server"`
	RAM        float64 `json:"ram"`
}

// Manager is an in-process deployment target. Hosts are built from the
// server entities of a flattened topology; modules come from registered
// flattened applications.
type Manager struct {
	mu        sync.RWMutex
	entities  []topology.FlatEntity
	hosts     map[int]*Host
	apps      map[string]*appgraph.FlatApplication
	instances map[string]*ModuleInstance
	order     []string // deployment order of instance ids
	seq       int
}

// NewManager creates an empty resource manager
func NewManager() *Manager {
	return &Manager{
		hosts:     make(map[int]*Host),
		apps:      make(map[string]*appgraph.FlatApplication),
		instances: make(map[string]*ModuleInstance),
	}
}

// LoadTopology replaces the known entities and hosts. Only server entities
// become hosts; deployments made against an earlier topology are dropped.
func (m *Manager) LoadTopology(flat *topology.FlatTopology) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entities = append([]topology.FlatEntity(nil), flat.Entities...)
	m.hosts = make(map[int]*Host)
	m.instances = make(map[string]*ModuleInstance)
	m.order = nil

	for _, e := range flat.Entities {
		if e.Tag != topology.TagServer {
			continue
		}
		m.hosts[e.ID] = NewHost(e.ID, e.Model, e.IPT, e.RAM, e.Slots)
	}

	logger.Debug("resource topology loaded", "entities", len(m.entities), "hosts", len(m.hosts))
}

// RegisterApplication makes an application's modules deployable
func (m *Manager) RegisterApplication(app *appgraph.FlatApplication) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.apps[app.Name]; exists {
		return fmt.Errorf("application %s already registered", app.Name)
	}
	m.apps[app.Name] = app
	return nil
}

// DeployModule places one instance of a compute module on a server entity,
// reserving the module's RAM on the host
func (m *Manager) DeployModule(app, module string, entity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	flatApp, ok := m.apps[app]
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownApplication, app)
	}
	mod, ok := flatApp.Module(module)
	if !ok {
		return fmt.Errorf("%w %q in %s", ErrUnknownModule, module, app)
	}
	if mod.Role != appgraph.RoleModule {
		return fmt.Errorf("%w: %s module %s is not deployable", ErrNotDeployable, mod.Role, module)
	}
	if entity < 0 || entity >= len(m.entities) {
		return fmt.Errorf("%w %d", ErrUnknownEntity, entity)
	}
	host, ok := m.hosts[entity]
	if !ok {
		return fmt.Errorf("%w: entity %d is a %s", ErrNotDeployable, entity, m.entities[entity].Tag)
	}

	m.seq++
	instanceID := utils.GenerateInstanceID(app, module, m.seq)
	if err := host.reserve(instanceID, mod.RAM); err != nil {
		return err
	}

	m.instances[instanceID] = newModuleInstance(instanceID, app, module, entity, mod.RAM)
	m.order = append(m.order, instanceID)

	logger.Debug("module instance deployed",
		"instance_id", instanceID,
		"app", app,
		"module", module,
		"host", host.Name())

	return nil
}

// Undeploy removes an instance and frees its host memory
func (m *Manager) Undeploy(instanceID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	instance, ok := m.instances[instanceID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrInstanceNotFound, instanceID)
	}
	if host, ok := m.hosts[instance.HostEntity()]; ok {
		host.release(instanceID, instance.RAM())
	}
	delete(m.instances, instanceID)
	for i, id := range m.order {
		if id == instanceID {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// GetHost returns the host built from an entity id
func (m *Manager) GetHost(entity int) (*Host, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	host, ok := m.hosts[entity]
	return host, ok
}

// GetAllHosts returns every host ordered by entity id
func (m *Manager) GetAllHosts() []*Host {
	m.mu.RLock()
	defer m.mu.RUnlock()

	hosts := make([]*Host, 0, len(m.hosts))
	for _, host := range m.hosts {
		hosts = append(hosts, host)
	}
	sort.Slice(hosts, func(i, j int) bool { return hosts[i].EntityID() < hosts[j].EntityID() })
	return hosts
}

// GetInstance returns a module instance by id
func (m *Manager) GetInstance(instanceID string) (*ModuleInstance, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	instance, ok := m.instances[instanceID]
	return instance, ok
}

// GetInstancesForModule returns the instances of a module in deployment order
func (m *Manager) GetInstancesForModule(app, module string) []*ModuleInstance {
	m.mu.RLock()
	defer m.mu.RUnlock()

	instances := make([]*ModuleInstance, 0)
	for _, id := range m.order {
		instance := m.instances[id]
		if instance.App() == app && instance.Module() == module {
			instances = append(instances, instance)
		}
	}
	return instances
}

// Deployments returns every instance in deployment order
func (m *Manager) Deployments() []Deployment {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Deployment, 0, len(m.order))
	for _, id := range m.order {
		instance := m.instances[id]
		out = append(out, Deployment{
			InstanceID: id,
			App:        instance.App(),
			Module:     instance.Module(),
			Entity:     instance.HostEntity(),
			Server:     m.hosts[instance.HostEntity()].Name(),
			RAM:        instance.RAM(),
		})
	}
	return out
}
