package resource

import "time"

// ModuleInstance is one deployed copy of an application module
type ModuleInstance struct {
	id         string
	app        string
	module     string
	hostEntity int
	ram        float64
	deployedAt time.Time
}

func newModuleInstance(id, app, module string, hostEntity int, ram float64) *ModuleInstance {
	return &ModuleInstance{
		id:         id,
		app:        app,
		module:     module,
		hostEntity: hostEntity,
		ram:        ram,
		deployedAt: time.Now(),
	}
}

// ID returns the instance id
func (i *ModuleInstance) ID() string { return i.id }

// App returns the application name
func (i *ModuleInstance) App() string { return i.app }

// Module returns the module name
func (i *ModuleInstance) Module() string { return i.module }

// HostEntity returns the entity id of the hosting server
func (i *ModuleInstance) HostEntity() int { return i.hostEntity }

// RAM returns the memory reserved on the host
func (i *ModuleInstance) RAM() float64 { return i.ram }

// DeployedAt returns the wall-clock deployment time
func (i *ModuleInstance) DeployedAt() time.Time { return i.deployedAt }
