package resource

import (
	"fmt"
	"sync"
)

// Host is a flattened server entity that module instances are deployed on
type Host struct {
	mu sync.RWMutex

	entityID int
	name     string
	ipt      float64
	memory   float64
	slots    int

	// Remaining capacity after deployments
	freeMemory float64

	// Module instances running on this host
	instances []string
}

// NewHost creates a host with its full memory free. Slots below one are
// treated as one.
func NewHost(entityID int, name string, ipt, memory float64, slots int) *Host {
	if slots < 1 {
		slots = 1
	}
	return &Host{
		entityID:   entityID,
		name:       name,
		ipt:        ipt,
		memory:     memory,
		slots:      slots,
		freeMemory: memory,
		instances:  make([]string, 0),
	}
}

// EntityID returns the flattened entity id
func (h *Host) EntityID() int {
	return h.entityID
}

// Name returns the server id the host was built from
func (h *Host) Name() string {
	return h.name
}

// IPT returns the instructions per time unit of the host
func (h *Host) IPT() float64 {
	return h.ipt
}

// Memory returns the total memory
func (h *Host) Memory() float64 {
	return h.memory
}

// Slots returns the maximum number of module instances
func (h *Host) Slots() int {
	return h.slots
}

// FreeMemory returns the memory not yet reserved by instances
func (h *Host) FreeMemory() float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.freeMemory
}

// MemoryUtilization returns reserved memory as a fraction of the total
func (h *Host) MemoryUtilization() float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.memory <= 0 {
		return 0
	}
	return (h.memory - h.freeMemory) / h.memory
}

// Instances returns the ids of the module instances on this host
func (h *Host) Instances() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	instances := make([]string, len(h.instances))
	copy(instances, h.instances)
	return instances
}

// reserve debits ram and records the instance
func (h *Host) reserve(instanceID string, ram float64) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.instances) >= h.slots {
		return fmt.Errorf("%w: host %s has %d slots", ErrNoFreeSlot, h.name, h.slots)
	}
	if ram > h.freeMemory {
		return fmt.Errorf("%w: host %s has %g free, %g requested", ErrInsufficientMemory, h.name, h.freeMemory, ram)
	}
	h.freeMemory -= ram
	h.instances = append(h.instances, instanceID)
	return nil
}

// release returns ram and forgets the instance
func (h *Host) release(instanceID string, ram float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, id := range h.instances {
		if id == instanceID {
			h.instances = append(h.instances[:i], h.instances[i+1:]...)
			h.freeMemory += ram
			break
		}
	}
}
