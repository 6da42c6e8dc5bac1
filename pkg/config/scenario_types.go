package config

// Scenario is a complete MEC scenario: resource topology, application graph
// and an optional precomputed placement.
type Scenario struct {
	LogLevel    string      `yaml:"log_level,omitempty"`
	Network     *Network    `yaml:"network,omitempty"`
	MDCs        []MDC       `yaml:"mdcs"`
	Application Application `yaml:"application"`
	Placement   *Placement  `yaml:"placement,omitempty"`
}

// Network holds the default link characteristics per tier.
// Zero fields are replaced by the built-in defaults when the topology is built.
type Network struct {
	EdgeBandwidth    float64 `yaml:"edge_bandwidth"`
	CloudBandwidth   float64 `yaml:"cloud_bandwidth"`
	EdgePropagation  float64 `yaml:"edge_propagation"`
	CloudPropagation float64 `yaml:"cloud_propagation"`
}

// MDC describes a micro-data-center
type MDC struct {
	ID          string       `yaml:"id"`
	Name        string       `yaml:"name"`
	Tier        string       `yaml:"tier,omitempty"` // edge or cloud
	Links       []MDCLink    `yaml:"links"`
	Energy      Energy       `yaml:"energy,omitempty"`
	Servers     []Server     `yaml:"servers"`
	DataSources []DataSource `yaml:"data_sources,omitempty"`
	Users       []UserDevice `yaml:"users,omitempty"`
}

// MDCLink is one declared adjacency entry of an MDC
type MDCLink struct {
	To        string  `yaml:"to"`
	Bandwidth float64 `yaml:"bandwidth"`
}

// Energy fields are carried through to the topology but not interpreted
type Energy struct {
	Stored          float64 `yaml:"stored"`
	BatteryCapacity float64 `yaml:"battery_capacity"`
	ChargingRate    float64 `yaml:"charging_rate"`
}

// Server describes a compute server hosted by an MDC
type Server struct {
	ID           string   `yaml:"id"`
	Name         string   `yaml:"name"`
	Memory       float64  `yaml:"memory"`
	Frequency    float64  `yaml:"frequency"`
	DeviceFactor float64  `yaml:"device_factor"`
	Slots        int      `yaml:"slots,omitempty"`        // defaults to 1
	Availability *float64 `yaml:"availability,omitempty"` // defaults to 1.0
}

// DataSource describes a data source located at an MDC
type DataSource struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// UserDevice describes a user device attached to an MDC
type UserDevice struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// Application is the raw dependency graph of an application
type Application struct {
	Name             string    `yaml:"name"`
	EmissionInterval float64   `yaml:"emission_interval,omitempty"`
	ModuleRAM        float64   `yaml:"module_ram,omitempty"`
	Nodes            []AppNode `yaml:"nodes"`
	Edges            []AppEdge `yaml:"edges"`
}

// AppNode is a raw module descriptor
type AppNode struct {
	ModuleID     string  `yaml:"module_id" json:"module_id"`
	Type         string  `yaml:"type" json:"type"` // source, module or user
	Consumptions float64 `yaml:"consumptions" json:"consumptions"`
}

// AppEdge is a raw dependency edge: the child produces data consumed by the parent
type AppEdge struct {
	EdgeID     string  `yaml:"edge_id" json:"edge_id"`
	ParentID   string  `yaml:"parent_id" json:"parent_id"`
	ChildID    string  `yaml:"child_id" json:"child_id"`
	PacketSize float64 `yaml:"packet_size" json:"packet_size"`
}

// Placement is a precomputed module placement in one of two forms
type Placement struct {
	// Assignments maps modules to servers by server id, in deployment order
	Assignments []Assignment `yaml:"assignments,omitempty"`
	// InitialAllocation maps modules to flattened entity ids per application
	InitialAllocation []Allocation `yaml:"initial_allocation,omitempty"`
}

// Assignment places a module on a server
type Assignment struct {
	Module string `yaml:"module"`
	Server string `yaml:"server"`
}

// Allocation places a module of an application on a flattened entity
type Allocation struct {
	App        string `yaml:"app"`
	ModuleName string `yaml:"module_name"`
	IDResource int    `yaml:"id_resource"`
}
