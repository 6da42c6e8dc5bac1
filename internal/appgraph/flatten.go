package appgraph

import "github.com/GoSim-25-26J-441/mec-simulation-core/pkg/logger"

// DefaultModuleRAM is the memory each compute module requests when no
// explicit value is configured
const DefaultModuleRAM = 10

// Role classifies a flattened module for the simulator
type Role string

const (
	RoleSource Role = "SOURCE"
	RoleModule Role = "MODULE"
	RoleSink   Role = "SINK"
)

// Module is one flattened module descriptor
type Module struct {
	Name string  `json:"name"`
	Role Role    `json:"type"`
	RAM  float64 `json:"RAM,omitempty"`
}

// Message is emitted by a child module and processed by its parent. The
// processing cost is the parent's consumption.
type Message struct {
	Name         string  `json:"name"`
	Src          string  `json:"s"`
	Dst          string  `json:"d"`
	Instructions float64 `json:"instructions"`
	Bytes        float64 `json:"bytes"`
}

// Service is the message wiring of a compute module
type Service struct {
	Module string    `json:"module"`
	In     []Message `json:"in"`
	Out    []Message `json:"out"`
}

// SourceService is the wiring of a source module: its outbound service
// messages and the fixed cadence it emits at. Emits lists the source
// messages the module produces for population wiring.
type SourceService struct {
	Module           string    `json:"module"`
	Out              []Message `json:"out"`
	Emits            []Message `json:"emits"`
	EmissionInterval float64   `json:"emission_interval"`
}

// FlatApplication is the simulator-ready form of a Graph
type FlatApplication struct {
	Name            string          `json:"name"`
	Modules         []Module        `json:"modules"`
	Messages        []Message       `json:"messages"`
	SourceMessages  []Message       `json:"source_messages"`
	ServiceMessages []Message       `json:"service_messages"`
	Services        []Service       `json:"services"`
	Sources         []SourceService `json:"sources"`
}

// FlattenOptions tune application flattening
type FlattenOptions struct {
	// EmissionInterval is the deterministic cadence of every source
	EmissionInterval float64
	// ModuleRAM is requested by each compute module; zero means DefaultModuleRAM
	ModuleRAM float64
}

// Flatten converts the graph into module and message descriptors. Modules
// keep declaration order, messages keep edge order.
func (g *Graph) Flatten(opts FlattenOptions) *FlatApplication {
	ram := opts.ModuleRAM
	if ram <= 0 {
		ram = DefaultModuleRAM
	}

	app := &FlatApplication{Name: g.name}

	for _, n := range g.rawNodes {
		switch g.kinds[n.ModuleID] {
		case KindSource:
			app.Modules = append(app.Modules, Module{Name: n.ModuleID, Role: RoleSource})
		case KindModule:
			app.Modules = append(app.Modules, Module{Name: n.ModuleID, Role: RoleModule, RAM: ram})
		case KindUser:
			app.Modules = append(app.Modules, Module{Name: n.ModuleID, Role: RoleSink})
		}
	}

	for _, e := range g.rawEdges {
		msg := Message{
			Name:         e.EdgeID,
			Src:          e.ChildID,
			Dst:          e.ParentID,
			Instructions: g.rawNodes[g.index[e.ParentID]].Consumptions,
			Bytes:        e.PacketSize,
		}
		app.Messages = append(app.Messages, msg)
		if g.kinds[e.ChildID] == KindSource {
			app.SourceMessages = append(app.SourceMessages, msg)
		} else {
			app.ServiceMessages = append(app.ServiceMessages, msg)
		}
	}

	for _, n := range g.rawNodes {
		id := n.ModuleID
		switch g.kinds[id] {
		case KindModule:
			svc := Service{
				Module: id,
				In:     append(filter(app.ServiceMessages, toModule(id)), filter(app.SourceMessages, toModule(id))...),
				Out:    filter(app.ServiceMessages, fromModule(id)),
			}
			app.Services = append(app.Services, svc)
		case KindSource:
			app.Sources = append(app.Sources, SourceService{
				Module:           id,
				Out:              filter(app.ServiceMessages, fromModule(id)),
				Emits:            filter(app.SourceMessages, fromModule(id)),
				EmissionInterval: opts.EmissionInterval,
			})
		}
	}

	logger.Debug("application flattened",
		"app", g.name,
		"modules", len(app.Modules),
		"messages", len(app.Messages),
		"source_messages", len(app.SourceMessages))

	return app
}

func toModule(id string) func(Message) bool {
	return func(m Message) bool { return m.Dst == id }
}

func fromModule(id string) func(Message) bool {
	return func(m Message) bool { return m.Src == id }
}

func filter(msgs []Message, keep func(Message) bool) []Message {
	var out []Message
	for _, m := range msgs {
		if keep(m) {
			out = append(out, m)
		}
	}
	return out
}

// Message returns a message descriptor by name
func (a *FlatApplication) Message(name string) (Message, bool) {
	for _, m := range a.Messages {
		if m.Name == name {
			return m, true
		}
	}
	return Message{}, false
}

// Module returns a module descriptor by name
func (a *FlatApplication) Module(name string) (Module, bool) {
	for _, m := range a.Modules {
		if m.Name == name {
			return m, true
		}
	}
	return Module{}, false
}

// PureModules returns the names of the compute modules
func (a *FlatApplication) PureModules() []string {
	var names []string
	for _, m := range a.Modules {
		if m.Role == RoleModule {
			names = append(names, m.Name)
		}
	}
	return names
}
