package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadScenario(t *testing.T) {
	scenario, err := LoadScenario("../../config/scenario.yaml")
	if err != nil {
		t.Fatalf("Failed to load scenario: %v", err)
	}

	if scenario.LogLevel != "info" {
		t.Errorf("Expected log_level 'info', got '%s'", scenario.LogLevel)
	}
	if scenario.Network == nil {
		t.Fatal("Network should not be nil")
	}
	if scenario.Network.CloudBandwidth != 10000 {
		t.Errorf("Expected cloud bandwidth 10000, got %f", scenario.Network.CloudBandwidth)
	}

	if len(scenario.MDCs) != 4 {
		t.Fatalf("Expected 4 mdcs, got %d", len(scenario.MDCs))
	}
	m1 := scenario.MDCs[0]
	if m1.ID != "M1" || len(m1.Servers) != 3 {
		t.Errorf("Expected M1 with 3 servers, got %s with %d", m1.ID, len(m1.Servers))
	}
	if len(m1.Links) != 2 || m1.Links[1].To != "M4" || m1.Links[1].Bandwidth != 5000 {
		t.Errorf("Unexpected M1 links: %+v", m1.Links)
	}
	if m1.Energy.BatteryCapacity != 100 {
		t.Errorf("Expected battery capacity 100, got %f", m1.Energy.BatteryCapacity)
	}
	if scenario.MDCs[3].Tier != "cloud" {
		t.Errorf("Expected M4 tier 'cloud', got '%s'", scenario.MDCs[3].Tier)
	}
	if len(scenario.MDCs[1].Users) != 1 || scenario.MDCs[1].Users[0].ID != "user" {
		t.Errorf("Expected user device on M2, got %+v", scenario.MDCs[1].Users)
	}

	app := scenario.Application
	if app.Name != "vid_case" {
		t.Errorf("Expected application 'vid_case', got '%s'", app.Name)
	}
	if len(app.Nodes) != 7 || len(app.Edges) != 7 {
		t.Errorf("Expected 7 nodes and 7 edges, got %d and %d", len(app.Nodes), len(app.Edges))
	}
	if app.EmissionInterval != 100 {
		t.Errorf("Expected emission interval 100, got %f", app.EmissionInterval)
	}

	if scenario.Placement == nil || len(scenario.Placement.Assignments) != 4 {
		t.Fatalf("Expected 4 placement assignments, got %+v", scenario.Placement)
	}
	if scenario.Placement.Assignments[0].Module != "service_a" || scenario.Placement.Assignments[0].Server != "S6" {
		t.Errorf("Unexpected first assignment: %+v", scenario.Placement.Assignments[0])
	}
}

func TestLoadScenarioMissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("Expected error for missing file")
	}
	if !strings.Contains(err.Error(), "failed to read scenario file") {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestLoadScenarioFromTempFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.yaml")
	content := `
mdcs:
  - id: M1
    name: edge
    servers:
      - {id: S1, name: s1, memory: 10, frequency: 50, device_factor: 1}
application:
  name: tiny
  nodes:
    - {module_id: u, type: user, consumptions: 1}
    - {module_id: d, type: source, consumptions: 0}
  edges:
    - {edge_id: e1, parent_id: u, child_id: d, packet_size: 4}
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp file: %v", err)
	}

	scenario, err := LoadScenario(path)
	if err != nil {
		t.Fatalf("LoadScenario failed: %v", err)
	}
	if scenario.Network != nil {
		t.Errorf("Expected nil network when omitted")
	}
	if scenario.MDCs[0].Servers[0].Availability != nil {
		t.Errorf("Expected nil availability when omitted")
	}
}

func validScenario() *Scenario {
	return &Scenario{
		MDCs: []MDC{
			{
				ID:      "M1",
				Name:    "edge",
				Links:   []MDCLink{{To: "M2", Bandwidth: 100}},
				Servers: []Server{{ID: "S1", Memory: 10, Frequency: 10}},
				Users:   []UserDevice{{ID: "u"}},
			},
			{
				ID:          "M2",
				Name:        "cloud",
				Servers:     []Server{{ID: "S2", Memory: 10, Frequency: 10}},
				DataSources: []DataSource{{ID: "d"}},
			},
		},
		Application: Application{
			Name: "app",
			Nodes: []AppNode{
				{ModuleID: "u", Type: "user", Consumptions: 1},
				{ModuleID: "m", Type: "module", Consumptions: 5},
				{ModuleID: "d", Type: "source"},
			},
			Edges: []AppEdge{
				{EdgeID: "e1", ParentID: "u", ChildID: "m", PacketSize: 1},
				{EdgeID: "e2", ParentID: "m", ChildID: "d", PacketSize: 2},
			},
		},
	}
}

func TestScenarioValidation(t *testing.T) {
	badAvailability := 1.5

	tests := []struct {
		name    string
		mutate  func(s *Scenario)
		wantErr string
	}{
		{"Valid scenario", func(s *Scenario) {}, ""},
		{"Invalid log level", func(s *Scenario) { s.LogLevel = "loud" }, "invalid log_level"},
		{"Negative bandwidth default", func(s *Scenario) { s.Network = &Network{EdgeBandwidth: -1} }, "bandwidth cannot be negative"},
		{"No mdcs", func(s *Scenario) { s.MDCs = nil }, "at least one mdc"},
		{"Empty mdc id", func(s *Scenario) { s.MDCs[0].ID = "" }, "mdc id cannot be empty"},
		{"Duplicate mdc id", func(s *Scenario) { s.MDCs[1].ID = "M1" }, "duplicate mdc id"},
		{"Invalid tier", func(s *Scenario) { s.MDCs[0].Tier = "fog" }, "invalid tier"},
		{"Two clouds", func(s *Scenario) { s.MDCs[0].Tier = "cloud"; s.MDCs[1].Tier = "cloud" }, "at most one mdc"},
		{"Unknown link target", func(s *Scenario) { s.MDCs[0].Links[0].To = "M9" }, "unknown mdc M9"},
		{"Self link", func(s *Scenario) { s.MDCs[0].Links[0].To = "M1" }, "self link"},
		{"Negative link bandwidth", func(s *Scenario) { s.MDCs[0].Links[0].Bandwidth = -5 }, "bandwidth cannot be negative"},
		{"Duplicate server id", func(s *Scenario) { s.MDCs[1].Servers[0].ID = "S1" }, "duplicate entity id"},
		{"Server id clashes with user", func(s *Scenario) { s.MDCs[1].Servers[0].ID = "u" }, "duplicate entity id"},
		{"Negative memory", func(s *Scenario) { s.MDCs[0].Servers[0].Memory = -1 }, "memory cannot be negative"},
		{"Negative slots", func(s *Scenario) { s.MDCs[0].Servers[0].Slots = -1 }, "slots cannot be negative"},
		{"Availability out of range", func(s *Scenario) { s.MDCs[0].Servers[0].Availability = &badAvailability }, "availability must be between 0 and 1"},
		{"Empty application name", func(s *Scenario) { s.Application.Name = "" }, "application name cannot be empty"},
		{"No nodes", func(s *Scenario) { s.Application.Nodes = nil }, "at least one node"},
		{"Duplicate module", func(s *Scenario) { s.Application.Nodes[1].ModuleID = "u" }, "duplicate module id"},
		{"Invalid module type", func(s *Scenario) { s.Application.Nodes[1].Type = "actuator" }, "invalid type"},
		{"Negative consumption", func(s *Scenario) { s.Application.Nodes[1].Consumptions = -1 }, "consumptions cannot be negative"},
		{"Duplicate edge id", func(s *Scenario) { s.Application.Edges[1].EdgeID = "e1" }, "duplicate edge id"},
		{"Unknown parent", func(s *Scenario) { s.Application.Edges[0].ParentID = "ghost" }, "parent module ghost does not exist"},
		{"Unknown child", func(s *Scenario) { s.Application.Edges[0].ChildID = "ghost" }, "child module ghost does not exist"},
		{"Negative packet size", func(s *Scenario) { s.Application.Edges[0].PacketSize = -1 }, "packet_size cannot be negative"},
		{"Both placement forms", func(s *Scenario) {
			s.Placement = &Placement{
				Assignments:       []Assignment{{Module: "m", Server: "S1"}},
				InitialAllocation: []Allocation{{App: "app", ModuleName: "m", IDResource: 2}},
			}
		}, "mutually exclusive"},
		{"Assignment to unknown server", func(s *Scenario) {
			s.Placement = &Placement{Assignments: []Assignment{{Module: "m", Server: "S9"}}}
		}, "server S9 does not exist"},
		{"Assignment of unknown module", func(s *Scenario) {
			s.Placement = &Placement{Assignments: []Assignment{{Module: "x", Server: "S1"}}}
		}, "module x does not exist"},
		{"Module assigned twice", func(s *Scenario) {
			s.Placement = &Placement{Assignments: []Assignment{{Module: "m", Server: "S1"}, {Module: "m", Server: "S2"}}}
		}, "assigned twice"},
		{"Negative resource id", func(s *Scenario) {
			s.Placement = &Placement{InitialAllocation: []Allocation{{App: "app", ModuleName: "m", IDResource: -1}}}
		}, "id_resource cannot be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validScenario()
			tt.mutate(s)
			err := validateScenario(s)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Expected no error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Expected error containing %q, got none", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
