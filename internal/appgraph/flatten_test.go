package appgraph

import "testing"

func messageNames(msgs []Message) []string {
	names := make([]string, len(msgs))
	for i, m := range msgs {
		names[i] = m.Name
	}
	return names
}

func equalNames(got []string, want ...string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestFlattenDiamond(t *testing.T) {
	app := vidCaseGraph(t).Flatten(FlattenOptions{EmissionInterval: 100})

	if app.Name != "vid_case" {
		t.Errorf("expected name vid_case, got %s", app.Name)
	}
	if len(app.Messages) != 7 {
		t.Fatalf("expected 7 messages, got %d", len(app.Messages))
	}

	roles := map[Role]int{}
	for _, m := range app.Modules {
		roles[m.Role]++
		if m.Role == RoleModule && m.RAM != DefaultModuleRAM {
			t.Errorf("module %s: expected RAM %d, got %f", m.Name, DefaultModuleRAM, m.RAM)
		}
		if m.Role != RoleModule && m.RAM != 0 {
			t.Errorf("%s %s must not request RAM", m.Role, m.Name)
		}
	}
	if roles[RoleSource] != 2 || roles[RoleModule] != 4 || roles[RoleSink] != 1 {
		t.Errorf("unexpected role split: %v", roles)
	}

	if !equalNames(messageNames(app.SourceMessages), "M.1.A", "M.2.C") {
		t.Errorf("unexpected source messages: %v", messageNames(app.SourceMessages))
	}
	if !equalNames(messageNames(app.ServiceMessages), "M.A.B", "M.A.C", "M.B.D", "M.C.D", "M.D.U") {
		t.Errorf("unexpected service messages: %v", messageNames(app.ServiceMessages))
	}
	if !equalNames(app.PureModules(), "service_a", "service_b", "service_c", "service_d") {
		t.Errorf("unexpected pure modules: %v", app.PureModules())
	}
}

func TestFlattenCostAttribution(t *testing.T) {
	g := vidCaseGraph(t)
	app := g.Flatten(FlattenOptions{})

	for _, e := range g.RawEdges() {
		msg, ok := app.Message(e.EdgeID)
		if !ok {
			t.Fatalf("missing message %s", e.EdgeID)
		}
		parentCost, _ := g.Consumption(e.ParentID)
		if msg.Instructions != parentCost {
			t.Errorf("message %s: instructions %f, want parent consumption %f", e.EdgeID, msg.Instructions, parentCost)
		}
		if msg.Bytes != e.PacketSize {
			t.Errorf("message %s: bytes %f, want %f", e.EdgeID, msg.Bytes, e.PacketSize)
		}
		if msg.Src != e.ChildID || msg.Dst != e.ParentID {
			t.Errorf("message %s flows %s -> %s, want %s -> %s", e.EdgeID, msg.Src, msg.Dst, e.ChildID, e.ParentID)
		}
	}

	tests := []struct {
		name         string
		instructions float64
		bytes        float64
	}{
		{"M.1.A", 20, 100},
		{"M.A.C", 30, 100},
		{"M.D.U", 10, 1000},
	}
	for _, tt := range tests {
		msg, _ := app.Message(tt.name)
		if msg.Instructions != tt.instructions || msg.Bytes != tt.bytes {
			t.Errorf("message %s = %+v", tt.name, msg)
		}
	}

	if _, ok := app.Message("nope"); ok {
		t.Error("expected unknown message lookup to fail")
	}
}

func TestFlattenWiring(t *testing.T) {
	app := vidCaseGraph(t).Flatten(FlattenOptions{EmissionInterval: 100, ModuleRAM: 32})

	if len(app.Services) != 4 {
		t.Fatalf("expected 4 compute services, got %d", len(app.Services))
	}

	tests := []struct {
		module string
		in     []string
		out    []string
	}{
		{"service_a", []string{"M.1.A"}, []string{"M.A.B", "M.A.C"}},
		{"service_b", []string{"M.A.B"}, []string{"M.B.D"}},
		{"service_c", []string{"M.A.C", "M.2.C"}, []string{"M.C.D"}},
		{"service_d", []string{"M.B.D", "M.C.D"}, []string{"M.D.U"}},
	}
	for i, tt := range tests {
		svc := app.Services[i]
		if svc.Module != tt.module {
			t.Fatalf("service %d = %s, want %s", i, svc.Module, tt.module)
		}
		if !equalNames(messageNames(svc.In), tt.in...) {
			t.Errorf("%s in = %v, want %v", tt.module, messageNames(svc.In), tt.in)
		}
		if !equalNames(messageNames(svc.Out), tt.out...) {
			t.Errorf("%s out = %v, want %v", tt.module, messageNames(svc.Out), tt.out)
		}
	}

	if len(app.Sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(app.Sources))
	}
	for i, want := range []struct{ module, emits string }{{"data_1", "M.1.A"}, {"data_2", "M.2.C"}} {
		src := app.Sources[i]
		if src.Module != want.module || src.EmissionInterval != 100 {
			t.Errorf("unexpected source %+v", src)
		}
		if len(src.Out) != 0 {
			t.Errorf("source %s must have no outbound service messages, got %v", src.Module, messageNames(src.Out))
		}
		if !equalNames(messageNames(src.Emits), want.emits) {
			t.Errorf("source %s emits %v, want %s", src.Module, messageNames(src.Emits), want.emits)
		}
	}

	m, ok := app.Module("service_b")
	if !ok || m.RAM != 32 {
		t.Errorf("expected configured RAM 32, got %+v", m)
	}
}

func TestFlattenTreeInboundUnion(t *testing.T) {
	nodes, edges := treeApp()
	g, err := New("tree", nodes, edges)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	app := g.Flatten(FlattenOptions{})

	for _, svc := range app.Services {
		seen := map[string]bool{}
		for _, m := range svc.In {
			if seen[m.Name] {
				t.Errorf("%s receives %s twice", svc.Module, m.Name)
			}
			seen[m.Name] = true
		}
	}

	var o3 Service
	for _, svc := range app.Services {
		if svc.Module == "O3" {
			o3 = svc
		}
	}
	if !equalNames(messageNames(o3.In), "Data1") || !equalNames(messageNames(o3.Out), "Intermediate3") {
		t.Errorf("unexpected O3 wiring: in %v out %v", messageNames(o3.In), messageNames(o3.Out))
	}
}
