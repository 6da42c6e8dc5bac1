package config

import (
	"fmt"
	"os"
)

// LoadScenario loads and parses a scenario file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file %s: %w", path, err)
	}
	scenario, err := ParseScenarioYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse scenario file %s: %w", path, err)
	}
	return scenario, nil
}

// validateScenario validates the scenario configuration
func validateScenario(s *Scenario) error {
	if s.LogLevel != "" {
		validLogLevels := map[string]bool{
			"debug": true,
			"info":  true,
			"warn":  true,
			"error": true,
		}
		if !validLogLevels[s.LogLevel] {
			return fmt.Errorf("invalid log_level: %s (must be debug, info, warn, or error)", s.LogLevel)
		}
	}

	if s.Network != nil {
		if err := validateNetwork(s.Network); err != nil {
			return fmt.Errorf("network validation failed: %w", err)
		}
	}

	if err := validateMDCs(s.MDCs); err != nil {
		return fmt.Errorf("mdcs validation failed: %w", err)
	}

	modules, err := validateApplication(&s.Application)
	if err != nil {
		return fmt.Errorf("application validation failed: %w", err)
	}

	if s.Placement != nil {
		if err := validatePlacement(s.Placement, modules, serverIDs(s.MDCs)); err != nil {
			return fmt.Errorf("placement validation failed: %w", err)
		}
	}

	return nil
}

func validateNetwork(n *Network) error {
	if n.EdgeBandwidth < 0 || n.CloudBandwidth < 0 {
		return fmt.Errorf("bandwidth cannot be negative")
	}
	if n.EdgePropagation < 0 || n.CloudPropagation < 0 {
		return fmt.Errorf("propagation cannot be negative")
	}
	return nil
}

// validateMDCs checks MDC identity, adjacency references and nested entities
func validateMDCs(mdcs []MDC) error {
	if len(mdcs) == 0 {
		return fmt.Errorf("at least one mdc must be defined")
	}

	mdcIDs := make(map[string]bool)
	clouds := 0
	for _, mdc := range mdcs {
		if mdc.ID == "" {
			return fmt.Errorf("mdc id cannot be empty")
		}
		if mdcIDs[mdc.ID] {
			return fmt.Errorf("duplicate mdc id: %s", mdc.ID)
		}
		mdcIDs[mdc.ID] = true

		switch mdc.Tier {
		case "", "edge":
		case "cloud":
			clouds++
		default:
			return fmt.Errorf("mdc %s: invalid tier %s (must be edge or cloud)", mdc.ID, mdc.Tier)
		}
	}
	if clouds > 1 {
		return fmt.Errorf("at most one mdc can be tagged cloud, got %d", clouds)
	}

	// Entity ids share one namespace so that lookups by id are unambiguous
	entityIDs := make(map[string]bool)
	claim := func(mdcID, kind, id string) error {
		if id == "" {
			return fmt.Errorf("mdc %s: %s id cannot be empty", mdcID, kind)
		}
		if entityIDs[id] {
			return fmt.Errorf("mdc %s: duplicate entity id: %s", mdcID, id)
		}
		entityIDs[id] = true
		return nil
	}

	for _, mdc := range mdcs {
		for i, link := range mdc.Links {
			if !mdcIDs[link.To] {
				return fmt.Errorf("mdc %s, link %d: unknown mdc %s", mdc.ID, i, link.To)
			}
			if link.To == mdc.ID {
				return fmt.Errorf("mdc %s, link %d: self link is not allowed", mdc.ID, i)
			}
			if link.Bandwidth < 0 {
				return fmt.Errorf("mdc %s, link %d: bandwidth cannot be negative", mdc.ID, i)
			}
		}

		for _, srv := range mdc.Servers {
			if err := claim(mdc.ID, "server", srv.ID); err != nil {
				return err
			}
			if srv.Memory < 0 {
				return fmt.Errorf("server %s: memory cannot be negative", srv.ID)
			}
			if srv.Frequency < 0 {
				return fmt.Errorf("server %s: frequency cannot be negative", srv.ID)
			}
			if srv.Slots < 0 {
				return fmt.Errorf("server %s: slots cannot be negative", srv.ID)
			}
			if srv.Availability != nil && (*srv.Availability < 0 || *srv.Availability > 1) {
				return fmt.Errorf("server %s: availability must be between 0 and 1, got %f", srv.ID, *srv.Availability)
			}
		}
		for _, ds := range mdc.DataSources {
			if err := claim(mdc.ID, "data source", ds.ID); err != nil {
				return err
			}
		}
		for _, u := range mdc.Users {
			if err := claim(mdc.ID, "user", u.ID); err != nil {
				return err
			}
		}
	}

	return nil
}

// validateApplication checks the raw node/edge descriptors and returns the
// declared module ids mapped to their type
func validateApplication(app *Application) (map[string]string, error) {
	if app.Name == "" {
		return nil, fmt.Errorf("application name cannot be empty")
	}
	if app.EmissionInterval < 0 {
		return nil, fmt.Errorf("emission_interval cannot be negative")
	}
	if app.ModuleRAM < 0 {
		return nil, fmt.Errorf("module_ram cannot be negative")
	}
	if len(app.Nodes) == 0 {
		return nil, fmt.Errorf("application must have at least one node")
	}

	modules := make(map[string]string)
	for _, node := range app.Nodes {
		if node.ModuleID == "" {
			return nil, fmt.Errorf("module id cannot be empty")
		}
		if _, dup := modules[node.ModuleID]; dup {
			return nil, fmt.Errorf("duplicate module id: %s", node.ModuleID)
		}
		switch node.Type {
		case "source", "module", "user":
		default:
			return nil, fmt.Errorf("module %s: invalid type %s (must be source, module, or user)", node.ModuleID, node.Type)
		}
		if node.Consumptions < 0 {
			return nil, fmt.Errorf("module %s: consumptions cannot be negative", node.ModuleID)
		}
		modules[node.ModuleID] = node.Type
	}

	edgeIDs := make(map[string]bool)
	for i, edge := range app.Edges {
		if edge.EdgeID == "" {
			return nil, fmt.Errorf("edge %d: edge_id cannot be empty", i)
		}
		if edgeIDs[edge.EdgeID] {
			return nil, fmt.Errorf("duplicate edge id: %s", edge.EdgeID)
		}
		edgeIDs[edge.EdgeID] = true
		if _, ok := modules[edge.ParentID]; !ok {
			return nil, fmt.Errorf("edge %s: parent module %s does not exist", edge.EdgeID, edge.ParentID)
		}
		if _, ok := modules[edge.ChildID]; !ok {
			return nil, fmt.Errorf("edge %s: child module %s does not exist", edge.EdgeID, edge.ChildID)
		}
		if edge.PacketSize < 0 {
			return nil, fmt.Errorf("edge %s: packet_size cannot be negative", edge.EdgeID)
		}
	}

	return modules, nil
}

func validatePlacement(p *Placement, modules map[string]string, servers map[string]bool) error {
	if len(p.Assignments) > 0 && len(p.InitialAllocation) > 0 {
		return fmt.Errorf("assignments and initial_allocation are mutually exclusive")
	}

	seen := make(map[string]bool)
	for i, a := range p.Assignments {
		if _, ok := modules[a.Module]; !ok {
			return fmt.Errorf("assignment %d: module %s does not exist", i, a.Module)
		}
		if seen[a.Module] {
			return fmt.Errorf("assignment %d: module %s assigned twice", i, a.Module)
		}
		seen[a.Module] = true
		if !servers[a.Server] {
			return fmt.Errorf("assignment %d: server %s does not exist", i, a.Server)
		}
	}

	for i, a := range p.InitialAllocation {
		if a.App == "" {
			return fmt.Errorf("allocation %d: app cannot be empty", i)
		}
		if a.ModuleName == "" {
			return fmt.Errorf("allocation %d: module_name cannot be empty", i)
		}
		if a.IDResource < 0 {
			return fmt.Errorf("allocation %d: id_resource cannot be negative", i)
		}
	}

	return nil
}

func serverIDs(mdcs []MDC) map[string]bool {
	ids := make(map[string]bool)
	for _, mdc := range mdcs {
		for _, srv := range mdc.Servers {
			ids[srv.ID] = true
		}
	}
	return ids
}
