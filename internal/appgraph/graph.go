package appgraph

import (
	"errors"
	"fmt"
	"strings"

	"github.com/GoSim-25-26J-441/mec-simulation-core/pkg/config"
	"github.com/GoSim-25-26J-441/mec-simulation-core/pkg/logger"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

var (
	ErrEmptyGraph    = errors.New("application graph has no nodes")
	ErrUnknownModule = errors.New("unknown module")
	ErrEdgeNotFound  = errors.New("edge not found")
	ErrNoUser        = errors.New("no user module")
	ErrCycle         = errors.New("application graph contains a cycle")
	ErrDisconnected  = errors.New("application graph is not connected")
	ErrRootNotUnique = errors.New("application graph must have exactly one root")
)

// Kind is the role of a module in the dependency graph
type Kind string

const (
	KindSource Kind = "source"
	KindModule Kind = "module"
	KindUser   Kind = "user"
)

func parseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindSource, KindModule, KindUser:
		return k, nil
	}
	return "", fmt.Errorf("invalid module type %q", s)
}

// Node is one materialized module. Parents are consumers (closer to the
// sink), children are the producers it depends on.
type Node struct {
	ID           string
	Kind         Kind
	Consumptions float64

	Parents  []*Node
	Children []*Node

	// PacketSizeToParent maps a parent id to the payload sent to it
	PacketSizeToParent map[string]float64
}

func newNode(raw config.AppNode, kind Kind) *Node {
	return &Node{
		ID:                 raw.ModuleID,
		Kind:               kind,
		Consumptions:       raw.Consumptions,
		PacketSizeToParent: make(map[string]float64),
	}
}

// AppendParent adds a consumer of this node's output
func (n *Node) AppendParent(parent *Node) {
	n.Parents = append(n.Parents, parent)
}

// AppendChild adds a producer this node depends on
func (n *Node) AppendChild(child *Node) {
	n.Children = append(n.Children, child)
}

func (n *Node) String() string {
	parents, sizes := "NULL", "NULL"
	if len(n.Parents) > 0 {
		ids := make([]string, len(n.Parents))
		ss := make([]string, len(n.Parents))
		for i, p := range n.Parents {
			ids[i] = p.ID
			ss[i] = fmt.Sprintf("%g", n.PacketSizeToParent[p.ID])
		}
		parents, sizes = strings.Join(ids, ","), strings.Join(ss, ",")
	}
	children := "NULL"
	if len(n.Children) > 0 {
		ids := make([]string, len(n.Children))
		for i, c := range n.Children {
			ids[i] = "<" + c.ID + ">"
		}
		children = strings.Join(ids, ",")
	}
	return fmt.Sprintf("<%s>,s=%s\n<Node %s, c=%g, t=%s>\n%s", parents, sizes, n.ID, n.Consumptions, n.Kind, children)
}

// Graph is an application dependency graph built once from raw descriptors
type Graph struct {
	name     string
	rawNodes []config.AppNode
	rawEdges []config.AppEdge

	kinds map[string]Kind
	index map[string]int // module id -> position in rawNodes

	nodes []*Node // materialization order
	byID  map[string]*Node
	root  *Node
}

// New builds and validates an application graph. Every edge must name
// declared modules, the graph must be acyclic and weakly connected, and
// exactly one module may have no parent.
func New(name string, nodes []config.AppNode, edges []config.AppEdge) (*Graph, error) {
	if len(nodes) == 0 {
		return nil, ErrEmptyGraph
	}

	g := &Graph{
		name:     name,
		rawNodes: nodes,
		rawEdges: edges,
		kinds:    make(map[string]Kind, len(nodes)),
		index:    make(map[string]int, len(nodes)),
		byID:     make(map[string]*Node, len(nodes)),
	}

	for i, n := range nodes {
		if _, exists := g.index[n.ModuleID]; exists {
			return nil, fmt.Errorf("duplicate module id %q", n.ModuleID)
		}
		kind, err := parseKind(n.Type)
		if err != nil {
			return nil, fmt.Errorf("module %s: %w", n.ModuleID, err)
		}
		if n.Consumptions < 0 {
			return nil, fmt.Errorf("module %s: consumptions cannot be negative", n.ModuleID)
		}
		g.index[n.ModuleID] = i
		g.kinds[n.ModuleID] = kind
	}

	if err := g.validateEdges(); err != nil {
		return nil, err
	}
	if err := g.validateShape(); err != nil {
		return nil, err
	}

	g.materialize()

	if err := g.findRoot(); err != nil {
		return nil, err
	}

	logger.Debug("application graph built",
		"app", name,
		"nodes", len(g.nodes),
		"edges", len(edges),
		"root", g.root.ID)

	return g, nil
}

func (g *Graph) validateEdges() error {
	seen := make(map[string]bool, len(g.rawEdges))
	for _, e := range g.rawEdges {
		if seen[e.EdgeID] {
			return fmt.Errorf("duplicate edge id %q", e.EdgeID)
		}
		seen[e.EdgeID] = true

		if _, ok := g.index[e.ParentID]; !ok {
			return fmt.Errorf("edge %s: parent %w %q", e.EdgeID, ErrUnknownModule, e.ParentID)
		}
		if _, ok := g.index[e.ChildID]; !ok {
			return fmt.Errorf("edge %s: child %w %q", e.EdgeID, ErrUnknownModule, e.ChildID)
		}
		if e.ParentID == e.ChildID {
			return fmt.Errorf("edge %s: %w: self edge on %s", e.EdgeID, ErrCycle, e.ParentID)
		}
		if e.PacketSize < 0 {
			return fmt.Errorf("edge %s: packet size cannot be negative", e.EdgeID)
		}
	}
	return nil
}

// validateShape checks acyclicity on the child -> parent digraph and weak
// connectivity over every declared module.
func (g *Graph) validateShape() error {
	directed := simple.NewDirectedGraph()
	undirected := simple.NewUndirectedGraph()
	for i := range g.rawNodes {
		directed.AddNode(simple.Node(int64(i)))
		undirected.AddNode(simple.Node(int64(i)))
	}
	for _, e := range g.rawEdges {
		child := simple.Node(int64(g.index[e.ChildID]))
		parent := simple.Node(int64(g.index[e.ParentID]))
		directed.SetEdge(directed.NewEdge(child, parent))
		undirected.SetEdge(undirected.NewEdge(child, parent))
	}

	if _, err := topo.Sort(directed); err != nil {
		var cycles topo.Unorderable
		if errors.As(err, &cycles) && len(cycles) > 0 {
			return fmt.Errorf("%w: %s", ErrCycle, g.describeComponent(cycles[0]))
		}
		return fmt.Errorf("%w: %v", ErrCycle, err)
	}

	if components := topo.ConnectedComponents(undirected); len(components) > 1 {
		return fmt.Errorf("%w: %d components", ErrDisconnected, len(components))
	}
	return nil
}

func (g *Graph) describeComponent(nodes []graph.Node) string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = g.rawNodes[n.ID()].ModuleID
	}
	return strings.Join(ids, ",")
}

// materialize creates node objects in edge order, parent before child, and
// wires the parent/child relations. A lone module with no edges is
// materialized on its own.
func (g *Graph) materialize() {
	obtain := func(id string) *Node {
		if n, ok := g.byID[id]; ok {
			return n
		}
		n := newNode(g.rawNodes[g.index[id]], g.kinds[id])
		g.byID[id] = n
		g.nodes = append(g.nodes, n)
		return n
	}

	for _, e := range g.rawEdges {
		parent := obtain(e.ParentID)
		child := obtain(e.ChildID)
		child.AppendParent(parent)
		parent.AppendChild(child)
		child.PacketSizeToParent[parent.ID] = e.PacketSize
	}
	for _, n := range g.rawNodes {
		obtain(n.ModuleID)
	}
}

func (g *Graph) findRoot() error {
	var roots []string
	for _, n := range g.nodes {
		if len(n.Parents) == 0 {
			roots = append(roots, n.ID)
			g.root = n
		}
	}
	if len(roots) != 1 {
		g.root = nil
		return fmt.Errorf("%w: found %d (%s)", ErrRootNotUnique, len(roots), strings.Join(roots, ","))
	}
	if g.root.Kind != KindUser {
		logger.Warn("application root is not a user module",
			"app", g.name,
			"root", g.root.ID,
			"kind", string(g.root.Kind))
	}
	return nil
}

// Name returns the application name
func (g *Graph) Name() string {
	return g.name
}

// Root returns the unique parentless node
func (g *Graph) Root() *Node {
	return g.root
}

// WalkToRoot follows the first-parent chain from the given module until a
// parentless node is reached. On a valid graph the result is always Root().
func (g *Graph) WalkToRoot(moduleID string) (*Node, error) {
	n, ok := g.byID[moduleID]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownModule, moduleID)
	}
	for len(n.Parents) > 0 {
		n = n.Parents[0]
	}
	return n, nil
}

// Node returns a materialized node by module id
func (g *Graph) Node(moduleID string) (*Node, bool) {
	n, ok := g.byID[moduleID]
	return n, ok
}

// Nodes returns the materialized nodes in materialization order
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// RawNodes returns the declared module descriptors
func (g *Graph) RawNodes() []config.AppNode {
	return g.rawNodes
}

// RawEdges returns the declared edge descriptors
func (g *Graph) RawEdges() []config.AppEdge {
	return g.rawEdges
}

// KindOf returns the declared kind of a module
func (g *Graph) KindOf(moduleID string) (Kind, error) {
	k, ok := g.kinds[moduleID]
	if !ok {
		return "", fmt.Errorf("%w %q", ErrUnknownModule, moduleID)
	}
	return k, nil
}

// Consumption returns the declared processing cost of a module
func (g *Graph) Consumption(moduleID string) (float64, error) {
	i, ok := g.index[moduleID]
	if !ok {
		return 0, fmt.Errorf("%w %q", ErrUnknownModule, moduleID)
	}
	return g.rawNodes[i].Consumptions, nil
}

// UserID returns the first declared user module
func (g *Graph) UserID() (string, error) {
	for _, n := range g.rawNodes {
		if g.kinds[n.ModuleID] == KindUser {
			return n.ModuleID, nil
		}
	}
	return "", ErrNoUser
}

// SourceIDs returns the source modules in declaration order
func (g *Graph) SourceIDs() []string {
	var ids []string
	for _, n := range g.rawNodes {
		if g.kinds[n.ModuleID] == KindSource {
			ids = append(ids, n.ModuleID)
		}
	}
	return ids
}

// SourceEdges returns the edges whose child is a source module
func (g *Graph) SourceEdges() []config.AppEdge {
	var edges []config.AppEdge
	for _, e := range g.rawEdges {
		if g.kinds[e.ChildID] == KindSource {
			edges = append(edges, e)
		}
	}
	return edges
}

// SinkEdges returns the edges delivering to the user module
func (g *Graph) SinkEdges() ([]config.AppEdge, error) {
	user, err := g.UserID()
	if err != nil {
		return nil, err
	}
	var edges []config.AppEdge
	for _, e := range g.rawEdges {
		if e.ParentID == user {
			edges = append(edges, e)
		}
	}
	return edges, nil
}

// SourceEdgeIDs returns the ids of every edge emitted by a source
func (g *Graph) SourceEdgeIDs(sourceID string) ([]string, error) {
	var ids []string
	for _, e := range g.rawEdges {
		if e.ChildID == sourceID {
			ids = append(ids, e.EdgeID)
		}
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no edge from %s", ErrEdgeNotFound, sourceID)
	}
	return ids, nil
}

// FindEdge returns the first edge joining two modules in either orientation
func (g *Graph) FindEdge(a, b string) (config.AppEdge, error) {
	for _, e := range g.rawEdges {
		if (e.ChildID == a && e.ParentID == b) || (e.ParentID == a && e.ChildID == b) {
			return e, nil
		}
	}
	return config.AppEdge{}, fmt.Errorf("%w: %s - %s", ErrEdgeNotFound, a, b)
}

// Describe renders the graph depth-first from the root for debugging
func (g *Graph) Describe() string {
	var b strings.Builder
	stack := []*Node{g.root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		b.WriteString(n.String())
		b.WriteString("\n----------\n")
		stack = append(stack, n.Children...)
	}
	return b.String()
}
