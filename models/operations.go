package models

import (
	"maps"
	"time"

	"github.com/google/uuid"

	"github.com/TFMV/forcegraph/errors"
)

// NewGraph creates a new graph with a unique ID and timestamps
func NewGraph(name string) *Graph {
	now := time.Now()
	return &Graph{
		ID:        uuid.New().String(),
		Name:      name,
		Nodes:     []Node{},
		Edges:     []Edge{},
		Metadata:  make(map[string]any),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewNode creates a node with the given id, label, cluster and importance
func NewNode(id, label, cluster string, importance int) Node {
	return Node{
		ID:         id,
		Label:      label,
		Cluster:    cluster,
		Importance: importance,
	}
}

// NewEdge creates an edge between two node ids
func NewEdge(source, target string, weight float64) Edge {
	return Edge{
		Source: source,
		Target: target,
		Weight: weight,
	}
}

// AddNode adds a node to the graph.
// Duplicate ids are rejected; Validate handles them for bulk-loaded data.
func (g *Graph) AddNode(node Node) error {
	if _, err := g.FindNodeByID(node.ID); err == nil {
		return errors.Wrapf(ErrDuplicateNode, "node %q", node.ID)
	}
	g.Nodes = append(g.Nodes, node)
	g.UpdatedAt = time.Now()
	return nil
}

// AddEdge adds an edge to the graph after checking both endpoints exist
func (g *Graph) AddEdge(edge Edge) error {
	sourceExists, targetExists := false, false
	for _, node := range g.Nodes {
		if node.ID == edge.Source {
			sourceExists = true
		}
		if node.ID == edge.Target {
			targetExists = true
		}
		if sourceExists && targetExists {
			break
		}
	}

	if !sourceExists {
		return errors.Wrapf(ErrUnknownEndpoint, "source node %q does not exist in the graph", edge.Source)
	}
	if !targetExists {
		return errors.Wrapf(ErrUnknownEndpoint, "target node %q does not exist in the graph", edge.Target)
	}

	g.Edges = append(g.Edges, edge)
	g.UpdatedAt = time.Now()
	return nil
}

// RemoveNode removes a node and all connected edges from the graph
func (g *Graph) RemoveNode(nodeID string) {
	nodes := g.Nodes[:0:0]
	for _, node := range g.Nodes {
		if node.ID != nodeID {
			nodes = append(nodes, node)
		}
	}
	g.Nodes = nodes

	edges := g.Edges[:0:0]
	for _, edge := range g.Edges {
		if !edge.Touches(nodeID) {
			edges = append(edges, edge)
		}
	}
	g.Edges = edges

	g.UpdatedAt = time.Now()
}

// Clone copies the node and edge sets along with the colour, metadata and
// per-node property maps; the copy keeps the id. Values stored inside
// Metadata and Properties are not copied.
func (g *Graph) Clone() *Graph {
	c := *g
	c.Nodes = append([]Node(nil), g.Nodes...)
	for i := range c.Nodes {
		c.Nodes[i].Properties = maps.Clone(c.Nodes[i].Properties)
	}
	c.Edges = append([]Edge(nil), g.Edges...)
	c.ClusterColors = maps.Clone(g.ClusterColors)
	c.Metadata = maps.Clone(g.Metadata)
	return &c
}
