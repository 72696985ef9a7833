package models

import (
	"github.com/TFMV/forcegraph/errors"
)

// NodeFilter is a function type used to filter nodes in queries
type NodeFilter func(node *Node) bool

// EdgeFilter is a function type used to filter edges in queries
type EdgeFilter func(edge *Edge) bool

// FindNodeByID returns a node by its ID
func (g *Graph) FindNodeByID(id string) (*Node, error) {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i], nil
		}
	}
	return nil, errors.Wrapf(errors.ErrUnknownNode, "node %q", id)
}

// FindEdgesTouching returns all edges with nodeID as an endpoint
func (g *Graph) FindEdgesTouching(nodeID string) []Edge {
	return g.FilterEdges(func(e *Edge) bool { return e.Touches(nodeID) })
}

// FindConnectedNodes returns all nodes directly connected to a node
func (g *Graph) FindConnectedNodes(nodeID string) []Node {
	neighbours := make(map[string]bool)
	for _, edge := range g.Edges {
		if edge.Source == nodeID {
			neighbours[edge.Target] = true
		}
		if edge.Target == nodeID {
			neighbours[edge.Source] = true
		}
	}
	delete(neighbours, nodeID)

	return g.FilterNodes(func(n *Node) bool { return neighbours[n.ID] })
}

// FindNodesByCluster returns all nodes of a cluster
func (g *Graph) FindNodesByCluster(cluster string) []Node {
	return g.FilterNodes(func(n *Node) bool { return n.Cluster == cluster })
}

// FilterNodes returns nodes that match the provided filter function
func (g *Graph) FilterNodes(filter NodeFilter) []Node {
	var result []Node
	for i := range g.Nodes {
		if filter(&g.Nodes[i]) {
			result = append(result, g.Nodes[i])
		}
	}
	return result
}

// FilterEdges returns edges that match the provided filter function
func (g *Graph) FilterEdges(filter EdgeFilter) []Edge {
	var result []Edge
	for i := range g.Edges {
		if filter(&g.Edges[i]) {
			result = append(result, g.Edges[i])
		}
	}
	return result
}
