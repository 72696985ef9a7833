// Package models provides the graph data model for forcegraph.
// It defines the node/edge records fed to the layout engine and the
// helpers derived from them; positions and velocities live in the simulation.
package models

import (
	"time"
)

const (
	// DefaultImportance is used for nodes that carry no importance
	DefaultImportance = 5
	// MinImportance and MaxImportance bound the importance scale
	MinImportance = 1
	MaxImportance = 10
	// DefaultWeight is used for edges that carry no weight
	DefaultWeight = 5.0
)

// Node represents an entity in the graph
type Node struct {
	ID         string         `json:"id" yaml:"id" toml:"id"`
	Label      string         `json:"label" yaml:"label" toml:"label"`
	Cluster    string         `json:"cluster,omitempty" yaml:"cluster,omitempty" toml:"cluster,omitempty"`       // Category key used for colour
	Importance int            `json:"importance" yaml:"importance" toml:"importance"`                            // 1-10, drives radius and repulsion
	Kind       string         `json:"kind,omitempty" yaml:"kind,omitempty" toml:"kind,omitempty"`                // e.g. "person", "location", "operation"
	Status     string         `json:"status,omitempty" yaml:"status,omitempty" toml:"status,omitempty"`          // e.g. "active", "disrupted"
	Properties map[string]any `json:"properties,omitempty" yaml:"properties,omitempty" toml:"properties,omitempty"`
}

// Edge represents a weighted relationship between two nodes
type Edge struct {
	Source string  `json:"source" yaml:"source" toml:"source"` // ID of the source node
	Target string  `json:"target" yaml:"target" toml:"target"` // ID of the target node
	Weight float64 `json:"weight" yaml:"weight" toml:"weight"` // Positive; 0 means unset
	Type   string  `json:"type,omitempty" yaml:"type,omitempty" toml:"type,omitempty"`
	Label  string  `json:"label,omitempty" yaml:"label,omitempty" toml:"label,omitempty"`
}

// Graph represents a collection of nodes and edges
type Graph struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Nodes         []Node            `json:"nodes"`
	Edges         []Edge            `json:"edges"`
	ClusterColors map[string]string `json:"cluster_colors,omitempty"` // Cluster -> hex colour overrides
	Metadata      map[string]any    `json:"metadata,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// EffectiveImportance returns the importance used by the layout,
// substituting the default for unset values and clamping to 1-10.
func (n *Node) EffectiveImportance() int {
	switch {
	case n.Importance == 0:
		return DefaultImportance
	case n.Importance < MinImportance:
		return MinImportance
	case n.Importance > MaxImportance:
		return MaxImportance
	}
	return n.Importance
}

// Radius returns the visual radius of the node in simulation units.
func (n *Node) Radius() float64 {
	return RadiusForImportance(n.EffectiveImportance())
}

// RadiusForImportance is the step function mapping importance to radius
func RadiusForImportance(importance int) float64 {
	switch {
	case importance >= 9:
		return 20
	case importance >= 7:
		return 16
	case importance >= 4:
		return 12
	}
	return 8
}

// DisplayLabel returns the label, falling back to the id
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// EffectiveWeight returns the weight used by the layout (default for unset)
func (e *Edge) EffectiveWeight() float64 {
	if e.Weight <= 0 || e.Weight != e.Weight {
		return DefaultWeight
	}
	return e.Weight
}

// Width returns the stroke width of the edge, a step function of weight
func (e *Edge) Width() float64 {
	w := e.EffectiveWeight()
	switch {
	case w >= 9:
		return 4
	case w >= 7:
		return 3
	case w >= 4:
		return 2
	}
	return 1
}

// Touches reports whether the edge has nodeID as one of its endpoints
func (e *Edge) Touches(nodeID string) bool {
	return e.Source == nodeID || e.Target == nodeID
}
