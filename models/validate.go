package models

import (
	"fmt"
	"math"
	"time"

	"github.com/TFMV/forcegraph/errors"
)

// DataErrorKind classifies a GraphDataError
type DataErrorKind string

const (
	// KindUnknownEndpoint: an edge references a node id that is not in the node set
	KindUnknownEndpoint DataErrorKind = "unknown_endpoint"
	// KindDuplicateNode: a node id appears more than once
	KindDuplicateNode DataErrorKind = "duplicate_node"
	// KindInvalidWeight: an edge weight is negative, NaN or infinite
	KindInvalidWeight DataErrorKind = "invalid_weight"
	// KindInvalidImportance: a node importance is outside 1-10
	KindInvalidImportance DataErrorKind = "invalid_importance"
)

// Kind-specific sentinels, all wrapping errors.ErrGraphData
var (
	ErrUnknownEndpoint   = errors.Wrap(errors.ErrGraphData, string(KindUnknownEndpoint))
	ErrDuplicateNode     = errors.Wrap(errors.ErrGraphData, string(KindDuplicateNode))
	ErrInvalidWeight     = errors.Wrap(errors.ErrGraphData, string(KindInvalidWeight))
	ErrInvalidImportance = errors.Wrap(errors.ErrGraphData, string(KindInvalidImportance))
)

// GraphDataError describes one node or edge record that was excluded or
// normalised while loading a graph. It never stops a layout run.
type GraphDataError struct {
	Err       error         // Underlying error, wraps errors.ErrGraphData
	Kind      DataErrorKind // What was wrong
	NodeID    string        // Offending node, for node errors
	EdgeIndex int           // Offending edge position in the input, -1 for node errors
	Source    string        // Edge endpoints, for edge errors
	Target    string
	Timestamp time.Time
}

// Error implements the error interface
func (e *GraphDataError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error for errors.Is/As compatibility
func (e *GraphDataError) Unwrap() error {
	return e.Err
}

// ToLogFields converts the error to structured log fields for Warnw
func (e *GraphDataError) ToLogFields() []interface{} {
	fields := []interface{}{
		"error_kind", string(e.Kind),
		"error_message", e.Error(),
	}
	if e.NodeID != "" {
		fields = append(fields, "node_id", e.NodeID)
	}
	if e.EdgeIndex >= 0 {
		fields = append(fields, "edge_index", e.EdgeIndex, "source", e.Source, "target", e.Target)
	}
	return fields
}

func nodeError(sentinel error, kind DataErrorKind, id, msg string) *GraphDataError {
	return &GraphDataError{
		Err:       errors.Wrapf(sentinel, "node %q: %s", id, msg),
		Kind:      kind,
		NodeID:    id,
		EdgeIndex: -1,
		Timestamp: time.Now(),
	}
}

func edgeError(sentinel error, kind DataErrorKind, idx int, e Edge, msg string) *GraphDataError {
	return &GraphDataError{
		Err:       errors.Wrapf(sentinel, "edge %d (%s -> %s): %s", idx, e.Source, e.Target, msg),
		Kind:      kind,
		EdgeIndex: idx,
		Source:    e.Source,
		Target:    e.Target,
		Timestamp: time.Now(),
	}
}

// Validate returns a cleaned copy of g and one diagnostic per offending record.
//
// Duplicate node ids keep the first occurrence. Edges with an endpoint outside
// the node set are dropped. Invalid weights are reset to unset (default weight)
// and out-of-range importances are clamped. Validate never fails.
func Validate(g *Graph) (*Graph, []*GraphDataError) {
	var diags []*GraphDataError
	clean := g.Clone()
	clean.Nodes = make([]Node, 0, len(g.Nodes))
	clean.Edges = make([]Edge, 0, len(g.Edges))

	seen := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		if seen[n.ID] {
			diags = append(diags, nodeError(ErrDuplicateNode, KindDuplicateNode, n.ID, "duplicate id, keeping first occurrence"))
			continue
		}
		seen[n.ID] = true

		if n.Importance != 0 && (n.Importance < MinImportance || n.Importance > MaxImportance) {
			diags = append(diags, nodeError(ErrInvalidImportance, KindInvalidImportance, n.ID,
				fmt.Sprintf("importance %d outside %d-%d", n.Importance, MinImportance, MaxImportance)))
			n.Importance = n.EffectiveImportance()
		}
		clean.Nodes = append(clean.Nodes, n)
	}

	for i, e := range g.Edges {
		switch {
		case !seen[e.Source] && !seen[e.Target]:
			diags = append(diags, edgeError(ErrUnknownEndpoint, KindUnknownEndpoint, i, e, "both endpoints unknown"))
			continue
		case !seen[e.Source]:
			diags = append(diags, edgeError(ErrUnknownEndpoint, KindUnknownEndpoint, i, e,
				fmt.Sprintf("unknown source %q", e.Source)))
			continue
		case !seen[e.Target]:
			diags = append(diags, edgeError(ErrUnknownEndpoint, KindUnknownEndpoint, i, e,
				fmt.Sprintf("unknown target %q", e.Target)))
			continue
		}

		if e.Weight < 0 || math.IsNaN(e.Weight) || math.IsInf(e.Weight, 0) {
			diags = append(diags, edgeError(ErrInvalidWeight, KindInvalidWeight, i, e,
				fmt.Sprintf("weight %v replaced with default %v", e.Weight, DefaultWeight)))
			e.Weight = 0
		}
		clean.Edges = append(clean.Edges, e)
	}

	return clean, diags
}
