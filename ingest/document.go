package ingest

import (
	"bytes"
	"encoding/json"
	"math"
	"slices"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/TFMV/forcegraph/errors"
	"github.com/TFMV/forcegraph/models"
)

// ident is a node id that may be written as a string or a number
type ident string

func (i *ident) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*i = ident(s)
		return nil
	}
	if bytes.Equal(b, []byte("null")) {
		*i = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return errors.Newf("id must be a string or number, got %s", b)
	}
	*i = ident(n.String())
	return nil
}

type nodeRecord struct {
	ID         ident          `json:"id" yaml:"id" toml:"id"`
	Label      string         `json:"label" yaml:"label" toml:"label"`
	Name       string         `json:"name" yaml:"name" toml:"name"`
	Cluster    string         `json:"cluster" yaml:"cluster" toml:"cluster"`
	Group      string         `json:"group" yaml:"group" toml:"group"`
	Importance float64        `json:"importance" yaml:"importance" toml:"importance"`
	Kind       string         `json:"kind" yaml:"kind" toml:"kind"`
	Type       string         `json:"type" yaml:"type" toml:"type"`
	Status     string         `json:"status" yaml:"status" toml:"status"`
	Properties map[string]any `json:"properties" yaml:"properties" toml:"properties"`
}

type edgeRecord struct {
	Source   ident    `json:"source" yaml:"source" toml:"source"`
	Target   ident    `json:"target" yaml:"target" toml:"target"`
	Weight   *float64 `json:"weight" yaml:"weight" toml:"weight"`
	Strength *float64 `json:"strength" yaml:"strength" toml:"strength"`
	Type     string   `json:"type" yaml:"type" toml:"type"`
	Label    string   `json:"label" yaml:"label" toml:"label"`
}

type visualization struct {
	NodeColorMapping map[string]string `json:"node_color_mapping" yaml:"node_color_mapping" toml:"node_color_mapping"`
}

type networkMetadata struct {
	Title string `json:"title" yaml:"title" toml:"title"`
}

// document is the shared shape of JSON, YAML and TOML graph files. Field
// aliases cover the common spellings found in exported network data.
type document struct {
	ID              string            `json:"id" yaml:"id" toml:"id"`
	Name            string            `json:"name" yaml:"name" toml:"name"`
	Title           string            `json:"title" yaml:"title" toml:"title"`
	NetworkMetadata networkMetadata   `json:"network_metadata" yaml:"network_metadata" toml:"network_metadata"`
	Nodes           []nodeRecord      `json:"nodes" yaml:"nodes" toml:"nodes"`
	Edges           []edgeRecord      `json:"edges" yaml:"edges" toml:"edges"`
	Links           []edgeRecord      `json:"links" yaml:"links" toml:"links"`
	ClusterColors   map[string]string `json:"cluster_colors" yaml:"cluster_colors" toml:"cluster_colors"`
	Visualization   visualization     `json:"visualization_properties" yaml:"visualization_properties" toml:"visualization_properties"`
	Metadata        map[string]any    `json:"metadata" yaml:"metadata" toml:"metadata"`
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// graph converts the document, resolving aliases
func (d *document) graph() (*models.Graph, error) {
	if len(d.Nodes) == 0 && len(d.Edges)+len(d.Links) > 0 {
		return nil, errors.New("document has edges but no nodes")
	}

	g := models.NewGraph(firstOf(d.Name, d.Title, d.NetworkMetadata.Title))
	if d.ID != "" {
		g.ID = d.ID
	}
	for k, v := range d.Metadata {
		g.Metadata[k] = v
	}

	if len(d.Visualization.NodeColorMapping)+len(d.ClusterColors) > 0 {
		g.ClusterColors = make(map[string]string)
		for k, v := range d.Visualization.NodeColorMapping {
			g.ClusterColors[k] = v
		}
		// An explicit table wins over the visualisation block
		for k, v := range d.ClusterColors {
			g.ClusterColors[k] = v
		}
	}

	g.Nodes = make([]models.Node, 0, len(d.Nodes))
	for i, r := range d.Nodes {
		if r.ID == "" {
			return nil, errors.Newf("node %d has no id", i)
		}
		g.Nodes = append(g.Nodes, models.Node{
			ID:         string(r.ID),
			Label:      firstOf(r.Label, r.Name),
			Cluster:    firstOf(r.Cluster, r.Group),
			Importance: roundImportance(r.Importance),
			Kind:       firstOf(r.Kind, r.Type),
			Status:     r.Status,
			Properties: r.Properties,
		})
	}

	records := slices.Concat(d.Edges, d.Links)
	g.Edges = make([]models.Edge, 0, len(records))
	for _, r := range records {
		e := models.Edge{
			Source: string(r.Source),
			Target: string(r.Target),
			Type:   r.Type,
			Label:  r.Label,
		}
		switch {
		case r.Weight != nil:
			e.Weight = *r.Weight
		case r.Strength != nil:
			e.Weight = *r.Strength
		}
		g.Edges = append(g.Edges, e)
	}
	return g, nil
}

// roundImportance keeps fractional and out-of-range values visible to
// validation instead of silently truncating them to zero
func roundImportance(v float64) int {
	switch {
	case math.IsNaN(v):
		return -1
	case v > math.MaxInt32:
		return math.MaxInt32
	case v < math.MinInt32:
		return math.MinInt32
	case v > 0 && v < 1:
		return 1
	}
	return int(math.Round(v))
}

// JSONProcessor handles JSON graph documents
type JSONProcessor struct{}

// NewJSONProcessor creates a new JSON processor
func NewJSONProcessor() *JSONProcessor {
	return &JSONProcessor{}
}

// GetName returns the name of the processor
func (p *JSONProcessor) GetName() string {
	return "JSON Processor"
}

// ProcessData processes JSON data
func (p *JSONProcessor) ProcessData(data []byte) (*models.Graph, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "error parsing JSON")
	}
	return doc.graph()
}

// YAMLProcessor handles YAML graph documents
type YAMLProcessor struct{}

// NewYAMLProcessor creates a new YAML processor
func NewYAMLProcessor() *YAMLProcessor {
	return &YAMLProcessor{}
}

// GetName returns the name of the processor
func (p *YAMLProcessor) GetName() string {
	return "YAML Processor"
}

// ProcessData processes YAML data
func (p *YAMLProcessor) ProcessData(data []byte) (*models.Graph, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "error parsing YAML")
	}
	return doc.graph()
}

// TOMLProcessor handles TOML graph documents, with nodes and edges as
// arrays of tables
type TOMLProcessor struct{}

// NewTOMLProcessor creates a new TOML processor
func NewTOMLProcessor() *TOMLProcessor {
	return &TOMLProcessor{}
}

// GetName returns the name of the processor
func (p *TOMLProcessor) GetName() string {
	return "TOML Processor"
}

// ProcessData processes TOML data
func (p *TOMLProcessor) ProcessData(data []byte) (*models.Graph, error) {
	var doc document
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "error parsing TOML")
	}
	return doc.graph()
}
