package ingest

import (
	"bytes"
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/TFMV/forcegraph/errors"
	"github.com/TFMV/forcegraph/models"
)

// CSVProcessor handles edge-list CSV data. A header row names the columns;
// source and target are required, weight, label, type and per-endpoint
// cluster columns are optional.
type CSVProcessor struct{}

// NewCSVProcessor creates a new CSV processor
func NewCSVProcessor() *CSVProcessor {
	return &CSVProcessor{}
}

// GetName returns the name of the processor
func (p *CSVProcessor) GetName() string {
	return "CSV Processor"
}

type csvColumns struct {
	source, target, weight, label, kind int
	sourceCluster, targetCluster      int
}

func findColumns(header []string) (csvColumns, error) {
	cols := csvColumns{-1, -1, -1, -1, -1, -1, -1}
	for i, col := range header {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case "source", "from", "src":
			cols.source = i
		case "target", "to", "dst":
			cols.target = i
		case "weight", "value", "strength":
			cols.weight = i
		case "label", "name", "title":
			cols.label = i
		case "type", "kind", "relation":
			cols.kind = i
		case "source_cluster", "source_group":
			cols.sourceCluster = i
		case "target_cluster", "target_group":
			cols.targetCluster = i
		}
	}
	if cols.source == -1 || cols.target == -1 {
		return cols, errors.WithHint(
			errors.New("CSV must contain source and target columns"),
			"accepted names: source/from/src and target/to/dst",
		)
	}
	return cols, nil
}

func field(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// ProcessData processes CSV data
func (p *CSVProcessor) ProcessData(data []byte) (*models.Graph, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, errors.Wrap(err, "error reading CSV header")
	}
	cols, err := findColumns(header)
	if err != nil {
		return nil, err
	}

	b := newInferredGraph()
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "error reading CSV row")
		}

		source, target := field(row, cols.source), field(row, cols.target)
		if source == "" || target == "" {
			return nil, errors.Newf("line %d: empty source or target", line)
		}

		// Unparseable weights are left at zero and replaced by the default
		var weight float64
		if s := field(row, cols.weight); s != "" {
			if w, err := strconv.ParseFloat(s, 64); err == nil {
				weight = w
			}
		}

		b.node(source, field(row, cols.sourceCluster))
		b.node(target, field(row, cols.targetCluster))
		b.edge(models.Edge{
			Source: source,
			Target: target,
			Weight: weight,
			Type:   field(row, cols.kind),
			Label:  field(row, cols.label),
		})
	}
	return b.finish(), nil
}

// inferredGraph builds a graph whose nodes come from edge endpoints
type inferredGraph struct {
	g      *models.Graph
	index  map[string]int
	degree []int
}

func newInferredGraph() *inferredGraph {
	return &inferredGraph{g: models.NewGraph(""), index: map[string]int{}}
}

func (b *inferredGraph) node(id, cluster string) {
	if i, ok := b.index[id]; ok {
		if b.g.Nodes[i].Cluster == "" {
			b.g.Nodes[i].Cluster = cluster
		}
		return
	}
	b.index[id] = len(b.g.Nodes)
	b.g.Nodes = append(b.g.Nodes, models.Node{ID: id, Label: id, Cluster: cluster})
	b.degree = append(b.degree, 0)
}

func (b *inferredGraph) edge(e models.Edge) {
	b.degree[b.index[e.Source]]++
	if e.Target != e.Source {
		b.degree[b.index[e.Target]]++
	}
	b.g.Edges = append(b.g.Edges, e)
}

// finish sizes each node by its number of connections
func (b *inferredGraph) finish() *models.Graph {
	for i := range b.g.Nodes {
		b.g.Nodes[i].Importance = importanceFromDegree(b.degree[i])
	}
	return b.g
}
