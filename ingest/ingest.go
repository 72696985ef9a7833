// Package ingest loads graphs from files into models.Graph.
//
// Structured documents (JSON, YAML, TOML) carry nodes and edges directly;
// CSV edge lists and relationship logs are turned into graphs by inferring
// nodes from edge endpoints. Records are passed through as read: dangling
// edges, duplicate ids and out-of-range values are reported later by the
// simulation, not rejected here.
package ingest

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/TFMV/forcegraph/errors"
	"github.com/TFMV/forcegraph/models"
)

// DataProcessor defines the interface that all data processors must implement
type DataProcessor interface {
	// ProcessData takes raw data bytes and returns a graph representation
	ProcessData(data []byte) (*models.Graph, error)

	// GetName returns the name of the processor
	GetName() string
}

// Formats lists the supported input formats
var Formats = []string{"json", "yaml", "toml", "csv", "log"}

// GetProcessor returns the appropriate processor for the given format
func GetProcessor(format string) (DataProcessor, error) {
	switch strings.ToLower(format) {
	case "json":
		return NewJSONProcessor(), nil
	case "yaml", "yml":
		return NewYAMLProcessor(), nil
	case "toml":
		return NewTOMLProcessor(), nil
	case "csv":
		return NewCSVProcessor(), nil
	case "log", "txt":
		return NewLogProcessor(), nil
	default:
		return nil, errors.WithHintf(
			errors.Wrapf(errors.ErrUnsupportedFormat, "input format %q", format),
			"supported formats: %s", strings.Join(Formats, ", "),
		)
	}
}

// FormatFromPath infers the input format from a file extension
func FormatFromPath(path string) (string, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	switch ext {
	case "json", "toml", "csv", "log":
		return ext, nil
	case "yaml", "yml":
		return "yaml", nil
	case "txt":
		return "log", nil
	}
	return "", errors.WithHint(
		errors.Wrapf(errors.ErrUnsupportedFormat, "cannot infer format of %q", path),
		"pass the format explicitly",
	)
}

// LoadFile reads and parses a graph file. An empty format is inferred from
// the extension. Graphs without a name are named after the file.
func LoadFile(path, format string) (*models.Graph, error) {
	if format == "" {
		var err error
		if format, err = FormatFromPath(path); err != nil {
			return nil, err
		}
	}
	processor, err := GetProcessor(format)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	g, err := processor.ProcessData(data)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: %s", processor.GetName(), path)
	}
	if g.Name == "" {
		g.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return g, nil
}

// importanceFromDegree sizes inferred nodes by how connected they are
func importanceFromDegree(degree int) int {
	return min(models.MaxImportance, 2+degree)
}
