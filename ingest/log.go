package ingest

import (
	"bufio"
	"bytes"
	"strings"

	"github.com/TFMV/forcegraph/errors"
	"github.com/TFMV/forcegraph/models"
)

// LogProcessor handles relationship logs. Each line names one relationship,
// e.g. "A -> B" or "X connected to Y". Lines that match no pattern and
// lines starting with # are ignored.
type LogProcessor struct{}

// NewLogProcessor creates a new log processor
func NewLogProcessor() *LogProcessor {
	return &LogProcessor{}
}

// GetName returns the name of the processor
func (p *LogProcessor) GetName() string {
	return "Log Processor"
}

// Common log patterns for connections, tried in order
var logPatterns = []struct {
	separator string
	relation  string
}{
	{" -> ", "directed"},
	{" => ", "directed"},
	{" connected to ", "connected"},
	{" connects to ", "directed"},
	{" links to ", "directed"},
	{" linked to ", "linked"},
	{" - ", "connected"},
}

// parseRelation splits "A -> B [: label]" into its parts
func parseRelation(line string) (source, target, relation, label string, ok bool) {
	for _, pattern := range logPatterns {
		parts := strings.Split(line, pattern.separator)
		if len(parts) != 2 {
			continue
		}
		source = strings.TrimSpace(parts[0])
		target = strings.TrimSpace(parts[1])
		if t, l, found := strings.Cut(target, ":"); found {
			target, label = strings.TrimSpace(t), strings.TrimSpace(l)
		}
		if source == "" || target == "" {
			return "", "", "", "", false
		}
		return source, target, pattern.relation, label, true
	}
	return "", "", "", "", false
}

// ProcessData processes log data
func (p *LogProcessor) ProcessData(data []byte) (*models.Graph, error) {
	b := newInferredGraph()
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		source, target, relation, label, ok := parseRelation(line)
		if !ok {
			continue
		}
		b.node(source, "")
		b.node(target, "")
		b.edge(models.Edge{Source: source, Target: target, Type: relation, Label: label})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "error reading log")
	}
	return b.finish(), nil
}
