package render

import (
	"strings"

	"github.com/TFMV/forcegraph/errors"
)

// FallbackNodeColor fills nodes whose cluster has no colour
const FallbackNodeColor = "#69b3a2"

// Palette provides colours for a scene
type Palette struct {
	Name            string
	Background      string
	ClusterColors   map[string]string // Explicit cluster -> colour table
	NodeColors      []string          // Cycled over clusters without an entry; empty means Fallback
	Fallback        string
	EdgeColor       string
	Stroke          string
	HighlightStroke string
	LabelColor      string
}

// networkClusterColors is the built-in table of the network view
var networkClusterColors = map[string]string{
	"al_ruwais_family":       "#8B0000",
	"government_officials":   "#4B0082",
	"military_officials":     "#228B22",
	"military_liaisons":      "#32CD32",
	"hezbollah_network":      "#FF4500",
	"jordanian_network":      "#DAA520",
	"military_units":         "#556B2F",
	"opposition_forces":      "#DC143C",
	"primary_infrastructure": "#2F4F4F",
}

// DefaultPalette is the dark network palette. Clusters in the built-in
// table keep their colour; any other cluster gets the fallback teal.
func DefaultPalette() *Palette {
	clusters := make(map[string]string, len(networkClusterColors))
	for k, v := range networkClusterColors {
		clusters[k] = v
	}
	return &Palette{
		Name:            "network",
		Background:      "#0f172a",
		ClusterColors:   clusters,
		Fallback:        FallbackNodeColor,
		EdgeColor:       "#666666",
		Stroke:          "#ffffff",
		HighlightStroke: "#ffff00",
		LabelColor:      "#ffffff",
	}
}

// VividPalette cycles bright colours over clusters on a light background
func VividPalette() *Palette {
	return &Palette{
		Name:       "vivid",
		Background: "#f8f8f8",
		NodeColors: []string{
			"#4285F4", // Google Blue
			"#EA4335", // Google Red
			"#FBBC05", // Google Yellow
			"#34A853", // Google Green
			"#673AB7", // Purple
			"#3F51B5", // Indigo
			"#00BCD4", // Cyan
			"#009688", // Teal
			"#FF5722", // Deep Orange
		},
		Fallback:        FallbackNodeColor,
		EdgeColor:       "#666666",
		Stroke:          "#ffffff",
		HighlightStroke: "#ffff00",
		LabelColor:      "#333333",
	}
}

// SurrealPalette is a high-contrast palette on a dark background
func SurrealPalette() *Palette {
	return &Palette{
		Name:       "surreal",
		Background: "#212121",
		NodeColors: []string{
			"#FF6D00", // Amber
			"#2979FF", // Blue
			"#00E676", // Green
			"#F50057", // Pink
			"#651FFF", // Deep Purple
			"#C6FF00", // Lime
			"#FF3D00", // Deep Orange
			"#00B0FF", // Light Blue
			"#76FF03", // Light Green
		},
		Fallback:        FallbackNodeColor,
		EdgeColor:       "#9C27B0",
		Stroke:          "#ffffff",
		HighlightStroke: "#ffff00",
		LabelColor:      "#eeeeee",
	}
}

// GetPalette returns a palette by name
func GetPalette(name string) (*Palette, error) {
	switch strings.ToLower(name) {
	case "", "network", "default":
		return DefaultPalette(), nil
	case "vivid":
		return VividPalette(), nil
	case "surreal":
		return SurrealPalette(), nil
	default:
		return nil, errors.WithHint(
			errors.NewInvalidConfigError("unknown palette %q", name),
			"valid palettes: network, vivid, surreal",
		)
	}
}

// WithOverrides returns a copy of p whose cluster table is extended by
// overrides, overrides winning.
func (p *Palette) WithOverrides(overrides map[string]string) *Palette {
	c := *p
	c.ClusterColors = make(map[string]string, len(p.ClusterColors)+len(overrides))
	for k, v := range p.ClusterColors {
		c.ClusterColors[k] = v
	}
	for k, v := range overrides {
		c.ClusterColors[k] = v
	}
	return &c
}

// clusterColors resolves a colour for each cluster in first-seen order so
// cycled colours are stable across frames.
func (p *Palette) clusterColors(clusters []string) map[string]string {
	out := make(map[string]string, len(clusters))
	next := 0
	for _, cl := range clusters {
		if _, done := out[cl]; done {
			continue
		}
		switch color, ok := p.ClusterColors[cl]; {
		case ok && color != "":
			out[cl] = color
		case cl != "" && len(p.NodeColors) > 0:
			out[cl] = p.NodeColors[next%len(p.NodeColors)]
			next++
		default:
			out[cl] = p.Fallback
		}
	}
	return out
}
