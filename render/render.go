// Package render draws simulation snapshots.
//
// The Adapter turns a snapshot into a Scene of screen-space primitives; the
// renderers in this package serialise a Scene to SVG, PNG, JSON, DOT, ASCII
// or a live HTML page.
package render

import (
	"context"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/TFMV/forcegraph/errors"
	"github.com/TFMV/forcegraph/interact"
	"github.com/TFMV/forcegraph/logger"
	"github.com/TFMV/forcegraph/models"
	"github.com/TFMV/forcegraph/physics"
)

// OutputOptions defines rendering configuration options
type OutputOptions struct {
	Format         string        // Output format (svg, png, json, dot, ascii, html)
	Width          float64       // Width of the output
	Height         float64       // Height of the output
	Palette        string        // Palette name (network, vivid, surreal)
	ShowLabels     bool          // Show node labels
	ShowEdgeLabels bool          // Show edge labels
	Timestamp      bool          // Include timestamp in the output
	Quality        string        // Rendering quality (low, medium, high)
	MaxSteps       int           // Step cap for headless layout; 0 runs to settlement
	Fit            bool          // Scale the settled layout to fit the viewport
	Timeout        time.Duration // Upper bound for headless layout
	WebSocketPath  string        // Live endpoint the html page connects to; empty for a static page
}

// NewDefaultOptions creates a default set of output options
func NewDefaultOptions(format string) *OutputOptions {
	return &OutputOptions{
		Format:     format,
		Width:      800,
		Height:     600,
		Palette:    "network",
		ShowLabels: true,
		Timestamp:  false,
		Quality:    "medium",
		MaxSteps:   1000,
		Fit:        true,
		Timeout:    30 * time.Second,
	}
}

// Renderer interface defines methods that all rendering backends must implement
type Renderer interface {
	// Render serialises a scene using the provided options
	Render(scene *Scene, options *OutputOptions) ([]byte, error)

	// Name returns the name of the renderer
	Name() string

	// Description returns a description of the renderer
	Description() string

	// ContentType returns the MIME type of the output
	ContentType() string
}

// Formats lists the supported output formats
var Formats = []string{"svg", "png", "json", "dot", "ascii", "html"}

// GetRenderer returns the appropriate renderer based on format
func GetRenderer(format string) (Renderer, error) {
	switch strings.ToLower(format) {
	case "svg":
		return &SVGRenderer{}, nil
	case "png":
		return &PNGRenderer{}, nil
	case "json":
		return &JSONRenderer{}, nil
	case "dot":
		return &DOTRenderer{}, nil
	case "ascii":
		return &ASCIIRenderer{}, nil
	case "html":
		return &HTMLRenderer{}, nil
	default:
		return nil, errors.WithHintf(
			errors.Wrapf(errors.ErrUnsupportedFormat, "output format %q", format),
			"supported formats: %s", strings.Join(Formats, ", "),
		)
	}
}

// Layout is the result of a headless simulation run
type Layout struct {
	Scene       *Scene
	Snapshot    physics.Snapshot
	Diagnostics []*models.GraphDataError
}

// GenerateLayout runs a simulation over g until it settles, the step cap is
// reached or ctx is done, and renders the final frame.
func GenerateLayout(ctx context.Context, g *models.Graph, options *OutputOptions, cfg physics.Config, log *zap.SugaredLogger) (*Layout, error) {
	log = logger.OrNop(log)
	if options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, options.Timeout)
		defer cancel()
	}

	palette, err := GetPalette(options.Palette)
	if err != nil {
		return nil, err
	}

	sim, err := physics.New(cfg, log.Named("physics"))
	if err != nil {
		return nil, err
	}
	diags, err := sim.Load(g, options.Width, options.Height)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	for range sim.Run(options.MaxSteps) {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrapf(err, "layout stopped after %d steps", sim.Tick())
		}
	}
	snap := sim.Snapshot()
	log.Infow("Layout generated",
		logger.FieldGraph, g.ID,
		logger.FieldTick, snap.Tick,
		logger.FieldAlpha, snap.Temperature,
		"settled", snap.Settled,
		"elapsed", time.Since(start),
	)

	validated := sim.Graph()
	transform := interact.Identity()
	if options.Fit {
		transform = FitTransform(validated, snap, options.Width, options.Height)
	}

	adapter := NewAdapter(validated, palette, log.Named("render"))
	defer adapter.Dispose()
	scene, err := adapter.Frame(snap, transform, interact.Presentation{})
	if err != nil {
		return nil, err
	}
	return &Layout{Scene: scene, Snapshot: snap, Diagnostics: diags}, nil
}

// Generate lays out g headlessly and renders it in options.Format
func Generate(ctx context.Context, g *models.Graph, options *OutputOptions, cfg physics.Config, log *zap.SugaredLogger) ([]byte, *Layout, error) {
	renderer, err := GetRenderer(options.Format)
	if err != nil {
		return nil, nil, err
	}
	layout, err := GenerateLayout(ctx, g, options, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	out, err := renderer.Render(layout.Scene, options)
	if err != nil {
		return nil, layout, errors.Wrapf(err, "render %s", renderer.Name())
	}
	return out, layout, nil
}

// fitMargin leaves room around the layout for strokes and labels
const fitMargin = 30.0

// FitTransform returns a transform that shrinks the layout to fit inside
// the viewport when it overflows. It never enlarges the layout.
func FitTransform(g *models.Graph, snap physics.Snapshot, width, height float64) interact.ViewTransform {
	if len(snap.Nodes) == 0 {
		return interact.Identity()
	}
	maxR := 0.0
	for i := range g.Nodes {
		maxR = math.Max(maxR, g.Nodes[i].Radius())
	}
	pad := maxR + fitMargin

	minX, minY, maxX, maxY := snap.Bounds()
	minX, minY = minX-pad, minY-pad
	maxX, maxY = maxX+pad, maxY+pad
	if minX >= 0 && minY >= 0 && maxX <= width && maxY <= height {
		return interact.Identity()
	}

	scale := math.Min(1, math.Min(width/(maxX-minX), height/(maxY-minY)))
	return interact.ViewTransform{
		Scale: scale,
		TX:    width/2 - (minX+maxX)/2*scale,
		TY:    height/2 - (minY+maxY)/2*scale,
	}
}

// Helper functions

// parseHexColor parses #rgb or #rrggbb into RGB components
func parseHexColor(hex string) (uint8, uint8, uint8) {
	hex = strings.TrimPrefix(hex, "#")

	if len(hex) == 3 {
		r := parseHexDigit(hex[0])
		g := parseHexDigit(hex[1])
		b := parseHexDigit(hex[2])
		return r * 17, g * 17, b * 17 // 0-15 -> 0-255
	} else if len(hex) >= 6 {
		return parseHexByte(hex[0:2]), parseHexByte(hex[2:4]), parseHexByte(hex[4:6])
	}

	// Default to black if invalid
	return 0, 0, 0
}

func parseHexDigit(c byte) uint8 {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	}
	return 0
}

func parseHexByte(s string) uint8 {
	var result uint8
	for i := 0; i < len(s); i++ {
		result = result*16 + parseHexDigit(s[i])
	}
	return result
}

// Clamp a value between lo and hi
func clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}

// Absolute value of an integer
func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
