package render

import (
	"bytes"
	"image/color"
	"math"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"

	"github.com/TFMV/forcegraph/errors"
)

// PNGRenderer rasterises the scene with gg
type PNGRenderer struct{}

// Name returns the name of the renderer
func (r *PNGRenderer) Name() string {
	return "PNG Renderer"
}

// Description returns a description of the renderer
func (r *PNGRenderer) Description() string {
	return "Renders graph as a PNG image with anti-aliased shapes and Go Mono labels"
}

// ContentType returns the MIME type of the output
func (r *PNGRenderer) ContentType() string {
	return "image/png"
}

var (
	monoOnce sync.Once
	monoFont *truetype.Font
	monoErr  error
)

func labelFont() (*truetype.Font, error) {
	monoOnce.Do(func() {
		monoFont, monoErr = truetype.Parse(gomono.TTF)
	})
	return monoFont, monoErr
}

// Render creates a PNG image of the scene
func (r *PNGRenderer) Render(scene *Scene, options *OutputOptions) ([]byte, error) {
	w, h := sceneSize(scene, options)
	width, height := int(math.Ceil(w)), int(math.Ceil(h))
	if width <= 0 || height <= 0 {
		return nil, errors.Newf("png: invalid image size %dx%d", width, height)
	}

	dc := gg.NewContext(width, height)
	dc.SetColor(hexColor(scene.Background, 1))
	dc.Clear()

	// Edges first so nodes cover their ends
	for _, e := range scene.Edges {
		dc.SetColor(hexColor(e.Color, e.Opacity))
		dc.SetLineWidth(e.Width)
		dc.DrawLine(e.X1, e.Y1, e.X2, e.Y2)
		dc.Stroke()
	}

	for _, n := range scene.Nodes {
		dc.DrawCircle(n.X, n.Y, n.Radius)
		dc.SetColor(hexColor(n.Fill, 1))
		dc.FillPreserve()
		dc.SetColor(hexColor(n.Stroke, 1))
		dc.SetLineWidth(n.StrokeWidth)
		dc.Stroke()
	}

	if options.ShowLabels && len(scene.Nodes) > 0 {
		ttf, err := labelFont()
		if err != nil {
			return nil, errors.Wrap(err, "failed to parse font")
		}
		size := math.Max(1, LabelFontSize*scene.Transform.Scale)
		face := truetype.NewFace(ttf, &truetype.Options{
			Size:    size,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		defer face.Close()
		dc.SetFontFace(face)
		dc.SetColor(hexColor(scene.LabelColor, 1))
		for _, n := range scene.Nodes {
			if n.Label != "" {
				dc.DrawStringAnchored(n.Label, n.LabelX, n.LabelY, 0.5, 0)
			}
		}
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, errors.Wrap(err, "encode png")
	}
	return buf.Bytes(), nil
}

func hexColor(hex string, opacity float64) color.NRGBA {
	r, g, b := parseHexColor(hex)
	return color.NRGBA{R: r, G: g, B: b, A: uint8(clamp(int(opacity*255+0.5), 0, 255))}
}
