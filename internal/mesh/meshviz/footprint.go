// Package meshviz renders debug artefacts for orientation results: a
// footprint PNG, HTML charts of linearity and slice profiles, and GeoJSON
// footprints for map tooling.
package meshviz

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/meshpivot/internal/mesh"
	"github.com/banshee-data/meshpivot/internal/mesh/geom"
	"github.com/banshee-data/meshpivot/internal/mesh/pivot"
)

var (
	vertexColor = color.RGBA{R: 120, G: 120, B: 120, A: 255}
	wireColor   = color.RGBA{R: 220, G: 40, B: 40, A: 255}
	hullColor   = color.RGBA{R: 31, G: 104, B: 142, A: 255}
	rectColor   = color.RGBA{R: 53, G: 183, B: 121, A: 255}
	baseColor   = color.RGBA{R: 253, G: 231, B: 37, A: 255}
)

// FootprintPlot draws the XY projection of v with wire vertices, the
// footprint hull and the fitted rectangles of r.
func FootprintPlot(name string, v mesh.View, r pivot.Result) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s: angle %.2f°, wire %d", name, r.Angle()*180/math.Pi, r.WireCount)
	p.X.Label.Text = "X (m)"
	p.Y.Label.Text = "Y (m)"
	p.Add(plotter.NewGrid())

	kept := make(plotter.XYs, 0, v.Len())
	wire := make(plotter.XYs, 0, r.WireCount)
	for i, pt := range v.Vertices {
		xy := plotter.XY{X: pt.X, Y: pt.Y}
		if i < len(r.Mask) && r.Mask[i] {
			wire = append(wire, xy)
		} else {
			kept = append(kept, xy)
		}
	}

	if len(kept) > 0 {
		s, err := plotter.NewScatter(kept)
		if err != nil {
			return nil, fmt.Errorf("vertex scatter: %w", err)
		}
		s.GlyphStyle.Color = vertexColor
		s.GlyphStyle.Radius = vg.Points(1)
		p.Add(s)
		p.Legend.Add("vertices", s)
	}
	if len(wire) > 0 {
		s, err := plotter.NewScatter(wire)
		if err != nil {
			return nil, fmt.Errorf("wire scatter: %w", err)
		}
		s.GlyphStyle.Color = wireColor
		s.GlyphStyle.Radius = vg.Points(1.5)
		p.Add(s)
		p.Legend.Add("wire", s)
	}

	if len(r.Hull) > 0 {
		l, err := closedLine(r.Hull)
		if err != nil {
			return nil, fmt.Errorf("hull outline: %w", err)
		}
		l.Color = hullColor
		l.Width = vg.Points(1)
		p.Add(l)
		p.Legend.Add("hull", l)
	}
	if r.Rect.Valid() {
		c := r.Rect.Corners()
		l, err := closedLine(c[:])
		if err != nil {
			return nil, fmt.Errorf("rect outline: %w", err)
		}
		l.Color = rectColor
		l.Width = vg.Points(1.5)
		p.Add(l)
		p.Legend.Add(fmt.Sprintf("rect %.3f m²", r.Rect.Area), l)
	}
	if r.BaseRect.Valid() {
		c := r.BaseRect.Corners()
		l, err := closedLine(c[:])
		if err != nil {
			return nil, fmt.Errorf("base outline: %w", err)
		}
		l.Color = baseColor
		l.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		p.Add(l)
		p.Legend.Add("base", l)
	}
	return p, nil
}

// SaveFootprint renders FootprintPlot to path. The image format follows the
// file extension.
func SaveFootprint(path, name string, v mesh.View, r pivot.Result) error {
	p, err := FootprintPlot(name, v, r)
	if err != nil {
		return err
	}
	if err := p.Save(8*vg.Inch, 8*vg.Inch, path); err != nil {
		return fmt.Errorf("save footprint plot: %w", err)
	}
	return nil
}

func closedLine(pts []geom.Point2) (*plotter.Line, error) {
	xys := make(plotter.XYs, 0, len(pts)+1)
	for _, pt := range pts {
		xys = append(xys, plotter.XY{X: pt.X, Y: pt.Y})
	}
	xys = append(xys, xys[0])
	return plotter.NewLine(xys)
}
