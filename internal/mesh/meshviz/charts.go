package meshviz

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/meshpivot/internal/mesh"
	"github.com/banshee-data/meshpivot/internal/mesh/slice"
)

var viridis = []string{"#440154", "#482777", "#3e4989", "#31688e", "#26828e", "#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725"}

// LinearityChart plots the XY projection of v coloured by per-vertex
// linearity. scores must have one entry per vertex.
func LinearityChart(name string, v mesh.View, scores []float64) (*charts.Scatter, error) {
	if len(scores) != v.Len() {
		return nil, &mesh.ContractError{Op: "scores", Value: len(scores), Limit: v.Len()}
	}

	data := make([]opts.ScatterData, 0, v.Len())
	for i, p := range v.Vertices {
		data = append(data, opts.ScatterData{Value: []interface{}{p.X, p.Y, scores[i]}})
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Linearity", Theme: "dark", Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{Title: name, Subtitle: fmt.Sprintf("vertices=%d", v.Len())}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "X (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Y (m)", NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        1,
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: viridis},
		}),
	)
	scatter.AddSeries("linearity", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4}))
	return scatter, nil
}

// SliceProfileChart plots the cross-section area of every slab against its
// mid height.
func SliceProfileChart(name string, res slice.Result) *charts.Bar {
	x := make([]string, 0, len(res.Slices))
	y := make([]opts.BarData, 0, len(res.Slices))
	for _, s := range res.Slices {
		x = append(x, fmt.Sprintf("%.3f", s.Mid()))
		y = append(y, opts.BarData{Value: s.Area})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Slice profile", Width: "100%", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    name,
			Subtitle: fmt.Sprintf("slices=%d cog=(%.3f, %.3f, %.3f)", len(res.Slices), res.COG.X, res.COG.Y, res.COG.Z),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Z (m)"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Area (m²)"}),
	)
	bar.SetXAxis(x).AddSeries("area", y)
	return bar
}

// WriteReport renders the given charts into one HTML page.
func WriteReport(w io.Writer, cs ...components.Charter) error {
	page := components.NewPage()
	page.AddCharts(cs...)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}
