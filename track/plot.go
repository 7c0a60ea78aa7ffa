package track

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// New2DPlot creates a new plot of a GPS track from up to three data sources:
// raw:      raw GPS fixes as they were read
// filtered: fixes estimated by the filter
// smoothed: fixes from an optional offline smoothing pass; may be nil
// Longitude is plotted on the X axis and latitude on the Y axis.
// It returns error if either raw or filtered is nil or if the gonum plot
// fails to be created.
func New2DPlot(raw, filtered, smoothed []Fix) (*plot.Plot, error) {
	if raw == nil || filtered == nil {
		return nil, fmt.Errorf("invalid track data supplied")
	}

	p := plot.New()

	p.Title.Text = "GPS track"
	p.X.Label.Text = "Longitude"
	p.Y.Label.Text = "Latitude"

	legend := plot.NewLegend()
	legend.Top = true
	p.Legend = legend

	// Make a scatter plotter for raw fixes
	rawScatter, err := plotter.NewScatter(makePoints(raw))
	if err != nil {
		return nil, err
	}
	rawScatter.GlyphStyle.Color = color.RGBA{G: 255, A: 128}
	rawScatter.GlyphStyle.Radius = vg.Points(3)

	p.Add(rawScatter)
	p.Legend.Add("raw", rawScatter)

	// Make a scatter plotter for filtered fixes
	filteredScatter, err := plotter.NewScatter(makePoints(filtered))
	if err != nil {
		return nil, err
	}
	filteredScatter.GlyphStyle.Color = color.RGBA{R: 169, G: 169, B: 169}
	filteredScatter.Shape = draw.CrossGlyph{}
	filteredScatter.GlyphStyle.Radius = vg.Points(3)

	p.Add(filteredScatter)
	p.Legend.Add("filtered", filteredScatter)

	if smoothed != nil {
		smoothedScatter, err := plotter.NewScatter(makePoints(smoothed))
		if err != nil {
			return nil, err
		}
		smoothedScatter.GlyphStyle.Color = color.RGBA{R: 255, B: 128, A: 255}
		smoothedScatter.Shape = draw.PyramidGlyph{}
		smoothedScatter.GlyphStyle.Radius = vg.Points(3)

		p.Add(smoothedScatter)
		p.Legend.Add("smoothed", smoothedScatter)
	}

	return p, nil
}

func makePoints(fixes []Fix) plotter.XYs {
	pts := make(plotter.XYs, len(fixes))
	for i, f := range fixes {
		pts[i].X = f.Lon
		pts[i].Y = f.Lat
	}

	return pts
}
