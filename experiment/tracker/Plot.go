package tracker

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

const (
	plotCaption = "Action-Reward Plot"
	plotWidth   = 1024 // pixels
	plotHeight  = 768  // pixels
	plotDPI     = 96
)

// SavePlot saves the accumulated reward of each tick of an episode as a
// line plot to filename. The format is chosen from the file extension.
// The y axis always includes 0.
func SavePlot(filename string, returns []float64) error {
	if len(returns) == 0 {
		return fmt.Errorf("savePlot: no data to plot")
	}

	p := plot.New()
	p.Title.Text = plotCaption
	p.X.Label.Text = "Tick"
	p.Y.Label.Text = "Accumulated Reward"

	pts := make(plotter.XYs, len(returns))
	for i, r := range returns {
		pts[i].X = float64(i)
		pts[i].Y = r
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("savePlot: could not create line: %w", err)
	}
	p.Add(line)
	p.Add(plotter.NewGrid())

	p.X.Min = 0
	p.X.Max = float64(len(returns))
	p.Y.Min = floats.Min(returns)
	if p.Y.Min > 0 {
		p.Y.Min = 0
	}
	p.Y.Max = floats.Max(returns)
	if p.Y.Max <= p.Y.Min {
		p.Y.Max = p.Y.Min + 1
	}

	width := plotWidth * vg.Inch / plotDPI
	height := plotHeight * vg.Inch / plotDPI
	if err := p.Save(width, height, filename); err != nil {
		return fmt.Errorf("savePlot: %w", err)
	}
	return nil
}
