package tracker

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// Series is a named sequence of episodic returns
type Series struct {
	Name    string
	Returns []float64
}

// SaveReturnChart renders the episodic returns of each series as an
// interactive HTML line chart
func SaveReturnChart(filename, title string, series ...Series) error {
	episodes := 0
	for _, s := range series {
		if len(s.Returns) > episodes {
			episodes = len(s.Returns)
		}
	}

	x := make([]string, episodes)
	for i := range x {
		x[i] = strconv.Itoa(i)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithInitializationOpts(opts.Initialization{Theme: "shine"}),
	)
	line.SetXAxis(x)
	for _, s := range series {
		items := make([]opts.LineData, len(s.Returns))
		for i, r := range s.Returns {
			items[i] = opts.LineData{Value: r}
		}
		line.AddSeries(s.Name, items)
	}

	page := components.NewPage()
	page.AddCharts(line)

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("saveReturnChart: could not open chart file: %w",
			err)
	}
	defer file.Close()

	if err := page.Render(file); err != nil {
		return fmt.Errorf("saveReturnChart: %w", err)
	}
	return nil
}
