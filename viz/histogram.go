package viz

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"

	. "github.com/cloudfoundry-incubator/rendezvous/dsl"
)

//NewStatsHistogram plots the power-of-two Histogram of a Stats.
//Each bin spans (previous bucket, bucket] in milliseconds and its weight is the number of requests that landed in it.
func NewStatsHistogram(stats Stats) *plotter.Histogram {
	bins := []plotter.HistogramBin{}
	for _, bucket := range stats.Histogram.Buckets {
		low := float64(bucket.Value) / 2
		if bucket.Value <= 1 {
			low = float64(bucket.Value) - 1
		}
		bins = append(bins, plotter.HistogramBin{
			Min:    low,
			Max:    float64(bucket.Value),
			Weight: float64(bucket.Count),
		})
	}

	return &plotter.Histogram{
		Bins:      bins,
		FillColor: color.RGBA{0, 0, 255, 255},
		LineStyle: plotter.DefaultLineStyle,
	}
}

//PlotReport draws one histogram per (top-level identity, child identity) pair of the report
func PlotReport(report *Report, file string) error {
	board := NewBoard(3)
	for _, entry := range report.Entries {
		for _, stats := range entry.ChildStats(report.Options.MinDuration) {
			p := plot.New()
			if stats.Name == entry.Identity {
				p.Title.Text = entry.Identity
			} else {
				p.Title.Text = fmt.Sprintf("%s\n%s", entry.Identity, stats.Name)
			}
			p.X.Label.Text = "ms"
			p.Y.Label.Text = "requests"
			p.Add(NewStatsHistogram(stats))
			p.Y.Min = 0
			p.Y.Max = float64(stats.Histogram.MaxCount()) + 1
			board.AddNextSubPlot(p)
		}
	}
	if len(board.Plots) == 0 {
		return nil
	}

	return board.Save(4.0*float64(board.Columns), 3.0*float64(board.Rows()), file)
}
