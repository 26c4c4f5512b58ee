package viz

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	. "github.com/cloudfoundry-incubator/rendezvous/dsl"
)

var TimelineColors = []color.RGBA{
	{0, 0, 0, 255},
	{255, 0, 0, 255},
	{0, 125, 0, 255},
	{0, 0, 255, 255},
	{125, 0, 125, 255},
	{0, 125, 125, 255},
	{255, 125, 0, 255},
	{125, 125, 125, 255},
}

type timelineBar struct {
	Label string
	Depth int
	Start float64
	End   float64
}

//TimelinePlotter draws one bar per span of a Timeline, top to bottom in start order, coloured by nesting depth
type TimelinePlotter struct {
	Bars    []timelineBar
	Padding float64
}

func NewTimelinePlotter(timeline Timeline) *TimelinePlotter {
	t := &TimelinePlotter{Padding: 0.1}
	rows := map[string]int{}
	for _, line := range timeline.Lines {
		ms := float64(line.Offset.Milliseconds())
		switch line.Mark {
		case MarkStart:
			rows[line.Label] = len(t.Bars)
			t.Bars = append(t.Bars, timelineBar{Label: line.Label, Depth: line.Depth, Start: ms, End: ms})
		case MarkEnd:
			if i, ok := rows[line.Label]; ok {
				t.Bars[i].End = ms
			}
		}
	}
	return t
}

//Labels returns the bar labels bottom to top, as plot.NominalY wants them
func (t *TimelinePlotter) Labels() []string {
	labels := make([]string, len(t.Bars))
	for i, bar := range t.Bars {
		labels[len(t.Bars)-1-i] = bar.Label
	}
	return labels
}

func (t *TimelinePlotter) Plot(c draw.Canvas, p *plot.Plot) {
	trX, trY := p.Transforms(&c)
	for i, bar := range t.Bars {
		y := float64(len(t.Bars) - 1 - i)
		left, right := bar.Start, bar.End
		if right < left {
			left, right = right, left
		}
		bottom := trY(y - 0.5 + t.Padding)
		top := trY(y + 0.5 - t.Padding)
		c.FillPolygon(TimelineColors[bar.Depth%len(TimelineColors)], []vg.Point{
			{X: trX(left), Y: top},
			{X: trX(right), Y: top},
			{X: trX(right), Y: bottom},
			{X: trX(left), Y: bottom},
		})
	}
}

func (t *TimelinePlotter) DataRange() (xmin, xmax, ymin, ymax float64) {
	for _, bar := range t.Bars {
		if bar.Start < xmin {
			xmin = bar.Start
		}
		if bar.End < xmin {
			xmin = bar.End
		}
		if bar.End > xmax {
			xmax = bar.End
		}
	}
	ymin = -0.5
	ymax = float64(len(t.Bars)) - 0.5
	return
}

//PlotTimeline draws the timeline of one request
func PlotTimeline(timeline Timeline, file string) error {
	plotter := NewTimelinePlotter(timeline)

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s  %s (%dms)",
		timeline.RequestID,
		timeline.BeginsAt().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		timeline.EndsAt().Sub(timeline.BeginsAt()).Milliseconds(),
	)
	p.X.Label.Text = "ms since first event"
	p.Add(plotter)
	p.NominalY(plotter.Labels()...)

	board := NewBoard(1)
	board.AddNextSubPlot(p)

	height := 1.0 + 0.3*float64(len(plotter.Bars))
	return board.Save(10.0, height, file)
}
