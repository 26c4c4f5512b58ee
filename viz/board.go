package viz

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgsvg"
)

//Board lays plots out on a grid, filling rows left to right
type Board struct {
	Columns int
	Padding vg.Length
	Plots   []*plot.Plot
}

func NewBoard(columns int) *Board {
	if columns < 1 {
		columns = 1
	}
	return &Board{
		Columns: columns,
		Padding: vg.Millimeter * 4,
	}
}

func (b *Board) AddNextSubPlot(p *plot.Plot) {
	b.Plots = append(b.Plots, p)
}

//Rows returns the number of rows the plots need
func (b *Board) Rows() int {
	return (len(b.Plots) + b.Columns - 1) / b.Columns
}

func (b *Board) grid() [][]*plot.Plot {
	rows := make([][]*plot.Plot, b.Rows())
	for j := range rows {
		rows[j] = make([]*plot.Plot, b.Columns)
	}
	for n, p := range b.Plots {
		rows[n/b.Columns][n%b.Columns] = p
	}
	return rows
}

//Save renders the board to file; the extension (.svg or .png) picks the format.  width and height are in inches.
func (b *Board) Save(width, height float64, file string) (err error) {
	if len(b.Plots) == 0 {
		return fmt.Errorf("nothing to plot")
	}

	w, h := vg.Length(width)*vg.Inch, vg.Length(height)*vg.Inch
	var c interface {
		vg.CanvasSizer
		io.WriterTo
	}
	switch ext := strings.ToLower(filepath.Ext(file)); ext {
	case ".svg":
		c = vgsvg.New(w, h)
	case ".png":
		c = vgimg.PngCanvas{Canvas: vgimg.New(w, h)}
	default:
		return fmt.Errorf("Unsupported file extension: %s", ext)
	}

	tiles := draw.Tiles{
		Rows:      b.Rows(),
		Cols:      b.Columns,
		PadX:      b.Padding,
		PadY:      b.Padding,
		PadTop:    b.Padding,
		PadBottom: b.Padding,
		PadLeft:   b.Padding,
		PadRight:  b.Padding,
	}

	grid := b.grid()
	canvases := plot.Align(grid, tiles, draw.New(c))
	for j := range grid {
		for i, p := range grid[j] {
			if p != nil {
				p.Draw(canvases[j][i])
			}
		}
	}

	f, err := os.Create(file)
	if err != nil {
		return err
	}
	if _, err = c.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
