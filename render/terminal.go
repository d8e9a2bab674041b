package render

import (
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/starfield/palette"
)

// Virtual pixels per terminal cell, cells are roughly twice as tall as wide
const (
	CellWidth  = 12
	CellHeight = 24
)

const (
	starRune = '•'
	lineRune = '·'
)

// Terminal is a Surface on a tcell screen
// The canvas is square, max(width, height) virtual pixels per side, centered on the viewport
type Terminal struct {
	screen tcell.Screen
	buf    *CellBuffer

	cols, rows int
	side       float64
	offX, offY float64 // canvas origin relative to the viewport, in virtual pixels
}

// NewTerminal wraps an initialized screen
func NewTerminal(screen tcell.Screen) *Terminal {
	t := &Terminal{
		screen: screen,
		buf:    NewCellBuffer(0, 0),
	}
	t.Resize()
	return t
}

// Resize re-reads the screen size, returns true when it changed
func (t *Terminal) Resize() bool {
	cols, rows := t.screen.Size()
	if cols == t.cols && rows == t.rows && t.side > 0 {
		return false
	}
	t.cols, t.rows = cols, rows
	t.buf.Resize(cols, rows)

	vw := float64(cols * CellWidth)
	vh := float64(rows * CellHeight)
	t.side = max(vw, vh)
	t.offX = (t.side - vw) / 2
	t.offY = (t.side - vh) / 2
	return true
}

// Cells returns the viewport size in cells
func (t *Terminal) Cells() (int, int) {
	return t.cols, t.rows
}

func (t *Terminal) Size() (float64, float64) {
	return t.side, t.side
}

// cell maps a canvas point to the viewport cell containing it
func (t *Terminal) cell(x, y float64) (int, int) {
	return int(math.Floor((x - t.offX) / CellWidth)), int(math.Floor((y - t.offY) / CellHeight))
}

func (t *Terminal) Clear(bg palette.RGB) {
	t.buf.Clear(bg)
}

// FillCircle marks every cell whose center lies inside the circle, and always the cell holding the center
func (t *Terminal) FillCircle(x, y, r float64, c palette.RGB, alpha float64) {
	cx, cy := t.cell(x, y)
	t.buf.Plot(cx, cy, starRune, c, alpha, LayerStar)
	if r < CellWidth/2 {
		return
	}

	c0, r0 := t.cell(x-r, y-r)
	c1, r1 := t.cell(x+r, y+r)
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			if col == cx && row == cy {
				continue
			}
			px := t.offX + (float64(col)+0.5)*CellWidth
			py := t.offY + (float64(row)+0.5)*CellHeight
			if math.Hypot(px-x, py-y) <= r {
				t.buf.Plot(col, row, starRune, c, alpha, LayerStar)
			}
		}
	}
}

// StrokeLine walks the cells between both ends, width is implied by the cell size
func (t *Terminal) StrokeLine(x0, y0, x1, y1, width float64, c palette.RGB, alpha float64) {
	c0, r0 := t.cell(x0, y0)
	c1, r1 := t.cell(x1, y1)
	steps := max(abs(c1-c0), abs(r1-r0))
	if steps == 0 {
		t.buf.Plot(c0, r0, lineRune, c, alpha, LayerLine)
		return
	}
	dc := float64(c1-c0) / float64(steps)
	dr := float64(r1-r0) / float64(steps)
	for i := 0; i <= steps; i++ {
		col := c0 + int(math.Round(dc*float64(i)))
		row := r0 + int(math.Round(dr*float64(i)))
		t.buf.Plot(col, row, lineRune, c, alpha, LayerLine)
	}
}

func (t *Terminal) Text(col, row int, s string, c palette.RGB) {
	t.buf.Write(col, row, s, c)
}

// Show flushes the composited buffer to the screen
func (t *Terminal) Show() {
	for row := 0; row < t.rows; row++ {
		for col := 0; col < t.cols; col++ {
			cell := t.buf.Get(col, row)
			style := tcell.StyleDefault.Foreground(color(cell.Fg)).Background(color(cell.Bg))
			t.screen.SetContent(col, row, cell.Rune, nil, style)
		}
	}
	t.screen.Show()
}

func color(c palette.RGB) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
