package render

import "github.com/lixenwraith/starfield/palette"

// Layer orders what may overwrite a cell glyph, colors always composite
type Layer uint8

const (
	LayerEmpty Layer = iota
	LayerLine
	LayerStar
	LayerText
)

// Cell is one composited terminal cell
type Cell struct {
	Rune  rune
	Fg    palette.RGB
	Bg    palette.RGB
	Layer Layer
}

// CellBuffer composites draw calls into cells before they reach the screen
type CellBuffer struct {
	cells  []Cell
	width  int
	height int
}

// NewCellBuffer creates a buffer with the specified dimensions
func NewCellBuffer(width, height int) *CellBuffer {
	b := &CellBuffer{}
	b.Resize(width, height)
	return b
}

// Resize adjusts buffer dimensions, reallocates only if capacity insufficient
func (b *CellBuffer) Resize(width, height int) {
	size := max(0, width*height)
	if cap(b.cells) < size {
		b.cells = make([]Cell, size)
	} else {
		b.cells = b.cells[:size]
	}
	b.width = width
	b.height = height
	b.Clear(palette.RGBBlack)
}

// Clear resets all cells to bg using exponential copy
func (b *CellBuffer) Clear(bg palette.RGB) {
	if len(b.cells) == 0 {
		return
	}
	b.cells[0] = Cell{Rune: ' ', Fg: bg, Bg: bg}
	for filled := 1; filled < len(b.cells); filled *= 2 {
		copy(b.cells[filled:], b.cells[:filled])
	}
}

// Size returns the buffer dimensions in cells
func (b *CellBuffer) Size() (int, int) {
	return b.width, b.height
}

func (b *CellBuffer) inBounds(x, y int) bool {
	return x >= 0 && x < b.width && y >= 0 && y < b.height
}

// Plot composites c at alpha over the cell background and keeps the brighter of old and new foreground
// The glyph changes only when layer is at least the cell's current layer
func (b *CellBuffer) Plot(x, y int, r rune, c palette.RGB, alpha float64, layer Layer) {
	if !b.inBounds(x, y) || alpha <= 0 {
		return
	}
	dst := &b.cells[y*b.width+x]

	fg := palette.Blend(dst.Bg, c, alpha)
	if dst.Layer == LayerEmpty {
		dst.Fg = fg
	} else {
		dst.Fg = palette.Max(dst.Fg, fg)
	}
	if layer >= dst.Layer {
		dst.Rune = r
		dst.Layer = layer
	}
}

// Write replaces cells with text starting at x, clipped at the right edge
func (b *CellBuffer) Write(x, y int, s string, c palette.RGB) {
	for _, r := range s {
		if b.inBounds(x, y) {
			dst := &b.cells[y*b.width+x]
			dst.Rune = r
			dst.Fg = c
			dst.Layer = LayerText
		}
		x++
	}
}

// Get returns the cell at x, y, zero Cell when out of bounds
func (b *CellBuffer) Get(x, y int) Cell {
	if !b.inBounds(x, y) {
		return Cell{}
	}
	return b.cells[y*b.width+x]
}
