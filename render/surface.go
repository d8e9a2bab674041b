package render

import "github.com/lixenwraith/starfield/palette"

// Surface is a frame target in virtual pixel coordinates, origin top-left
type Surface interface {
	// Size returns the drawable canvas in virtual pixels
	Size() (width, height float64)
	Clear(bg palette.RGB)
	FillCircle(x, y, r float64, c palette.RGB, alpha float64)
	StrokeLine(x0, y0, x1, y1, width float64, c palette.RGB, alpha float64)
	// Text writes an overlay line in viewport cell coordinates
	Text(col, row int, s string, c palette.RGB)
	Show()
}

// Recorder is a headless Surface that counts primitives
type Recorder struct {
	Width, Height float64

	Clears  int
	Circles int
	Lines   int
	Shows   int
	Texts   []string
	LastBg  palette.RGB
}

// NewRecorder creates a recorder with a fixed canvas size
func NewRecorder(width, height float64) *Recorder {
	return &Recorder{Width: width, Height: height}
}

func (r *Recorder) Size() (float64, float64) { return r.Width, r.Height }

func (r *Recorder) Clear(bg palette.RGB) {
	r.Clears++
	r.LastBg = bg
	r.Circles, r.Lines = 0, 0
	r.Texts = r.Texts[:0]
}

func (r *Recorder) FillCircle(x, y, radius float64, c palette.RGB, alpha float64) {
	r.Circles++
}

func (r *Recorder) StrokeLine(x0, y0, x1, y1, width float64, c palette.RGB, alpha float64) {
	r.Lines++
}

func (r *Recorder) Text(col, row int, s string, c palette.RGB) {
	r.Texts = append(r.Texts, s)
}

func (r *Recorder) Show() { r.Shows++ }
