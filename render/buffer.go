package render

import (
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// Cell is one composited screen cell
type Cell struct {
	Rune rune
	Fg   RGB
	Bg   RGB
	Bold bool
}

// RenderBuffer is the per-frame compositor renderers draw into
type RenderBuffer struct {
	cells  []Cell
	width  int
	height int
}

// NewRenderBuffer creates a buffer with the specified dimensions
func NewRenderBuffer(width, height int) *RenderBuffer {
	b := &RenderBuffer{}
	b.Resize(width, height)
	return b
}

// Resize adjusts buffer dimensions, reallocates only if capacity insufficient
func (b *RenderBuffer) Resize(width, height int) {
	width, height = max(0, width), max(0, height)
	size := width * height
	if cap(b.cells) < size {
		b.cells = make([]Cell, size)
	} else {
		b.cells = b.cells[:size]
	}
	b.width = width
	b.height = height
	b.Clear()
}

// Clear resets all cells to the background using exponential copy
func (b *RenderBuffer) Clear() {
	if len(b.cells) == 0 {
		return
	}
	b.cells[0] = Cell{Rune: ' ', Fg: RgbCardText, Bg: RgbBackground}
	for filled := 1; filled < len(b.cells); filled *= 2 {
		copy(b.cells[filled:], b.cells[:filled])
	}
}

// Bounds returns the buffer dimensions
func (b *RenderBuffer) Bounds() (int, int) {
	return b.width, b.height
}

func (b *RenderBuffer) inBounds(x, y int) bool {
	return x >= 0 && x < b.width && y >= 0 && y < b.height
}

// Get returns the cell at x,y; out of bounds returns the zero cell
func (b *RenderBuffer) Get(x, y int) Cell {
	if !b.inBounds(x, y) {
		return Cell{}
	}
	return b.cells[y*b.width+x]
}

// Set replaces rune and colors of one cell
func (b *RenderBuffer) Set(x, y int, r rune, fg, bg RGB) {
	if !b.inBounds(x, y) {
		return
	}
	b.cells[y*b.width+x] = Cell{Rune: r, Fg: fg, Bg: bg}
}

// SetRune changes the rune and foreground, keeping the background
func (b *RenderBuffer) SetRune(x, y int, r rune, fg RGB) {
	if !b.inBounds(x, y) {
		return
	}
	c := &b.cells[y*b.width+x]
	c.Rune = r
	c.Fg = fg
}

// BlendBg mixes bg into the cell background with alpha
func (b *RenderBuffer) BlendBg(x, y int, bg RGB, alpha float64) {
	if !b.inBounds(x, y) {
		return
	}
	c := &b.cells[y*b.width+x]
	c.Bg = Blend(c.Bg, bg, alpha)
}

// SetBold toggles the bold attribute of a cell
func (b *RenderBuffer) SetBold(x, y int, bold bool) {
	if !b.inBounds(x, y) {
		return
	}
	b.cells[y*b.width+x].Bold = bold
}

// Text writes s starting at x,y, clipped at maxW cells when maxW > 0; returns the cells used
func (b *RenderBuffer) Text(x, y int, s string, fg RGB, maxW int) int {
	used := 0
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if maxW > 0 && used+w > maxW {
			break
		}
		b.SetRune(x+used, y, r, fg)
		used += w
	}
	return used
}

// Fill paints the background of a rectangle
func (b *RenderBuffer) Fill(x, y, w, h int, bg RGB) {
	for dy := 0; dy < h; dy++ {
		for dx := 0; dx < w; dx++ {
			if b.inBounds(x+dx, y+dy) {
				c := &b.cells[(y+dy)*b.width+x+dx]
				c.Rune = ' '
				c.Bg = bg
			}
		}
	}
}

// FlushToScreen copies every cell to the tcell screen
func (b *RenderBuffer) FlushToScreen(screen tcell.Screen) {
	for y := 0; y < b.height; y++ {
		row := b.cells[y*b.width : (y+1)*b.width]
		for x, c := range row {
			r := c.Rune
			if r == 0 {
				r = ' '
			}
			style := tcell.StyleDefault.Foreground(c.Fg.Color()).Background(c.Bg.Color()).Bold(c.Bold)
			screen.SetContent(x, y, r, nil, style)
		}
	}
}
