package render

// IndicatorRenderer draws the attack arrow as a dotted line with a head at the target
type IndicatorRenderer struct{}

func (IndicatorRenderer) Render(ctx RenderContext, buf *RenderBuffer) {
	if !ctx.Frame.Arrow {
		return
	}
	x0, y0 := CellOf(ctx.Frame.ArrowFrom)
	x1, y1 := CellOf(ctx.Frame.ArrowTo)

	line(x0, y0, x1, y1, func(x, y int) {
		buf.SetRune(x, y, '·', RgbArrow)
	})
	buf.SetRune(x1, y1, '◆', RgbArrow)
	buf.SetBold(x1, y1, true)
}

// line walks the cells between two points (Bresenham)
func line(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
