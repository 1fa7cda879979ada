package render

import (
	"fmt"
	"strings"

	"github.com/AnsonYua/cardGameMobile-sub001/board"
)

// drawBox draws a single-line frame around r
func drawBox(buf *RenderBuffer, r board.Rect, fg RGB) {
	if r.W < 2 || r.H < 2 {
		return
	}
	right, bottom := r.X+r.W-1, r.Y+r.H-1
	for x := r.X + 1; x < right; x++ {
		buf.SetRune(x, r.Y, '─', fg)
		buf.SetRune(x, bottom, '─', fg)
	}
	for y := r.Y + 1; y < bottom; y++ {
		buf.SetRune(r.X, y, '│', fg)
		buf.SetRune(right, y, '│', fg)
	}
	buf.SetRune(r.X, r.Y, '┌', fg)
	buf.SetRune(right, r.Y, '┐', fg)
	buf.SetRune(r.X, bottom, '└', fg)
	buf.SetRune(right, bottom, '┘', fg)
}

// drawCard fills r with a card face: title on the first inner row, stats on the last
func drawCard(buf *RenderBuffer, r board.Rect, title, stats string, accent, text RGB) {
	buf.Fill(r.X, r.Y, r.W, r.H, Blend(RgbBackground, accent, 0.25))
	drawBox(buf, r, accent)
	inner := r.W - 2
	if inner <= 0 {
		return
	}
	buf.Text(r.X+1, r.Y+1, title, text, inner)
	if stats != "" && r.H > 3 {
		buf.Text(r.X+1+max(0, inner-len(stats)), r.Y+r.H-2, stats, text, inner)
	}
}

// slotTitle prefers the unit name, falling back to its uid
func slotTitle(s board.Slot) string {
	switch {
	case s.Unit != nil && s.Unit.Name != "":
		return s.Unit.Name
	case s.Unit != nil:
		return s.Unit.UID
	case s.Pilot != nil && s.Pilot.Name != "":
		return s.Pilot.Name
	case s.Pilot != nil:
		return s.Pilot.UID
	}
	return ""
}

func cardTitle(c board.CardView) string {
	if c.Name != "" {
		return c.Name
	}
	if c.CardID != "" {
		return c.CardID
	}
	return c.UID
}

func statLine(ap, hp int) string {
	return fmt.Sprintf("%d/%d", ap, hp)
}

// rectAt centers a size on a point
func rectAt(p board.Point, size board.Size) board.Rect {
	w, h := int(size.W), int(size.H)
	if w <= 0 || h <= 0 {
		w, h = board.SlotWidth, board.SlotHeight
	}
	x, y := CellOf(p)
	return board.Rect{X: x - w/2, Y: y - h/2, W: w, H: h}
}

// splitKey parses an "owner-slotId" key
func splitKey(key string) (board.Owner, string, bool) {
	owner, slotID, ok := strings.Cut(key, "-")
	if !ok {
		return "", "", false
	}
	return board.Owner(owner), slotID, true
}

func ownerAccent(o board.Owner) RGB {
	if o.IsOpponent() {
		return RgbOpponent
	}
	return RgbPlayerCard
}
