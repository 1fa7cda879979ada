package render

import (
	"math"
	"time"

	"github.com/AnsonYua/cardGameMobile-sub001/board"
)

// RenderContext provides frame state for renderers, passed by value
type RenderContext struct {
	Now    time.Time
	Layout board.Layout

	// Slots is what the board draws this frame, overlay and locks already applied
	Slots []board.Slot
	// Frame is the stage state sampled at Now
	Frame Frame
	// Busy hides the hand and action bar while animations play
	Busy bool

	ScreenWidth  int
	ScreenHeight int
}

// CellOf rounds a board point to the nearest cell
func CellOf(p board.Point) (int, int) {
	return int(math.Round(p.X)), int(math.Round(p.Y))
}
