package board

import "strconv"

// Terminal board geometry, all values in cells
const (
	SlotsPerSide = 6
	SlotWidth    = 12
	SlotHeight   = 5
	SlotGap      = 1
	SideColumn   = 12 // Base on the left, shield stack on the right

	boardWidth     = SideColumn*2 + SlotsPerSide*(SlotWidth+SlotGap)
	opponentRowTop = 2
	playerRowTop   = opponentRowTop + SlotHeight + 3
	handRowGap     = 1
)

// Positions maps slot keys to the screen point a slot's card is drawn at
type Positions map[string]Point

// Rect is an integer cell rectangle
type Rect struct {
	X, Y, W, H int
}

// Center returns the rectangle's center point
func (r Rect) Center() Point {
	return Point{X: float64(r.X) + float64(r.W)/2, Y: float64(r.Y) + float64(r.H)/2}
}

// Contains reports whether the cell lies inside the rectangle
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Layout places slots and zone anchors on the terminal
// Opponent row on top, player row below, hands outside, command zone between
type Layout struct {
	OriginX int
	OriginY int
}

// NewLayout centers the board inside the given screen, pinned to the top-left when too small
func NewLayout(screenWidth, screenHeight int) Layout {
	minW, minH := MinSize()
	return Layout{
		OriginX: max(0, (screenWidth-minW)/2),
		OriginY: max(0, (screenHeight-minH)/2),
	}
}

// MinSize returns the smallest screen the layout fits in, status row included
func MinSize() (int, int) {
	return boardWidth, playerRowTop + SlotHeight + handRowGap + 2
}

func (l Layout) rowTop(owner Owner) int {
	if owner.IsOpponent() {
		return l.OriginY + opponentRowTop
	}
	return l.OriginY + playerRowTop
}

// SlotRect returns the cell rectangle of a slot
func (l Layout) SlotRect(owner Owner, slotID string) (Rect, bool) {
	idx, ok := SlotIndex(slotID)
	if !ok || idx > SlotsPerSide {
		return Rect{}, false
	}
	return Rect{
		X: l.OriginX + SideColumn + (idx-1)*(SlotWidth+SlotGap),
		Y: l.rowTop(owner),
		W: SlotWidth,
		H: SlotHeight,
	}, true
}

// SlotSize returns the size of one slot cell
func (l Layout) SlotSize() Size {
	return Size{W: SlotWidth, H: SlotHeight}
}

// BaseRect returns the base zone rectangle of a side
func (l Layout) BaseRect(isOpponent bool) Rect {
	return Rect{X: l.OriginX, Y: l.rowTop(sideOf(isOpponent)), W: SideColumn - SlotGap, H: SlotHeight}
}

// ShieldRect returns the shield stack rectangle of a side
func (l Layout) ShieldRect(isOpponent bool) Rect {
	return Rect{
		X: l.OriginX + SideColumn + SlotsPerSide*(SlotWidth+SlotGap),
		Y: l.rowTop(sideOf(isOpponent)),
		W: SideColumn - SlotGap,
		H: SlotHeight,
	}
}

// BaseAnchor returns the base zone center of a side
func (l Layout) BaseAnchor(isOpponent bool) (Point, bool) {
	return l.BaseRect(isOpponent).Center(), true
}

// ShieldAnchor returns the shield stack center of a side
func (l Layout) ShieldAnchor(isOpponent bool) (Point, bool) {
	return l.ShieldRect(isOpponent).Center(), true
}

// CommandAnchor returns the point command cards fly to, in the gap between rows
func (l Layout) CommandAnchor(isOpponent bool) (Point, bool) {
	y := l.OriginY + opponentRowTop + SlotHeight + 1
	if !isOpponent {
		y++
	}
	return Point{X: float64(l.OriginX + boardWidth/2), Y: float64(y)}, true
}

// HandAnchor returns the point played cards start from
func (l Layout) HandAnchor(isOpponent bool) (Point, bool) {
	y := l.OriginY + opponentRowTop - handRowGap - 1
	if !isOpponent {
		y = l.OriginY + playerRowTop + SlotHeight + handRowGap
	}
	return Point{X: float64(l.OriginX + boardWidth/2), Y: float64(y)}, true
}

// Positions returns the center of every slot on both sides
func (l Layout) Positions() Positions {
	pos := make(Positions, SlotsPerSide*2)
	for _, owner := range []Owner{OwnerPlayer, OwnerOpponent} {
		for i := 1; i <= SlotsPerSide; i++ {
			id := SlotID(i)
			r, _ := l.SlotRect(owner, id)
			pos[Key(owner, id)] = r.Center()
		}
	}
	return pos
}

// SlotID formats a 1-based slot index
func SlotID(index int) string {
	return "slot" + strconv.Itoa(index)
}

func sideOf(isOpponent bool) Owner {
	if isOpponent {
		return OwnerOpponent
	}
	return OwnerPlayer
}
