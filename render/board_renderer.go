package render

import "github.com/AnsonYua/cardGameMobile-sub001/board"

// BoardRenderer draws both slot rows plus the base and shield zones
// Slots the stage hid, or that the overlay omitted, draw as empty frames
type BoardRenderer struct{}

func (BoardRenderer) Render(ctx RenderContext, buf *RenderBuffer) {
	l := ctx.Layout
	bySlot := make(map[string]board.Slot, len(ctx.Slots))
	for _, s := range ctx.Slots {
		bySlot[s.Key()] = s
	}

	for _, owner := range []board.Owner{board.OwnerOpponent, board.OwnerPlayer} {
		zoneLabel(buf, l.BaseRect(owner.IsOpponent()), "BASE")
		zoneLabel(buf, l.ShieldRect(owner.IsOpponent()), "SHIELD")

		for i := 1; i <= board.SlotsPerSide; i++ {
			id := board.SlotID(i)
			r, _ := l.SlotRect(owner, id)
			key := board.Key(owner, id)

			s, ok := bySlot[key]
			if !ok || s.IsEmpty() || ctx.Frame.SlotHidden(key) {
				drawBox(buf, r, RgbSlotEmpty)
				continue
			}

			accent := ownerAccent(owner)
			if s.IsRested {
				accent = RgbRested
			}
			ap, hp := s.AP, s.HP
			if s.FieldCardValue != nil {
				ap, hp = s.FieldCardValue.TotalAP, s.FieldCardValue.TotalHP
			}
			drawCard(buf, r, slotTitle(s), statLine(ap, hp), accent, RgbCardText)
		}
	}
}

func zoneLabel(buf *RenderBuffer, r board.Rect, label string) {
	drawBox(buf, r, RgbSlotFrame)
	buf.Text(r.X+max(1, (r.W-len(label))/2), r.Y+r.H/2, label, RgbZoneLabel, r.W-2)
}

// HandRenderer draws the hand and action bar, hidden while animations play
type HandRenderer struct{}

func (HandRenderer) Render(ctx RenderContext, buf *RenderBuffer) {
	if ctx.Busy {
		return
	}
	p, ok := ctx.Layout.HandAnchor(false)
	if !ok {
		return
	}
	w, _ := board.MinSize()
	_, y := CellOf(p)
	x := ctx.Layout.OriginX
	buf.Fill(x, y, w, 1, RgbHandBar)
	buf.Text(x+1, y, "HAND", RgbHandText, 0)
	label := "[a]ttack  [p]lay  [e]nd"
	buf.Text(x+w-len(label)-1, y, label, RgbHandText, 0)
}
