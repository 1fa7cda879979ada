package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/AnsonYua/cardGameMobile-sub001/stage"
)

const impactRadius = 2

// EffectRenderer draws impact flashes and stat pulses
type EffectRenderer struct{}

func (EffectRenderer) Render(ctx RenderContext, buf *RenderBuffer) {
	for _, e := range ctx.Frame.Effects {
		switch e.Kind {
		case stage.EffectImpact:
			renderImpact(buf, e)
		case stage.EffectSlotPulse:
			renderSlotPulse(ctx, buf, e)
		}
	}
}

func renderImpact(buf *RenderBuffer, e EffectFrame) {
	cx, cy := CellOf(e.Point)
	fade := 1 - e.Progress
	for dy := -impactRadius; dy <= impactRadius; dy++ {
		for dx := -impactRadius * 2; dx <= impactRadius*2; dx++ {
			d := math.Hypot(float64(dx)/2, float64(dy)) / impactRadius
			if d > 1 {
				continue
			}
			buf.BlendBg(cx+dx, cy+dy, RgbImpact, fade*(1-d))
		}
	}
	buf.SetRune(cx, cy, '✸', RgbBlack)
}

func renderSlotPulse(ctx RenderContext, buf *RenderBuffer, e EffectFrame) {
	owner, slotID, ok := splitKey(e.SlotKey)
	if !ok {
		return
	}
	r, ok := ctx.Layout.SlotRect(owner, slotID)
	if !ok {
		return
	}

	tint := RgbPulseUp
	sign := "+"
	if e.Delta < 0 {
		tint, sign = RgbPulseDown, ""
	}
	alpha := math.Sin(math.Pi*e.Progress) * 0.6
	for y := r.Y; y < r.Y+r.H; y++ {
		for x := r.X; x < r.X+r.W; x++ {
			buf.BlendBg(x, y, tint, alpha)
		}
	}

	label := fmt.Sprintf("%s%d %s", sign, e.Delta, strings.ToUpper(e.Stat))
	buf.Text(r.X+max(0, (r.W-len(label))/2), r.Y-1, label, tint, r.W)
}
