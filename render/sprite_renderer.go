package render

// SpriteRenderer draws detached card sprites at their tweened positions
type SpriteRenderer struct{}

func (SpriteRenderer) Render(ctx RenderContext, buf *RenderBuffer) {
	for _, sp := range ctx.Frame.Sprites {
		if sp.Alpha <= 0 {
			continue
		}
		r := rectAt(sp.Pos, sp.Seed.Size)
		accent := Blend(RgbBackground, ownerAccent(sp.Seed.Owner), sp.Alpha)
		text := Blend(RgbBackground, RgbCardText, sp.Alpha)
		if sp.Pulse > 0 {
			accent = Blend(accent, RgbImpact, sp.Pulse*0.6)
		}

		stats := ""
		if c := sp.Seed.Card; c.AP != 0 || c.HP != 0 {
			stats = statLine(c.AP, c.HP)
		}
		drawCard(buf, r, cardTitle(sp.Seed.Card), stats, accent, text)
		if sp.Pulse > 0.5 {
			for x := r.X; x < r.X+r.W; x++ {
				buf.SetBold(x, r.Y, true)
			}
		}
	}
}
