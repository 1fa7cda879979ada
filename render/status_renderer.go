package render

import (
	"strings"
	"sync/atomic"

	"github.com/AnsonYua/cardGameMobile-sub001/status"
)

// StatusRenderer draws registry metrics on the last screen row
type StatusRenderer struct {
	Registry *status.Registry
	hidden   atomic.Bool
}

// NewStatusRenderer creates a visible status bar over reg
func NewStatusRenderer(reg *status.Registry) *StatusRenderer {
	return &StatusRenderer{Registry: reg}
}

func (r *StatusRenderer) IsVisible() bool { return !r.hidden.Load() }

// Toggle flips status bar visibility
func (r *StatusRenderer) Toggle() {
	for {
		old := r.hidden.Load()
		if r.hidden.CompareAndSwap(old, !old) {
			return
		}
	}
}

func (r *StatusRenderer) Render(ctx RenderContext, buf *RenderBuffer) {
	if r.Registry == nil || ctx.ScreenHeight == 0 {
		return
	}
	y := ctx.ScreenHeight - 1
	buf.Fill(0, y, ctx.ScreenWidth, 1, RgbStatusBar)
	buf.Text(1, y, strings.Join(r.Registry.Lines(), "  "), RgbStatusText, ctx.ScreenWidth-2)
}
