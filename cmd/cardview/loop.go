package main

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/AnsonYua/cardGameMobile-sub001/core"
	"github.com/AnsonYua/cardGameMobile-sub001/render"
)

// run multiplexes input, snapshots and frame ticks until quit or ctx ends
func (l *frameLoop) run(ctx context.Context) error {
	events := make(chan tcell.Event, 64)
	// Input polling interacts directly with the terminal
	core.Go(func() {
		for {
			ev := l.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	})

	ticker := time.NewTicker(l.cfg.FrameInterval)
	defer ticker.Stop()

	snapshots := l.snapshots
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev := <-events:
			if !l.handleEvent(ev) {
				return nil
			}

		case snap, ok := <-snapshots:
			if !ok {
				// Feed ended; keep drawing the last board
				snapshots = nil
				l.log.Info("snapshot feed closed")
				continue
			}
			if n := l.session.Apply(snap); n > 0 {
				l.log.WithField("events", n).Debug("animations queued")
			}

		case <-ticker.C:
			l.renderFrame()
		}
	}
}

// handleEvent returns false when the user quits
func (l *frameLoop) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape, ev.Key() == tcell.KeyCtrlC, ev.Rune() == 'q':
			return false
		case ev.Rune() == 'm':
			muted := l.sounds.ToggleMute()
			l.log.WithField("muted", muted).Info("audio toggled")
		case ev.Rune() == 's':
			l.statusBar.Toggle()
		}
	case *tcell.EventResize:
		l.orchestrator.Resize()
	}
	return true
}

func (l *frameLoop) renderFrame() {
	now := l.clock.Now()
	l.stage.Advance(now)
	l.orchestrator.RenderFrame(render.RenderContext{
		Now:    now,
		Layout: l.layout,
		Slots:  l.session.SlotsForRender(),
		Frame:  l.stage.Frame(now),
		Busy:   l.session.Busy(),
	})
}
