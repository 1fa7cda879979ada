package main

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/AnsonYua/cardGameMobile-sub001/audio"
	"github.com/AnsonYua/cardGameMobile-sub001/board"
	"github.com/AnsonYua/cardGameMobile-sub001/clock"
	"github.com/AnsonYua/cardGameMobile-sub001/config"
	"github.com/AnsonYua/cardGameMobile-sub001/engine"
	"github.com/AnsonYua/cardGameMobile-sub001/logging"
	"github.com/AnsonYua/cardGameMobile-sub001/render"
	"github.com/AnsonYua/cardGameMobile-sub001/status"
)

func newTestLoop(t *testing.T, snapshots <-chan *board.Snapshot) (*frameLoop, tcell.SimulationScreen) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("init screen: %v", err)
	}
	screen.SetSize(120, 40)
	t.Cleanup(screen.Fini)

	reg := status.NewRegistry()
	clk := clock.NewMonotonicTimeProvider()
	layout := board.NewLayout(120, 40)
	st := render.NewStage(clk, layout)
	sounds := audio.NewSoundManager(audio.DefaultConfig(), nil)

	session := engine.NewSession(context.Background(), engine.DefaultConfig("p1"), engine.Deps{
		Stage:  st,
		Layout: layout,
		Clock:  clk,
		Cues:   sounds,
		Status: reg,
	})
	t.Cleanup(func() {
		st.Close()
		session.Close()
	})

	statusBar := render.NewStatusRenderer(reg)
	o := render.NewRenderOrchestrator(screen)
	o.Register(render.BoardRenderer{}, render.PriorityBoard)
	o.Register(statusBar, render.PriorityUI)

	return &frameLoop{
		cfg:          config.Config{FrameInterval: time.Millisecond},
		log:          logging.Discard(),
		screen:       screen,
		clock:        clk,
		layout:       layout,
		stage:        st,
		session:      session,
		orchestrator: o,
		statusBar:    statusBar,
		sounds:       sounds,
		snapshots:    snapshots,
	}, screen
}

func screenText(screen tcell.Screen) string {
	w, h := screen.Size()
	var sb strings.Builder
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, _, _, _ := screen.GetContent(x, y)
			sb.WriteRune(r)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func zakuSnapshot() *board.Snapshot {
	return &board.Snapshot{
		GameID:  "g1",
		Version: 1,
		Players: map[string]board.PlayerState{
			"p1": {Zones: map[string]board.ZoneState{
				"slot1": {Unit: &board.CardView{UID: "U1", Name: "Zaku", AP: 3, HP: 4}},
			}},
		},
	}
}

func TestRenderFrameDrawsLiveBoard(t *testing.T) {
	loop, screen := newTestLoop(t, nil)
	loop.session.Apply(zakuSnapshot())
	loop.renderFrame()

	if !strings.Contains(screenText(screen), "Zaku") {
		t.Error("expected the applied card on screen")
	}
}

func TestHandleResizeKeepsRunning(t *testing.T) {
	loop, _ := newTestLoop(t, nil)
	if !loop.handleEvent(tcell.NewEventResize(100, 30)) {
		t.Error("resize must not stop the loop")
	}
}

func TestRunAppliesSnapshotsUntilCancelled(t *testing.T) {
	snaps := make(chan *board.Snapshot, 1)
	loop, screen := newTestLoop(t, snaps)
	snaps <- zakuSnapshot()
	close(snaps)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- loop.run(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for !strings.Contains(screenText(screen), "Zaku") {
		if time.Now().After(deadline) {
			cancel()
			t.Fatal("snapshot never reached the screen")
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("run did not return after cancel")
	}
}
