// Command cardview is the terminal card-game client: it replays server snapshots as board animations
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/sirupsen/logrus"

	"github.com/AnsonYua/cardGameMobile-sub001/audio"
	"github.com/AnsonYua/cardGameMobile-sub001/board"
	"github.com/AnsonYua/cardGameMobile-sub001/clock"
	"github.com/AnsonYua/cardGameMobile-sub001/config"
	"github.com/AnsonYua/cardGameMobile-sub001/core"
	"github.com/AnsonYua/cardGameMobile-sub001/engine"
	"github.com/AnsonYua/cardGameMobile-sub001/feed"
	"github.com/AnsonYua/cardGameMobile-sub001/logging"
	"github.com/AnsonYua/cardGameMobile-sub001/render"
	"github.com/AnsonYua/cardGameMobile-sub001/service"
	"github.com/AnsonYua/cardGameMobile-sub001/status"
)

func main() {
	// Ensure terminal is reset even if the client crashes
	defer func() {
		if r := recover(); r != nil {
			core.HandleCrash(r)
		}
	}()

	fs := flag.NewFlagSet("cardview", flag.ExitOnError)
	cfg, err := config.Parse(fs, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "cardview: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	log, closer, err := logging.New(cfg.Logging())
	if err != nil {
		return err
	}
	defer closer.Close()

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer screen.Fini()
	core.SetCrashHook(screen.Fini)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	reg := status.NewRegistry()
	clk := clock.NewMonotonicTimeProvider()
	layout := board.NewLayout(screen.Size())
	st := render.NewStage(clk, layout)
	sounds := audio.NewSoundManager(cfg.Audio(), log)

	session := engine.NewSession(ctx, cfg.Session(), engine.Deps{
		Stage:  st,
		Layout: layout,
		Clock:  clk,
		Cues:   sounds,
		Log:    log,
		Status: reg,
	})
	defer session.Close()
	// Runs before session.Close so blocked animations return
	defer st.Close()

	feedSvc := feed.NewService(cfg.Feed(), nil, log, reg)
	hub := service.NewHub()
	for _, svc := range []service.Service{audio.NewService(sounds), feedSvc} {
		if err := hub.Register(svc); err != nil {
			return err
		}
	}
	if err := hub.InitAll(ctx); err != nil {
		return err
	}
	if err := hub.StartAll(ctx); err != nil {
		return err
	}
	defer func() {
		if err := hub.StopAll(); err != nil {
			log.WithError(err).Warn("service shutdown")
		}
	}()

	session.OnIdle(func() { log.Debug("animation queue idle") })

	statusBar := render.NewStatusRenderer(reg)
	orchestrator := render.NewRenderOrchestrator(screen)
	orchestrator.Register(render.BoardRenderer{}, render.PriorityBoard)
	orchestrator.Register(render.HandRenderer{}, render.PriorityHand)
	orchestrator.Register(render.EffectRenderer{}, render.PriorityEffect)
	orchestrator.Register(render.SpriteRenderer{}, render.PrioritySprite)
	orchestrator.Register(render.IndicatorRenderer{}, render.PriorityIndicator)
	orchestrator.Register(statusBar, render.PriorityUI)

	loop := &frameLoop{
		cfg:          cfg,
		log:          log,
		screen:       screen,
		clock:        clk,
		layout:       layout,
		stage:        st,
		session:      session,
		orchestrator: orchestrator,
		statusBar:    statusBar,
		sounds:       sounds,
		snapshots:    feedSvc.Snapshots(),
	}
	return loop.run(ctx)
}

type frameLoop struct {
	cfg          config.Config
	log          logrus.FieldLogger
	screen       tcell.Screen
	clock        *clock.MonotonicTimeProvider
	layout       board.Layout
	stage        *render.Stage
	session      *engine.Session
	orchestrator *render.RenderOrchestrator
	statusBar    *render.StatusRenderer
	sounds       *audio.SoundManager
	snapshots    <-chan *board.Snapshot
}
