// Package engine owns one game session: its caches, overlay, battle engine and sequencer
package engine

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/AnsonYua/cardGameMobile-sub001/animator"
	"github.com/AnsonYua/cardGameMobile-sub001/battle"
	"github.com/AnsonYua/cardGameMobile-sub001/board"
	"github.com/AnsonYua/cardGameMobile-sub001/cache"
	"github.com/AnsonYua/cardGameMobile-sub001/event"
	"github.com/AnsonYua/cardGameMobile-sub001/logging"
	"github.com/AnsonYua/cardGameMobile-sub001/notification"
	"github.com/AnsonYua/cardGameMobile-sub001/overlay"
	"github.com/AnsonYua/cardGameMobile-sub001/sequencer"
	"github.com/AnsonYua/cardGameMobile-sub001/stage"
	"github.com/AnsonYua/cardGameMobile-sub001/status"
	"github.com/AnsonYua/cardGameMobile-sub001/targeting"
)

// Config sizes a session
type Config struct {
	// SelfID is the local player's server id; every other id is the opponent
	SelfID            string
	ProcessedCapacity int
	Battle            battle.Config
	Animator          animator.Config
}

// DefaultConfig returns stock sizes and timings for selfID
func DefaultConfig(selfID string) Config {
	return Config{
		SelfID:            selfID,
		ProcessedCapacity: 512,
		Battle:            battle.DefaultConfig(),
		Animator:          animator.DefaultConfig(),
	}
}

// Cues is the full set of audio accents; implemented by audio.SoundManager
type Cues interface {
	battle.Cues
	animator.Cues
}

// Deps are the session's collaborators; Cues, Log and Status may be nil
type Deps struct {
	Stage  stage.Stage
	Layout board.Layout
	Clock  cache.Clock
	Cues   Cues
	Log    logrus.FieldLogger
	Status *status.Registry
}

// Session replays snapshot notifications as animations against a live board
type Session struct {
	ctx    context.Context
	cancel context.CancelFunc
	log    logrus.FieldLogger

	resolve   board.SideResolver
	layout    board.Layout
	targeting targeting.Context

	processed *cache.IdentitySet
	overlay   *overlay.Overlay
	battle    *battle.Engine
	seq       *sequencer.Sequencer[battle.View]

	mu      sync.Mutex
	live    []board.Slot
	version int64
	closed  bool
	onIdle  []func()

	applied *atomic.Int64
	ver     *status.Label
}

// NewSession wires every component; Close releases it
func NewSession(parent context.Context, cfg Config, deps Deps) *Session {
	ctx, cancel := context.WithCancel(parent)
	reg := deps.Status
	if reg == nil {
		reg = status.NewRegistry()
	}
	log := logging.OrDiscard(deps.Log).WithField("self", cfg.SelfID)
	resolve := board.SelfSide(cfg.SelfID)

	s := &Session{
		ctx:       ctx,
		cancel:    cancel,
		log:       log,
		resolve:   resolve,
		layout:    deps.Layout,
		targeting: targeting.NewContext(resolve, deps.Layout),
		processed: cache.NewIdentitySet(cfg.ProcessedCapacity),
		overlay:   overlay.New(nil, nil, nil, overlay.WithSideResolver(resolve)),
		applied:   reg.Counters.Get(status.SnapshotsApplied),
		ver:       reg.Labels.Get(status.SnapshotVersion),
	}

	var battleCues battle.Cues
	var animCues animator.Cues
	if deps.Cues != nil {
		battleCues, animCues = deps.Cues, deps.Cues
	}

	s.battle = battle.NewEngine(ctx, cfg.Battle, battle.Deps{
		Stage:   deps.Stage,
		Clock:   deps.Clock,
		Resolve: resolve,
		Cues:    battleCues,
		Log:     log.WithField("component", "battle"),
		Status:  reg,
	})

	router := animator.NewRouter(cfg.Animator, animator.Deps{
		Stage:   deps.Stage,
		Anchors: deps.Layout,
		Battle:  s.battle,
		Cues:    animCues,
		Log:     log.WithField("component", "animator"),
	})

	s.seq = sequencer.New[battle.View](ctx, s.processed, router, sequencer.Callbacks{
		OnEventStart: s.overlay.HandleEventStart,
		OnEventEnd: func(ev event.AnimationEvent, _ error) {
			s.overlay.HandleEventEnd(ev)
		},
		OnIdle: s.handleIdle,
	}, log.WithField("component", "sequencer"), reg)

	return s
}

// Apply ingests a snapshot: projects slots, orders notifications and enqueues new events
// Snapshots older than the last applied version are ignored; returns the number of queued events
func (s *Session) Apply(snap *board.Snapshot) int {
	if snap == nil {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0
	}
	if snap.Version != 0 && snap.Version < s.version {
		s.log.WithFields(logrus.Fields{"version": snap.Version, "current": s.version}).Debug("stale snapshot ignored")
		return 0
	}
	if snap.Version != 0 {
		s.version = snap.Version
	}

	prev := s.live
	curr := board.SnapshotToSlots(snap, s.resolve)
	notes := notification.Order(notification.Normalize(snap.Notifications))

	var fresh []event.AnimationEvent
	for _, ev := range event.Build(notes) {
		if !s.processed.Has(ev.ID) {
			fresh = append(fresh, ev)
		}
	}

	if len(fresh) > 0 {
		s.overlay.Merge(fresh, prev, curr)
	} else {
		s.overlay.UpdateLive(curr)
	}
	s.live = curr

	n := s.seq.Enqueue(fresh, battle.View{
		Slots:     curr,
		Previous:  prev,
		Positions: s.layout.Positions(),
		SlotSize:  s.layout.SlotSize(),
		Targeting: s.targeting,
	})
	s.battle.Sweep()

	s.applied.Add(1)
	s.ver.Store("v" + strconv.FormatInt(snap.Version, 10))
	if n > 0 {
		s.log.WithFields(logrus.Fields{"version": snap.Version, "events": n}).Debug("snapshot applied")
	}
	return n
}

// SlotsForRender returns what the board should draw now
// Overlay snapshots come first, then locked battle slots override their keys
func (s *Session) SlotsForRender() []board.Slot {
	s.mu.Lock()
	live := s.live
	s.mu.Unlock()

	slots := s.overlay.BuildSlotsForRender(live)
	locked := s.battle.LockedSlots()
	if len(locked) == 0 {
		return slots
	}

	out := make([]board.Slot, 0, len(slots)+len(locked))
	for _, sl := range slots {
		if _, ok := locked[sl.Key()]; !ok {
			out = append(out, sl)
		}
	}
	for _, sl := range locked {
		out = append(out, sl)
	}
	board.SortSlots(out)
	return out
}

// LockedSlots returns a copy of the battle engine's locked-slot map
func (s *Session) LockedSlots() map[string]board.Slot {
	return s.battle.LockedSlots()
}

// OnIdle registers fn to run whenever the animation queue drains
func (s *Session) OnIdle(fn func()) {
	s.mu.Lock()
	s.onIdle = append(s.onIdle, fn)
	s.mu.Unlock()
}

// Busy reports whether events are animating; hand and action bar stay hidden while true
func (s *Session) Busy() bool {
	return s.seq.Busy()
}

// WaitIdle blocks until both the sequencer and the battle FIFO are drained
func (s *Session) WaitIdle(ctx context.Context) error {
	if err := s.seq.WaitIdle(ctx); err != nil {
		return err
	}
	return s.battle.WaitIdle(ctx)
}

// Close stops accepting snapshots and cancels in-flight animations
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()
	s.cancel()
	return nil
}

// handleIdle drops the overlay once nothing is queued and notifies listeners
func (s *Session) handleIdle() {
	s.mu.Lock()
	if s.seq.Busy() {
		// A newer batch started between drain end and this callback
		s.mu.Unlock()
		return
	}
	s.overlay.Reset()
	s.overlay.UpdateLive(s.live)
	listeners := append([]func(){}, s.onIdle...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}
