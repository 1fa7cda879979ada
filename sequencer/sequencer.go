// Package sequencer plays animation events one at a time in enqueue order
package sequencer

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/AnsonYua/cardGameMobile-sub001/cache"
	"github.com/AnsonYua/cardGameMobile-sub001/core"
	"github.com/AnsonYua/cardGameMobile-sub001/event"
	"github.com/AnsonYua/cardGameMobile-sub001/logging"
	"github.com/AnsonYua/cardGameMobile-sub001/status"
)

// State is the drain state of a Sequencer
type State int32

const (
	Idle State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "idle"
}

// Runner executes one event's visual routine
type Runner[T any] interface {
	Run(ctx context.Context, batch T, ev event.AnimationEvent) error
}

// RunnerFunc adapts a function to Runner
type RunnerFunc[T any] func(ctx context.Context, batch T, ev event.AnimationEvent) error

func (f RunnerFunc[T]) Run(ctx context.Context, batch T, ev event.AnimationEvent) error {
	return f(ctx, batch, ev)
}

// Callbacks are invoked from the drain goroutine
// Any of them may be nil
type Callbacks struct {
	OnEventStart func(ev event.AnimationEvent)
	// OnEventEnd receives the routine error, nil on success
	OnEventEnd func(ev event.AnimationEvent, err error)
	// OnIdle fires after the queue empties and State reports Idle
	OnIdle func()
}

type item[T any] struct {
	ev    event.AnimationEvent
	batch T
}

// Sequencer is a FIFO of animation events drained by a single goroutine
type Sequencer[T any] struct {
	ctx       context.Context
	processed *cache.IdentitySet
	runner    Runner[T]
	cb        Callbacks
	log       logrus.FieldLogger

	mu      sync.Mutex
	queue   []item[T]
	running bool
	idle    chan struct{} // Closed when the drain stops

	animated  *atomic.Int64
	failed    *atomic.Int64
	duplicate *atomic.Int64
	queued    *atomic.Int64
	busy      *atomic.Bool
	last      *status.Label
}

// New creates an idle sequencer
// ctx bounds every routine; processed is the idempotence cache; reg may be nil
func New[T any](
	ctx context.Context,
	processed *cache.IdentitySet,
	runner Runner[T],
	cb Callbacks,
	log logrus.FieldLogger,
	reg *status.Registry,
) *Sequencer[T] {
	if reg == nil {
		reg = status.NewRegistry()
	}
	idle := make(chan struct{})
	close(idle)
	return &Sequencer[T]{
		ctx:       ctx,
		processed: processed,
		runner:    runner,
		cb:        cb,
		log:       logging.OrDiscard(log),
		idle:      idle,
		animated:  reg.Counters.Get(status.EventsAnimated),
		failed:    reg.Counters.Get(status.EventsFailed),
		duplicate: reg.Counters.Get(status.EventsDuplicate),
		queued:    reg.Counters.Get(status.EventsQueued),
		busy:      reg.Flags.Get(status.SequencerRunning),
		last:      reg.Labels.Get(status.LastEventType),
	}
}

// Enqueue appends events whose ids were never processed and starts a drain if idle
// Ids are marked processed on acceptance so a repeated batch cannot queue them twice
// Returns the number of accepted events
func (s *Sequencer[T]) Enqueue(events []event.AnimationEvent, batch T) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	accepted := 0
	for _, ev := range events {
		if ev.ID == "" {
			continue
		}
		if !s.processed.AddIfAbsent(ev.ID) {
			s.duplicate.Add(1)
			continue
		}
		s.queue = append(s.queue, item[T]{ev: ev, batch: batch})
		accepted++
	}
	s.queued.Store(int64(len(s.queue)))

	if accepted > 0 && !s.running {
		s.running = true
		s.idle = make(chan struct{})
		s.busy.Store(true)
		core.Go(s.drain)
	}
	return accepted
}

// State reports whether a drain is in progress
func (s *Sequencer[T]) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return Running
	}
	return Idle
}

// Busy reports Running
func (s *Sequencer[T]) Busy() bool {
	return s.State() == Running
}

// Pending returns the number of events waiting to start
func (s *Sequencer[T]) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// WaitIdle blocks until the queue drains or ctx is done
func (s *Sequencer[T]) WaitIdle(ctx context.Context) error {
	s.mu.Lock()
	ch := s.idle
	s.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Sequencer[T]) drain() {
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.running = false
			s.busy.Store(false)
			close(s.idle)
			s.mu.Unlock()
			s.safeCall("idle", func() {
				if s.cb.OnIdle != nil {
					s.cb.OnIdle()
				}
			})
			return
		}
		it := s.queue[0]
		s.queue[0] = item[T]{}
		s.queue = s.queue[1:]
		s.queued.Store(int64(len(s.queue)))
		s.mu.Unlock()

		s.runOne(it)
	}
}

// runOne plays a single event; failures stop at this boundary
func (s *Sequencer[T]) runOne(it item[T]) {
	ev := it.ev
	log := s.log.WithFields(logrus.Fields{"event": ev.ID, "type": ev.Type})
	s.last.Store(string(ev.Type))

	s.safeCall("event start", func() {
		if s.cb.OnEventStart != nil {
			s.cb.OnEventStart(ev)
		}
	})

	err := s.runGuarded(it)
	if err != nil {
		s.failed.Add(1)
		log.WithError(err).Warn("animation failed")
	} else {
		s.animated.Add(1)
		log.Debug("animation done")
	}

	s.safeCall("event end", func() {
		if s.cb.OnEventEnd != nil {
			s.cb.OnEventEnd(ev, err)
		}
	})
}

func (s *Sequencer[T]) runGuarded(it item[T]) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("animation panic: %v", r)
			s.log.WithField("event", it.ev.ID).Debugf("panic stack:\n%s", debug.Stack())
		}
	}()
	if err := s.ctx.Err(); err != nil {
		return err
	}
	return s.runner.Run(s.ctx, it.batch, it.ev)
}

func (s *Sequencer[T]) safeCall(stage string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.log.WithField("callback", stage).Errorf("callback panic: %v", r)
		}
	}()
	fn()
}
