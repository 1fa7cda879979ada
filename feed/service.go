package feed

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/AnsonYua/cardGameMobile-sub001/board"
	"github.com/AnsonYua/cardGameMobile-sub001/core"
	"github.com/AnsonYua/cardGameMobile-sub001/logging"
	"github.com/AnsonYua/cardGameMobile-sub001/status"
)

// Service runs a Source as a hub-managed service
// Snapshots arrive on Snapshots(), which closes when the source ends
type Service struct {
	cfg Config
	log logrus.FieldLogger

	mu      sync.Mutex
	source  Source
	out     chan *board.Snapshot
	cancel  context.CancelFunc
	done    chan struct{}
	err     error
	stopped bool

	connected *atomic.Bool
}

// NewService creates the feed service; source may be nil to build one from cfg on Init
func NewService(cfg Config, source Source, log logrus.FieldLogger, reg *status.Registry) *Service {
	if reg == nil {
		reg = status.NewRegistry()
	}
	if cfg.Buffer <= 0 {
		cfg.Buffer = DefaultConfig().Buffer
	}
	return &Service{
		cfg:       cfg,
		source:    source,
		log:       logging.OrDiscard(log).WithFields(logrus.Fields{"component": "feed", "mode": cfg.Mode}),
		out:       make(chan *board.Snapshot, cfg.Buffer),
		connected: reg.Flags.Get(status.FeedConnected),
	}
}

func (s *Service) Name() string {
	return "feed"
}

func (s *Service) Dependencies() []string {
	return nil
}

// Init builds the configured source unless one was injected
func (s *Service) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return ErrClosed
	}
	if s.source != nil {
		return nil
	}
	src, err := NewSource(s.cfg)
	if err != nil {
		return err
	}
	s.source = src
	return ctx.Err()
}

// Start runs the source on its own goroutine
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return ErrClosed
	}
	if s.source == nil {
		return errors.New("feed: start before init")
	}
	if s.done != nil {
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	src, out, done := s.source, s.out, s.done

	s.connected.Store(true)
	core.Go(func() {
		defer close(done)
		defer close(out)
		defer s.connected.Store(false)

		err := src.Run(runCtx, out)
		if errors.Is(err, context.Canceled) {
			err = nil
		}
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()

		if err != nil {
			s.log.WithError(err).Error("feed stopped")
		} else {
			s.log.Info("feed ended")
		}
	})
	return nil
}

// Stop cancels the source and waits for it; safe to call more than once
func (s *Service) Stop() error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	return nil
}

// Snapshots is the delivery channel; closed once the source returns
func (s *Service) Snapshots() <-chan *board.Snapshot {
	return s.out
}

// Done closes when the source goroutine exits; nil before Start
func (s *Service) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// Err returns the error the source ended with, nil for a clean end or cancellation
func (s *Service) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Connected reports whether the source is running
func (s *Service) Connected() bool {
	return s.connected.Load()
}
