package audio

import (
	"context"
	"sync/atomic"
)

// Service wraps SoundManager as a service.Service
// A machine without an audio backend degrades to silence instead of failing startup
type Service struct {
	sm       *SoundManager
	disabled atomic.Bool
}

// NewService creates the audio service around sm
func NewService(sm *SoundManager) *Service {
	return &Service{sm: sm}
}

func (s *Service) Name() string {
	return "audio"
}

func (s *Service) Dependencies() []string {
	return nil
}

// Init leaves the speaker closed when the config disables audio
func (s *Service) Init(ctx context.Context) error {
	if !s.sm.cfg.Enabled {
		s.disabled.Store(true)
	}
	return ctx.Err()
}

// Start opens the speaker; failure disables audio and is logged, not returned
func (s *Service) Start(ctx context.Context) error {
	if s.disabled.Load() {
		return nil
	}
	if err := s.sm.Initialize(); err != nil {
		s.sm.log.WithError(err).Warn("audio backend unavailable, continuing muted")
		s.disabled.Store(true)
	}
	return nil
}

func (s *Service) Stop() error {
	s.sm.Cleanup()
	return nil
}

// IsDisabled reports whether audio is unavailable
func (s *Service) IsDisabled() bool {
	return s.disabled.Load()
}

// Manager returns the wrapped sound manager; its Play calls are safe even when disabled
func (s *Service) Manager() *SoundManager {
	return s.sm
}
