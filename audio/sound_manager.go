// Package audio plays the short synthesized cues that accent battle and board animations
package audio

import (
	"fmt"
	"math"
	"sync"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
	"github.com/sirupsen/logrus"

	"github.com/AnsonYua/cardGameMobile-sub001/logging"
)

// SoundManager owns the speaker and a mixer every cue is added to
// Every Play call is safe before Initialize and after Cleanup
type SoundManager struct {
	mu          sync.Mutex
	cfg         Config
	sampleRate  beep.SampleRate
	mixer       *beep.Mixer
	initialized bool
	muted       bool
	played      map[Cue]int
	log         logrus.FieldLogger
}

// NewSoundManager creates a sound manager; log may be nil
func NewSoundManager(cfg Config, log logrus.FieldLogger) *SoundManager {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = DefaultConfig().SampleRate
	}
	if cfg.Buffer <= 0 {
		cfg.Buffer = DefaultConfig().Buffer
	}
	return &SoundManager{
		cfg:        cfg,
		sampleRate: beep.SampleRate(cfg.SampleRate),
		mixer:      &beep.Mixer{},
		muted:      !cfg.Enabled,
		played:     make(map[Cue]int),
		log:        logging.OrDiscard(log).WithField("component", "audio"),
	}
}

// Initialize opens the speaker and starts the mixer
func (sm *SoundManager) Initialize() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}
	if err := speaker.Init(sm.sampleRate, sm.sampleRate.N(sm.cfg.Buffer)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}
	speaker.Play(sm.mixer)
	sm.initialized = true
	return nil
}

// Cleanup stops all sounds and closes the speaker
func (sm *SoundManager) Cleanup() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}
	speaker.Lock()
	sm.mixer.Clear()
	speaker.Unlock()
	speaker.Close()
	sm.initialized = false
}

func (sm *SoundManager) PlayImpact()     { sm.play(CueImpact) }
func (sm *SoundManager) PlayDestroy()    { sm.play(CueDestroy) }
func (sm *SoundManager) PlayCardPlayed() { sm.play(CueCardPlayed) }
func (sm *SoundManager) PlayPulse()      { sm.play(CuePulse) }

// ToggleMute flips the mute state and returns the new value
func (sm *SoundManager) ToggleMute() bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.muted = !sm.muted
	return sm.muted
}

// IsMuted reports whether cues are suppressed
func (sm *SoundManager) IsMuted() bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.muted
}

// Played returns how many times a cue reached the mixer
func (sm *SoundManager) Played(c Cue) int {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.played[c]
}

func (sm *SoundManager) play(c Cue) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized || sm.muted {
		return
	}
	s := sm.withVolume(newCue(c, sm.sampleRate))

	speaker.Lock()
	sm.mixer.Add(s)
	speaker.Unlock()

	sm.played[c]++
	sm.log.WithField("cue", c).Trace("cue played")
}

// withVolume scales s by the configured linear volume
func (sm *SoundManager) withVolume(s beep.Streamer) beep.Streamer {
	v := sm.cfg.Volume
	if v >= 1 {
		return s
	}
	if v <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	// effects.Volume is exponential: gain = Base^Volume
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(v)}
}
