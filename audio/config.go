package audio

import "time"

// Config tunes the sound manager
type Config struct {
	// Enabled false keeps the speaker closed; every Play call is a no-op
	Enabled    bool
	Volume     float64 // 0..1, scales every cue
	SampleRate int
	Buffer     time.Duration
}

// DefaultConfig returns 48kHz output with a 100ms buffer at full volume
func DefaultConfig() Config {
	return Config{
		Enabled:    true,
		Volume:     1,
		SampleRate: 48000,
		Buffer:     100 * time.Millisecond,
	}
}
