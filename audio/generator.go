package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
)

// Cue names one battle or board accent
type Cue uint8

const (
	CueImpact Cue = iota
	CueDestroy
	CueCardPlayed
	CuePulse
)

var cueNames = [...]string{"impact", "destroy", "card-played", "pulse"}

func (c Cue) String() string {
	if int(c) < len(cueNames) {
		return cueNames[c]
	}
	return "unknown"
}

// cueLength is how long each cue is taken from its generator
var cueLength = [...]time.Duration{
	CueImpact:     180 * time.Millisecond,
	CueDestroy:    350 * time.Millisecond,
	CueCardPlayed: 220 * time.Millisecond,
	CuePulse:      90 * time.Millisecond,
}

// newCue returns a finite streamer for the cue
func newCue(c Cue, sr beep.SampleRate) beep.Streamer {
	var gen beep.Streamer
	switch c {
	case CueImpact:
		gen = NewImpactGenerator(sr)
	case CueDestroy:
		gen = NewDestroyGenerator(sr, 1)
	case CueCardPlayed:
		gen = NewChimeGenerator(sr, 660, 880)
	default:
		gen = NewChimeGenerator(sr, 990, 990)
	}
	return beep.Take(sr.N(cueLength[c]), gen)
}

// ImpactGenerator is a short kick: a sine whose pitch drops under a fast decay
type ImpactGenerator struct {
	sr  beep.SampleRate
	pos int
}

// NewImpactGenerator creates an impact thump generator
func NewImpactGenerator(sr beep.SampleRate) *ImpactGenerator {
	return &ImpactGenerator{sr: sr}
}

func (g *ImpactGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		t := float64(g.pos) / float64(g.sr)
		env := math.Exp(-t * 18)
		freq := 55 * (1 + 3*env)
		sample := 0.5 * env * math.Sin(2*math.Pi*freq*t)

		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *ImpactGenerator) Err() error {
	return nil
}

// DestroyGenerator generates a crackling break: filtered noise over a low rumble
type DestroyGenerator struct {
	sr   beep.SampleRate
	pos  int
	seed int64
}

// NewDestroyGenerator creates a destroy sound generator; the seed keeps output reproducible
func NewDestroyGenerator(sr beep.SampleRate, seed int64) *DestroyGenerator {
	return &DestroyGenerator{sr: sr, seed: seed}
}

func (g *DestroyGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		t := float64(g.pos) / float64(g.sr)

		// Quick attack, slower decay
		envelope := math.Exp(-t * 8)

		g.seed = (g.seed*1103515245 + 12345) & 0x7fffffff
		noise := float64(g.seed)/float64(0x7fffffff)*2 - 1
		rumble := 0.3 * math.Sin(2*math.Pi*80*t)

		sample := envelope * (0.25*noise + rumble)

		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *DestroyGenerator) Err() error {
	return nil
}

// ChimeGenerator glides from one frequency to another with a soft attack
type ChimeGenerator struct {
	sr       beep.SampleRate
	from, to float64
	pos      int
	phase    float64
}

// NewChimeGenerator creates a chime gliding from -> to over 150ms
func NewChimeGenerator(sr beep.SampleRate, from, to float64) *ChimeGenerator {
	return &ChimeGenerator{sr: sr, from: from, to: to}
}

func (g *ChimeGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	glide := float64(g.sr.N(150 * time.Millisecond))
	for i := range samples {
		t := float64(g.pos) / float64(g.sr)
		k := math.Min(float64(g.pos)/glide, 1)
		freq := g.from + (g.to-g.from)*k

		// Integrate phase so the glide has no clicks
		g.phase += 2 * math.Pi * freq / float64(g.sr)
		attack := math.Min(t/0.01, 1)
		sample := 0.2 * attack * math.Exp(-t*6) * math.Sin(g.phase)

		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *ChimeGenerator) Err() error {
	return nil
}
