// Package config loads client settings from CARDSYNC_* environment variables and command-line flags
package config

import (
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/AnsonYua/cardGameMobile-sub001/audio"
	"github.com/AnsonYua/cardGameMobile-sub001/battle"
	"github.com/AnsonYua/cardGameMobile-sub001/engine"
	"github.com/AnsonYua/cardGameMobile-sub001/feed"
	"github.com/AnsonYua/cardGameMobile-sub001/logging"
)

// Config holds every setting of the terminal client
type Config struct {
	PlayerID string `env:"CARDSYNC_PLAYER_ID" envDefault:"p1"`

	FeedMode       string        `env:"CARDSYNC_FEED"            envDefault:"replay"`
	FeedAddr       string        `env:"CARDSYNC_FEED_ADDR"       envDefault:"ws://localhost:8080/game"`
	ReplayFile     string        `env:"CARDSYNC_REPLAY_FILE"     envDefault:"testdata/replay.jsonl"`
	ReplayInterval time.Duration `env:"CARDSYNC_REPLAY_INTERVAL" envDefault:"1500ms"`

	LogLevel  string `env:"CARDSYNC_LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"CARDSYNC_LOG_FORMAT" envDefault:"text"`
	LogDir    string `env:"CARDSYNC_LOG_DIR"    envDefault:"logs"`

	Mute   bool    `env:"CARDSYNC_MUTE"`
	Volume float64 `env:"CARDSYNC_VOLUME" envDefault:"0.8"`

	// Animation timings
	PlayFlight   time.Duration `env:"CARDSYNC_PLAY_FLIGHT"   envDefault:"400ms"`
	StatPulse    time.Duration `env:"CARDSYNC_STAT_PULSE"    envDefault:"350ms"`
	AttackFlight time.Duration `env:"CARDSYNC_ATTACK_FLIGHT" envDefault:"350ms"`
	AttackReturn time.Duration `env:"CARDSYNC_ATTACK_RETURN" envDefault:"300ms"`
	ImpactFlash  time.Duration `env:"CARDSYNC_IMPACT"        envDefault:"180ms"`
	DestroyFade  time.Duration `env:"CARDSYNC_DESTROY_FADE"  envDefault:"400ms"`
	SurvivePulse time.Duration `env:"CARDSYNC_SURVIVE_PULSE" envDefault:"250ms"`

	BattleTTL         time.Duration `env:"CARDSYNC_BATTLE_TTL"         envDefault:"15s"`
	BattleCapacity    int           `env:"CARDSYNC_BATTLE_CAPACITY"    envDefault:"24"`
	ProcessedCapacity int           `env:"CARDSYNC_PROCESSED_CAPACITY" envDefault:"512"`

	FrameInterval time.Duration `env:"CARDSYNC_FRAME_INTERVAL" envDefault:"16ms"`
}

// Parse reads the environment, then lets flags in args override it
func Parse(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	fs.StringVar(&cfg.PlayerID, "player", cfg.PlayerID, "local player id")
	fs.StringVar(&cfg.FeedMode, "feed", cfg.FeedMode, "snapshot source: replay or websocket")
	fs.StringVar(&cfg.FeedAddr, "addr", cfg.FeedAddr, "websocket url")
	fs.StringVar(&cfg.ReplayFile, "replay", cfg.ReplayFile, "JSON-lines replay file")
	fs.DurationVar(&cfg.ReplayInterval, "interval", cfg.ReplayInterval, "delay between replayed snapshots")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format: text or json")
	fs.StringVar(&cfg.LogDir, "log-dir", cfg.LogDir, "log directory")
	fs.BoolVar(&cfg.Mute, "mute", cfg.Mute, "start with audio muted")
	fs.DurationVar(&cfg.BattleTTL, "battle-ttl", cfg.BattleTTL, "abandon unresolved attacks after")
	fs.DurationVar(&cfg.FrameInterval, "frame", cfg.FrameInterval, "render interval")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// Validate checks values the components cannot fix up themselves
func (c Config) Validate() error {
	var errs []error
	if c.PlayerID == "" {
		errs = append(errs, errors.New("player id is required"))
	}
	if _, err := feed.ParseMode(c.FeedMode); err != nil {
		errs = append(errs, err)
	}
	if c.FrameInterval <= 0 {
		errs = append(errs, fmt.Errorf("frame interval must be positive, got %v", c.FrameInterval))
	}
	if c.Volume < 0 || c.Volume > 1 {
		errs = append(errs, fmt.Errorf("volume must be within [0,1], got %v", c.Volume))
	}
	return errors.Join(errs...)
}

// Session returns the session sizing and timings
func (c Config) Session() engine.Config {
	sc := engine.DefaultConfig(c.PlayerID)
	sc.ProcessedCapacity = c.ProcessedCapacity
	sc.Battle = battle.Config{
		TTL:      c.BattleTTL,
		Capacity: c.BattleCapacity,
		Flight:   c.AttackFlight,
		Return:   c.AttackReturn,
		Impact:   c.ImpactFlash,
		Fade:     c.DestroyFade,
		Pulse:    c.SurvivePulse,
	}
	sc.Animator.PlayFlight = c.PlayFlight
	sc.Animator.StatPulse = c.StatPulse
	return sc
}

// Feed returns the snapshot feed settings
func (c Config) Feed() feed.Config {
	fc := feed.DefaultConfig()
	fc.Mode, _ = feed.ParseMode(c.FeedMode)
	fc.Address = c.FeedAddr
	fc.ReplayFile = c.ReplayFile
	fc.ReplayInterval = c.ReplayInterval
	return fc
}

// Logging returns the logger settings
func (c Config) Logging() logging.Config {
	return logging.Config{
		Level:  c.LogLevel,
		Format: c.LogFormat,
		Dir:    c.LogDir,
		File:   "cardview.log",
	}
}

// Audio returns the sound manager settings
func (c Config) Audio() audio.Config {
	ac := audio.DefaultConfig()
	ac.Enabled = !c.Mute
	ac.Volume = c.Volume
	return ac
}
