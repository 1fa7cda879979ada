package config

import (
	"flag"
	"io"
	"testing"
	"time"

	"github.com/AnsonYua/cardGameMobile-sub001/feed"
)

func newFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse(newFlagSet(), nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.PlayerID != "p1" || cfg.FeedMode != "replay" || cfg.BattleTTL != 15*time.Second {
		t.Errorf("defaults = %+v", cfg)
	}
	if got := cfg.Session().ProcessedCapacity; got != 512 {
		t.Errorf("processed capacity = %d", got)
	}
}

func TestEnvThenFlags(t *testing.T) {
	t.Setenv("CARDSYNC_PLAYER_ID", "alice")
	t.Setenv("CARDSYNC_FEED", "websocket")
	t.Setenv("CARDSYNC_BATTLE_TTL", "3s")
	t.Setenv("CARDSYNC_MUTE", "true")

	cfg, err := Parse(newFlagSet(), []string{"-player", "bob", "-interval", "250ms"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.PlayerID != "bob" {
		t.Errorf("flag should override env, player = %q", cfg.PlayerID)
	}
	if cfg.BattleTTL != 3*time.Second || cfg.Session().Battle.TTL != 3*time.Second {
		t.Errorf("battle ttl = %v", cfg.BattleTTL)
	}
	if fc := cfg.Feed(); fc.Mode != feed.ModeWebSocket || fc.ReplayInterval != 250*time.Millisecond {
		t.Errorf("feed config = %+v", fc)
	}
	if cfg.Audio().Enabled {
		t.Error("mute should disable audio")
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown feed", []string{"-feed", "smoke-signal"}},
		{"empty player", []string{"-player", ""}},
		{"zero frame", []string{"-frame", "0s"}},
		{"bad flag", []string{"-nope"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(newFlagSet(), tt.args); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestBadEnvValue(t *testing.T) {
	t.Setenv("CARDSYNC_BATTLE_CAPACITY", "many")
	if _, err := Parse(newFlagSet(), nil); err == nil {
		t.Error("expected env parse error")
	}
}
