// Package logging configures the logrus logger used by every component
// The terminal owns stdout, so log output goes to a file
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// MaxLogSize is the size past which an existing log file is rotated at startup
	MaxLogSize = 10 * 1024 * 1024

	DefaultDir  = "logs"
	DefaultFile = "cardview.log"
)

// Config selects level, format and destination
type Config struct {
	Level  string // panic..trace, default info
	Format string // text or json
	Dir    string
	File   string
	// Disabled discards all output
	Disabled bool
}

// New builds a logger writing to cfg.Dir/cfg.File
// The returned closer releases the file and is never nil
func New(cfg Config) (*logrus.Logger, io.Closer, error) {
	l := logrus.New()

	level, err := logrus.ParseLevel(strings.TrimSpace(cfg.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	if strings.EqualFold(cfg.Format, "json") {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: true})
	}

	if cfg.Disabled {
		l.SetOutput(io.Discard)
		return l, nopCloser{}, nil
	}

	dir := cfg.Dir
	if dir == "" {
		dir = DefaultDir
	}
	name := cfg.File
	if name == "" {
		name = DefaultFile
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}

	path := filepath.Join(dir, name)
	if err := rotate(path, time.Now()); err != nil {
		return nil, nil, err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	l.SetOutput(f)
	return l, f, nil
}

// rotate renames path to a timestamped sibling when it exceeds MaxLogSize
func rotate(path string, now time.Time) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("stat log file: %w", err)
	}
	if info.Size() <= MaxLogSize {
		return nil
	}

	ext := filepath.Ext(path)
	rotated := strings.TrimSuffix(path, ext) + "-" + now.Format("20060102-150405") + ext
	if err := os.Rename(path, rotated); err != nil {
		return fmt.Errorf("rotate log file: %w", err)
	}
	return nil
}

// Discard returns a logger that drops everything
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// OrDiscard returns l, or a discarding logger when l is nil
func OrDiscard(l logrus.FieldLogger) logrus.FieldLogger {
	if l == nil {
		return Discard()
	}
	return l
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
