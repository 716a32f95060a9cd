//-------------------------------------------------------------------------
//
// pgEdge POS Loader
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package logging is the process-wide zerolog sink for load progress,
// per-table rejection summaries and connection chatter. Report and view
// output never goes through here; it is written to stdout by the CLI.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger receives every event. Init replaces it; packages log through the
// level helpers below rather than holding their own copy.
var Logger zerolog.Logger

// Config selects the level and shape of log output. The CLI fills Level
// from --log-level or the config file.
type Config struct {
	Level      string
	Pretty     bool
	TimeFormat string

	// Output is stderr when nil so piped report tables stay clean.
	Output io.Writer
}

// DefaultConfig is info level console output, which is what a loader run
// from a terminal wants.
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Pretty:     true,
		TimeFormat: time.RFC3339,
	}
}

// Init rebuilds Logger from cfg. An empty or unrecognised level falls back
// to info instead of failing startup.
func Init(cfg Config) {
	Logger = zerolog.New(sink(cfg)).
		Level(parseLevel(cfg.Level)).
		With().
		Timestamp().
		Logger()
}

func sink(cfg Config) io.Writer {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if !cfg.Pretty {
		return out
	}
	layout := cfg.TimeFormat
	if layout == "" {
		layout = time.RFC3339
	}
	return zerolog.ConsoleWriter{Out: out, TimeFormat: layout}
}

func parseLevel(s string) zerolog.Level {
	if s == "" {
		return zerolog.InfoLevel
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}

// Table scopes events to one target table, e.g. detail_items.
func Table(name string) zerolog.Logger {
	return Logger.With().Str("table", name).Logger()
}

func Debug() *zerolog.Event { return Logger.Debug() }

func Info() *zerolog.Event { return Logger.Info() }

func Warn() *zerolog.Event { return Logger.Warn() }

func Error() *zerolog.Event { return Logger.Error() }

func init() {
	Init(DefaultConfig())
}
