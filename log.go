package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// initLogging wires zerolog's console writer the way
// leemwalker-thousand-worlds/mud-platform-backend sets up its request logger:
// human-readable output with RFC 3339 (whole-second) timestamps for an
// interactive host.
// The core engine never logs (spec.md §5: tick() is pure); only this host
// layer does.
func initLogging(verbose bool) {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log.Logger = zerolog.New(writer).With().Timestamp().Logger()
}
