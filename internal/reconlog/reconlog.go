// Package reconlog wires up the crawler's structured logger.
package reconlog

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New builds a *zerolog.Logger writing to stderr (so stdout stays reserved
// for any future machine-readable summary), console-formatted for a human
// operator watching a live crawl.
//
// level is one of "debug", "info", "warn", "error" (case-insensitive);
// unknown values default to "info".
func New(level string) *zerolog.Logger {
	var w io.Writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}

	zlevel := parseLevel(level)
	logger := zerolog.New(w).Level(zlevel).With().Timestamp().Logger()
	return &logger
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "info", "":
		return zerolog.InfoLevel
	default:
		return zerolog.InfoLevel
	}
}

// Fields renders a short "key=value key=value" summary line, used for the
// one-line startup banner the CLI prints before the crawl begins.
func Fields(pairs ...string) string {
	if len(pairs)%2 != 0 {
		pairs = append(pairs, "")
	}
	var b strings.Builder
	for i := 0; i < len(pairs); i += 2 {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s=%s", pairs[i], pairs[i+1])
	}
	return b.String()
}
