package logger

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// Setup builds the process logger. Every line carries app so the companion
// server and the terminal client can share one log sink.
//   - level: trace, debug, info, warn, error, fatal or panic; anything else means info
//   - format: "pretty" for a console writer, otherwise JSON lines
//   - out: destination; the CLI passes stderr so stdout stays clean for results
func Setup(app, level, format string, out io.Writer) zerolog.Logger {
	if format == "pretty" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	return zerolog.New(out).Level(lvl).With().Timestamp().Str("app", app).Logger()
}
