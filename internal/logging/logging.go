// Package logging builds the zerolog logger used by sfctl and adapts it to
// the field-map Logger interface of the sf package.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Output formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Config selects level, format and destination.
type Config struct {
	Level  string
	Format string
	// Output defaults to os.Stderr so stdout stays reserved for data.
	Output io.Writer
}

// New builds a logger. An unparsable level falls back to warn.
func New(cfg Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.WarnLevel
	}

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	if cfg.Format != FormatJSON {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// Adapter implements sf.Logger on top of zerolog.
type Adapter struct {
	logger zerolog.Logger
}

// NewAdapter wraps logger.
func NewAdapter(logger zerolog.Logger) *Adapter {
	return &Adapter{logger: logger}
}

// Component returns an adapter whose lines carry component=name.
func (a *Adapter) Component(name string) *Adapter {
	return &Adapter{logger: a.logger.With().Str("component", name).Logger()}
}

// Debug logs at debug level.
func (a *Adapter) Debug(msg string, fields map[string]interface{}) {
	a.logger.Debug().Fields(fields).Msg(msg)
}

// Info logs at info level.
func (a *Adapter) Info(msg string, fields map[string]interface{}) {
	a.logger.Info().Fields(fields).Msg(msg)
}

// Warn logs at warn level.
func (a *Adapter) Warn(msg string, fields map[string]interface{}) {
	a.logger.Warn().Fields(fields).Msg(msg)
}

// Error logs at error level. An "error" field holding an error is attached
// with Err so it renders like other zerolog errors.
func (a *Adapter) Error(msg string, fields map[string]interface{}) {
	event := a.logger.Error()

	if err, ok := fields["error"].(error); ok {
		event = event.Err(err)
		rest := make(map[string]interface{}, len(fields))

		for key, value := range fields {
			if key != "error" {
				rest[key] = value
			}
		}

		fields = rest
	}

	event.Fields(fields).Msg(msg)
}
