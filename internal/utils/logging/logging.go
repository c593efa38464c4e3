// Package logging provides the program logger used across the archiver.
//
// Output goes to a human readable console writer and, when a log file path is
// set, to a size-rotated JSON log file.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LoggingConfig holds the settings for SetupLogging.
type LoggingConfig struct {
	LogFilePath string
	MaxSizeMB   int
	MaxBackups  int
	Console     io.Writer
	NoColor     bool
	Program     string
	Level       int
}

// ProgramLogger writes leveled program messages.
//
// D messages are only written when their level is at or below the configured debug level.
type ProgramLogger struct {
	zl      zerolog.Logger
	console io.Writer
	level   *atomic.Int32
	closer  io.Closer
}

// SetupLogging creates the program logger from the config.
func SetupLogging(cfg LoggingConfig) (*ProgramLogger, error) {
	if cfg.Console == nil {
		cfg.Console = os.Stdout
	}

	writers := []io.Writer{
		zerolog.ConsoleWriter{
			Out:        cfg.Console,
			NoColor:    cfg.NoColor,
			TimeFormat: time.TimeOnly,
		},
	}

	var closer io.Closer
	if cfg.LogFilePath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFilePath), 0o750); err != nil {
			return nil, fmt.Errorf("failed to create log directory for %q: %w", cfg.LogFilePath, err)
		}
		rotator := &lumberjack.Logger{
			Filename:   cfg.LogFilePath,
			MaxSize:    max(cfg.MaxSizeMB, 1),
			MaxBackups: cfg.MaxBackups,
		}
		writers = append(writers, rotator)
		closer = rotator
	}

	zl := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		With().
		Timestamp().
		Str("program", cfg.Program).
		Logger()

	pl := &ProgramLogger{
		zl:      zl,
		console: cfg.Console,
		level:   new(atomic.Int32),
		closer:  closer,
	}
	pl.SetLevel(cfg.Level)
	return pl, nil
}

// Discard returns a logger which writes nowhere. Used before SetupLogging runs and in tests.
func Discard() *ProgramLogger {
	return &ProgramLogger{
		zl:      zerolog.Nop(),
		console: io.Discard,
		level:   new(atomic.Int32),
	}
}

// SetLevel sets the debug level (0-5).
func (p *ProgramLogger) SetLevel(l int) {
	p.level.Store(int32(min(max(l, 0), 5)))
}

// Level returns the current debug level.
func (p *ProgramLogger) Level() int {
	return int(p.level.Load())
}

// With returns a child logger which tags every message with the key and value.
func (p *ProgramLogger) With(key, val string) *ProgramLogger {
	return &ProgramLogger{
		zl:      p.zl.With().Str(key, val).Logger(),
		console: p.console,
		level:   p.level,
	}
}

// I logs an info message.
func (p *ProgramLogger) I(format string, args ...any) {
	p.zl.Info().Msgf(format, args...)
}

// S logs a success message.
func (p *ProgramLogger) S(format string, args ...any) {
	p.zl.Info().Bool("success", true).Msgf(format, args...)
}

// W logs a warning.
func (p *ProgramLogger) W(format string, args ...any) {
	p.zl.Warn().Msgf(format, args...)
}

// E logs an error along with the caller location.
func (p *ProgramLogger) E(format string, args ...any) {
	p.zl.Error().Caller(1).Msgf(format, args...)
}

// D logs a debug message if l is within the current debug level.
func (p *ProgramLogger) D(l int, format string, args ...any) {
	if l > p.Level() {
		return
	}
	p.zl.Debug().Caller(1).Int("debug_level", l).Msgf(format, args...)
}

// P prints a plain line to the console without touching the log file.
func (p *ProgramLogger) P(format string, args ...any) {
	fmt.Fprintf(p.console, format+"\n", args...)
}

// Close flushes and closes the log file, if any.
func (p *ProgramLogger) Close() error {
	if p.closer == nil {
		return nil
	}
	return p.closer.Close()
}
