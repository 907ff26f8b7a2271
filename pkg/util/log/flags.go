// Copyright 2015 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package log

import (
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/ttycolor"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config describes where and how log entries are written.
type Config struct {
	// Format is one of the names registered in formats.go ("crdb-v1" or
	// "json").
	Format string
	// MinSeverity suppresses entries below the given severity.
	MinSeverity Severity
	// Redactable keeps redaction markers in the rendered messages.
	Redactable bool
	// Verbosity is the initial level for V and VEventf.
	Verbosity Level
	// Color highlights the severity of crdb-v1 entries when stderr is a
	// terminal that supports colors.
	Color bool
}

// DefaultConfig logs warnings and errors to stderr.
func DefaultConfig() Config {
	return Config{Format: "crdb-v1", MinSeverity: SeverityWarning}
}

type loggerT struct {
	mu struct {
		sync.Mutex
		logger *zap.Logger
	}
	redactable atomic.Bool
	verbosity  atomic.Int32
}

var mainLog loggerT

func init() {
	if err := ApplyConfig(os.Stderr, DefaultConfig()); err != nil {
		panic(err)
	}
}

// ApplyConfig replaces the main logger. It is safe to call concurrently with
// logging calls.
func ApplyConfig(w io.Writer, cfg Config) error {
	f, ok := formatters[cfg.Format]
	if !ok {
		return errors.Newf("unknown log format %q", cfg.Format)
	}
	var cp ttycolor.Profile
	if cfg.Color {
		cp = ttycolor.StderrProfile
	}
	core := zapcore.NewCore(f.encoder(cp), zapcore.AddSync(w), cfg.MinSeverity.zapLevel())
	mainLog.setLogger(zap.New(core))
	mainLog.redactable.Store(cfg.Redactable)
	mainLog.verbosity.Store(int32(cfg.Verbosity))
	return nil
}

// SetVerbosity changes the verbosity level and returns a function restoring
// the previous one.
func SetVerbosity(level Level) (restore func()) {
	old := mainLog.verbosity.Swap(int32(level))
	return func() { mainLog.verbosity.Store(old) }
}

func (l *loggerT) setLogger(z *zap.Logger) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.mu.logger != nil {
		_ = l.mu.logger.Sync()
	}
	l.mu.logger = z
}

func (l *loggerT) getLogger() *zap.Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.mu.logger
}

// Flush flushes any buffered entries of the main logger.
func Flush() {
	_ = mainLog.getLogger().Sync()
}
