// Package logging builds the zap logger shared by the CLI and its components.
package logging

import (
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options controls logger construction. Verbose wins over Quiet.
type Options struct {
	Level   string // debug, info, warn, error; empty means info
	Verbose bool

	// Quiet raises the floor to warn so a live progress display owns the terminal.
	Quiet bool
	Out   io.Writer // defaults to os.Stderr
}

// EffectiveLevel resolves the effective level for o.
func (o Options) EffectiveLevel() zapcore.Level {
	if o.Verbose {
		return zap.DebugLevel
	}
	lvl := zap.InfoLevel
	switch strings.ToLower(o.Level) {
	case "debug":
		lvl = zap.DebugLevel
	case "warn":
		lvl = zap.WarnLevel
	case "error":
		lvl = zap.ErrorLevel
	}
	if o.Quiet && lvl < zap.WarnLevel {
		lvl = zap.WarnLevel
	}
	return lvl
}

// New returns a console logger writing to o.Out.
func New(o Options) *zap.Logger {
	l, _ := NewWithLevel(o)
	return l
}

// NewWithLevel is New that also returns the logger's level handle, so the
// caller can raise or lower it while the process runs.
func NewWithLevel(o Options) (*zap.Logger, zap.AtomicLevel) {
	out := o.Out
	if out == nil {
		out = os.Stderr
	}
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	encCfg.ConsoleSeparator = " - "

	level := zap.NewAtomicLevelAt(o.EffectiveLevel())
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(out), level)
	return zap.New(core), level
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
