// Package logger builds the structured zap logger shared by the server,
// the activity consumer and the CLI.
package logger

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Option customises New.
type Option func(*options)

type options struct {
	writers []io.Writer
	level   zapcore.Level
}

// WithWriter adds an output in addition to stdout.
func WithWriter(w io.Writer) Option {
	return func(o *options) { o.writers = append(o.writers, w) }
}

// WithOnlyWriter replaces stdout with w. Used by tests to capture output.
func WithOnlyWriter(w io.Writer) Option {
	return func(o *options) { o.writers = []io.Writer{w} }
}

// WithLevel sets the minimum enabled level.
func WithLevel(l zapcore.Level) Option {
	return func(o *options) { o.level = l }
}

// New returns a JSON logger tagged with the application environment. In
// "dev" the debug level is enabled, otherwise info.
func New(env string, opts ...Option) *zap.Logger {
	o := options{writers: []io.Writer{os.Stdout}, level: zapcore.InfoLevel}
	if env == "dev" {
		o.level = zapcore.DebugLevel
	}
	for _, fn := range opts {
		fn(&o)
	}

	enc := zapcore.NewJSONEncoder(zapcore.EncoderConfig{
		MessageKey:   "message",
		LevelKey:     "level",
		EncodeLevel:  zapcore.CapitalLevelEncoder,
		TimeKey:      "time",
		EncodeTime:   zapcore.ISO8601TimeEncoder,
		CallerKey:    "caller",
		EncodeCaller: zapcore.ShortCallerEncoder,
	})

	cores := make([]zapcore.Core, 0, len(o.writers))
	for _, w := range o.writers {
		cores = append(cores, zapcore.NewCore(enc, zapcore.AddSync(w), o.level))
	}
	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()).With(zap.String("env", env))
}
