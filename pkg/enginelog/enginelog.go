// Package enginelog builds the zap loggers threaded through the
// engine's catalog, planner, optimizer, and executor — the same
// "construct once, pass the *zap.Logger down" pattern the teacher's
// shard manager and query planner use (pkg/data, pkg/ppl/planner).
package enginelog

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the engine's default development logger: human-readable
// console output, debug level enabled, stack traces on warn+.
func New() (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

// MustNew is New but panics on failure, for callers (cmd/sqlshell's
// root command) that have no sensible fallback for a broken logger.
func MustNew() *zap.Logger {
	logger, err := New()
	if err != nil {
		panic(err)
	}
	return logger
}

// Nop returns a logger that discards everything, for tests and
// library callers that don't want console noise.
func Nop() *zap.Logger { return zap.NewNop() }
