package logger

import "go.uber.org/zap"

var global *zap.SugaredLogger

// Init sets the process-wide Zap logger once, from main.
func Init(z *zap.SugaredLogger) { global = z }

// Logger returns the configured logger. It must return a non-nil
// *SugaredLogger, so callers that run before Init get a no-op logger.
func Logger() *zap.SugaredLogger {
	if global == nil {
		return zap.NewNop().Sugar()
	}
	return global
}
