package streetgraph

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var log = newLogger()

func newLogger() *zap.SugaredLogger {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	cfg.DisableStacktrace = true
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return logger.Sugar()
}

// SetLogger replaces the package-level logger. Callers embedding the library
// can route diagnostics into their own logging setup.
func SetLogger(logger *zap.SugaredLogger) {
	if logger == nil {
		log = zap.NewNop().Sugar()
		return
	}
	log = logger
}
