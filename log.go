package textback

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logLevel = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	logger   = newLogger()
)

func newLogger() *zap.SugaredLogger {
	cfg := zap.NewProductionConfig()
	cfg.Level = logLevel
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	l, err := cfg.Build()
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return l.Sugar()
}

// SetVerbose switches debug logging on or off
func SetVerbose(verbose bool) {
	if verbose {
		logLevel.SetLevel(zapcore.DebugLevel)
	} else {
		logLevel.SetLevel(zapcore.InfoLevel)
	}
}

// VerboseLog logs only when verbose mode is enabled
func VerboseLog(format string, v ...interface{}) {
	logger.Debugf(format, v...)
}

// Logger returns the package logger
func Logger() *zap.SugaredLogger {
	return logger
}

// SetLogger replaces the package logger, e.g. with zap.NewNop in tests
func SetLogger(l *zap.Logger) {
	logger = l.Sugar()
}
