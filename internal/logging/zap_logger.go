package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger adapts a zap logger to pmig.Logger. Verbose maps to debug level,
// which is enabled only when the logger was built verbose.
type ZapLogger struct {
	log *zap.SugaredLogger
}

// NewZapLogger builds a JSON logger on stderr from zap's production config.
func NewZapLogger(verbose bool) (*ZapLogger, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableStacktrace = true
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return NewZapLoggerFrom(l.With(zap.String("component", "pmig"))), nil
}

// NewZapLoggerFrom wraps an existing zap logger.
func NewZapLoggerFrom(l *zap.Logger) *ZapLogger {
	return &ZapLogger{log: l.Sugar()}
}

func (l *ZapLogger) Verbose(format string, args ...interface{}) { l.log.Debugf(format, args...) }
func (l *ZapLogger) Info(format string, args ...interface{})    { l.log.Infof(format, args...) }
func (l *ZapLogger) Error(format string, args ...interface{})   { l.log.Errorf(format, args...) }

// Sync flushes buffered entries.
func (l *ZapLogger) Sync() error {
	return l.log.Sync()
}
