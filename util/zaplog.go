package util

import (
	"github.com/grailbio/base/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapOutputter sends grailbio/base/log messages to a zap logger, so command
// output can be emitted as structured JSON.
type ZapOutputter struct {
	logger *zap.Logger
	level  log.Level
}

// NewZapOutputter wraps logger.  Messages above level are dropped.
func NewZapOutputter(logger *zap.Logger, level log.Level) *ZapOutputter {
	return &ZapOutputter{logger: logger.WithOptions(zap.AddCallerSkip(2)), level: level}
}

// Level implements log.Outputter.
func (o *ZapOutputter) Level() log.Level {
	return o.level
}

// Output implements log.Outputter.
func (o *ZapOutputter) Output(calldepth int, level log.Level, s string) error {
	if level > o.level {
		return nil
	}
	zl := zapLevel(level)
	if ce := o.logger.Check(zl, s); ce != nil {
		ce.Write()
	}
	return nil
}

// Sync flushes the underlying logger.
func (o *ZapOutputter) Sync() error {
	return o.logger.Sync()
}

func zapLevel(level log.Level) zapcore.Level {
	switch {
	case level <= log.Error:
		return zapcore.ErrorLevel
	case level >= log.Debug:
		return zapcore.DebugLevel
	}
	return zapcore.InfoLevel
}

// UseZap installs a production zap logger as the grailbio log outputter and
// returns a function that restores the previous outputter.
func UseZap(level log.Level) (restore func(), err error) {
	cfg := zap.NewProductionConfig()
	if level >= log.Debug {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	out := NewZapOutputter(logger, level)
	prev := log.SetOutputter(out)
	return func() {
		_ = out.Sync()
		log.SetOutputter(prev)
	}, nil
}
