package main

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/youssefsiam38/volumetric"
)

func newZapLogger(verbose bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return config.Build()
}

// zapLogger adapts a zap logger to volumetric.Logger. The key/value
// arguments map directly onto the sugared logger's "w" methods.
type zapLogger struct {
	s *zap.SugaredLogger
}

func newLogger(l *zap.Logger) volumetric.Logger {
	return zapLogger{s: l.Sugar()}
}

func (l zapLogger) Debug(msg string, args ...any) { l.s.Debugw(msg, args...) }
func (l zapLogger) Info(msg string, args ...any)  { l.s.Infow(msg, args...) }
func (l zapLogger) Warn(msg string, args ...any)  { l.s.Warnw(msg, args...) }
func (l zapLogger) Error(msg string, args ...any) { l.s.Errorw(msg, args...) }

type nopLogger struct{}

func (nopLogger) Debug(msg string, args ...any) {}
func (nopLogger) Info(msg string, args ...any)  {}
func (nopLogger) Warn(msg string, args ...any)  {}
func (nopLogger) Error(msg string, args ...any) {}
