package logger

import (
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Leveled logger used across the service.
// - package-level Debug/Info/Warn/Error/Fatal variants and Init(level)
// - backed by a zap SugaredLogger; L() exposes it for structured fields

var (
	mu    sync.RWMutex
	level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	sugar = newSugar(level)
)

func newSugar(lvl zap.AtomicLevel) *zap.SugaredLogger {
	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.Sampling = nil
	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return l.Sugar()
}

// Init sets the global log level (case-insensitive: debug, info, warn, error, fatal).
// Call early during startup. Default level is Info.
func Init(l string) {
	s := strings.ToLower(strings.TrimSpace(l))
	switch s {
	case "debug":
		level.SetLevel(zapcore.DebugLevel)
	case "warn", "warning":
		level.SetLevel(zapcore.WarnLevel)
	case "error":
		level.SetLevel(zapcore.ErrorLevel)
	case "fatal":
		level.SetLevel(zapcore.FatalLevel)
	default:
		level.SetLevel(zapcore.InfoLevel)
	}
}

// SetCore swaps the output core. Tests use it with zaptest/observer.
func SetCore(core zapcore.Core) func() {
	mu.Lock()
	defer mu.Unlock()
	prev := sugar
	sugar = zap.New(core, zap.AddCallerSkip(1)).Sugar()
	return func() {
		mu.Lock()
		defer mu.Unlock()
		sugar = prev
	}
}

// Level is the shared atomic level; cores passed to SetCore may use it as
// their LevelEnabler so Init keeps filtering.
func Level() zap.AtomicLevel { return level }

// L returns the underlying sugared logger.
func L() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return sugar
}

func Debugf(format string, v ...interface{}) { L().Debugf(format, v...) }
func Infof(format string, v ...interface{})  { L().Infof(format, v...) }
func Warnf(format string, v ...interface{})  { L().Warnf(format, v...) }
func Errorf(format string, v ...interface{}) { L().Errorf(format, v...) }

// Fatalf logs and exits the process.
func Fatalf(format string, v ...interface{}) { L().Fatalf(format, v...) }

// Debug/Info/Warn/Error take a message plus alternating key/value pairs.
func Debug(msg string, kv ...interface{}) { L().Debugw(msg, kv...) }
func Info(msg string, kv ...interface{})  { L().Infow(msg, kv...) }
func Warn(msg string, kv ...interface{})  { L().Warnw(msg, kv...) }
func Error(msg string, kv ...interface{}) { L().Errorw(msg, kv...) }

// Sync flushes buffered entries; call before exit.
func Sync() { _ = L().Sync() }

// LevelString returns the current level as text.
func LevelString() string {
	switch level.Level() {
	case zapcore.DebugLevel:
		return "debug"
	case zapcore.InfoLevel:
		return "info"
	case zapcore.WarnLevel:
		return "warn"
	case zapcore.ErrorLevel:
		return "error"
	case zapcore.FatalLevel:
		return "fatal"
	}
	return "info"
}
