// Package log wraps zap behind a small structured facade so the rest of
// the codebase never imports a logging backend directly.
package log

import (
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ Log = (*Logger)(nil)

var (
	innerLogger          *Logger
	loggerInitializeOnce sync.Once
)

type Logger struct {
	zapLogger *zap.Logger
	zapLevel  zap.AtomicLevel
}

// New builds a production JSON logger writing to stderr. The first logger
// built becomes the process-wide default returned by Provide.
func New(level Level) *Logger {
	logger := newLogger(level)
	loggerInitializeOnce.Do(func() { innerLogger = logger })
	return logger
}

// Provide returns the process-wide logger, creating one at info level if
// New has not been called yet.
func Provide() *Logger {
	loggerInitializeOnce.Do(func() { innerLogger = newLogger(LevelInfo) })
	return innerLogger
}

func newLogger(level Level) *Logger {
	atomicLevel := zap.NewAtomicLevelAt(toZapLevel(level))
	config := zap.Config{
		Level:       atomicLevel,
		Development: false,
		Sampling: &zap.SamplingConfig{
			Initial:    100,
			Thereafter: 100,
		},
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
		DisableCaller:    true,
	}

	zapLogger, err := config.Build()
	if err != nil {
		panic(err)
	}

	return &Logger{
		zapLogger: zapLogger,
		zapLevel:  atomicLevel,
	}
}

func (l *Logger) Log(level Level, msg string, fields ...Field) {
	switch level {
	case LevelDebug:
		l.Debug(msg, fields...)
	case LevelInfo:
		l.Info(msg, fields...)
	case LevelWarn:
		l.Warn(msg, fields...)
	case LevelError:
		l.Error(msg, fields...)
	case LevelFatal:
		l.Fatal(msg, fields...)
	}
}

func (l *Logger) Debug(msg string, fields ...Field) {
	l.zapLogger.Debug(msg, toZapFields(fields)...)
}

func (l *Logger) Info(msg string, fields ...Field) {
	l.zapLogger.Info(msg, toZapFields(fields)...)
}

func (l *Logger) Warn(msg string, fields ...Field) {
	l.zapLogger.Warn(msg, toZapFields(fields)...)
}

func (l *Logger) Error(msg string, fields ...Field) {
	l.zapLogger.Error(msg, toZapFields(fields)...)
}

func (l *Logger) Fatal(msg string, fields ...Field) {
	l.zapLogger.Fatal(msg, toZapFields(fields)...)
}

func (l *Logger) With(fields ...Field) Log {
	return &Logger{
		zapLogger: l.zapLogger.With(toZapFields(fields)...),
		zapLevel:  l.zapLevel,
	}
}

func (l *Logger) SetLevel(level Level) {
	l.zapLevel.SetLevel(toZapLevel(level))
}

func (l *Logger) GetLevel() Level {
	return fromZapLevel(l.zapLevel.Level())
}

// Sync flushes buffered entries. Callers should defer it on shutdown.
func (l *Logger) Sync() error {
	return l.zapLogger.Sync()
}

func toZapLevel(level Level) zapcore.Level {
	switch level {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelInfo:
		return zapcore.InfoLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	case LevelFatal:
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

func fromZapLevel(level zapcore.Level) Level {
	switch level {
	case zapcore.DebugLevel:
		return LevelDebug
	case zapcore.InfoLevel:
		return LevelInfo
	case zapcore.WarnLevel:
		return LevelWarn
	case zapcore.ErrorLevel:
		return LevelError
	case zapcore.FatalLevel:
		return LevelFatal
	default:
		return LevelInfo
	}
}

func toZapFields(fields []Field) []zap.Field {
	zapFields := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		switch f.Type {
		case BoolType:
			zapFields = append(zapFields, zap.Bool(f.Key, f.Value.(bool)))
		case DurationType:
			zapFields = append(zapFields, zap.Duration(f.Key, f.Value.(time.Duration)))
		case Float64Type:
			zapFields = append(zapFields, zap.Float64(f.Key, f.Value.(float64)))
		case IntType:
			zapFields = append(zapFields, zap.Int(f.Key, f.Value.(int)))
		case Int64Type:
			zapFields = append(zapFields, zap.Int64(f.Key, f.Value.(int64)))
		case StringType:
			zapFields = append(zapFields, zap.String(f.Key, f.Value.(string)))
		case TimeType:
			zapFields = append(zapFields, zap.Time(f.Key, f.Value.(time.Time)))
		case Uint64Type:
			zapFields = append(zapFields, zap.Uint64(f.Key, f.Value.(uint64)))
		case ErrorType:
			err, _ := f.Value.(error)
			zapFields = append(zapFields, zap.NamedError(f.Key, err))
		default:
			zapFields = append(zapFields, zap.Any(f.Key, f.Value))
		}
	}
	return zapFields
}
