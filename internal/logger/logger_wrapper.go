package logger

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/leandrodaf/rawmidi/sdk/contracts"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger implements contracts.Logger on top of Uber's zap.
type ZapLogger struct {
	mu        sync.Mutex
	logger    *zap.Logger
	level     zap.AtomicLevel
	closeSink func()
}

// NewZapLogger creates a logger writing human-readable lines to standard error.
func NewZapLogger() contracts.Logger {
	return NewZapLoggerWithCore(consoleCore())
}

// NewZapLoggerWithCore creates a logger writing to core. The level set through
// SetLevel is applied on top of whatever core itself enables.
func NewZapLoggerWithCore(core zapcore.Core) *ZapLogger {
	z := &ZapLogger{level: zap.NewAtomicLevelAt(zapcore.InfoLevel)}
	z.logger = z.build(core)
	return z
}

func consoleCore() zapcore.Core {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	return zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), zapcore.Lock(os.Stderr), zapcore.DebugLevel)
}

func (z *ZapLogger) build(core zapcore.Core) *zap.Logger {
	if filtered, err := zapcore.NewIncreaseLevelCore(core, z.level); err == nil {
		core = filtered
	}
	// Skip log and the level method so callers are reported, not this file.
	return zap.New(core, zap.AddCaller(), zap.AddCallerSkip(2))
}

// Info logs a message at the INFO level
func (z *ZapLogger) Info(msg string, fields ...contracts.Field) {
	z.log(zapcore.InfoLevel, msg, fields...)
}

// Error logs a message at the ERROR level
func (z *ZapLogger) Error(msg string, fields ...contracts.Field) {
	z.log(zapcore.ErrorLevel, msg, fields...)
}

// Debug logs a message at the DEBUG level
func (z *ZapLogger) Debug(msg string, fields ...contracts.Field) {
	z.log(zapcore.DebugLevel, msg, fields...)
}

// Warn logs a message at the WARN level
func (z *ZapLogger) Warn(msg string, fields ...contracts.Field) {
	z.log(zapcore.WarnLevel, msg, fields...)
}

// Fatal logs a message at the FATAL level and terminates the application
func (z *ZapLogger) Fatal(msg string, fields ...contracts.Field) {
	z.log(zapcore.FatalLevel, msg, fields...)
}

// Field returns a builder for typed fields.
func (z *ZapLogger) Field() contracts.Field {
	return &zapField{}
}

// SetLevel sets the logging level
func (z *ZapLogger) SetLevel(level contracts.LogLevel) {
	z.level.SetLevel(toZapLevel(level))
}

// SetDestination switches the sink. FileLog appends JSON lines to filePath[0].
func (z *ZapLogger) SetDestination(dest contracts.LogDestination, filePath ...string) error {
	var (
		core      zapcore.Core
		closeSink func()
	)
	switch dest {
	case contracts.ConsoleLog:
		core = consoleCore()
	case contracts.FileLog:
		if len(filePath) == 0 || filePath[0] == "" {
			return errors.New("file log destination requires a path")
		}
		sink, closeFn, err := zap.Open(filePath[0])
		if err != nil {
			return fmt.Errorf("open log file %s: %w", filePath[0], err)
		}
		cfg := zap.NewProductionEncoderConfig()
		cfg.EncodeTime = zapcore.RFC3339TimeEncoder
		core = zapcore.NewCore(zapcore.NewJSONEncoder(cfg), sink, zapcore.DebugLevel)
		closeSink = closeFn
	default:
		return fmt.Errorf("unknown log destination %q", dest)
	}

	z.mu.Lock()
	old, oldClose := z.logger, z.closeSink
	z.logger, z.closeSink = z.build(core), closeSink
	z.mu.Unlock()

	_ = old.Sync()
	if oldClose != nil {
		oldClose()
	}
	return nil
}

// Sync flushes buffered log entries.
func (z *ZapLogger) Sync() error {
	z.mu.Lock()
	defer z.mu.Unlock()
	return z.logger.Sync()
}

func (z *ZapLogger) log(level zapcore.Level, msg string, fields ...contracts.Field) {
	z.mu.Lock()
	logger := z.logger
	z.mu.Unlock()

	if ce := logger.Check(level, msg); ce != nil {
		ce.Write(toZapFields(fields)...)
	}
}

func toZapLevel(level contracts.LogLevel) zapcore.Level {
	switch level {
	case contracts.DebugLevel:
		return zapcore.DebugLevel
	case contracts.WarnLevel:
		return zapcore.WarnLevel
	case contracts.ErrorLevel:
		return zapcore.ErrorLevel
	case contracts.FatalLevel:
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

func toZapFields(fields []contracts.Field) []zap.Field {
	out := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		f, ok := field.(*zapField)
		if !ok || f.field.Type == zapcore.UnknownType {
			continue
		}
		out = append(out, f.field)
	}
	return out
}

// zapField implements contracts.Field
type zapField struct {
	field zap.Field
}

func (f *zapField) Bool(key string, val bool) contracts.Field {
	return &zapField{zap.Bool(key, val)}
}

func (f *zapField) Int(key string, val int) contracts.Field {
	return &zapField{zap.Int(key, val)}
}

func (f *zapField) Float64(key string, val float64) contracts.Field {
	return &zapField{zap.Float64(key, val)}
}

func (f *zapField) String(key string, val string) contracts.Field {
	return &zapField{zap.String(key, val)}
}

func (f *zapField) Time(key string, val time.Time) contracts.Field {
	return &zapField{zap.Time(key, val)}
}

func (f *zapField) Duration(key string, val time.Duration) contracts.Field {
	return &zapField{zap.Duration(key, val)}
}

func (f *zapField) Int64(key string, val int64) contracts.Field {
	return &zapField{zap.Int64(key, val)}
}

func (f *zapField) Error(key string, val error) contracts.Field {
	return &zapField{zap.NamedError(key, val)}
}

func (f *zapField) Uint64(key string, val uint64) contracts.Field {
	return &zapField{zap.Uint64(key, val)}
}

func (f *zapField) Uint8(key string, val uint8) contracts.Field {
	return &zapField{zap.Uint8(key, val)}
}
