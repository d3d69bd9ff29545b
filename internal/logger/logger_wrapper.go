package logger

import (
	"fmt"
	"sync"
	"time"

	"github.com/leandrodaf/padbridge/sdk/contracts"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger implements contracts.Logger on top of Uber's zap.
type ZapLogger struct {
	mu     sync.RWMutex
	logger *zap.Logger
	level  zap.AtomicLevel
	dev    bool // console encoder instead of JSON
}

// NewZapLogger creates a JSON production logger writing to stderr.
func NewZapLogger() contracts.Logger {
	return newZapLogger(false)
}

// NewStandardLogger creates a human-readable console logger, the one the CLI uses.
func NewStandardLogger() contracts.Logger {
	return newZapLogger(true)
}

// NewWithCore wraps an existing zap core. Used by tests with zaptest/observer.
func NewWithCore(core zapcore.Core) *ZapLogger {
	return &ZapLogger{
		logger: zap.New(core, zap.AddCaller(), zap.AddCallerSkip(2)),
		level:  zap.NewAtomicLevelAt(zapcore.DebugLevel),
	}
}

func newZapLogger(dev bool) *ZapLogger {
	z := &ZapLogger{level: zap.NewAtomicLevelAt(zapcore.InfoLevel), dev: dev}
	l, err := z.config("stderr").Build(zap.AddCallerSkip(2))
	if err != nil {
		l = zap.NewNop()
	}
	z.logger = l
	return z
}

func (z *ZapLogger) config(path string) zap.Config {
	cfg := zap.NewProductionConfig()
	if z.dev {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		if path != "stderr" && path != "stdout" {
			cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		}
	}
	cfg.Level = z.level
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg
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

// Field returns a new instance of Field
func (z *ZapLogger) Field() contracts.Field {
	return zapField{}
}

// SetLevel sets the logging level
func (z *ZapLogger) SetLevel(level contracts.LogLevel) {
	z.level.SetLevel(toZapLevel(level))
}

// SetDestination redirects output to the console or to a file.
func (z *ZapLogger) SetDestination(dest contracts.LogDestination, filePath ...string) error {
	path := "stderr"
	if dest == contracts.FileLog {
		if len(filePath) == 0 || filePath[0] == "" {
			return fmt.Errorf("file destination requires a path")
		}
		path = filePath[0]
	}

	l, err := z.config(path).Build(zap.AddCallerSkip(2))
	if err != nil {
		return fmt.Errorf("building logger for %s: %w", path, err)
	}

	z.mu.Lock()
	old := z.logger
	z.logger = l
	z.mu.Unlock()
	_ = old.Sync()
	return nil
}

// Sync flushes buffered log entries.
func (z *ZapLogger) Sync() error {
	z.mu.RLock()
	defer z.mu.RUnlock()
	return z.logger.Sync()
}

func (z *ZapLogger) log(level zapcore.Level, msg string, fields ...contracts.Field) {
	z.mu.RLock()
	l := z.logger
	z.mu.RUnlock()

	ce := l.Check(level, msg)
	if ce == nil {
		return
	}
	ce.Write(toZapFields(fields)...)
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
	if len(fields) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		if zf, ok := f.(zapField); ok && zf.set {
			out = append(out, zf.f)
		}
	}
	return out
}

// zapField implements contracts.Field
type zapField struct {
	f   zap.Field
	set bool
}

func (zapField) Bool(key string, val bool) contracts.Field {
	return zapField{zap.Bool(key, val), true}
}

func (zapField) Int(key string, val int) contracts.Field {
	return zapField{zap.Int(key, val), true}
}

func (zapField) Float64(key string, val float64) contracts.Field {
	return zapField{zap.Float64(key, val), true}
}

func (zapField) String(key string, val string) contracts.Field {
	return zapField{zap.String(key, val), true}
}

func (zapField) Time(key string, val time.Time) contracts.Field {
	return zapField{zap.Time(key, val), true}
}

func (zapField) Duration(key string, val time.Duration) contracts.Field {
	return zapField{zap.Duration(key, val), true}
}

func (zapField) Int64(key string, val int64) contracts.Field {
	return zapField{zap.Int64(key, val), true}
}

func (zapField) Error(key string, val error) contracts.Field {
	return zapField{zap.NamedError(key, val), true}
}

func (zapField) Uint64(key string, val uint64) contracts.Field {
	return zapField{zap.Uint64(key, val), true}
}

func (zapField) Uint8(key string, val uint8) contracts.Field {
	return zapField{zap.Uint8(key, val), true}
}

func (zapField) Bytes(key string, val []byte) contracts.Field {
	return zapField{zap.Uint8s(key, val), true}
}
