package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Level = zapcore.Level

const (
	LevelDebug = zapcore.DebugLevel
	LevelInfo  = zapcore.InfoLevel
	LevelWarn  = zapcore.WarnLevel
	LevelError = zapcore.ErrorLevel
)

var levelNames = map[string]Level{
	"":        LevelInfo,
	"info":    LevelInfo,
	"debug":   LevelDebug,
	"warn":    LevelWarn,
	"warning": LevelWarn,
	"error":   LevelError,
}

// Logger is a key/value facade over zap. The zero value and a nil pointer
// both log through Default().
type Logger struct {
	base     *zap.Logger
	syncOnce *sync.Once
}

var current atomic.Pointer[Logger]

func init() {
	current.Store(NewNop())
}

func ParseLevel(raw string) (Level, error) {
	level, ok := levelNames[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return LevelInfo, fmt.Errorf("unknown log level %q", raw)
	}
	return level, nil
}

func NewJSON(level Level) *Logger {
	return NewJSONWriter(os.Stdout, level)
}

// NewJSONWriter writes one JSON object per entry to w.
func NewJSONWriter(w io.Writer, level Level) *Logger {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "time"
	cfg.MessageKey = "msg"
	cfg.FunctionKey = zapcore.OmitKey
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	cfg.EncodeDuration = zapcore.StringDurationEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(cfg), zapcore.Lock(zapcore.AddSync(w)), level)
	return FromZap(zap.New(core, zap.AddCaller(), zap.AddCallerSkip(2), zap.AddStacktrace(LevelError)))
}

func NewNop() *Logger {
	return FromZap(nil)
}

func FromZap(z *zap.Logger) *Logger {
	if z == nil {
		z = zap.NewNop()
	}
	return &Logger{base: z, syncOnce: new(sync.Once)}
}

func Default() *Logger {
	return current.Load()
}

func SetDefault(logger *Logger) {
	if logger == nil {
		logger = NewNop()
	}
	current.Store(logger)
}

func (l *Logger) resolve() *Logger {
	if l == nil || l.base == nil {
		return Default()
	}
	return l
}

func (l *Logger) Zap() *zap.Logger {
	return l.resolve().base
}

// Sync flushes buffered entries once; later calls are no-ops.
func (l *Logger) Sync() error {
	if l == nil || l.base == nil {
		return nil
	}
	var err error
	l.syncOnce.Do(func() { err = l.base.Sync() })
	return err
}

func (l *Logger) With(args ...any) *Logger {
	parent := l.resolve()
	return &Logger{base: parent.base.With(toFields(args)...), syncOnce: parent.syncOnce}
}

// Named tags every entry with a component name, e.g. "settlement".
func (l *Logger) Named(component string) *Logger {
	return l.With("component", component)
}

func (l *Logger) Debug(msg string, args ...any) { l.emit(nil, LevelDebug, msg, args) }
func (l *Logger) Info(msg string, args ...any)  { l.emit(nil, LevelInfo, msg, args) }
func (l *Logger) Warn(msg string, args ...any)  { l.emit(nil, LevelWarn, msg, args) }
func (l *Logger) Error(msg string, args ...any) { l.emit(nil, LevelError, msg, args) }

func (l *Logger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.emit(ctx, LevelDebug, msg, args)
}

func (l *Logger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.emit(ctx, LevelInfo, msg, args)
}

func (l *Logger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.emit(ctx, LevelWarn, msg, args)
}

func (l *Logger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.emit(ctx, LevelError, msg, args)
}

func (l *Logger) emit(ctx context.Context, level Level, msg string, args []any) {
	entry := l.resolve().base.Check(level, msg)
	if entry == nil {
		return
	}
	fields := toFields(args)
	if ctx != nil {
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			fields = append(fields,
				zap.String("trace_id", sc.TraceID().String()),
				zap.String("span_id", sc.SpanID().String()),
			)
		}
	}
	entry.Write(fields...)
}

// toFields pairs up alternating key/value arguments. A non-string key is
// logged as "arg" and a trailing key without a value is logged as null.
func toFields(args []any) []zap.Field {
	fields := make([]zap.Field, 0, len(args)/2+1)
	for len(args) > 0 {
		key, ok := args[0].(string)
		if !ok || key == "" {
			key = "arg"
		}
		if len(args) == 1 {
			fields = append(fields, zap.Any(key, nil))
			break
		}
		fields = append(fields, toField(key, args[1]))
		args = args[2:]
	}
	return fields
}

func toField(key string, value any) zap.Field {
	switch v := value.(type) {
	case error:
		return zap.NamedError(key, v)
	case string:
		return zap.String(key, v)
	case int:
		return zap.Int(key, v)
	case int64:
		return zap.Int64(key, v)
	case bool:
		return zap.Bool(key, v)
	case time.Duration:
		return zap.Duration(key, v)
	case time.Time:
		return zap.Time(key, v)
	default:
		return zap.Any(key, v)
	}
}
