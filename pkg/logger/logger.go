package logger

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type ctxKey string

const (
	requestIDKey ctxKey = "request_id"
	clientKey    ctxKey = "client"
)

type client struct {
	remoteAddr string
	userAgent  string
}

// Config mirrors config.LoggerConfig but avoids importing the config package here.
type Config struct {
	Level    string
	Encoding string
	// Output defaults to stdout.
	Output io.Writer
}

// New builds a zap.Logger using the provided configuration.
func New(cfg Config) (*zap.Logger, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	level := zapcore.InfoLevel
	if cfg.Level != "" {
		parsed, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
		level = parsed
	}

	var encoder zapcore.Encoder
	switch cfg.Encoding {
	case "console":
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	case "json", "":
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	default:
		return nil, fmt.Errorf("unknown log encoding %q", cfg.Encoding)
	}

	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	core := zapcore.NewCore(
		encoder,
		zapcore.Lock(zapcore.AddSync(out)),
		level,
	)

	return zap.New(core, zap.AddCaller()), nil
}

// ContextWithRequestID attaches a request ID to the provided context.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestID returns the request ID stored in ctx, if any.
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	reqID, _ := ctx.Value(requestIDKey).(string)
	return reqID
}

// ContextWithClient records the caller's address and user agent for log lines.
func ContextWithClient(ctx context.Context, remoteAddr, userAgent string) context.Context {
	if remoteAddr == "" && userAgent == "" {
		return ctx
	}
	return context.WithValue(ctx, clientKey, client{remoteAddr: remoteAddr, userAgent: userAgent})
}

// WithRequestID enriches the logger with the request ID and client metadata
// stored in the context.
func WithRequestID(ctx context.Context, base *zap.Logger) *zap.Logger {
	if base == nil {
		return zap.NewNop()
	}
	if ctx == nil {
		return base
	}

	var fields []zap.Field
	if reqID := RequestID(ctx); reqID != "" {
		fields = append(fields, zap.String("request_id", reqID))
	}
	if c, ok := ctx.Value(clientKey).(client); ok {
		if c.remoteAddr != "" {
			fields = append(fields, zap.String("remote_addr", c.remoteAddr))
		}
		if c.userAgent != "" {
			fields = append(fields, zap.String("user_agent", c.userAgent))
		}
	}
	if len(fields) == 0 {
		return base
	}
	return base.With(fields...)
}
