package middleware

import (
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/tasks/pkg/httpcontext"
)

// AccessLog logs one line per request and assigns the request ID early so
// every later log line for the request carries it.
func AccessLog(logger *zap.Logger) Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			started := time.Now()
			reqID := httpcontext.EnsureRequestID(ctx)

			next(ctx)

			status := ctx.Response.StatusCode()
			fields := []zap.Field{
				zap.String("request_id", reqID),
				zap.ByteString("method", ctx.Method()),
				zap.ByteString("path", ctx.Path()),
				zap.Int("status", status),
				zap.Duration("duration", time.Since(started)),
				zap.String("remote_ip", ctx.RemoteIP().String()),
			}
			if status >= fasthttp.StatusInternalServerError {
				logger.Warn("request completed", fields...)
				return
			}
			logger.Info("request completed", fields...)
		}
	}
}
