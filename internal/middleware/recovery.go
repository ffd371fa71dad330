package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/tasks/pkg/httpcontext"
)

// Recovery turns a handler panic into a 500 response and logs the stack.
func Recovery(logger *zap.Logger) Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic recovered",
						zap.String("request_id", httpcontext.EnsureRequestID(ctx)),
						zap.String("panic", fmt.Sprint(rec)),
						zap.ByteString("stack", debug.Stack()))
					ctx.ResetBody()
					writeJSON(ctx, fasthttp.StatusInternalServerError, `{"detail":"internal server error","code":"INTERNAL"}`)
				}
			}()
			next(ctx)
		}
	}
}
