package middleware

import (
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// Middleware wraps a fasthttp handler.
type Middleware func(fasthttp.RequestHandler) fasthttp.RequestHandler

// Chain applies middlewares so the first one listed is the outermost.
func Chain(h fasthttp.RequestHandler, mws ...Middleware) fasthttp.RequestHandler {
	for i := len(mws) - 1; i >= 0; i-- {
		if mws[i] != nil {
			h = mws[i](h)
		}
	}
	return h
}

// Server wraps h with the service's standard stack. The access log is
// outermost so recovered panics and rate-limited requests still get a line.
func Server(h fasthttp.RequestHandler, logger *zap.Logger, limiter Limiter) fasthttp.RequestHandler {
	return Chain(h,
		AccessLog(logger),
		Recovery(logger),
		RateLimit(limiter, logger),
	)
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, body string) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBodyString(body)
}
