package httpcontext

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	appLogger "github.com/fastygo/tasks/pkg/logger"
)

// RequestIDHeader is read from requests and echoed on every response.
const RequestIDHeader = "X-Request-ID"

const requestIDUserValue = "request_id"

// Adapter converts fasthttp.RequestCtx into a stdlib context with deadlines and metadata.
type Adapter struct {
	timeout time.Duration
}

// NewAdapter constructs a new Adapter using the provided timeout.
func NewAdapter(timeout time.Duration) *Adapter {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Adapter{
		timeout: timeout,
	}
}

// Attach creates the request-scoped context handed to the use case layer.
// The caller must invoke the returned CancelFunc when the handler returns.
func (a *Adapter) Attach(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	stdCtx, cancel := context.WithTimeout(context.Background(), a.timeout)

	stdCtx = appLogger.ContextWithRequestID(stdCtx, EnsureRequestID(ctx))

	var remoteAddr string
	if addr := ctx.RemoteAddr(); addr != nil {
		remoteAddr = addr.String()
	}
	stdCtx = appLogger.ContextWithClient(stdCtx, remoteAddr, string(ctx.Request.Header.UserAgent()))

	return stdCtx, cancel
}

// EnsureRequestID returns the request's ID, taking it from the incoming
// header or generating one, and records it on the response.
func EnsureRequestID(ctx *fasthttp.RequestCtx) string {
	if ctx == nil {
		return uuid.NewString()
	}
	if id, ok := ctx.UserValue(requestIDUserValue).(string); ok && id != "" {
		return id
	}

	id := strings.TrimSpace(string(ctx.Request.Header.Peek(RequestIDHeader)))
	if id == "" {
		id = uuid.NewString()
	}
	ctx.SetUserValue(requestIDUserValue, id)
	ctx.Response.Header.Set(RequestIDHeader, id)
	return id
}
