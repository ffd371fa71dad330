package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/tasks/api/transport"
	"github.com/fastygo/tasks/domain"
	"github.com/fastygo/tasks/pkg/httpcontext"
)

type baseHandler struct {
	adapter *httpcontext.Adapter
	logger  *zap.Logger
}

func newBaseHandler(adapter *httpcontext.Adapter, logger *zap.Logger) baseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if adapter == nil {
		adapter = httpcontext.NewAdapter(0)
	}
	return baseHandler{adapter: adapter, logger: logger}
}

func (h baseHandler) requestContext(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	return h.adapter.Attach(ctx)
}

func (h baseHandler) respondJSON(ctx *fasthttp.RequestCtx, status int, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("encode response failed", zap.Error(err))
		status = http.StatusInternalServerError
		body = []byte(transport.NewError(string(domain.ErrCodeInternal), "internal server error").String())
	}
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(body)
}

func (h baseHandler) respondError(ctx *fasthttp.RequestCtx, err error) {
	status, code := mapError(err)
	detail := err.Error()
	if status == http.StatusInternalServerError {
		// storage details stay in the logs
		h.logger.Error("request failed",
			zap.String("request_id", httpcontext.EnsureRequestID(ctx)),
			zap.ByteString("path", ctx.Path()),
			zap.Error(err))
		detail = "internal server error"
	}
	h.respondJSON(ctx, status, transport.NewError(code, detail))
}

func mapError(err error) (int, string) {
	switch {
	case domain.IsDomainError(err, domain.ErrCodeInvalid):
		return http.StatusUnprocessableEntity, string(domain.ErrCodeInvalid)
	case domain.IsDomainError(err, domain.ErrCodeNotFound):
		return http.StatusNotFound, string(domain.ErrCodeNotFound)
	default:
		return http.StatusInternalServerError, string(domain.ErrCodeInternal)
	}
}
