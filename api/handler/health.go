package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/tasks/internal/infrastructure/monitor"
	"github.com/fastygo/tasks/pkg/httpcontext"
)

// StatusSource is satisfied by *monitor.Monitor.
type StatusSource interface {
	GetStatus() monitor.Status
}

type HealthHandler struct {
	baseHandler
	monitor StatusSource
}

func NewHealthHandler(mon StatusSource, adapter *httpcontext.Adapter, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		monitor:     mon,
	}
}

type healthResponse struct {
	Status string         `json:"status"`
	Checks monitor.Status `json:"checks"`
}

// @Summary Health check
// @Tags health
// @Router /health [get]
func (h *HealthHandler) Check(ctx *fasthttp.RequestCtx) {
	status := h.monitor.GetStatus()
	if status.Healthy() {
		h.respondJSON(ctx, http.StatusOK, healthResponse{Status: "healthy", Checks: status})
		return
	}
	h.respondJSON(ctx, http.StatusServiceUnavailable, healthResponse{Status: "unhealthy", Checks: status})
}
