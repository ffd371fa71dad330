package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/tasks/api/transport"
	"github.com/fastygo/tasks/pkg/httpcontext"
	taskUC "github.com/fastygo/tasks/usecase/task"
)

type TaskHandler struct {
	baseHandler
	uc *taskUC.UseCase
}

func NewTaskHandler(uc *taskUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Create task
// @Tags tasks
// @Router /tasks/ [post]
func (h *TaskHandler) CreateTask(ctx *fasthttp.RequestCtx) {
	task, err := transport.DecodeTask(ctx.PostBody())
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.CreateTask(stdCtx, task)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, created)
}

// @Summary List tasks
// @Tags tasks
// @Router /tasks/ [get]
func (h *TaskHandler) ListTasks(ctx *fasthttp.RequestCtx) {
	args := ctx.QueryArgs()
	page, err := transport.ParsePage(string(args.Peek("offset")), string(args.Peek("limit")))
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tasks, err := h.uc.ListTasks(stdCtx, page)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, tasks)
}

// @Summary Get task
// @Tags tasks
// @Router /tasks/{task_id} [get]
func (h *TaskHandler) GetTask(ctx *fasthttp.RequestCtx) {
	id, err := h.taskID(ctx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := h.uc.GetTask(stdCtx, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, task)
}

// @Summary Delete task
// @Tags tasks
// @Router /tasks/{task_id} [delete]
func (h *TaskHandler) DeleteTask(ctx *fasthttp.RequestCtx) {
	id, err := h.taskID(ctx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.DeleteTask(stdCtx, id); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.Ack{OK: true})
}

func (h *TaskHandler) taskID(ctx *fasthttp.RequestCtx) (int64, error) {
	raw, _ := ctx.UserValue("task_id").(string)
	return transport.ParseTaskID(raw)
}
