package task

import (
	"context"

	"go.uber.org/zap"

	"github.com/fastygo/tasks/domain"
	"github.com/fastygo/tasks/pkg/logger"
	"github.com/fastygo/tasks/repository"
)

type UseCase struct {
	tasks  repository.TaskRepository
	logger *zap.Logger
}

func New(tasks repository.TaskRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:  tasks,
		logger: logger,
	}
}

// CreateTask inserts the task and returns it with the storage-assigned id.
// Any id on the input is discarded.
func (uc *UseCase) CreateTask(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	input := task.Clone()
	input.ID = 0

	created, err := uc.tasks.Create(ctx, &input)
	if err != nil {
		uc.log(ctx).Error("create task failed", zap.Error(err))
		return nil, err
	}
	uc.log(ctx).Debug("task created", zap.Int64("task_id", created.ID))
	return created, nil
}

func (uc *UseCase) ListTasks(ctx context.Context, page repository.Page) ([]domain.Task, error) {
	if err := page.Validate(); err != nil {
		return nil, err
	}
	tasks, err := uc.tasks.List(ctx, page)
	if err != nil {
		uc.log(ctx).Error("list tasks failed", zap.Int("offset", page.Offset), zap.Int("limit", page.Limit), zap.Error(err))
		return nil, err
	}
	return tasks, nil
}

func (uc *UseCase) GetTask(ctx context.Context, id int64) (*domain.Task, error) {
	task, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		uc.logFailure(ctx, "get task failed", id, err)
		return nil, err
	}
	return task, nil
}

func (uc *UseCase) DeleteTask(ctx context.Context, id int64) error {
	if err := uc.tasks.Delete(ctx, id); err != nil {
		uc.logFailure(ctx, "delete task failed", id, err)
		return err
	}
	uc.log(ctx).Debug("task deleted", zap.Int64("task_id", id))
	return nil
}

// Not-found is a normal client outcome and is not logged as an error.
func (uc *UseCase) logFailure(ctx context.Context, msg string, id int64, err error) {
	if domain.IsDomainError(err, domain.ErrCodeNotFound) {
		return
	}
	uc.log(ctx).Error(msg, zap.Int64("task_id", id), zap.Error(err))
}

func (uc *UseCase) log(ctx context.Context) *zap.Logger {
	return logger.WithRequestID(ctx, uc.logger)
}
