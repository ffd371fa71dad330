package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/tasks/domain"
	"github.com/fastygo/tasks/repository"
)

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO task (task, description, "time")
	VALUES ($1, $2, $3)
	RETURNING id
	`

	created := task.Clone()
	err := withSession(ctx, r.pool, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, query, created.Task, created.Description, created.Time).Scan(&created.ID)
	})
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return &created, nil
}

func (r *taskRepository) List(ctx context.Context, page repository.Page) ([]domain.Task, error) {
	if err := page.Validate(); err != nil {
		return nil, err
	}

	const query = `
	SELECT id, task, description, "time"
	FROM task
	ORDER BY id
	LIMIT $1 OFFSET $2
	`

	tasks := make([]domain.Task, 0, page.Limit)
	err := withSession(ctx, r.pool, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query, page.Limit, page.Offset)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			task, err := scanTask(rows)
			if err != nil {
				return err
			}
			tasks = append(tasks, *task)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (r *taskRepository) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	const query = `
	SELECT id, task, description, "time"
	FROM task
	WHERE id = $1
	`

	var task *domain.Task
	err := withSession(ctx, r.pool, func(tx pgx.Tx) error {
		var err error
		task, err = scanTask(tx.QueryRow(ctx, query, id))
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("get task %d: %w", id, err)
	}
	return task, nil
}

func (r *taskRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM task WHERE id = $1`

	err := withSession(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, query, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrTaskNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return domain.ErrTaskNotFound
		}
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	return nil
}

func (r *taskRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *taskRepository) Close() error {
	r.pool.Close()
	return nil
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var task domain.Task
	if err := row.Scan(&task.ID, &task.Task, &task.Description, &task.Time); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}
