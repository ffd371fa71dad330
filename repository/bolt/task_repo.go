// Package bolt stores tasks in a single BoltDB file. It backs the embedded
// deployment where no Postgres server is available.
package bolt

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/fastygo/tasks/domain"
	"github.com/fastygo/tasks/repository"
)

const taskBucket = "task"

type taskRepository struct {
	db     *bolt.DB
	bucket []byte
}

// Open initializes the BoltDB file and ensures the task bucket exists.
func Open(path string) (repository.TaskRepository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(taskBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &taskRepository{db: db, bucket: []byte(taskBucket)}, nil
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	created := task.Clone()
	err := r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(r.bucket)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		created.ID = int64(seq)

		payload, err := json.Marshal(created)
		if err != nil {
			return err
		}
		return b.Put(itob(created.ID), payload)
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
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tasks := make([]domain.Task, 0, page.Limit)
	err := r.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(r.bucket).Cursor()
		skipped := 0
		for k, v := c.First(); k != nil && len(tasks) < page.Limit; k, v = c.Next() {
			if skipped < page.Offset {
				skipped++
				continue
			}
			var task domain.Task
			if err := json.Unmarshal(v, &task); err != nil {
				return fmt.Errorf("decode task %d: %w", btoi(k), err)
			}
			tasks = append(tasks, task)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (r *taskRepository) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var task *domain.Task
	err := r.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(r.bucket).Get(itob(id))
		if v == nil {
			return domain.ErrTaskNotFound
		}
		task = &domain.Task{}
		return json.Unmarshal(v, task)
	})
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get task %d: %w", id, err)
	}
	return task, nil
}

func (r *taskRepository) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(r.bucket)
		key := itob(id)
		if b.Get(key) == nil {
			return domain.ErrTaskNotFound
		}
		return b.Delete(key)
	})
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return err
		}
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	return nil
}

func (r *taskRepository) Ping(ctx context.Context) error {
	if r.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return r.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket(r.bucket) == nil {
			return fmt.Errorf("bucket %q missing", r.bucket)
		}
		return nil
	})
}

func (r *taskRepository) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// Keys are big-endian so cursor order matches id order.
func itob(id int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(id))
	return b
}

func btoi(b []byte) int64 {
	return int64(binary.BigEndian.Uint64(b))
}
