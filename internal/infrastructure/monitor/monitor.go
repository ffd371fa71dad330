package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Pinger is satisfied by the task repositories.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Monitor keeps a periodically refreshed snapshot of dependency health so
// the health endpoint never blocks on a slow dependency.
type Monitor struct {
	storage Pinger
	driver  string
	redis   *redislib.Client

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	cron     *cron.Cron
	logger   *zap.Logger
}

func New(storage Pinger, driver string, redis *redislib.Client, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval < time.Second {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		storage:  storage,
		driver:   driver,
		redis:    redis,
		interval: interval,
		cron:     cron.New(),
		logger:   logger,
		status: Status{
			StorageDriver: driver,
			RedisEnabled:  redis != nil,
		},
	}
}

// Start runs one check synchronously and then schedules the rest.
func (m *Monitor) Start() error {
	m.Refresh(context.Background())

	schedule := fmt.Sprintf("@every %s", m.interval)
	if _, err := m.cron.AddFunc(schedule, func() { m.Refresh(context.Background()) }); err != nil {
		return err
	}
	m.cron.Start()
	m.logger.Info("health monitor started", zap.Duration("interval", m.interval))
	return nil
}

// Stop halts the schedule and waits for a running check, bounded by ctx.
func (m *Monitor) Stop(ctx context.Context) {
	stopCtx := m.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// Refresh checks every dependency and replaces the snapshot.
func (m *Monitor) Refresh(ctx context.Context) {
	status := Status{
		StorageDriver: m.driver,
		Storage:       m.checkStorage(ctx),
		RedisEnabled:  m.redis != nil,
		Redis:         m.checkRedis(ctx),
		LastCheck:     time.Now().UTC(),
	}

	m.mu.Lock()
	previous := m.status
	m.status = status
	m.mu.Unlock()

	if !previous.LastCheck.IsZero() && previous.Storage != status.Storage {
		m.logger.Warn("storage availability changed",
			zap.String("driver", m.driver),
			zap.Bool("online", status.Storage))
	}
}

func (m *Monitor) checkStorage(ctx context.Context) bool {
	if m.storage == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := m.storage.Ping(ctx); err != nil {
		m.logger.Debug("storage ping failed", zap.Error(err))
		return false
	}
	return true
}

func (m *Monitor) checkRedis(ctx context.Context) bool {
	if m.redis == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return m.redis.Ping(ctx).Err() == nil
}
