package main

import (
	"context"
	"errors"
	"log"
	"time"

	goRedis "github.com/redis/go-redis/v9"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/tasks/api/handler"
	"github.com/fastygo/tasks/internal/config"
	"github.com/fastygo/tasks/internal/infrastructure/monitor"
	pgInfra "github.com/fastygo/tasks/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/tasks/internal/infrastructure/redis"
	"github.com/fastygo/tasks/internal/middleware"
	"github.com/fastygo/tasks/internal/router"
	"github.com/fastygo/tasks/internal/services/lifecycle"
	"github.com/fastygo/tasks/pkg/httpcontext"
	"github.com/fastygo/tasks/pkg/logger"
	"github.com/fastygo/tasks/repository"
	boltRepo "github.com/fastygo/tasks/repository/bolt"
	"github.com/fastygo/tasks/repository/postgres"
	taskUC "github.com/fastygo/tasks/usecase/task"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	stopListening := manager.Listen(cancel)
	defer stopListening()

	taskRepo, err := openTaskRepository(appCtx, cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("task storage unavailable", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}
	manager.Register("storage", func(ctx context.Context) error {
		return taskRepo.Close()
	})

	var redisClient *goRedis.Client
	if cfg.RedisEnabled() {
		redisClient, err = redisInfra.NewClient(appCtx, cfg.Redis, zapLogger)
		if err != nil {
			zapLogger.Fatal("redis connection failed", zap.Error(err))
		}
		manager.Register("redis", func(ctx context.Context) error {
			return redisClient.Close()
		})
	}

	mon := monitor.New(taskRepo, cfg.Storage.Driver, redisClient, cfg.Monitor.Interval, zapLogger)
	if err := mon.Start(); err != nil {
		zapLogger.Fatal("health monitor failed to start", zap.Error(err))
	}
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop(ctx)
		return nil
	})

	taskUseCase := taskUC.New(taskRepo, zapLogger)
	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	r := router.New(router.Handlers{
		Task:   apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, zapLogger),
		Health: apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	})

	handler := middleware.Server(r.Handler, zapLogger, newLimiter(cfg, redisClient))

	server := &fasthttp.Server{
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started",
			zap.String("address", cfg.Address()),
			zap.String("storage", cfg.Storage.Driver),
			zap.String("env", cfg.Environment))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Error("server crashed", zap.Error(err))
			cancel()
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}

func openTaskRepository(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.TaskRepository, error) {
	switch cfg.Storage.Driver {
	case config.DriverBolt:
		repo, err := boltRepo.Open(cfg.Storage.BoltPath)
		if err != nil {
			return nil, err
		}
		logger.Info("opened bolt task store", zap.String("path", cfg.Storage.BoltPath))
		return repo, nil
	case config.DriverPostgres:
		if err := pgInfra.EnsureSchema(cfg, logger); err != nil {
			return nil, err
		}
		pool, err := pgInfra.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			return nil, err
		}
		return postgres.NewTaskRepository(pool), nil
	default:
		return nil, errors.New("unsupported storage driver " + cfg.Storage.Driver)
	}
}

func newLimiter(cfg *config.Config, redisClient *goRedis.Client) middleware.Limiter {
	if cfg.RateLimit.RequestsPerMin <= 0 {
		return nil
	}
	if redisClient != nil {
		return middleware.NewRedisLimiter(redisClient, cfg.RateLimit.RequestsPerMin, time.Minute)
	}
	return middleware.NewLocalLimiter(cfg.RateLimit.RequestsPerMin, cfg.RateLimit.Burst)
}
