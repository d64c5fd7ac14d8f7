package app

import (
	"context"
	"fmt"

	"agenthub/internal/cache"
	"agenthub/internal/config"
	"agenthub/internal/database"
	"agenthub/internal/notify"
	"agenthub/internal/repository"
	"agenthub/internal/security"
	"agenthub/internal/service"
	"agenthub/internal/storage"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Container holds the process-wide dependencies built at startup.
type Container struct {
	DB       *database.DB
	Repo     *repository.Repository
	Services *service.Service
	redis    *redis.Client
	log      *zap.Logger
}

func App(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Container, error) {
	// connection DB
	db, err := database.ConnectDB(ctx, cfg.DB, log)
	if err != nil {
		return nil, err
	}

	// connection MinIO
	minioClient, err := storage.NewMinIOClient(ctx, cfg.MinIO)
	if err != nil {
		db.CloseDB()
		return nil, fmt.Errorf("init minio: %w", err)
	}

	c := &Container{DB: db, log: log}

	deps := service.Deps{
		Hasher:     security.NewPasswordHasher(0),
		Tokens:     security.NewTokenService(cfg.JWT, nil),
		Dispatcher: notify.NewDispatcher(notify.New(cfg.Notifier, log), log, cfg.Notifier.SendTimeout),
		Storage:    minioClient,
		Log:        log,
	}

	// redis only fronts view dedup, so the app runs without it
	if cfg.Redis.Enabled {
		rdb, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Warn("redis unavailable, view dedup falls back to the database", zap.Error(err))
		} else {
			c.redis = rdb
			deps.ViewGate = cache.NewViewGate(rdb, service.ViewDedupWindow)
		}
	}

	c.Repo = repository.NewRepository(db.DB)
	c.Services = service.NewService(c.Repo, cfg, deps)

	return c, nil
}

func (c *Container) Close() {
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			c.log.Warn("close redis", zap.Error(err))
		}
	}
	if err := c.DB.CloseDB(); err != nil {
		c.log.Warn("close database", zap.Error(err))
	}
}
