package main

import (
	"context"
	"fmt"

	"github.com/fjod/rocketshoes-cart/internal/config"
	"github.com/fjod/rocketshoes-cart/internal/logger"
	"github.com/fjod/rocketshoes-cart/internal/repository"
	"github.com/redis/go-redis/v9"
)

func openRepository(ctx context.Context, cfg *config.Config, log *logger.Logger) (repository.CartRepository, error) {
	logCtx := log.WithField(ctx, "backend", cfg.StorageBackend)

	switch cfg.StorageBackend {
	case config.BackendSQLite:
		repo, err := repository.NewSQLiteRepository(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := repo.RunMigrations(); err != nil {
			_ = repo.Close()
			return nil, err
		}
		log.Info(log.WithField(logCtx, "path", cfg.SQLitePath), "cart storage ready")
		return repo, nil

	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("redis connection failed: %w", err)
		}
		log.Info(log.WithField(logCtx, "addr", cfg.RedisAddr), "cart storage ready")
		return repository.NewRedisRepository(client, cfg.RedisTTL), nil

	case config.BackendMongo:
		db, err := repository.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			return nil, err
		}
		log.Info(log.WithField(logCtx, "database", cfg.MongoDBName), "cart storage ready")
		return repository.NewMongoRepository(db), nil

	case config.BackendMemory:
		log.Warn(logCtx, "cart storage is not durable", nil)
		return repository.NewMemoryRepository(), nil
	}

	return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
}
