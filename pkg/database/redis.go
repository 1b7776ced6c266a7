package database

import (
	"context"
	"fmt"
	"thywilluche/internal/pkg/config"
	"thywilluche/pkg/logger"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewRedis 创建 Redis 客户端并检查连接
func NewRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(redisOptions(cfg))

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}
	return rdb, nil
}

func redisOptions(cfg config.RedisConfig) *redis.Options {
	pool := cfg.PoolSize
	if pool <= 0 {
		pool = 20
	}
	return &redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     pool,
		MinIdleConns: pool / 4,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolTimeout:  4 * time.Second,
	}
}

// InitRedis 初始化 Redis 连接，失败直接退出
func InitRedis() *redis.Client {
	cfg := config.GlobalConfig.Redis
	rdb, err := NewRedis(context.Background(), cfg)
	if err != nil {
		logger.Log.Fatal("connect redis", zap.Error(err))
	}

	logger.Log.Info("redis connected", zap.String("addr", cfg.Addr), zap.Int("pool_size", rdb.Options().PoolSize))
	return rdb
}
