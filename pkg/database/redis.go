package database

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"tigersai/internal/config"
	"tigersai/pkg/log"
)

var RDB *redis.Client

const redisPingTimeout = 3 * time.Second

// OpenRedis 创建客户端并 ping 一次，连接不上时返回错误。
func OpenRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// InitRedis 初始化全局 Redis 客户端，会话记录与 Kafka 重试计数都存放在这里。
func InitRedis(cfg config.RedisConfig) {
	client, err := OpenRedis(context.Background(), cfg)
	if err != nil {
		log.Fatal("failed to init redis", err)
	}
	RDB = client
	log.Info("Redis client connected successfully")
}
