package utils

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

var rdb *redis.Client

// InitRedis 初始化 Redis 连接（未配置地址时跳过，缓存退化为进程内缓存）
func InitRedis(url, password string, db int) error {
	if url == "" {
		Logger().Info("REDIS_URL not set, using in-process cache")
		return nil
	}

	rdb = redis.NewClient(&redis.Options{
		Addr:     url,
		Password: password,
		DB:       db,
	})

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		rdb = nil
		return err
	}

	Logger().Info("Redis connected")
	return nil
}

// GetRedis 获取 Redis 客户端（可能为 nil）
func GetRedis() *redis.Client {
	return rdb
}

// CloseRedis 关闭 Redis 连接
func CloseRedis() error {
	if rdb != nil {
		return rdb.Close()
	}
	return nil
}
