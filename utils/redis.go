package utils

import (
	"context"
	"fmt"
	"time"

	"kpitracker/config"

	"github.com/redis/go-redis/v9"
)

var (
	// LockClient backs the archive lock.
	LockClient *redis.Client
)

// InitLockClient connects the Redis client used for distributed locks.
func InitLockClient(ctx context.Context) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisLockDB,
	})
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis (lock): %w", err)
	}
	LockClient = client
	return client, nil
}

// CloseRedis closes every client opened by this package.
func CloseRedis() {
	if LockClient != nil {
		_ = LockClient.Close()
		LockClient = nil
	}
	if CacheClient != nil {
		_ = CacheClient.Close()
		CacheClient = nil
	}
}
