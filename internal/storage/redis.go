package storage

import (
	"context"

	"github.com/go-redis/redis/v8"
)

// NewRedisClient 建立 Redis 連線，用於速率限制與執行結果快取
func NewRedisClient(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return client, nil
}
