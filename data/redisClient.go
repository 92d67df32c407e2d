package data

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/KotFed0t/tinkoff_report_bot/config"
	"github.com/redis/go-redis/v9"
)

const redisPingTimeout = 5 * time.Second

// NewRedisClient returns a client shared by conversation sessions and the instrument cache.
func NewRedisClient(ctx context.Context, cfg *config.Config) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()

	pong, err := rdb.Ping(ctx).Result()
	if err != nil {
		slog.Error("Error while connecting Redis", slog.String("error", err.Error()))
		panic(err)
	}
	slog.Info("Redis connected", slog.String("pong", pong), slog.Int("db", cfg.Redis.DB))

	return rdb
}
