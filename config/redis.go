package config

import (
	"firehorse/global"

	"github.com/go-redis/redis"
	"go.uber.org/zap"
)

func initRedis() {
	addr := AppConfig.Redis.Addr
	if addr == "" {
		global.Logger.Info("redis addr empty, like ranking will be served from the database")
		return
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		DB:       AppConfig.Redis.DB,
		Password: AppConfig.Redis.Password,
	})
	if _, err := client.Ping().Result(); err != nil {
		global.Logger.Warn("Failed to connect to Redis, continuing without it", zap.String("addr", addr), zap.Error(err))
		_ = client.Close()
		return
	}

	global.RedisDB = client
	global.Logger.Info("Redis initialized", zap.String("addr", addr))
}
