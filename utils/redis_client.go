package utils

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/devmahmod/social-api/config"
)

var redisClient *redis.Client

// InitRedis connects the cache client. Redis is optional: with no host
// configured the client stays nil and every cache helper degrades to a no-op
// (and the token blacklist to its in-memory fallback).
func InitRedis(cfg config.AppConfig) *redis.Client {
	if cfg.RedisHost == "" {
		return nil
	}
	redisClient = redis.NewClient(&redis.Options{
		Addr:         net.JoinHostPort(cfg.RedisHost, strconv.Itoa(cfg.RedisPort)),
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		Sugar.Warnf("redis unreachable, caching degraded: %v", err)
	}
	return redisClient
}

// GetRedis returns the initialized client, or nil when Redis is disabled.
func GetRedis() *redis.Client {
	return redisClient
}
