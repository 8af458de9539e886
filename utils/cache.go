package utils

import (
	"context"
	"log"
	"time"

	"workhive/config"

	"github.com/go-redis/redis/v8"
)

var (
	// CacheClient is the generic cache client (match results and the like).
	CacheClient *redis.Client
	// GeoCacheClient is the dedicated client for geocode response caching.
	GeoCacheClient *redis.Client
)

// InitCache initializes the generic Redis cache client.
func InitCache() {
	CacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisCacheDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := CacheClient.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (Cache): %v", err)
	}
}

// GetCacheClient returns the generic cache client.
func GetCacheClient() *redis.Client {
	if CacheClient == nil {
		InitCache()
	}
	return CacheClient
}

// InitGeoCache initializes the Redis client for geocode caching.
func InitGeoCache() {
	GeoCacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisGeoDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := GeoCacheClient.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (Geo Cache): %v", err)
	}
}

// GetGeoCacheClient returns the Redis client for geocode caching.
func GetGeoCacheClient() *redis.Client {
	if GeoCacheClient == nil {
		InitGeoCache()
	}
	return GeoCacheClient
}
