// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"glowapp/config"

	"github.com/go-redis/redis/v8"
)

var (
	// CacheClient is the generic cache client (AI results).
	CacheClient *redis.Client
	// BookingClient holds booking wizard sessions.
	BookingClient *redis.Client
)

func newRedisClient(db int, name string) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (%s): %v", name, err)
	}
	return client
}

// InitCache initializes the generic Redis cache client.
func InitCache() {
	CacheClient = newRedisClient(config.AppConfig.RedisCacheDB, "Cache")
}

// GetCacheClient returns the generic cache client.
func GetCacheClient() *redis.Client {
	if CacheClient == nil {
		InitCache()
	}
	return CacheClient
}

// InitBookingCache initializes the Redis client for booking sessions.
func InitBookingCache() {
	BookingClient = newRedisClient(config.AppConfig.RedisBookingDB, "Booking")
}

// GetBookingClient returns the Redis client for booking sessions.
func GetBookingClient() *redis.Client {
	if BookingClient == nil {
		InitBookingCache()
	}
	return BookingClient
}
