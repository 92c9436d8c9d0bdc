package envconfig

import (
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoadRedisOptions builds the Redis client options for the cart
// session store from REDIS_* environment variables.
func LoadRedisOptions() *redis.Options {
	db := 0
	if dbStr := GetEnv("REDIS_DB", "0"); dbStr != "" {
		if parsed, err := strconv.Atoi(dbStr); err == nil {
			db = parsed
		}
	}

	return &redis.Options{
		Addr:     GetEnv("REDIS_ADDR", "localhost:6379"),
		Password: GetEnv("REDIS_PASSWORD", ""),
		DB:       db,
	}
}

// LoadCartTTL reads the cart session lifetime from CART_TTL.
func LoadCartTTL() time.Duration {
	if raw := GetEnv("CART_TTL", ""); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			return d
		}
	}
	return 24 * time.Hour
}
