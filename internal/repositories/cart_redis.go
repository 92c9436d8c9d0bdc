package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Gomonuka/cafe-management/models"
	"github.com/Gomonuka/cafe-management/pkg/logger"
)

// RedisCartStore keeps carts in Redis so sessions survive restarts and
// can be shared between instances. Each cart lives under one key with a
// sliding TTL refreshed on every save.
type RedisCartStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *logger.Logger
}

var _ CartStoreInterface = (*RedisCartStore)(nil)

func NewRedisCartStore(log *logger.Logger, client *redis.Client, ttl time.Duration) *RedisCartStore {
	return &RedisCartStore{
		client: client,
		ttl:    ttl,
		logger: log.WithComponent("redis_cart_store"),
	}
}

func cartKey(clientID string) string {
	return "cart:" + clientID
}

func (s *RedisCartStore) Get(ctx context.Context, clientID string) (*models.Cart, error) {
	data, err := s.client.Get(ctx, cartKey(clientID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		s.logger.Error("Failed to read cart from redis", "error", err, "client_id", clientID)
		return nil, fmt.Errorf("failed to read cart: %v", err)
	}

	cart := &models.Cart{}
	if err := json.Unmarshal(data, cart); err != nil {
		s.logger.Error("Failed to decode cart", "error", err, "client_id", clientID)
		return nil, fmt.Errorf("failed to decode cart: %v", err)
	}

	return cart, nil
}

func (s *RedisCartStore) Save(ctx context.Context, cart *models.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %v", err)
	}

	if err := s.client.Set(ctx, cartKey(cart.ClientID), data, s.ttl).Err(); err != nil {
		s.logger.Error("Failed to save cart to redis", "error", err, "client_id", cart.ClientID)
		return fmt.Errorf("failed to save cart: %v", err)
	}

	s.logger.Debug("Saved cart", "client_id", cart.ClientID, "items", len(cart.Items))
	return nil
}

func (s *RedisCartStore) Delete(ctx context.Context, clientID string) error {
	if err := s.client.Del(ctx, cartKey(clientID)).Err(); err != nil {
		s.logger.Error("Failed to delete cart from redis", "error", err, "client_id", clientID)
		return fmt.Errorf("failed to delete cart: %v", err)
	}

	s.logger.Debug("Deleted cart", "client_id", clientID)
	return nil
}
