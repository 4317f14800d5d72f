package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/rocketshoes-cart/internal/domain"
	"github.com/redis/go-redis/v9"
)

const defaultRedisNamespace = "cartstore"

type RedisRepository struct {
	client    *redis.Client
	namespace string
	ttl       time.Duration // 0 keeps the key forever
}

func NewRedisRepository(client *redis.Client, ttl time.Duration) *RedisRepository {
	return &RedisRepository{
		client:    client,
		namespace: defaultRedisNamespace,
		ttl:       ttl,
	}
}

func (r *RedisRepository) GetCart(ctx context.Context, key string) (domain.Cart, error) {
	data, err := r.client.Get(ctx, r.redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCartNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	return decodeCart(data)
}

func (r *RedisRepository) SaveCart(ctx context.Context, key string, cart domain.Cart) error {
	data, err := encodeCart(cart)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.redisKey(key), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisRepository) Close() error {
	return r.client.Close()
}

func (r *RedisRepository) redisKey(key string) string {
	return fmt.Sprintf("%s:%s", r.namespace, key)
}
