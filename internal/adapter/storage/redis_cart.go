package storage

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/storefront/internal/core/domain"
)

const cartKeyPrefix = "cart:"

// RedisCartAdapter keeps each user's cart as one hash: field = product id,
// value = quantity. Pure current-state, no history.
type RedisCartAdapter struct {
	client *redis.Client
}

func NewRedisCartAdapter(client *redis.Client) *RedisCartAdapter {
	return &RedisCartAdapter{client: client}
}

func cartKey(userID int64) string {
	return cartKeyPrefix + strconv.FormatInt(userID, 10)
}

func (r *RedisCartAdapter) SetQuantity(ctx context.Context, userID, productID int64, qty int) error {
	if qty <= 0 {
		return r.Remove(ctx, userID, productID)
	}
	return r.client.HSet(ctx, cartKey(userID), strconv.FormatInt(productID, 10), qty).Err()
}

func (r *RedisCartAdapter) Remove(ctx context.Context, userID, productID int64) error {
	return r.client.HDel(ctx, cartKey(userID), strconv.FormatInt(productID, 10)).Err()
}

func (r *RedisCartAdapter) GetAll(ctx context.Context, userID int64) (domain.Cart, error) {
	fields, err := r.client.HGetAll(ctx, cartKey(userID)).Result()
	if err != nil {
		return nil, err
	}

	cart := make(domain.Cart, len(fields))
	for field, value := range fields {
		productID, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("corrupt cart field %q: %w", field, err)
		}
		qty, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("corrupt cart quantity %q: %w", value, err)
		}
		if qty > 0 {
			cart[productID] = qty
		}
	}
	return cart, nil
}

func (r *RedisCartAdapter) Clear(ctx context.Context, userID int64) error {
	return r.client.Del(ctx, cartKey(userID)).Err()
}
