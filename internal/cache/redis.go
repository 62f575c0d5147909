package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/boatbooking/config"
	"github.com/Domenick1991/boatbooking/internal/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client   redis.UniversalClient
	fleetTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, fleetTTL time.Duration) *RedisCache {
	return NewRedisCacheWithClient(
		redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		fleetTTL,
	)
}

func NewRedisCacheWithClient(client redis.UniversalClient, fleetTTL time.Duration) *RedisCache {
	return &RedisCache{client: client, fleetTTL: fleetTTL}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) GetBoats(ctx context.Context) ([]domain.Boat, error) {
	var boats []domain.Boat
	ok, err := c.getJSON(ctx, boatsKey(), &boats)
	if err != nil || !ok {
		return nil, err
	}
	return boats, nil
}

func (c *RedisCache) SetBoats(ctx context.Context, boats []domain.Boat) error {
	return c.setJSON(ctx, boatsKey(), boats)
}

func (c *RedisCache) GetTrips(ctx context.Context) ([]domain.Trip, error) {
	var trips []domain.Trip
	ok, err := c.getJSON(ctx, tripsKey(), &trips)
	if err != nil || !ok {
		return nil, err
	}
	return trips, nil
}

func (c *RedisCache) SetTrips(ctx context.Context, trips []domain.Trip) error {
	return c.setJSON(ctx, tripsKey(), trips)
}

func (c *RedisCache) InvalidateTrips(ctx context.Context) error {
	return c.client.Del(ctx, tripsKey()).Err()
}

func (c *RedisCache) getJSON(ctx context.Context, key string, dst any) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (c *RedisCache) setJSON(ctx context.Context, key string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, c.fleetTTL).Err()
}

// releaseScript deletes the lock only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// AcquireTripLock tries once to take the write lock of a trip. The returned
// token is needed to release it.
func (c *RedisCache) AcquireTripLock(ctx context.Context, tripID int64, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := c.client.SetNX(ctx, tripLockKey(tripID), token, ttl).Result()
	if err != nil {
		return "", false, err
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

func (c *RedisCache) ReleaseTripLock(ctx context.Context, tripID int64, token string) error {
	return releaseScript.Run(ctx, c.client, []string{tripLockKey(tripID)}, token).Err()
}

func boatsKey() string {
	return "cache:boats"
}

func tripsKey() string {
	return "cache:trips"
}

func tripLockKey(tripID int64) string {
	return fmt.Sprintf("lock:trip:%d", tripID)
}
