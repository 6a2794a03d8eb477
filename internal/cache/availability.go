package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"event-ticketing/internal/model"

	"github.com/redis/go-redis/v9"
)

// ErrMiss 表示快取中沒有該活動的剩餘量快照
var ErrMiss = errors.New("availability not cached")

// AvailabilityCache caches per-event availability snapshots for the read path.
// Admission decisions never consult it; the repositories stay authoritative.
type AvailabilityCache interface {
	Get(ctx context.Context, eventID int) (*model.EventAvailability, error)
	Set(ctx context.Context, availability *model.EventAvailability, ttl time.Duration) error
	Invalidate(ctx context.Context, eventID int) error
}

type RedisAvailabilityCache struct {
	client *redis.Client
}

func NewRedisAvailabilityCache(client *redis.Client) AvailabilityCache {
	return &RedisAvailabilityCache{
		client: client,
	}
}

func (c *RedisAvailabilityCache) key(eventID int) string {
	return fmt.Sprintf("event:%d:availability", eventID)
}

func (c *RedisAvailabilityCache) Get(ctx context.Context, eventID int) (*model.EventAvailability, error) {
	result, err := c.client.HGetAll(ctx, c.key(eventID)).Result()
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, ErrMiss
	}

	capacity, err := strconv.Atoi(result["capacity"])
	if err != nil {
		return nil, fmt.Errorf("invalid capacity: %v", err)
	}

	booked, err := strconv.Atoi(result["booked"])
	if err != nil {
		return nil, fmt.Errorf("invalid booked: %v", err)
	}

	status := model.EventStatus(result["status"])

	// 只存 capacity/booked/status，其餘欄位讀取時重新推導
	return model.BuildAvailability(eventID, capacity, booked, status), nil
}

func (c *RedisAvailabilityCache) Set(ctx context.Context, availability *model.EventAvailability, ttl time.Duration) error {
	key := c.key(availability.EventID)
	err := c.client.HSet(ctx, key, map[string]interface{}{
		"capacity": availability.TotalCapacity,
		"booked":   availability.BookedTickets,
		"status":   string(availability.EventStatus),
	}).Err()
	if err != nil {
		return err
	}
	if ttl > 0 {
		return c.client.Expire(ctx, key, ttl).Err()
	}
	return nil
}

func (c *RedisAvailabilityCache) Invalidate(ctx context.Context, eventID int) error {
	return c.client.Del(ctx, c.key(eventID)).Err()
}
