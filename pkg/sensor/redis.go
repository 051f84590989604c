package sensor

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	redisstore "github.com/eko/gocache/store/redis/v4"
	"github.com/redis/go-redis/v9"
)

const DefaultExpiration = 90 * time.Minute

const redisKeyPrefix = "wienerlinien:sensor:"

// RedisStore keeps JSON snapshots in redis so other processes can query them
type RedisStore struct {
	Cache *cache.Cache[string]
}

func NewRedisStore(client *redis.Client, expiration time.Duration) *RedisStore {
	if expiration <= 0 {
		expiration = DefaultExpiration
	}

	redisStore := redisstore.NewRedis(client, store.WithExpiration(expiration))

	return &RedisStore{
		Cache: cache.New[string](redisStore),
	}
}

func (r *RedisStore) Publish(ctx context.Context, sensor *Sensor) error {
	sensorJSON, err := json.Marshal(sensor)
	if err != nil {
		return fmt.Errorf("failed to encode sensor %s: %w", sensor.UniqueID, err)
	}

	if err := r.Cache.Set(ctx, redisKeyPrefix+sensor.UniqueID, string(sensorJSON)); err != nil {
		return fmt.Errorf("failed to store sensor %s: %w", sensor.UniqueID, err)
	}

	return nil
}

func (r *RedisStore) Get(ctx context.Context, id string) (*Sensor, error) {
	sensorJSON, err := r.Cache.Get(ctx, redisKeyPrefix+id)
	if err != nil {
		return nil, err
	}

	var sensor Sensor
	if err := json.Unmarshal([]byte(sensorJSON), &sensor); err != nil {
		return nil, fmt.Errorf("failed to decode sensor %s: %w", id, err)
	}

	return &sensor, nil
}
