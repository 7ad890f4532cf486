package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"tow-dispatch-service/internal/domain"

	"github.com/redis/go-redis/v9"
)

// RedisLocationCache is a Redis-backed cache of owner coordinates with a
// TTL, for deployments where the cache is shared across instances.
type RedisLocationCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisLocationCache(client *redis.Client, ttl time.Duration) *RedisLocationCache {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &RedisLocationCache{Client: client, TTL: ttl}
}

type cachedLocation struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func locationKey(ownerID int) string {
	return fmt.Sprintf("owner_location:%d", ownerID)
}

// Fetch the cached coordinates for a single owner.
func (r *RedisLocationCache) Get(ctx context.Context, ownerID int) (domain.Coordinates, bool, error) {
	if r.Client == nil {
		return domain.Coordinates{}, false, errors.New("location cache: redis client is nil")
	}

	raw, err := r.Client.Get(ctx, locationKey(ownerID)).Result()
	if errors.Is(err, redis.Nil) {
		return domain.Coordinates{}, false, nil
	}
	if err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("get location cache owner=%d: %w", ownerID, err)
	}

	var loc cachedLocation
	if err := json.Unmarshal([]byte(raw), &loc); err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("get location cache owner=%d: decode: %w", ownerID, err)
	}

	return domain.Coordinates{Lat: loc.Lat, Lon: loc.Lon}, true, nil
}

// Fetch cached coordinates for many owners with a single MGET.
func (r *RedisLocationCache) GetMany(ctx context.Context, ownerIDs []int) (map[int]domain.Coordinates, error) {
	if r.Client == nil {
		return nil, errors.New("location cache: redis client is nil")
	}

	if len(ownerIDs) == 0 {
		return map[int]domain.Coordinates{}, nil
	}

	seen := map[int]struct{}{}
	uniq := make([]int, 0, len(ownerIDs))
	keys := make([]string, 0, len(ownerIDs))
	for _, id := range ownerIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		uniq = append(uniq, id)
		keys = append(keys, locationKey(id))
	}

	values, err := r.Client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("get location cache: mget: %w", err)
	}

	out := make(map[int]domain.Coordinates, len(uniq))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}

		var loc cachedLocation
		if err := json.Unmarshal([]byte(raw), &loc); err != nil {
			return nil, fmt.Errorf("get location cache owner=%d: decode: %w", uniq[i], err)
		}
		out[uniq[i]] = domain.Coordinates{Lat: loc.Lat, Lon: loc.Lon}
	}

	return out, nil
}

// Store the coordinates for one owner.
func (r *RedisLocationCache) Put(ctx context.Context, ownerID int, coords domain.Coordinates) error {
	if r.Client == nil {
		return errors.New("location cache: redis client is nil")
	}

	payload, err := json.Marshal(cachedLocation{Lat: coords.Lat, Lon: coords.Lon})
	if err != nil {
		return fmt.Errorf("insert location cache owner=%d: encode: %w", ownerID, err)
	}

	if err := r.Client.Set(ctx, locationKey(ownerID), payload, r.TTL).Err(); err != nil {
		return fmt.Errorf("insert location cache owner=%d: %w", ownerID, err)
	}

	return nil
}
