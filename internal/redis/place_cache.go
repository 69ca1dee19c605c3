package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"exquisitos/internal/domain"

	goredis "github.com/redis/go-redis/v9"
)

// PlaceCache keeps the full most-recent-first place list as one JSON value.
// A cache miss returns (nil, nil): callers fall back to the repository.
type PlaceCache struct {
	client *goredis.Client
	key    string
}

func NewPlaceCache(r *Redis) *PlaceCache {
	return &PlaceCache{
		client: r.Client,
		key:    "places:all",
	}
}

func (c *PlaceCache) Get(ctx context.Context) ([]domain.Place, error) {
	data, err := c.client.Get(ctx, c.key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var places []domain.Place
	if err := json.Unmarshal(data, &places); err != nil {
		return nil, err
	}

	return places, nil
}

func (c *PlaceCache) Set(ctx context.Context, places []domain.Place, ttl time.Duration) error {
	b, err := json.Marshal(places)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key, b, ttl).Err()
}

func (c *PlaceCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, c.key).Err()
}
