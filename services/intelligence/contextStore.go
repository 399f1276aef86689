package ai

import (
	"context"
	"encoding/json"
	"time"

	"glowapp/models"

	"github.com/go-redis/redis/v8"
)

const styleResultPrefix = "ai:style:"

// RedisResultStore keeps each user's last recommendation run.
type RedisResultStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisResultStore(client *redis.Client, ttl time.Duration) *RedisResultStore {
	return &RedisResultStore{client: client, ttl: ttl}
}

// Get returns ErrNoRecommendation when nothing is stored.
func (s *RedisResultStore) Get(ctx context.Context, userID string) (*models.StyleRecommendationOutput, error) {
	data, err := s.client.Get(ctx, styleResultPrefix+userID).Result()
	if err == redis.Nil {
		return nil, ErrNoRecommendation
	}
	if err != nil {
		return nil, err
	}
	var out models.StyleRecommendationOutput
	if err := json.Unmarshal([]byte(data), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *RedisResultStore) Set(ctx context.Context, userID string, out *models.StyleRecommendationOutput) error {
	b, err := json.Marshal(out)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, styleResultPrefix+userID, b, s.ttl).Err()
}
