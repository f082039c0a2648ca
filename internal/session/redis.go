package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/freee021022/onconet/pkg/metrics"
)

const keyPrefix = "onconet:session:"

// RedisStore keeps sessions in Redis with the session TTL as key expiry.
type RedisStore struct {
	client  *redis.Client
	metrics *metrics.Metrics
}

// NewRedisStore connects to url and pings the server. m may be nil.
func NewRedisStore(ctx context.Context, url string, m *metrics.Metrics) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	// Test connection
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{client: client, metrics: m}, nil
}

func (s *RedisStore) Save(ctx context.Context, sess *Session, ttl time.Duration) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	start := time.Now()
	err = s.client.Set(ctx, keyPrefix+sess.ID, data, ttl).Err()
	s.metrics.ObserveRedis("session_save", start, err)
	return err
}

func (s *RedisStore) Load(ctx context.Context, id string) (*Session, error) {
	start := time.Now()
	data, err := s.client.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		s.metrics.ObserveRedis("session_load", start, nil)
		return nil, ErrNotFound
	}
	s.metrics.ObserveRedis("session_load", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &sess, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	start := time.Now()
	err := s.client.Del(ctx, keyPrefix+id).Err()
	s.metrics.ObserveRedis("session_delete", start, err)
	return err
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
