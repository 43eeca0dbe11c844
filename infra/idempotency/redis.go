// Package idempotency provides the Redis-backed idempotency cache.
package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/amirasaad/pixflow/pkg/idempotency"
	"github.com/redis/go-redis/v9"
)

// RedisService implements idempotency.Service on Redis. Response envelopes
// live under idem:<key>:data and the in-flight lock under idem:<key>:lock,
// both expiring after the configured TTL.
type RedisService struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisService creates a Redis idempotency cache.
func NewRedisService(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisService {
	return &RedisService{client: client, ttl: ttl, logger: logger}
}

func dataKey(key string) string { return "idem:" + key + ":data" }
func lockKey(key string) string { return "idem:" + key + ":lock" }

// Get implements idempotency.Service.
func (s *RedisService) Get(ctx context.Context, key string) (json.RawMessage, error) {
	rec, err := s.GetRecord(ctx, key)
	if err != nil || rec == nil {
		return nil, err
	}
	return rec.Body, nil
}

// GetRecord implements idempotency.Service.
func (s *RedisService) GetRecord(ctx context.Context, key string) (*idempotency.Record, error) {
	raw, err := s.client.Get(ctx, dataKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		s.logger.Error("idempotency cache get failed", "key", key, "error", err)
		return nil, err
	}

	var rec idempotency.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		s.logger.Error("idempotency cache entry corrupt", "key", key, "error", err)
		return nil, err
	}
	return &rec, nil
}

// Acquire implements idempotency.Service via SETNX with expiry.
func (s *RedisService) Acquire(ctx context.Context, key, fingerprint string) (bool, error) {
	ok, err := s.client.SetNX(ctx, lockKey(key), fingerprint, s.ttl).Result()
	if err != nil {
		s.logger.Error("idempotency lock acquire failed", "key", key, "error", err)
		return false, err
	}
	return ok, nil
}

// InflightFingerprint implements idempotency.Service.
func (s *RedisService) InflightFingerprint(ctx context.Context, key string) (string, error) {
	fp, err := s.client.Get(ctx, lockKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return fp, nil
}

// Release implements idempotency.Service.
func (s *RedisService) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, lockKey(key)).Err(); err != nil {
		s.logger.Error("idempotency lock release failed", "key", key, "error", err)
		return err
	}
	return nil
}

// Store implements idempotency.Service: persists the response envelope and
// releases the lock.
func (s *RedisService) Store(ctx context.Context, key, fingerprint string, status int, headers map[string]string, body any) error {
	rawBody, err := json.Marshal(body)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(idempotency.Record{
		Fingerprint: fingerprint,
		Status:      status,
		Headers:     headers,
		Body:        rawBody,
	})
	if err != nil {
		return err
	}

	if err := s.client.Set(ctx, dataKey(key), raw, s.ttl).Err(); err != nil {
		s.logger.Error("idempotency cache store failed", "key", key, "error", err)
		return err
	}
	if err := s.client.Del(ctx, lockKey(key)).Err(); err != nil {
		s.logger.Error("idempotency lock release failed", "key", key, "error", err)
		return err
	}
	return nil
}
