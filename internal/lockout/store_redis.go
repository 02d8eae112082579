package lockout

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	failureKeyPrefix = "lockout:failures:"
	lockKeyPrefix    = "lockout:lock:"
)

// RedisStore keeps lockout state in Redis so lockouts hold across replicas
// and restarts. Window and lock expiry are enforced by key TTLs.
type RedisStore struct {
	client *redis.Client
}

// NewRedis constructs a Redis-backed lockout store.
func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) RecordFailure(ctx context.Context, identifier string, _ time.Time, window time.Duration) (*Record, error) {
	failureKey := failureKeyPrefix + identifier

	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, failureKey)
	// NX keeps the window anchored at the first failure.
	pipe.ExpireNX(ctx, failureKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("record login failure: %w", err)
	}

	record := &Record{Identifier: identifier, FailureCount: int(incr.Val())}
	lockedUntil, err := s.lockedUntil(ctx, identifier)
	if err != nil {
		return nil, err
	}
	record.LockedUntil = lockedUntil
	return record, nil
}

func (s *RedisStore) Get(ctx context.Context, identifier string, _ time.Time) (*Record, error) {
	count, err := s.client.Get(ctx, failureKeyPrefix+identifier).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("get login failures: %w", err)
	}

	lockedUntil, lockErr := s.lockedUntil(ctx, identifier)
	if lockErr != nil {
		return nil, lockErr
	}

	if errors.Is(err, redis.Nil) && lockedUntil == nil {
		return nil, nil
	}

	record := &Record{Identifier: identifier, LockedUntil: lockedUntil}
	if err == nil {
		failures, convErr := strconv.Atoi(count)
		if convErr != nil {
			return nil, fmt.Errorf("parse login failure count: %w", convErr)
		}
		record.FailureCount = failures
	}
	return record, nil
}

func (s *RedisStore) Lock(ctx context.Context, identifier string, now time.Time, duration time.Duration) (time.Time, error) {
	until := now.Add(duration)
	err := s.client.Set(ctx, lockKeyPrefix+identifier, until.UTC().Format(time.RFC3339Nano), duration).Err()
	if err != nil {
		return time.Time{}, fmt.Errorf("apply login lock: %w", err)
	}
	return until, nil
}

func (s *RedisStore) Clear(ctx context.Context, identifier string) error {
	if err := s.client.Del(ctx, failureKeyPrefix+identifier, lockKeyPrefix+identifier).Err(); err != nil {
		return fmt.Errorf("clear login failures: %w", err)
	}
	return nil
}

func (s *RedisStore) lockedUntil(ctx context.Context, identifier string) (*time.Time, error) {
	value, err := s.client.Get(ctx, lockKeyPrefix+identifier).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get login lock: %w", err)
	}
	until, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return nil, fmt.Errorf("parse login lock deadline: %w", err)
	}
	return &until, nil
}
