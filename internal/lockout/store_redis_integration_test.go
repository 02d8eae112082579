//go:build integration

package lockout_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"vouch/internal/lockout"
	"vouch/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *lockout.RedisStore
	now   time.Time
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.redis = mgr.GetRedis(s.T())
	s.store = lockout.NewRedis(s.redis.Client)
}

func (s *RedisStoreSuite) SetupTest() {
	err := s.redis.FlushAll(context.Background())
	s.Require().NoError(err)
	s.now = time.Now().UTC()
}

func (s *RedisStoreSuite) TestRecordFailure() {
	ctx := context.Background()
	window := time.Minute

	record, err := s.store.RecordFailure(ctx, "alice", s.now, window)
	s.Require().NoError(err)
	s.Equal(1, record.FailureCount)
	s.Nil(record.LockedUntil)

	record, err = s.store.RecordFailure(ctx, "alice", s.now, window)
	s.Require().NoError(err)
	s.Equal(2, record.FailureCount)
}

func (s *RedisStoreSuite) TestWindowExpiry() {
	ctx := context.Background()

	_, err := s.store.RecordFailure(ctx, "alice", s.now, 500*time.Millisecond)
	s.Require().NoError(err)

	time.Sleep(700 * time.Millisecond)

	record, err := s.store.RecordFailure(ctx, "alice", s.now, 500*time.Millisecond)
	s.Require().NoError(err)
	s.Equal(1, record.FailureCount, "count should restart after the window TTL")
}

func (s *RedisStoreSuite) TestLock() {
	ctx := context.Background()

	until, err := s.store.Lock(ctx, "alice", s.now, time.Minute)
	s.Require().NoError(err)

	record, err := s.store.Get(ctx, "alice", s.now)
	s.Require().NoError(err)
	s.Require().NotNil(record)
	s.Require().NotNil(record.LockedUntil)
	s.WithinDuration(until, *record.LockedUntil, time.Millisecond)
}

func (s *RedisStoreSuite) TestLockExpiry() {
	ctx := context.Background()

	_, err := s.store.Lock(ctx, "alice", s.now, 500*time.Millisecond)
	s.Require().NoError(err)

	time.Sleep(700 * time.Millisecond)

	record, err := s.store.Get(ctx, "alice", s.now)
	s.Require().NoError(err)
	s.Nil(record, "lock key should expire with its TTL")
}

func (s *RedisStoreSuite) TestClear() {
	ctx := context.Background()

	_, err := s.store.RecordFailure(ctx, "alice", s.now, time.Minute)
	s.Require().NoError(err)
	_, err = s.store.Lock(ctx, "alice", s.now, time.Minute)
	s.Require().NoError(err)

	err = s.store.Clear(ctx, "alice")
	s.Require().NoError(err)

	record, err := s.store.Get(ctx, "alice", s.now)
	s.Require().NoError(err)
	s.Nil(record)
}
