//go:build integration

package redis_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/suite"

	"leadgate/internal/lead/models"
	leadredis "leadgate/internal/lead/store/redis"
	"leadgate/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *leadredis.RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.store = leadredis.New(s.redis.Client, leadredis.WithKeyPrefix("test:"))
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisStoreSuite) TestInsertThenCountAndGet() {
	ctx := context.Background()
	email := "ana@acme.com"
	sub := models.NormalizedSubmission{Name: "Ana", Company: "Acme", TeamSize: 12, Email: &email, IPAddress: "203.0.113.5"}

	for range 3 {
		_, err := s.store.Insert(ctx, sub)
		s.Require().NoError(err)
	}
	rec, err := s.store.Insert(ctx, sub.WithIP("198.51.100.1"))
	s.Require().NoError(err)

	n, err := s.store.Count(ctx, "203.0.113.5")
	s.Require().NoError(err)
	s.Equal(3, n)

	payload, err := s.redis.Client.Get(ctx, "test:lead:"+rec.ID.String()).Bytes()
	s.Require().NoError(err)
	var got models.Record
	s.Require().NoError(json.Unmarshal(payload, &got))
	s.Equal(rec.ID, got.ID)
	s.Equal("198.51.100.1", got.IPAddress)
	s.Nil(got.Phone)

	keys, err := s.redis.Client.Keys(ctx, "test:*").Result()
	s.Require().NoError(err)
	s.NotEmpty(keys)
}

func (s *RedisStoreSuite) TestCountUnknownIP() {
	n, err := s.store.Count(context.Background(), "192.0.2.1")
	s.Require().NoError(err)
	s.Zero(n)
	s.NoError(s.store.Health(context.Background()))
}
