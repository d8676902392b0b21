package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"leadgate/internal/lead/models"
	"leadgate/pkg/platform/sentinel"
	"leadgate/pkg/requestcontext"
)

const defaultPrefix = "leadgate:"

var redisLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "leadgate_store_redis_latency_seconds",
	Help:    "Latency of Redis lead store operations",
	Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
}, []string{"operation"})

// RedisStore keeps each lead as a JSON string and an append-only list of
// record IDs per IP. Count is the length of that list.
type RedisStore struct {
	client *redis.Client
	prefix string
}

type Option func(*RedisStore)

// WithKeyPrefix namespaces every key.
func WithKeyPrefix(prefix string) Option {
	return func(s *RedisStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// New constructs a Redis-backed lead store.
func New(client *redis.Client, opts ...Option) *RedisStore {
	s := &RedisStore{client: client, prefix: defaultPrefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) recordKey(id string) string {
	return s.prefix + "lead:" + id
}

func (s *RedisStore) ipKey(ip string) string {
	return s.prefix + "ip:" + ip
}

func (s *RedisStore) allKey() string {
	return s.prefix + "leads"
}

// Count returns the number of stored leads from ip.
func (s *RedisStore) Count(ctx context.Context, ip string) (int, error) {
	timer := prometheus.NewTimer(redisLatency.WithLabelValues("count"))
	defer timer.ObserveDuration()

	n, err := s.client.LLen(ctx, s.ipKey(ip)).Result()
	if err != nil {
		return 0, fmt.Errorf("count leads by ip: %w", err)
	}
	return int(n), nil
}

// Insert stores the record and indexes it by IP in one MULTI/EXEC.
func (s *RedisStore) Insert(ctx context.Context, sub models.NormalizedSubmission) (*models.Record, error) {
	timer := prometheus.NewTimer(redisLatency.WithLabelValues("insert"))
	defer timer.ObserveDuration()

	rec := models.NewRecord(sub, requestcontext.Now(ctx))
	payload, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode lead: %w", err)
	}

	id := rec.ID.String()
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.recordKey(id), payload, 0)
		pipe.RPush(ctx, s.ipKey(rec.IPAddress), id)
		pipe.RPush(ctx, s.allKey(), id)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("insert lead: %w", err)
	}
	return rec, nil
}

// Health pings Redis.
func (s *RedisStore) Health(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w: %w", sentinel.ErrUnavailable, err)
	}
	return nil
}
