package stats

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"mememaker/internal/infra/logging"
)

// Counter names.
const (
	Served   = "served"
	Rejected = "rejected"
	Failed   = "failed"
)

// Recorder counts pipeline outcomes.
type Recorder interface {
	Incr(ctx context.Context, name string)
	Snapshot(ctx context.Context) (map[string]int64, error)
}

// Memory keeps counters for the lifetime of the process.
type Memory struct {
	mu sync.Mutex
	m  map[string]int64
}

func NewMemory() *Memory {
	return &Memory{m: make(map[string]int64)}
}

func (s *Memory) Incr(_ context.Context, name string) {
	s.mu.Lock()
	s.m[name]++
	s.mu.Unlock()
}

func (s *Memory) Snapshot(_ context.Context) (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int64, len(s.m))
	for k, v := range s.m {
		out[k] = v
	}
	return out, nil
}

const redisKey = "mememaker:stats"

// Redis shares counters between instances through a single hash.
type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// Incr never fails the request; Redis errors are logged.
func (s *Redis) Incr(ctx context.Context, name string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
	defer cancel()

	if err := s.client.HIncrBy(ctx, redisKey, name, 1).Err(); err != nil {
		logging.Warn("Redis stats write failed", "counter", name, "error", err)
	}
}

func (s *Redis) Snapshot(ctx context.Context) (map[string]int64, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	raw, err := s.client.HGetAll(ctx, redisKey).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(raw))
	for k, v := range raw {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			continue
		}
		out[k] = n
	}
	return out, nil
}
