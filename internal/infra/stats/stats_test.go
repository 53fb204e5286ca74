package stats

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_IncrAndSnapshot(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	s.Incr(ctx, Served)
	s.Incr(ctx, Served)
	s.Incr(ctx, Failed)

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{Served: 2, Failed: 1}, snap)

	snap[Served] = 100
	again, _ := s.Snapshot(ctx)
	assert.Equal(t, int64(2), again[Served], "snapshot must be a copy")
}

func TestRedis_IncrAndSnapshot(t *testing.T) {
	mrs := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mrs.Addr()})
	defer rdb.Close()

	s := NewRedis(rdb)
	ctx := context.Background()
	s.Incr(ctx, Served)
	s.Incr(ctx, Rejected)
	s.Incr(ctx, Rejected)

	assert.Equal(t, "2", mrs.HGet(redisKey, Rejected))

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{Served: 1, Rejected: 2}, snap)
}

func TestRedis_IncrSurvivesOutage(t *testing.T) {
	mrs := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mrs.Addr()})
	defer rdb.Close()
	mrs.Close()

	s := NewRedis(rdb)
	s.Incr(context.Background(), Served)

	_, err := s.Snapshot(context.Background())
	assert.Error(t, err)
}
