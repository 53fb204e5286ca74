package app

import (
	"context"
	"net/http"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mememaker/internal/config"
	"mememaker/internal/infra/stats"
)

func TestNew_InMemoryDefaults(t *testing.T) {
	a := New(config.Default())
	t.Cleanup(a.Close)

	assert.IsType(t, &stats.Memory{}, a.Stats)
	assert.NotNil(t, a.RateStore)
	assert.False(t, a.Tokens.Ready())

	a.StartTokens(context.Background())
	assert.True(t, a.Tokens.Ready())
	assert.False(t, a.Tokens.Validate("anything"))
}

func TestNew_RedisStats(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := config.Default()
	cfg.Cache.RedisHost = mr.Addr()
	cfg.Cache.StatsDB = 0

	a := New(cfg)
	t.Cleanup(a.Close)

	require.IsType(t, &stats.Redis{}, a.Stats)
	a.Stats.Incr(context.Background(), stats.Served)
	counters, err := a.Stats.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), counters[stats.Served])
}

func TestNew_UnreachableRedisFallsBackToMemory(t *testing.T) {
	cfg := config.Default()
	cfg.Cache.RedisHost = "127.0.0.1:1"

	a := New(cfg)
	t.Cleanup(a.Close)

	assert.IsType(t, &stats.Memory{}, a.Stats)
	assert.NotNil(t, a.RateStore)
}

func TestServer_ServesHealthAndKeys(t *testing.T) {
	a := New(config.Default())
	t.Cleanup(a.Close)
	a.StartTokens(context.Background())
	srv := a.Server()

	resp, err := srv.Test(mustReq(t, "/ops/health", ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = srv.Test(mustReq(t, "/v1/meme?image=https://x/a.jpg&topText=hi", "unknown"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func mustReq(t *testing.T, target, key string) *http.Request {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, target, nil)
	require.NoError(t, err)
	if key != "" {
		req.Header.Set("X-API-Key", key)
	}
	return req
}
