package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"handover/internal/platform/config"
)

func TestOptions_OverlaysPoolSettings(t *testing.T) {
	opts, err := options(config.RedisConfig{
		URL:         "redis://cache:6380/2",
		PoolSize:    8,
		DialTimeout: 2 * time.Second,
	})
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 8, opts.PoolSize)
	assert.Equal(t, 2*time.Second, opts.DialTimeout)
	assert.Zero(t, opts.MinIdleConns)
}

func TestOptions_RejectsBadURL(t *testing.T) {
	_, err := options(config.RedisConfig{URL: "http://not-redis"})
	require.Error(t, err)
}

func TestNew_EmptyURLDisablesRedis(t *testing.T) {
	client, err := New(context.Background(), config.RedisConfig{})
	require.NoError(t, err)
	assert.Nil(t, client)
}
