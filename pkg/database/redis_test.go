package database

import (
	"testing"
	"thywilluche/internal/pkg/config"

	"github.com/stretchr/testify/assert"
)

func TestRedisOptions(t *testing.T) {
	opts := redisOptions(config.RedisConfig{Addr: "cache:6379", DB: 2, PoolSize: 40})
	assert.Equal(t, "cache:6379", opts.Addr)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 40, opts.PoolSize)
	assert.Equal(t, 10, opts.MinIdleConns)

	opts = redisOptions(config.RedisConfig{Addr: "cache:6379"})
	assert.Equal(t, 20, opts.PoolSize)
}
