package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type country struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	t.Run("Miss on empty cache", func(t *testing.T) {
		var dest []country
		err := c.Get(ctx, "geo:countries", &dest)
		assert.ErrorIs(t, err, ErrCacheMiss)
	})

	t.Run("Set then get round trips JSON", func(t *testing.T) {
		in := []country{{Code: "NG", Name: "Nigeria"}}
		require.NoError(t, c.Set(ctx, "geo:countries", in, time.Hour))

		in[0].Name = "mutated"

		var out []country
		require.NoError(t, c.Get(ctx, "geo:countries", &out))
		assert.Equal(t, []country{{Code: "NG", Name: "Nigeria"}}, out)

		ok, err := c.Exists(ctx, "geo:countries")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("Expired entries are misses", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "geo:states:NG", []string{"Lagos"}, time.Minute))
		now = now.Add(2 * time.Minute)

		var out []string
		assert.ErrorIs(t, c.Get(ctx, "geo:states:NG", &out), ErrCacheMiss)

		ok, err := c.Exists(ctx, "geo:states:NG")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Delete removes entry", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "dashboard:overview", 1, time.Hour))
		require.NoError(t, c.Delete(ctx, "dashboard:overview"))

		var out int
		assert.ErrorIs(t, c.Get(ctx, "dashboard:overview", &out), ErrCacheMiss)
	})
}

func TestKeyPrefix(t *testing.T) {
	assert.Equal(t, "geo", keyPrefix("geo:states:NG"))
	assert.Equal(t, "plain", keyPrefix("plain"))
}
