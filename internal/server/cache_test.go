package server

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/upthermo/orcalc/internal/calculator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheTTL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMemoryCache(0)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))
	got, ok := c.Get(ctx, "k")
	assert.True(t, ok)
	assert.Equal(t, "v", got)

	now = now.Add(2 * time.Minute)
	_, ok = c.Get(ctx, "k")
	assert.False(t, ok, "entry should expire")
	assert.Zero(t, c.Len())
}

func TestMemoryCacheNoTTL(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(0)
	require.NoError(t, c.Set(ctx, "k", "v", 0))
	_, ok := c.Get(ctx, "k")
	assert.True(t, ok)
}

func TestMemoryCacheEviction(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(3)
	for i := 0; i < 3; i++ {
		require.NoError(t, c.Set(ctx, fmt.Sprint(i), "v", time.Hour))
	}
	assert.Equal(t, 3, c.Len())

	// Overwriting an existing key never evicts.
	require.NoError(t, c.Set(ctx, "0", "v2", time.Hour))
	assert.Equal(t, 3, c.Len())

	require.NoError(t, c.Set(ctx, "new", "v", time.Hour))
	assert.Equal(t, 1, c.Len())
	got, ok := c.Get(ctx, "new")
	assert.True(t, ok)
	assert.Equal(t, "v", got)
}

func TestCacheNames(t *testing.T) {
	assert.Equal(t, "memory", NewMemoryCache(0).Name())
	assert.Equal(t, "redis", (&RedisCache{}).Name())
}

func TestCacheKey(t *testing.T) {
	a, err := calculator.ParseInput(calculator.RawInput{Bill: "95 000", Waste: "10"})
	require.NoError(t, err)
	b, err := calculator.ParseInput(calculator.RawInput{Bill: "95000", Waste: "10", Shifts: "3", Solar: "nie"})
	require.NoError(t, err)
	assert.Equal(t, cacheKey(a), cacheKey(b))
	assert.Equal(t, "95000|10|3|false", cacheKey(a))
}
