// cache/cache_test.go
package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(0)
	defer m.Close()

	_, err := m.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, m.Set(ctx, "k", []byte("v"), 0))
	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))

	// returned slices are copies
	got[0] = 'x'
	again, _ := m.Get(ctx, "k")
	assert.Equal(t, "v", string(again))

	require.NoError(t, m.Delete(ctx, "k"))
	_, err = m.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_TTL(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(0)
	defer m.Close()

	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "short", []byte("1"), time.Minute))
	require.NoError(t, m.Set(ctx, "forever", []byte("2"), 0))

	now = now.Add(59 * time.Second)
	_, err := m.Get(ctx, "short")
	assert.NoError(t, err)

	now = now.Add(time.Second)
	_, err = m.Get(ctx, "short")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = m.Get(ctx, "forever")
	assert.NoError(t, err)

	assert.Equal(t, 2, m.Len())
	m.sweep()
	assert.Equal(t, 1, m.Len())
}

func TestMemory_Closed(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(time.Millisecond)
	require.NoError(t, m.Close())
	require.NoError(t, m.Close())

	_, err := m.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, m.Set(ctx, "k", nil, 0), ErrClosed)
	assert.ErrorIs(t, m.Delete(ctx, "k"), ErrClosed)
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(0)
	defer m.Close()

	require.NoError(t, SetJSON(ctx, m, "syms", []string{"AAPL", "MSFT"}, 0))
	got, err := GetJSON[[]string](ctx, m, "syms")
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT"}, got)

	_, err = GetJSON[[]string](ctx, m, "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestOpen_DefaultsToMemory(t *testing.T) {
	c, err := Open(context.Background(), Config{})
	require.NoError(t, err)
	defer c.Close()
	_, ok := c.(*Memory)
	assert.True(t, ok)
}

func TestDialRedis_RequiresAddress(t *testing.T) {
	_, err := DialRedis(context.Background(), RedisConfig{})
	assert.Error(t, err)
}
