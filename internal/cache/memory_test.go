package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_SetGet(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()

	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "k", []byte("v"), time.Minute))

	got, err := mc.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
}

func TestMemoryCache_Missing(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()

	_, err := mc.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryCache_Expiry(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()

	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "k", []byte("v"), 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	_, err := mc.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)

	exists, err := mc.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMemoryCache_Delete(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()

	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "k", []byte("v"), time.Minute))
	require.NoError(t, mc.Delete(ctx, "k"))

	exists, err := mc.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMemoryCache_CopiesValues(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()

	ctx := context.Background()

	value := []byte("original")
	require.NoError(t, mc.Set(ctx, "k", value, time.Minute))
	value[0] = 'X'

	got, err := mc.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), got)
}
