package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreGetSet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	require.NoError(t, store.Set(ctx, "k1", payload{Name: "a", Count: 2}, time.Minute))

	var got payload
	found, err := store.Get(ctx, "k1", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, payload{Name: "a", Count: 2}, got)

	found, err = store.Get(ctx, "missing", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	base := time.Now()
	store.SetClock(func() time.Time { return base })
	require.NoError(t, store.Set(ctx, "k1", "v1", 2*time.Minute))

	// Still inside the TTL.
	store.SetClock(func() time.Time { return base.Add(119 * time.Second) })
	var got string
	found, err := store.Get(ctx, "k1", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v1", got)

	// Past the TTL the entry is gone, never stale.
	store.SetClock(func() time.Time { return base.Add(121 * time.Second) })
	found, err = store.Get(ctx, "k1", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryStoreInvalidatePattern(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, CardListKey("stripe", "ich_1"), "cards", time.Minute))
	require.NoError(t, store.Set(ctx, CardTransactionsKey("stripe", "ic_9", ""), "tx", time.Minute))
	require.NoError(t, store.Set(ctx, CardholderKey("stripe", 7), "holder", time.Minute))

	require.NoError(t, store.Invalidate(ctx, CardKeyPattern("ic_9")))

	var got string
	found, _ := store.Get(ctx, CardTransactionsKey("stripe", "ic_9", ""), &got)
	assert.False(t, found, "card entry should be invalidated")

	found, _ = store.Get(ctx, CardListKey("stripe", "ich_1"), &got)
	assert.True(t, found, "unrelated entries survive")
	found, _ = store.Get(ctx, CardholderKey("stripe", 7), &got)
	assert.True(t, found)
}

func TestMemoryStoreInvalidateAll(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "a", 1, time.Minute))
	require.NoError(t, store.Set(ctx, "b", 2, time.Minute))
	require.NoError(t, store.Invalidate(ctx, ""))

	var got int
	found, _ := store.Get(ctx, "a", &got)
	assert.False(t, found)
	found, _ = store.Get(ctx, "b", &got)
	assert.False(t, found)
}
