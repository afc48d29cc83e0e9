package cart

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return RedisStore{Client: client, TTL: time.Hour}, mr
}

func TestStoreRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	c := New(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	require.NoError(t, c.AddLine(poloLine(), 2))
	c.DiscountCode = "SAVE10"
	require.NoError(t, store.Save(ctx, c))

	loaded, err := store.Get(ctx, c.ID)
	require.NoError(t, err)
	require.Equal(t, c.ID, loaded.ID)
	require.Len(t, loaded.Lines, 1)
	require.Equal(t, 2, loaded.Lines[0].Qty)
	require.Equal(t, "SAVE10", loaded.DiscountCode)
}

func TestStoreMissingCart(t *testing.T) {
	store, _ := newTestStore(t)
	_, err := store.Get(context.Background(), "missing")
	require.True(t, errors.Is(err, ErrNotFound))
}

func TestStoreExpiry(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	c := New(time.Now())
	require.NoError(t, store.Save(ctx, c))
	mr.FastForward(2 * time.Hour)

	_, err := store.Get(ctx, c.ID)
	require.True(t, errors.Is(err, ErrNotFound))
}

func TestStoreDeleteIdempotent(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Delete(ctx, "missing"))
}
