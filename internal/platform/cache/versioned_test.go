package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func newTestCache(t *testing.T) (*Versioned, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewVersioned(client, "reports", time.Minute), mr
}

func TestVersionInitialisesAndBumps(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	ver, err := c.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), ver)

	require.NoError(t, c.Bump(ctx))
	ver, err = c.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), ver)

	require.NoError(t, mr.Set("reports:version", "-3"))
	ver, err = c.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), ver)
}

func TestKeyCarriesVersion(t *testing.T) {
	c, _ := newTestCache(t)
	key, err := c.Key(context.Background(), "report", "2026-03")
	require.NoError(t, err)
	assert.Equal(t, "reports:report:2026-03:v1", key)

	var disabled *Versioned
	key, err = disabled.Key(context.Background(), "report")
	require.NoError(t, err)
	assert.Equal(t, "cache:report", key)
}

func TestFetchStoresAndReuses(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	calls := 0
	loader := func(context.Context) (payload, error) {
		calls++
		return payload{Name: "march", Count: calls}, nil
	}

	key, err := c.Key(ctx, "report")
	require.NoError(t, err)
	first, err := Fetch(ctx, c, key, loader)
	require.NoError(t, err)
	second, err := Fetch(ctx, c, key, loader)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
	assert.True(t, mr.Exists(key))

	mr.FastForward(2 * time.Minute)
	_, err = Fetch(ctx, c, key, loader)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestFetchPropagatesLoaderErrors(t *testing.T) {
	c, mr := newTestCache(t)
	boom := errors.New("boom")
	_, err := Fetch(context.Background(), c, "reports:x", func(context.Context) (payload, error) {
		return payload{}, boom
	})
	require.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("reports:x"))

	_, err = Fetch[payload](context.Background(), c, "reports:x", nil)
	require.Error(t, err)
}

func TestFetchFallsThroughWhenRedisIsDown(t *testing.T) {
	c, mr := newTestCache(t)
	mr.Close()
	got, err := Fetch(context.Background(), c, "reports:y", func(context.Context) (payload, error) {
		return payload{Name: "live"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "live", got.Name)
}

func TestSubscribeReceivesBumps(t *testing.T) {
	c, _ := newTestCache(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan int64, 1)
	c.Subscribe(ctx, func(v int64) { got <- v })
	require.Eventually(t, func() bool {
		_ = c.Bump(context.Background())
		select {
		case v := <-got:
			return v > 0
		default:
			return false
		}
	}, 2*time.Second, 50*time.Millisecond)
}
