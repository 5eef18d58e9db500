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

func newStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return New(rdb), mr
}

type rates struct {
	BW    float64 `json:"bw"`
	Color float64 `json:"color"`
}

func TestSetGetDel(t *testing.T) {
	s, mr := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", rates{BW: 2, Color: 5}, time.Minute))

	var got rates
	require.True(t, s.Get(ctx, "k", &got))
	assert.Equal(t, rates{BW: 2, Color: 5}, got)

	ok, err := s.Has(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	mr.FastForward(2 * time.Minute)
	assert.False(t, s.Get(ctx, "k", &got))

	require.NoError(t, s.Set(ctx, "k", 1, 0))
	require.NoError(t, s.Del(ctx, "k"))
	ok, err = s.Has(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNilStoreIsEmpty(t *testing.T) {
	var s *Store
	ctx := context.Background()

	assert.False(t, s.Available())
	assert.NoError(t, s.Set(ctx, "k", 1, time.Minute))
	var v int
	assert.False(t, s.Get(ctx, "k", &v))
	ok, err := s.Has(ctx, "k")
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, s.Del(ctx, "k"))
}

func TestRememberCachesOnlySuccess(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	calls := 0

	load := func(context.Context) (rates, error) {
		calls++
		return rates{BW: 3}, nil
	}

	v, err := Remember(ctx, s, "r", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, 3.0, v.BW)

	_, err = Remember(ctx, s, "r", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	boom := errors.New("boom")
	_, err = Remember(ctx, s, "other", time.Minute, func(context.Context) (rates, error) {
		return rates{}, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, s.Get(ctx, "other", &rates{}))
}
