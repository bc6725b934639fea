package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func setupMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb, err := NewClient(mr.Addr())
	require.NoError(t, err)
	SetClient(rdb)
	t.Cleanup(func() {
		SetClient(nil)
		_ = rdb.Close()
	})
	return mr
}

func TestAside_MissThenHit(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	calls := 0
	fetch := func(dest *payload) func() error {
		return func() error {
			calls++
			*dest = payload{Name: "boards", Count: 3}
			return nil
		}
	}

	var first payload
	require.NoError(t, Aside(ctx, "k", &first, time.Minute, fetch(&first)))
	assert.Equal(t, 1, calls)
	assert.True(t, mr.Exists("k"))

	var second payload
	require.NoError(t, Aside(ctx, "k", &second, time.Minute, fetch(&second)))
	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)
}

func TestAside_FetchErrorNotCached(t *testing.T) {
	mr := setupMiniredis(t)

	var dest payload
	err := Aside(context.Background(), "k", &dest, time.Minute, func() error {
		return errors.New("db down")
	})
	assert.EqualError(t, err, "db down")
	assert.False(t, mr.Exists("k"))
}

func TestAside_RedisDownFallsThrough(t *testing.T) {
	mr := setupMiniredis(t)
	mr.Close()

	var dest payload
	err := Aside(context.Background(), "k", &dest, time.Minute, func() error {
		dest.Count = 9
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 9, dest.Count)
}

func TestAside_ZeroTTLBypassesCache(t *testing.T) {
	mr := setupMiniredis(t)

	var dest payload
	require.NoError(t, Aside(context.Background(), "k", &dest, 0, func() error { return nil }))
	assert.False(t, mr.Exists("k"))
}

func TestAside_NoClient(t *testing.T) {
	SetClient(nil)

	calls := 0
	var dest payload
	for i := 0; i < 2; i++ {
		require.NoError(t, Aside(context.Background(), "k", &dest, time.Minute, func() error {
			calls++
			return nil
		}))
	}
	assert.Equal(t, 2, calls)
}

func TestInvalidateBoardListings(t *testing.T) {
	mr := setupMiniredis(t)
	require.NoError(t, mr.Set(BoardSummariesKey, "[]"))

	InvalidateBoardListings(context.Background())
	assert.False(t, mr.Exists(BoardSummariesKey))
}

func TestNewClient_URL(t *testing.T) {
	rdb, err := NewClient("redis://localhost:6390/2")
	require.NoError(t, err)
	defer rdb.Close()
	assert.Equal(t, "localhost:6390", rdb.Options().Addr)
	assert.Equal(t, 2, rdb.Options().DB)

	_, err = NewClient("redis://%zz")
	assert.Error(t, err)
}
