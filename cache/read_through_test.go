package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fetchInput struct {
	Number int
}

func TestReadThrough_Get_WithCacheDisabled(t *testing.T) {
	fetches := 0
	rt := NewReadThrough[string, page, fetchInput](
		NewMemory[string, page]("pages", DefaultExpiration, DefaultCleanupInterval),
		func(ctx context.Context, input fetchInput) (page, error) {
			fetches++
			return page{Number: input.Number}, nil
		},
		true,
	)

	got, err := rt.Get(context.Background(), "p1", fetchInput{Number: 1}, time.Minute)
	require.NoError(t, err)
	require.Equal(t, 1, got.Number)

	_, err = rt.Get(context.Background(), "p1", fetchInput{Number: 1}, time.Minute)
	require.NoError(t, err)
	require.Equal(t, 2, fetches, "disabled cache should fetch every time")
}

func TestReadThrough_Get_FetchesOnMissThenCaches(t *testing.T) {
	fetches := 0
	rt := NewReadThrough[string, page, fetchInput](
		NewMemory[string, page]("pages", DefaultExpiration, DefaultCleanupInterval),
		func(ctx context.Context, input fetchInput) (page, error) {
			fetches++
			return page{Number: input.Number}, nil
		},
		false,
	)

	got, err := rt.Get(context.Background(), "p1", fetchInput{Number: 1}, time.Minute)
	require.NoError(t, err)
	require.Equal(t, 1, got.Number)
	require.Equal(t, 1, fetches)

	got, err = rt.Get(context.Background(), "p1", fetchInput{Number: 1}, time.Minute)
	require.NoError(t, err)
	require.Equal(t, 1, got.Number)
	require.Equal(t, 1, fetches, "second read should be served from cache")
}

func TestReadThrough_Get_FetchErrorNotCached(t *testing.T) {
	fetchErr := errors.New("source unavailable")
	fetches := 0
	rt := NewReadThrough[string, page, fetchInput](
		NewMemory[string, page]("pages", DefaultExpiration, DefaultCleanupInterval),
		func(ctx context.Context, input fetchInput) (page, error) {
			fetches++
			return page{}, fetchErr
		},
		false,
	)

	_, err := rt.Get(context.Background(), "p1", fetchInput{Number: 1}, time.Minute)
	require.ErrorIs(t, err, fetchErr)

	_, err = rt.Get(context.Background(), "p1", fetchInput{Number: 1}, time.Minute)
	require.ErrorIs(t, err, fetchErr)
	require.Equal(t, 2, fetches, "errors should not be cached")
}

func TestReadThrough_GetWithRefresh_ExtendsTTL(t *testing.T) {
	mem := NewMemory[string, page]("pages", DefaultExpiration, DefaultCleanupInterval)
	rt := NewReadThrough[string, page, fetchInput](
		mem,
		func(ctx context.Context, input fetchInput) (page, error) {
			return page{Number: input.Number}, nil
		},
		false,
	)

	ctx := context.Background()
	mem.Set(ctx, "p1", page{Number: 1}, 50*time.Millisecond)

	// Each refreshed read pushes the expiry out again.
	for i := 0; i < 4; i++ {
		time.Sleep(20 * time.Millisecond)
		got, err := rt.GetWithRefresh(ctx, "p1", fetchInput{Number: 99}, 50*time.Millisecond)
		require.NoError(t, err)
		require.Equal(t, 1, got.Number, "cached value should survive refreshed reads")
	}
}
