package application

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndpointRegistryPickRandomOnEmptyReturnsFalse(t *testing.T) {
	r := NewEndpointRegistry(zerolog.Nop())

	done := make(chan struct{})
	go func() {
		defer close(done)
		id, ok := r.PickRandom()
		assert.False(t, ok)
		assert.Empty(t, id)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("PickRandom blocked on an empty registry")
	}
}

func TestEndpointRegistryAddAndEvictAreIdempotent(t *testing.T) {
	r := NewEndpointRegistry(zerolog.Nop(), "a", "b", "a", "")

	assert.Equal(t, 2, r.Len())
	assert.False(t, r.AddIfMissing("b"))
	assert.True(t, r.AddIfMissing("c"))
	assert.Equal(t, []string{"a", "b", "c"}, r.Snapshot())

	r.Evict("b")
	r.Evict("b")
	r.Evict("missing")
	assert.Equal(t, []string{"a", "c"}, r.Snapshot())

	for range 50 {
		id, ok := r.PickRandom()
		require.True(t, ok)
		assert.Contains(t, []string{"a", "c"}, id)
	}
}

func TestEndpointRegistryWithEndpointEvictsUntilEmpty(t *testing.T) {
	r := NewEndpointRegistry(zerolog.Nop(), "a", "b", "c")
	boom := errors.New("server error")

	attempts := 0
	_, err := r.WithEndpoint(context.Background(), func(context.Context, string) error {
		attempts++
		return boom
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoEndpoints)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, attempts)
	assert.Zero(t, r.Len())

	_, err = r.WithEndpoint(context.Background(), func(context.Context, string) error {
		t.Fatal("fn must not run on an empty registry")
		return nil
	})
	assert.ErrorIs(t, err, ErrNoEndpoints)
}

func TestEndpointRegistryWithEndpointStopsOnSuccess(t *testing.T) {
	r := NewEndpointRegistry(zerolog.Nop(), "bad", "good")

	var tried []string
	id, err := r.WithEndpoint(context.Background(), func(_ context.Context, id string) error {
		tried = append(tried, id)
		if id == "bad" {
			return errors.New("nope")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, "good", id)
	assert.Equal(t, "good", tried[len(tried)-1])
	assert.Contains(t, r.Snapshot(), "good")
	if slices.Contains(tried, "bad") {
		assert.Equal(t, []string{"good"}, r.Snapshot())
	} else {
		assert.Equal(t, []string{"bad", "good"}, r.Snapshot())
	}
}

func TestEndpointRegistryWithEndpointKeepsEndpointOnCancellation(t *testing.T) {
	r := NewEndpointRegistry(zerolog.Nop(), "a")
	ctx, cancel := context.WithCancel(context.Background())

	_, err := r.WithEndpoint(ctx, func(ctx context.Context, _ string) error {
		cancel()
		return ctx.Err()
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, r.Len())
}

func TestEndpointRegistryConcurrentUse(t *testing.T) {
	r := NewEndpointRegistry(zerolog.Nop())

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := string(rune('a' + i%5))
			r.AddIfMissing(id)
			r.PickRandom()
			if i%3 == 0 {
				r.Evict(id)
			}
			r.Snapshot()
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, r.Len(), 5)
}
