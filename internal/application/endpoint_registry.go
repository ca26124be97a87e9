package application

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"

	"github.com/rs/zerolog"
)

// EndpointRegistry is the shared set of payload server IDs. Workers draw
// from it and evict servers that fail; a single mutex guards the set.
type EndpointRegistry struct {
	mu     sync.Mutex
	ids    []string
	index  map[string]int
	logger zerolog.Logger
}

func NewEndpointRegistry(logger zerolog.Logger, ids ...string) *EndpointRegistry {
	r := &EndpointRegistry{
		index:  make(map[string]int, len(ids)),
		logger: logger,
	}
	for _, id := range ids {
		r.AddIfMissing(id)
	}

	return r
}

// PickRandom returns false when the registry is empty.
func (r *EndpointRegistry) PickRandom() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.ids) == 0 {
		return "", false
	}

	return r.ids[rand.IntN(len(r.ids))], true
}

func (r *EndpointRegistry) Evict(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.index[id]
	if !ok {
		return
	}

	last := len(r.ids) - 1
	r.ids[i] = r.ids[last]
	r.index[r.ids[i]] = i
	r.ids = r.ids[:last]
	delete(r.index, id)
}

func (r *EndpointRegistry) AddIfMissing(id string) bool {
	if id == "" {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.index[id]; ok {
		return false
	}

	r.index[id] = len(r.ids)
	r.ids = append(r.ids, id)
	return true
}

func (r *EndpointRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.ids)
}

// Snapshot returns the current IDs sorted.
func (r *EndpointRegistry) Snapshot() []string {
	r.mu.Lock()
	ids := slices.Clone(r.ids)
	r.mu.Unlock()

	slices.Sort(ids)
	return ids
}

// WithEndpoint runs fn against random endpoints until one succeeds. Every
// failing endpoint is evicted before the next draw, so the loop ends with
// ErrNoEndpoints once the registry runs dry.
func (r *EndpointRegistry) WithEndpoint(ctx context.Context, fn func(ctx context.Context, id string) error) (string, error) {
	var lastErr error
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		id, ok := r.PickRandom()
		if !ok {
			if lastErr != nil {
				return "", fmt.Errorf("%w: %w", ErrNoEndpoints, lastErr)
			}
			return "", ErrNoEndpoints
		}

		err := fn(ctx, id)
		if err == nil {
			return id, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return "", err
		}

		r.Evict(id)
		lastErr = err
		r.logger.Warn().Err(err).Str("endpoint", id).Int("remaining", r.Len()).Msg("evicted payload endpoint")
	}
}
