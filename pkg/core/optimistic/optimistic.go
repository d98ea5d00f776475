// Package optimistic applies a local patch before a write is confirmed and
// reconciles with the server afterwards.
package optimistic

import (
	"context"
	"sync"
)

// Store holds the local copy of some server state
type Store[T any] struct {
	mu    sync.Mutex
	value T
}

// NewStore creates a store seeded with an initial value
func NewStore[T any](initial T) *Store[T] {
	return &Store[T]{value: initial}
}

// Get returns the current local value
func (s *Store[T]) Get() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Set replaces the local value
func (s *Store[T]) Set(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = v
}

// Apply runs an optimistic mutation:
//  1. the patch is applied to the local value
//  2. request is issued
//  3. on success the local value becomes the server result; on failure the
//     pre-patch value is restored and the request error returned
//
// patch must not mutate its argument in place; return a modified copy.
func Apply[T any](ctx context.Context, s *Store[T], patch func(T) T, request func(ctx context.Context) (T, error)) (T, error) {
	s.mu.Lock()
	before := s.value
	s.value = patch(before)
	s.mu.Unlock()

	result, err := request(ctx)
	if err != nil {
		s.Set(before)
		var zero T
		return zero, err
	}

	s.Set(result)
	return result, nil
}
