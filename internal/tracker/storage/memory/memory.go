// Package memory is an in-process tracker.Persister.
package memory

import (
	"context"
	"sync"

	"optiontracker/internal/tracker"
)

type Store struct {
	mu        sync.Mutex
	positions []tracker.Position
	saves     int
	// Err, when set, is returned by Save.
	Err error
}

// New returns a store preloaded with positions.
func New(positions ...tracker.Position) *Store {
	return &Store{positions: tracker.ClonePositions(positions)}
}

func (s *Store) Load(context.Context) ([]tracker.Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.positions == nil {
		return []tracker.Position{}, nil
	}
	return tracker.ClonePositions(s.positions), nil
}

func (s *Store) Save(_ context.Context, positions []tracker.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.positions = tracker.ClonePositions(positions)
	s.saves++
	return nil
}

// Saves counts successful Save calls.
func (s *Store) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}
