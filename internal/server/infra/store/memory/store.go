// Package memory хранит сессии конструктора хитов в памяти процесса.
package memory

import (
	"context"
	"slices"
	"sync"

	"hitbuilder/internal/server/core/model"
	"hitbuilder/internal/server/core/repositories"
)

type Store struct {
	sessions map[string]model.State
	mu       *sync.RWMutex
}

func NewStore(config *Config) *Store {
	var capacity int
	if config != nil {
		capacity = config.Capacity
	}

	return &Store{
		sessions: make(map[string]model.State, capacity),
		mu:       &sync.RWMutex{},
	}
}

func copyState(st model.State) model.State {
	st.Parameters = slices.Clone(st.Parameters)
	st.Messages = slices.Clone(st.Messages)

	return st
}

func (s *Store) Get(_ context.Context, id string) (model.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.sessions[id]
	if !ok {
		return model.State{}, repositories.ErrNotFound
	}

	return copyState(st), nil
}

func (s *Store) Save(_ context.Context, id string, state model.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[id] = copyState(state)

	return nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return repositories.ErrNotFound
	}

	delete(s.sessions, id)

	return nil
}

// All возвращает копию всех сессий.
func (s *Store) All(_ context.Context) (map[string]model.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]model.State, len(s.sessions))
	for id, st := range s.sessions {
		result[id] = copyState(st)
	}

	return result, nil
}

// Restore загружает сессии, например из файла.
func (s *Store) Restore(sessions map[string]model.State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, st := range sessions {
		s.sessions[id] = copyState(st)
	}
}

func (s *Store) Close() error {
	return nil
}

func (s *Store) Ping(_ context.Context) error {
	return nil
}
