// Package file реализует хранилище сессий конструктора хитов в файле.
//
// Сессии хранятся в memory.Store и периодически сохраняются в файл в формате JSON.
// При создании хранилища с Restore = true сессии восстанавливаются из файла.
//
// При закрытии хранилища данные сохраняются в файл.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"hitbuilder/internal/server/core/model"
	"hitbuilder/internal/server/infra/store/memory"
)

// Store структура для хранения сессий в файле.
type Store struct {
	*memory.Store
	file     *os.File
	mu       *sync.Mutex
	interval time.Duration
}

type snapshot struct {
	Sessions map[string]model.State `json:"sessions"`
}

// NewStore создает новый Store.
func NewStore(conf *Config) (*Store, error) {
	if conf == nil || conf.FilePath == "" {
		return nil, fmt.Errorf("file path is empty, config: %+v", conf)
	}

	const perm = 0o666
	file, err := os.OpenFile(conf.FilePath, os.O_RDWR|os.O_CREATE, perm)
	if err != nil {
		return nil, fmt.Errorf("can't open file: %w", err)
	}

	s := &Store{
		Store:    memory.NewStore(conf.MemoryStore),
		file:     file,
		mu:       &sync.Mutex{},
		interval: conf.StoreInterval,
	}

	if !conf.Restore {
		return s, nil
	}

	bytes, err := io.ReadAll(file)
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("can't read file: %w", err)
	}

	if len(bytes) == 0 {
		return s, nil
	}

	var data snapshot
	err = json.Unmarshal(bytes, &data)
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("can't unmarshal data: %w", err)
	}

	s.Restore(data.Sessions)

	return s, nil
}

// Sync периодически сохраняет сессии в файл до отмены ctx.
func (s *Store) Sync(ctx context.Context, logf func(template string, args ...any)) {
	if s.interval <= 0 {
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.saveToFile(ctx); err != nil && logf != nil {
				logf("can't save sessions to file: %v", err)
			}
		}
	}
}

// Save сохраняет сессию. При нулевом интервале файл обновляется сразу.
func (s *Store) Save(ctx context.Context, id string, state model.State) error {
	err := s.Store.Save(ctx, id, state)
	if err != nil {
		return fmt.Errorf("can't save session: %w", err)
	}

	if s.interval > 0 {
		return nil
	}

	if err := s.saveToFile(ctx); err != nil {
		return fmt.Errorf("can't save to file: %w", err)
	}

	return nil
}

// Delete удаляет сессию.
func (s *Store) Delete(ctx context.Context, id string) error {
	err := s.Store.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("can't delete session: %w", err)
	}

	if s.interval > 0 {
		return nil
	}

	if err := s.saveToFile(ctx); err != nil {
		return fmt.Errorf("can't save to file: %w", err)
	}

	return nil
}

// Get возвращает сессию.
func (s *Store) Get(ctx context.Context, id string) (model.State, error) {
	state, err := s.Store.Get(ctx, id)
	if err != nil {
		return model.State{}, fmt.Errorf("can't get session: %w", err)
	}

	return state, nil
}

func (s *Store) saveToFile(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions, err := s.All(ctx)
	if err != nil {
		return fmt.Errorf("can't get sessions: %w", err)
	}

	bytes, err := json.Marshal(snapshot{Sessions: sessions})
	if err != nil {
		return fmt.Errorf("can't marshal data: %w", err)
	}

	if err := s.file.Truncate(0); err != nil {
		return fmt.Errorf("can't truncate file: %w", err)
	}

	_, err = s.file.Seek(0, io.SeekStart)
	if err != nil {
		return fmt.Errorf("can't seek file: %w", err)
	}

	_, err = s.file.Write(bytes)
	if err != nil {
		return fmt.Errorf("can't write to file: %w", err)
	}

	return nil
}

// Close сохраняет сессии и закрывает файл.
func (s *Store) Close() error {
	err := s.saveToFile(context.Background())
	if err != nil {
		return fmt.Errorf("can't save to file: %w", err)
	}

	err = s.file.Close()
	if err != nil {
		return fmt.Errorf("can't close file: %w", err)
	}

	return nil
}

// Ping проверяет доступность хранилища.
func (s *Store) Ping(_ context.Context) error {
	return nil
}
