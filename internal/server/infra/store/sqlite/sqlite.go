// Package sqlite хранит сессии конструктора хитов в локальном файле SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"hitbuilder/internal/server/core/model"
	"hitbuilder/internal/server/core/repositories"
)

type Config struct {
	Path string
}

type Store struct {
	db *sql.DB
}

func New(conf *Config) (*Store, error) {
	if conf == nil || conf.Path == "" {
		return nil, fmt.Errorf("sqlite path is empty, config: %+v", conf)
	}

	db, err := sql.Open("sqlite", conf.Path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("can't open sqlite: %w", err)
	}

	// одно соединение, чтобы запись не упиралась в блокировку файла
	db.SetMaxOpenConns(1)

	const schema = `
	CREATE TABLE IF NOT EXISTS hit_sessions (
		id TEXT PRIMARY KEY,
		state TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP NOT NULL
	);`

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("can't create hit_sessions table: %w", err)
	}

	return &Store{db: db}, nil
}

// Get возвращает состояние сессии.
func (s *Store) Get(ctx context.Context, id string) (model.State, error) {
	var raw string

	err := s.db.QueryRowContext(ctx, `SELECT state FROM hit_sessions WHERE id = ?`, id).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.State{}, fmt.Errorf("session %s: %w", id, repositories.ErrNotFound)
		}
		return model.State{}, fmt.Errorf("can't get session: %w", err)
	}

	var state model.State
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return model.State{}, fmt.Errorf("can't unmarshal session: %w", err)
	}

	return state, nil
}

// Save создает или обновляет сессию.
func (s *Store) Save(ctx context.Context, id string, state model.State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("can't marshal session: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO hit_sessions (id, state) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET state = excluded.state, updated_at = CURRENT_TIMESTAMP`,
		id, string(raw))
	if err != nil {
		return fmt.Errorf("can't save session: %w", err)
	}

	return nil
}

// Delete удаляет сессию.
func (s *Store) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM hit_sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("can't delete session: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("can't get affected rows: %w", err)
	}

	if n == 0 {
		return fmt.Errorf("session %s: %w", id, repositories.ErrNotFound)
	}

	return nil
}

func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("can't close sqlite: %w", err)
	}

	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("can't ping: %w", err)
	}

	return nil
}
