// Package db хранит сессии конструктора хитов в PostgreSQL.
//
// Состояние сессии сохраняется целиком в колонку JSONB таблицы hit_sessions.
// При ошибках соединения запросы повторяются с задержками 1, 3 и 5 секунд.
package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"hitbuilder/internal/server/core/model"
	"hitbuilder/internal/server/core/repositories"
)

type pool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

type Store struct {
	pool   pool
	delays []time.Duration
}

func New(dsn string) (*Store, error) {
	ctx := context.Background()

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("can't parse dsn: %w", err)
	}

	p, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("can't create pool: %w", err)
	}

	s := &Store{
		pool:   p,
		delays: []time.Duration{time.Second, 3 * time.Second, 5 * time.Second},
	}

	err = s.retry(ctx, func() error {
		return createTables(ctx, s.pool)
	})
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("can't create tables: %w", err)
	}

	return s, nil
}

// Get возвращает состояние сессии.
func (s *Store) Get(ctx context.Context, id string) (model.State, error) {
	const query = `SELECT state FROM hit_sessions WHERE id = $1`

	var raw []byte
	err := s.retry(ctx, func() error {
		return s.pool.QueryRow(ctx, query, id).Scan(&raw)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.State{}, fmt.Errorf("session %s: %w", id, repositories.ErrNotFound)
		}
		return model.State{}, fmt.Errorf("can't get session: %w", err)
	}

	var state model.State
	if err := json.Unmarshal(raw, &state); err != nil {
		return model.State{}, fmt.Errorf("can't unmarshal session: %w", err)
	}

	return state, nil
}

// Save создает или обновляет сессию.
func (s *Store) Save(ctx context.Context, id string, state model.State) error {
	const query = `
	INSERT INTO hit_sessions (id, state)
	VALUES ($1, $2)
	ON CONFLICT (id) DO UPDATE
	SET state = EXCLUDED.state, updated_at = CURRENT_TIMESTAMP`

	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("can't marshal session: %w", err)
	}

	err = s.retry(ctx, func() error {
		_, err := s.pool.Exec(ctx, query, id, raw)
		return err //nolint:wrapcheck
	})
	if err != nil {
		return fmt.Errorf("can't save session: %w", err)
	}

	return nil
}

// Delete удаляет сессию.
func (s *Store) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM hit_sessions WHERE id = $1`

	var tag pgconn.CommandTag
	err := s.retry(ctx, func() error {
		var err error
		tag, err = s.pool.Exec(ctx, query, id)
		return err //nolint:wrapcheck
	})
	if err != nil {
		return fmt.Errorf("can't delete session: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("session %s: %w", id, repositories.ErrNotFound)
	}

	return nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	err := s.pool.Ping(ctx)
	if err != nil {
		return fmt.Errorf("can't ping: %w", err)
	}

	return nil
}

func (s *Store) retry(ctx context.Context, fn func() error) error {
	err := fn()

	for _, delay := range s.delays {
		if !isConnectionError(err) {
			return err
		}

		select {
		case <-ctx.Done():
			return errors.Join(err, ctx.Err())
		case <-time.After(delay):
		}

		err = fn()
	}

	return err
}

func isConnectionError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgerrcode.IsConnectionException(pgErr.Code)
	}

	return false
}
