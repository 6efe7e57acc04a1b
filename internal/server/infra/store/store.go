// Package store выбирает хранилище сессий конструктора хитов.
//
// В зависимости от конфигурации создается хранилище в памяти, файловое хранилище или база данных.
//
// Для работы с PostgreSQL передается конфигурация db.Config.
//
//	dbConfig = &db.Config{
//		DSN: conf.DatabaseDSN,
//	}
//
// Для работы с файловым хранилищем передается конфигурация file.Config.
//
//	fileConfig := &file.Config{
//		StoreInterval: conf.StoreInterval,
//		Restore:       conf.Restore,
//		FilePath:      conf.FileStorePath,
//		MemoryStore:   &memory.Config{},
//	}
//
// Для работы с SQLite передается конфигурация sqlite.Config с путем к файлу базы.
//
// Приоритет: PostgreSQL, SQLite, файл. Если путь к файлу пустой, используется хранилище в памяти.
package store

import (
	"context"
	"fmt"

	"hitbuilder/internal/server/core/model"
	"hitbuilder/internal/server/infra/store/db"
	"hitbuilder/internal/server/infra/store/file"
	"hitbuilder/internal/server/infra/store/memory"
	"hitbuilder/internal/server/infra/store/sqlite"
)

// Store интерфейс хранилища сессий.
type Store interface {
	Get(ctx context.Context, id string) (model.State, error)
	Save(ctx context.Context, id string, state model.State) error
	Delete(ctx context.Context, id string) error
	Close() error
	Ping(ctx context.Context) error
}

// NewStore создает новый экземпляр Store.
// Если конфигурация не передана, возвращается ошибка.
func NewStore(conf Config) (Store, error) {
	switch {
	case conf.DB != nil && conf.DB.DSN != "":
		store, err := db.New(conf.DB.DSN)
		if err != nil {
			return nil, fmt.Errorf("can't create db store: %w", err)
		}

		return store, nil
	case conf.SQLite != nil && conf.SQLite.Path != "":
		store, err := sqlite.New(conf.SQLite)
		if err != nil {
			return nil, fmt.Errorf("can't create sqlite store: %w", err)
		}

		return store, nil
	case conf.File != nil:
		if conf.File.FilePath == "" {
			return memory.NewStore(conf.File.MemoryStore), nil
		}

		store, err := file.NewStore(conf.File)
		if err != nil {
			return nil, fmt.Errorf("can't create file store: %w", err)
		}

		return store, nil
	default:
		return nil, fmt.Errorf("unknown store type, config: %+v", conf)
	}
}
