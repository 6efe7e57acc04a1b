package store

import (
	"hitbuilder/internal/server/infra/store/db"
	"hitbuilder/internal/server/infra/store/file"
	"hitbuilder/internal/server/infra/store/sqlite"
)

// Config инициализация конфигурации для хранилища.
type Config struct {
	File   *file.Config
	DB     *db.Config
	SQLite *sqlite.Config
}
