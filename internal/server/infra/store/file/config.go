package file

import (
	"time"

	"hitbuilder/internal/server/infra/store/memory"
)

type Config struct {
	MemoryStore *memory.Config
	FilePath    string
	// StoreInterval период сохранения в файл, 0 означает синхронную запись при каждом изменении.
	StoreInterval time.Duration
	Restore       bool
}
