package memory

// Config конфигурация хранилища в памяти.
type Config struct {
	// Capacity начальный размер таблицы сессий.
	Capacity int
}
