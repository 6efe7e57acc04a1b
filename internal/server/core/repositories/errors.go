package repositories

import "errors"

// ErrNotFound используется, когда сессия не найдена в хранилище.
var ErrNotFound = errors.New("not found")
