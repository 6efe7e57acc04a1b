package db

type Config struct {
	DSN string
}
