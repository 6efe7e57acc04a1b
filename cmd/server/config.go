package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// configParams настройки сервера.
// Приоритет источников: переменные окружения, затем флаги, затем файл конфигурации.
type configParams struct {
	Address         string `env:"ADDRESS" yaml:"address"`
	FileStorePath   string `env:"FILE_STORE_PATH" yaml:"file_store_path"`
	StoreInterval   string `env:"STORE_INTERVAL" yaml:"store_interval"` // секунды или длительность, например 30s
	Restore         bool   `env:"RESTORE" yaml:"restore"`
	DatabaseDSN     string `env:"DATABASE_DSN" yaml:"database_dsn"`
	SQLitePath      string `env:"SQLITE_PATH" yaml:"sqlite_path"`
	DebugEndpoint   string `env:"DEBUG_ENDPOINT" yaml:"debug_endpoint"`
	CollectEndpoint string `env:"COLLECT_ENDPOINT" yaml:"collect_endpoint"`
	PropertiesFile  string `env:"PROPERTIES_FILE" yaml:"properties_file"`
	Pprof           bool   `env:"PPROF" yaml:"pprof"`
	Config          string `env:"CONFIG" yaml:"-"`
}

func defaultConfig() configParams {
	return configParams{
		Address:       "localhost:8080",
		FileStorePath: "sessions.json",
		StoreInterval: "300",
		Restore:       true,
	}
}

func loadConfig(args []string) (configParams, error) {
	conf := defaultConfig()
	var flags configParams

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.StringVar(&flags.Address, "a", conf.Address, "server address")
	fs.StringVar(&flags.FileStorePath, "f", conf.FileStorePath, "file store path, empty keeps sessions in memory")
	fs.StringVar(&flags.StoreInterval, "i", conf.StoreInterval, "store interval, 0 saves on every change")
	fs.BoolVar(&flags.Restore, "r", conf.Restore, "restore sessions from file")
	fs.StringVar(&flags.DatabaseDSN, "d", "", "database dsn")
	fs.StringVar(&flags.SQLitePath, "s", "", "sqlite database path")
	fs.StringVar(&flags.DebugEndpoint, "debug-endpoint", "", "validation endpoint")
	fs.StringVar(&flags.CollectEndpoint, "collect-endpoint", "", "collect endpoint")
	fs.StringVar(&flags.PropertiesFile, "p", "", "static properties yaml file")
	fs.BoolVar(&flags.Pprof, "pprof", false, "register /debug/pprof")
	fs.StringVar(&flags.Config, "c", "", "path to configuration file")

	if err := fs.Parse(args); err != nil {
		return configParams{}, fmt.Errorf("can't parse flags: %w", err)
	}

	if fs.NArg() > 0 {
		return configParams{}, fmt.Errorf("unknown arguments: %v", fs.Args())
	}

	var envParams configParams
	if err := env.Parse(&envParams); err != nil {
		return configParams{}, fmt.Errorf("can't parse env: %w", err)
	}

	path := flags.Config
	if envParams.Config != "" {
		path = envParams.Config
	}

	if path != "" {
		if err := readConfigFile(path, &conf); err != nil {
			return configParams{}, err
		}
		conf.Config = path
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) {
		set[f.Name] = true
	})

	override(&conf.Address, flags.Address, set["a"])
	override(&conf.FileStorePath, flags.FileStorePath, set["f"])
	override(&conf.StoreInterval, flags.StoreInterval, set["i"])
	override(&conf.Restore, flags.Restore, set["r"])
	override(&conf.DatabaseDSN, flags.DatabaseDSN, set["d"])
	override(&conf.SQLitePath, flags.SQLitePath, set["s"])
	override(&conf.DebugEndpoint, flags.DebugEndpoint, set["debug-endpoint"])
	override(&conf.CollectEndpoint, flags.CollectEndpoint, set["collect-endpoint"])
	override(&conf.PropertiesFile, flags.PropertiesFile, set["p"])
	override(&conf.Pprof, flags.Pprof, set["pprof"])

	if err := env.Parse(&conf); err != nil {
		return configParams{}, fmt.Errorf("can't parse env: %w", err)
	}

	if _, err := conf.storeInterval(); err != nil {
		return configParams{}, err
	}

	return conf, nil
}

func readConfigFile(path string, conf *configParams) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read configuration file: %w", err)
	}

	if err := yaml.Unmarshal(data, conf); err != nil {
		return fmt.Errorf("failed to decode configuration file: %w", err)
	}

	return nil
}

func override[T any](dst *T, value T, set bool) {
	if set {
		*dst = value
	}
}

var errBadInterval = errors.New("store interval must be seconds or a duration")

func (c configParams) storeInterval() (time.Duration, error) {
	if seconds, err := strconv.Atoi(c.StoreInterval); err == nil {
		if seconds < 0 {
			return 0, fmt.Errorf("%w: %s", errBadInterval, c.StoreInterval)
		}
		return time.Duration(seconds) * time.Second, nil
	}

	d, err := time.ParseDuration(c.StoreInterval)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%w: %s", errBadInterval, c.StoreInterval)
	}

	return d, nil
}
