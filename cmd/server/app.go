package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"hitbuilder/internal/server/core/application"
	"hitbuilder/internal/server/infra/api/rest"
	"hitbuilder/internal/server/infra/mp"
	"hitbuilder/internal/server/infra/properties"
	"hitbuilder/internal/server/infra/store"
	"hitbuilder/internal/server/infra/store/db"
	"hitbuilder/internal/server/infra/store/file"
	"hitbuilder/internal/server/infra/store/memory"
	"hitbuilder/internal/server/infra/store/sqlite"
)

const shutdownTimeout = 10 * time.Second

func run(ctx context.Context, conf configParams, logger zap.SugaredLogger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sessions, err := newStore(conf)
	if err != nil {
		return err
	}

	if fileStore, ok := sessions.(*file.Store); ok {
		go fileStore.Sync(ctx, logger.Errorf)
	}

	source, err := newPropertySource(conf, &logger)
	if err != nil {
		_ = sessions.Close()
		return err
	}

	client := mp.NewClient(mp.Config{
		Logger:          &logger,
		DebugEndpoint:   conf.DebugEndpoint,
		CollectEndpoint: conf.CollectEndpoint,
	})

	newApplication := application.NewApplication(sessions, client, source)

	api := rest.NewServerAPI(rest.Config{
		Service: newApplication,
		Logger:  logger,
		Address: conf.Address,
		Pprof:   conf.Pprof,
	})

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)

		<-ctx.Done()

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelShutdown()

		if err := api.Shutdown(shutdownCtx); err != nil {
			logger.Errorw("can't shutdown server", "error", err)
		}
		logger.Info("server shutdown")

		if err := sessions.Close(); err != nil {
			logger.Errorw("can't close store", "error", err)
		}
		logger.Info("store closed")
	}()

	if err := api.Run(); err != nil {
		// Хранилище закрывается горутиной остановки.
		cancel()
		<-stopped

		return fmt.Errorf("failed to run server: %w", err)
	}

	<-stopped

	return nil
}

func newStore(conf configParams) (store.Store, error) {
	var dbConfig *db.Config

	storeInterval, err := conf.storeInterval()
	if err != nil {
		return nil, err
	}

	fileConfig := &file.Config{
		StoreInterval: storeInterval,
		Restore:       conf.Restore,
		FilePath:      conf.FileStorePath,
		MemoryStore:   &memory.Config{},
	}

	if conf.DatabaseDSN != "" {
		dbConfig = &db.Config{
			DSN: conf.DatabaseDSN,
		}
	}

	sessions, err := store.NewStore(store.Config{
		File:   fileConfig,
		DB:     dbConfig,
		SQLite: &sqlite.Config{Path: conf.SQLitePath},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}

	return sessions, nil
}

func newPropertySource(conf configParams, logger *zap.SugaredLogger) (application.PropertySource, error) {
	if conf.PropertiesFile == "" {
		return properties.NewManagement(properties.ManagementConfig{Logger: logger}), nil
	}

	source, err := properties.LoadStatic(conf.PropertiesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load properties: %w", err)
	}

	return source, nil
}
