package db

import (
	"context"
	"fmt"

	"portalbot/internal/config"
	"portalbot/internal/constants"
	"portalbot/internal/logger"
)

// OpenStore выбирает бэкенд по конфигурации и создает Store.
func OpenStore(ctx context.Context, cfg *config.Config) (*Store, error) {
	var backend Backend
	switch cfg.StorageBackend {
	case constants.STORAGE_BACKEND_POSTGRES:
		pg, err := NewPostgresBackend(ctx, cfg.DatabaseURL, cfg.DocumentKey)
		if err != nil {
			return nil, fmt.Errorf("инициализация PostgreSQL: %w", err)
		}
		backend = pg
	case constants.STORAGE_BACKEND_REDIS:
		client, err := ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("инициализация Redis: %w", err)
		}
		backend = NewRedisBackend(client, cfg.DocumentKey)
	default:
		fb, err := NewFileBackend(cfg.StorageDir)
		if err != nil {
			return nil, err
		}
		logger.Get().Infof("Документ хранится в файле %s.", fb.Path())
		backend = fb
	}

	store := NewStore(backend)
	// Первая загрузка создает документ по умолчанию, если его еще нет.
	doc := store.Load(ctx)
	logger.Get().Infof("Документ загружен: назначений %d, пользователей %d.", len(doc.Destinations), len(doc.Referrals.Users))
	return store, nil
}
