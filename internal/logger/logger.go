// Package logger - общий zap-логгер приложения.
package logger

import (
	"sync"

	"go.uber.org/zap"
)

var (
	sugar *zap.SugaredLogger
	once  sync.Once
)

// Init инициализирует глобальный логгер. Для "production" используется JSON-энкодер,
// для остальных окружений - консольный.
func Init(env string) {
	once.Do(func() {
		var base *zap.Logger
		var err error

		if env == "production" {
			base, err = zap.NewProduction()
		} else {
			base, err = zap.NewDevelopment()
		}
		if err != nil {
			base = zap.NewNop()
		}
		sugar = base.Sugar()
	})
}

// Get возвращает глобальный логгер. Если Init не вызывался, создается логгер для разработки.
func Get() *zap.SugaredLogger {
	Init("development")
	return sugar
}

// Sync сбрасывает буферы логгера. Вызывать перед выходом.
func Sync() {
	if sugar != nil {
		_ = sugar.Sync()
	}
}
