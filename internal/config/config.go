// internal/config/config.go
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"portalbot/internal/constants"
	"portalbot/internal/logger"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	TelegramToken string
	BotUsername   string
	AppEnv        string

	// Хранилище документа
	StorageBackend string
	StorageDir     string
	DatabaseURL    string
	RedisURL       string
	DocumentKey    string

	DestinationMode   string
	InviteMessageTTL  time.Duration // 0 - сообщения с приглашением не удаляются
	ReferralResetCron string        // пусто - периодический сброс выключен

	Port       string
	APIEnabled bool

	adminIDs map[string]struct{}
}

// LoadConfig загружает конфигурацию из переменных окружения.
func LoadConfig() (*Config, error) {
	log := logger.Get()

	cfg := &Config{
		TelegramToken:     os.Getenv("TELEGRAM_APITOKEN"),
		BotUsername:       strings.TrimPrefix(os.Getenv("BOT_USERNAME"), "@"),
		AppEnv:            os.Getenv("ENV"),
		StorageBackend:    strings.ToLower(envOrDefault("STORAGE_BACKEND", constants.STORAGE_BACKEND_FILE)),
		StorageDir:        envOrDefault("STORAGE_DIR", "/var/data"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		RedisURL:          os.Getenv("REDIS_URL"),
		DocumentKey:       envOrDefault("DOCUMENT_KEY", "portal_config"),
		DestinationMode:   strings.ToLower(envOrDefault("DESTINATION_MODE", constants.DESTINATION_MODE_LINK)),
		ReferralResetCron: strings.TrimSpace(os.Getenv("REFERRAL_RESET_CRON")),
		Port:              envOrDefault("PORT", "8080"),
		APIEnabled:        true,
	}
	if cfg.TelegramToken == "" {
		// Исторически бот читал BOT_TOKEN.
		cfg.TelegramToken = os.Getenv("BOT_TOKEN")
	}

	cfg.adminIDs = ParseAdminIDs(os.Getenv("ADMIN_IDS"))

	if ttlStr := os.Getenv("INVITE_MESSAGE_TTL"); ttlStr != "" {
		ttl, err := time.ParseDuration(ttlStr)
		if err != nil || ttl < 0 {
			log.Warnf("Предупреждение: некорректное значение INVITE_MESSAGE_TTL ('%s'): %v. Сообщения не будут удаляться.", ttlStr, err)
		} else {
			cfg.InviteMessageTTL = ttl
		}
	}

	if apiStr := os.Getenv("API_ENABLED"); apiStr != "" {
		enabled, err := strconv.ParseBool(apiStr)
		if err != nil {
			log.Warnf("Предупреждение: некорректное значение API_ENABLED ('%s'), API включен.", apiStr)
		} else {
			cfg.APIEnabled = enabled
		}
	}

	switch cfg.DestinationMode {
	case constants.DESTINATION_MODE_LINK, constants.DESTINATION_MODE_CHAT:
	default:
		log.Warnf("Предупреждение: неизвестный DESTINATION_MODE '%s', используется '%s'.", cfg.DestinationMode, constants.DESTINATION_MODE_LINK)
		cfg.DestinationMode = constants.DESTINATION_MODE_LINK
	}

	switch cfg.StorageBackend {
	case constants.STORAGE_BACKEND_FILE:
	case constants.STORAGE_BACKEND_POSTGRES:
		if cfg.DatabaseURL == "" {
			log.Error("Критическая ошибка: STORAGE_BACKEND=postgres, но DATABASE_URL не установлен.")
		}
	case constants.STORAGE_BACKEND_REDIS:
		if cfg.RedisURL == "" {
			log.Error("Критическая ошибка: STORAGE_BACKEND=redis, но REDIS_URL не установлен.")
		}
	default:
		log.Warnf("Предупреждение: неизвестный STORAGE_BACKEND '%s', используется файл.", cfg.StorageBackend)
		cfg.StorageBackend = constants.STORAGE_BACKEND_FILE
	}

	if cfg.TelegramToken == "" {
		log.Error("Критическая ошибка: TELEGRAM_APITOKEN не установлен.")
	}
	if len(cfg.adminIDs) == 0 {
		log.Warn("Предупреждение: ADMIN_IDS не установлен, админ-панель никому не доступна.")
	}
	if cfg.BotUsername == "" {
		log.Warn("Предупреждение: BOT_USERNAME не установлен, реферальные ссылки недоступны.")
	}

	log.Infof("Конфигурация загружена (хранилище: %s, режим назначений: %s, админов: %d).", cfg.StorageBackend, cfg.DestinationMode, len(cfg.adminIDs))
	return cfg, nil
}

// ParseAdminIDs разбирает список ID через запятую.
func ParseAdminIDs(raw string) map[string]struct{} {
	ids := make(map[string]struct{})
	for _, part := range strings.Split(raw, ",") {
		if id := strings.TrimSpace(part); id != "" {
			ids[id] = struct{}{}
		}
	}
	return ids
}

// SetAdminIDs заменяет список администраторов.
func (c *Config) SetAdminIDs(ids ...string) {
	c.adminIDs = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		c.adminIDs[id] = struct{}{}
	}
}

// IsAdmin проверяет, входит ли ID в список администраторов.
func (c *Config) IsAdmin(userID string) bool {
	if c == nil {
		return false
	}
	_, ok := c.adminIDs[userID]
	return ok
}

// AdminIDs возвращает список администраторов.
func (c *Config) AdminIDs() []string {
	out := make([]string, 0, len(c.adminIDs))
	for id := range c.adminIDs {
		out = append(out, id)
	}
	return out
}

func envOrDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
