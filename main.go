package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"portalbot/internal/api"
	"portalbot/internal/config"
	"portalbot/internal/db"
	"portalbot/internal/handlers"
	"portalbot/internal/logger"
	"portalbot/internal/session"
	"portalbot/internal/telegram_api"
	"portalbot/internal/workers"
)

func main() {
	// --- Блок инициализации ---
	errEnv := godotenv.Load()
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()
	log := logger.Get()
	if errEnv != nil {
		log.Warn("Предупреждение: не удалось загрузить файл .env. Переменные окружения должны быть установлены иным способом.")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Критическая ошибка: не удалось загрузить конфигурацию: %v", err)
	}
	if cfg.TelegramToken == "" {
		log.Fatal("Критическая ошибка: TELEGRAM_APITOKEN не установлен.")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := db.OpenStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Критическая ошибка: не удалось открыть хранилище: %v", err)
	}
	defer store.Close()

	registry := db.NewDestinationRegistry(store, cfg.DestinationMode)
	ledger := db.NewReferralLedger(store)
	welcome := db.NewWelcomeStore(store)

	botClient, err := telegram_api.InitBot(cfg.TelegramToken, cfg.AppEnv == "dev")
	if err != nil {
		log.Fatalf("Критическая ошибка: не удалось инициализировать Telegram бота: %v", err)
	}
	if cfg.BotUsername == "" {
		cfg.BotUsername = botClient.Username()
	}

	scheduler, err := workers.NewScheduler()
	if err != nil {
		log.Fatalf("Критическая ошибка: не удалось запустить планировщик: %v", err)
	}
	if cfg.ReferralResetCron != "" {
		err := scheduler.ScheduleCron("referral_reset", cfg.ReferralResetCron, func() {
			if _, errReset := ledger.ResetAllCounts(context.Background()); errReset != nil {
				log.Errorf("[Scheduler] Ошибка периодического сброса счетчиков: %v", errReset)
			}
		})
		if err != nil {
			log.Fatalf("Критическая ошибка: некорректный REFERRAL_RESET_CRON: %v", err)
		}
	}

	botHandler := handlers.NewBotHandler(handlers.HandlerDependencies{
		Config:         cfg,
		BotClient:      botClient,
		SessionManager: session.NewSessionManager(),
		Registry:       registry,
		Ledger:         ledger,
		Welcome:        welcome,
		Scheduler:      scheduler,
	})

	// --- HTTP API ---
	var server *http.Server
	if cfg.APIEnabled {
		apiRouter := chi.NewRouter()
		apiRouter.Use(middleware.Logger)
		apiRouter.Use(middleware.Recoverer)
		apiRouter.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"https://*", "http://*"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Telegram-Auth"},
			ExposedHeaders:   []string{"Content-Disposition"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
		api.SetupRoutes(apiRouter, api.ApiDependencies{
			Config:    cfg,
			SecretKey: cfg.TelegramToken,
			Registry:  registry,
			Ledger:    ledger,
			Welcome:   welcome,
		})

		server = &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           apiRouter,
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			log.Infof("Запуск HTTP-сервера API на порту %s", cfg.Port)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Errorf("КРИТИЧЕСКАЯ ОШИБКА: HTTP-сервер остановлен: %v", err)
				stop()
			}
		}()
	}

	// --- Запуск самого бота ---
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := botClient.GetUpdatesChan(u)

	log.Info("Бот запущен и готов к работе...")

	// Начатые обработчики доводят запись документа до конца даже после сигнала остановки.
	handlerCtx := context.WithoutCancel(ctx)
	var wg sync.WaitGroup
loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case update, ok := <-updates:
			if !ok {
				break loop
			}
			wg.Add(1)
			go func(update tgbotapi.Update) {
				defer wg.Done()
				botHandler.HandleUpdate(handlerCtx, update)
			}(update)
		}
	}

	// --- Остановка ---
	log.Info("Остановка бота...")
	botClient.StopReceivingUpdates()
	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Warnf("Ошибка остановки HTTP-сервера: %v", err)
		}
	}
	wg.Wait()
	if err := scheduler.Shutdown(); err != nil {
		log.Warnf("Ошибка остановки планировщика: %v", err)
	}
	log.Info("Бот остановлен.")
}
