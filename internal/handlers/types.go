package handlers

import (
	"portalbot/internal/config"
	"portalbot/internal/db"
	"portalbot/internal/session"
	"portalbot/internal/telegram_api"
	"portalbot/internal/workers"
)

// HandlerDependencies содержит все зависимости, необходимые для обработчиков.
// HandlerDependencies contains all dependencies required for handlers.
type HandlerDependencies struct {
	Config         *config.Config
	BotClient      telegram_api.Sender
	SessionManager *session.SessionManager

	Registry *db.DestinationRegistry
	Ledger   *db.ReferralLedger
	Welcome  *db.WelcomeStore

	// Scheduler может быть nil: тогда сообщения с приглашением не удаляются.
	Scheduler *workers.Scheduler
}

// BotHandler инкапсулирует логику обработки сообщений и коллбэков.
// BotHandler encapsulates the logic for handling messages and callbacks.
type BotHandler struct {
	Deps HandlerDependencies
}

// NewBotHandler создает новый экземпляр BotHandler.
func NewBotHandler(deps HandlerDependencies) *BotHandler {
	if deps.Config == nil || deps.BotClient == nil || deps.SessionManager == nil ||
		deps.Registry == nil || deps.Ledger == nil || deps.Welcome == nil {
		panic("Не все зависимости для BotHandler были предоставлены.")
	}
	return &BotHandler{Deps: deps}
}
