package telegram_api

import (
	"fmt"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"

	"portalbot/internal/logger"
)

// Sender - то, что нужно обработчикам от Telegram API. Реализуется BotClient, в тестах - фейком.
// Sender is the part of the Telegram API the handlers need; implemented by BotClient.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	MakeRequest(endpoint string, params tgbotapi.Params) (*tgbotapi.APIResponse, error)
}

// BotClient представляет собой обертку для Telegram Bot API.
type BotClient struct {
	api   *tgbotapi.BotAPI
	Debug bool
}

// InitBot инициализирует Telegram бота.
// token - API токен бота, debug - флаг для включения режима отладки.
func InitBot(token string, debug bool) (*BotClient, error) {
	if token == "" {
		return nil, fmt.Errorf("токен Telegram API не предоставлен")
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации Telegram Bot API: %w", err)
	}
	api.Debug = debug

	logger.Get().Infof("Авторизован как аккаунт %s", api.Self.UserName)

	// Отключаем вебхук, если он активен (важно для getUpdates)
	deleteWebhookConfig := tgbotapi.DeleteWebhookConfig{
		DropPendingUpdates: false,
	}
	if _, err = api.Request(deleteWebhookConfig); err != nil {
		// Ошибка может возникнуть, если вебхука и не было.
		logger.Get().Warnf("Предупреждение или ошибка при отключении вебхука: %v. Это может быть нормально, если вебхук не был установлен.", err)
	} else {
		logger.Get().Info("Вебхук успешно отключен (или не был установлен).")
	}

	return &BotClient{api: api, Debug: debug}, nil
}

// Username возвращает имя бота, под которым он авторизован.
func (bc *BotClient) Username() string {
	if bc == nil || bc.api == nil {
		return ""
	}
	return bc.api.Self.UserName
}

// GetUpdatesChan возвращает канал обновлений от Telegram.
func (bc *BotClient) GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	if bc.Debug {
		logger.Get().Debugf("Запрос канала обновлений с конфигурацией: %+v", config)
	}
	return bc.api.GetUpdatesChan(config)
}

// StopReceivingUpdates останавливает long polling.
func (bc *BotClient) StopReceivingUpdates() {
	bc.api.StopReceivingUpdates()
}

// Send отправляет сообщение через BotClient.
func (bc *BotClient) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if bc == nil || bc.api == nil {
		return tgbotapi.Message{}, fmt.Errorf("BotClient или его API не инициализирован")
	}
	if bc.Debug {
		if msg, ok := c.(tgbotapi.MessageConfig); ok {
			logger.Get().Debugf("Отправка сообщения: ChatID=%d, Text='%.50s...'", msg.ChatID, msg.Text)
		} else {
			logger.Get().Debugf("Отправка/запрос типа %T", c)
		}
	}
	return bc.api.Send(c)
}

// Request выполняет запрос через BotClient.
func (bc *BotClient) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	if bc == nil || bc.api == nil {
		return nil, fmt.Errorf("BotClient или его API не инициализирован")
	}
	if bc.Debug {
		logger.Get().Debugf("Выполнение запроса типа %T", c)
	}
	return bc.api.Request(c)
}

// MakeRequest выполняет произвольный запрос к API Telegram.
// Полезен для методов, не обернутых в tgbotapi (например, createChatInviteLink).
func (bc *BotClient) MakeRequest(endpoint string, params tgbotapi.Params) (*tgbotapi.APIResponse, error) {
	if bc == nil || bc.api == nil {
		return nil, fmt.Errorf("BotClient или его API не инициализирован")
	}
	if bc.Debug {
		logger.Get().Debugf("Выполнение MakeRequest: endpoint=%s, params=%v", endpoint, params)
	}
	return bc.api.MakeRequest(endpoint, params)
}
