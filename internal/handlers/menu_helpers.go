package handlers

import (
	"fmt"
	"time"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"

	"portalbot/internal/constants"
	"portalbot/internal/logger"
	"portalbot/internal/telegram_api"
)

// --- Вспомогательные функции для отправки сообщений и управления сессией ---
// --- Helper functions for sending messages and managing session ---

// sendOrEditMessageHelper отправляет или редактирует сообщение и запоминает его как текущее меню.
func (bh *BotHandler) sendOrEditMessageHelper(
	chatID int64,
	messageIDToTryEdit int,
	text string,
	keyboard *tgbotapi.InlineKeyboardMarkup,
	parseMode string,
) (tgbotapi.Message, error) {
	sentMsg, err := telegram_api.SendOrEditMessage(bh.Deps.BotClient, chatID, messageIDToTryEdit, text, keyboard, parseMode)
	if err != nil {
		return tgbotapi.Message{}, err
	}
	if sentMsg.MessageID != 0 {
		tempData := bh.Deps.SessionManager.GetTempAdmin(chatID)
		tempData.CurrentMessageID = sentMsg.MessageID
		bh.Deps.SessionManager.UpdateTempAdmin(chatID, tempData)
	}
	return sentMsg, nil
}

// sendErrorMessageHelper отправляет сообщение об ошибке.
func (bh *BotHandler) sendErrorMessageHelper(chatID int64, messageIDToEdit int, errorText string) {
	if _, err := telegram_api.SendErrorMessage(bh.Deps.BotClient, chatID, messageIDToEdit, errorText); err != nil {
		logger.Get().Errorf("sendErrorMessageHelper: не удалось отправить ошибку в chatID %d: %v", chatID, err)
	}
}

// sendMessage отправляет простое текстовое сообщение.
func (bh *BotHandler) sendMessage(chatID int64, text string) {
	if _, err := bh.Deps.BotClient.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		logger.Get().Errorf("sendMessage: ошибка отправки сообщения в chatID %d: %v", chatID, err)
	}
}

// deleteMessageHelper удаляет сообщение.
func (bh *BotHandler) deleteMessageHelper(chatID int64, messageID int) bool {
	return telegram_api.DeleteMessage(bh.Deps.BotClient, chatID, messageID)
}

// answerCallback отвечает на callback query, чтобы убрать "часики" на кнопке.
func (bh *BotHandler) answerCallback(queryID, text string) {
	if _, err := bh.Deps.BotClient.Request(tgbotapi.NewCallback(queryID, text)); err != nil {
		logger.Get().Warnf("[CALLBACK_HANDLER] Ошибка ответа на CallbackQuery ID %s: %v. Продолжаем.", queryID, err)
	}
}

// scheduleDeletion удаляет сообщение через ttl. Без планировщика или при ttl <= 0 ничего не делает.
func (bh *BotHandler) scheduleDeletion(chatID int64, messageID int, ttl time.Duration) {
	if bh.Deps.Scheduler == nil || ttl <= 0 || messageID == 0 {
		return
	}
	name := fmt.Sprintf("delete_%d_%d", chatID, messageID)
	err := bh.Deps.Scheduler.ScheduleOnce(name, ttl, func() {
		bh.deleteMessageHelper(chatID, messageID)
	})
	if err != nil {
		logger.Get().Warnf("scheduleDeletion: не удалось запланировать удаление сообщения %d в chatID %d: %v", messageID, chatID, err)
	}
}

// isAdmin проверяет пользователя по списку ADMIN_IDS.
func (bh *BotHandler) isAdmin(userID int64) bool {
	return bh.Deps.Config.IsAdmin(fmt.Sprintf("%d", userID))
}

// backButtonRow - строка с одной кнопкой "назад".
func backButtonRow(text, callback string) []tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(text, callback))
}

// adminPanelKeyboard - главное меню администратора.
func adminPanelKeyboard(hasMedia bool) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("📝 Edit Welcome Message", constants.CALLBACK_ADMIN_EDIT_WELCOME)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🖼 Welcome Media", constants.CALLBACK_ADMIN_WELCOME_MEDIA)),
	}
	if hasMedia {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🚫 Remove Welcome Media", constants.CALLBACK_ADMIN_CLEAR_MEDIA)))
	}
	rows = append(rows,
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🔗 Manage Groups", constants.CALLBACK_ADMIN_MANAGE_GROUPS)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("📊 Referral Stats", constants.CALLBACK_ADMIN_STATS)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("❌ Close", constants.CALLBACK_ADMIN_CLOSE)),
	)
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
