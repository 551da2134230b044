package handlers

import (
	"context"
	"strconv"
	"strings"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"

	"portalbot/internal/constants"
	"portalbot/internal/formatters"
	"portalbot/internal/logger"
	"portalbot/internal/models"
	"portalbot/internal/telegram_api"
	"portalbot/internal/utils"
)

// HandleCallback обрабатывает входящие callback query от Telegram.
func (bh *BotHandler) HandleCallback(ctx context.Context, update tgbotapi.Update) {
	query := update.CallbackQuery
	if query == nil || query.From == nil || query.Message == nil {
		logger.Get().Debug("[CALLBACK_HANDLER] Получен пустой или неполный CallbackQuery.")
		return
	}

	chatID := query.Message.Chat.ID
	originalMessageID := query.Message.MessageID
	data := query.Data

	logger.Get().Debugf("[CALLBACK_HANDLER] START: ChatID=%d, UserID=%d, OriginalMsgID=%d, Data='%s'",
		chatID, query.From.ID, originalMessageID, data)

	bh.answerCallback(query.ID, "")

	switch {
	case strings.HasPrefix(data, constants.CALLBACK_PREFIX_JOIN):
		bh.handleJoin(ctx, query, strings.TrimPrefix(data, constants.CALLBACK_PREFIX_JOIN))
		return
	case data == constants.CALLBACK_MY_LINK:
		bh.SendMyLink(ctx, chatID, query.From.ID)
		return
	}

	// Все остальное - админ-панель.
	if !bh.isAdmin(query.From.ID) {
		logger.Get().Warnf("[CALLBACK_HANDLER] Отказ в доступе: пользователь %d, data '%s'", query.From.ID, data)
		bh.sendOrEditMessageHelper(chatID, originalMessageID, "❌ Access denied.", nil, "")
		return
	}
	bh.dispatchAdminCallback(ctx, query)
}

// handleJoin выдает пользователю ссылку в выбранное назначение и отмечает вступление в реферальном учете.
func (bh *BotHandler) handleJoin(ctx context.Context, query *tgbotapi.CallbackQuery, destinationID string) {
	chatID := query.Message.Chat.ID
	userID := strconv.FormatInt(query.From.ID, 10)

	dest, ok := bh.Deps.Registry.Get(ctx, destinationID)
	if !ok {
		logger.Get().Infof("handleJoin: назначение %s не найдено (пользователь %s)", destinationID, userID)
		bh.sendMessage(chatID, "❌ Group not found. Please try again with /start")
		return
	}

	link, ok := bh.resolveJoinLink(dest, userID)
	if !ok {
		bh.sendMessage(chatID, "❌ No invite link configured for "+dest.Name+".\n\nPlease contact an administrator.")
		return
	}

	total := bh.Deps.Registry.Count(ctx)
	outcome, err := bh.Deps.Ledger.RecordDestinationJoin(ctx, userID, dest.ID, total)
	if err != nil {
		logger.Get().Errorf("handleJoin: ошибка учета вступления %s в %s: %v", userID, dest.ID, err)
		bh.sendErrorMessageHelper(chatID, 0, "❌ Something went wrong. Please try again.")
		return
	}

	joined := 0
	entry, hasEntry := bh.Deps.Ledger.Entry(ctx, userID)
	if hasEntry {
		joined = len(entry.CompletedDestinations)
	}

	keyboard := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonURL("🔗 Join "+dest.Name, link),
	))
	msg := tgbotapi.NewMessage(chatID, formatters.FormatInviteMessage(dest, outcome, joined, total))
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = keyboard
	sent, err := bh.Deps.BotClient.Send(msg)
	if err != nil {
		logger.Get().Errorf("handleJoin: ошибка отправки ссылки пользователю %s: %v", userID, err)
		return
	}
	bh.scheduleDeletion(chatID, sent.MessageID, bh.Deps.Config.InviteMessageTTL)

	logger.Get().Infof("Отправлена ссылка пользователю %s в группу %q (%s)", userID, dest.Name, outcome)
	if outcome == models.JoinCounted && hasEntry && entry.ReferredBy != "" {
		bh.notifyReferrer(ctx, entry.ReferredBy)
	}
}

// resolveJoinLink возвращает URL для кнопки вступления.
// В режиме chat бот создает одноразовую ссылку; если не удалось - публичная ссылка по @username.
func (bh *BotHandler) resolveJoinLink(dest models.Destination, userID string) (string, bool) {
	if bh.Deps.Registry.Mode() != constants.DESTINATION_MODE_CHAT {
		return dest.AccessRef, dest.AccessRef != ""
	}

	link, err := telegram_api.CreateChatInviteLink(bh.Deps.BotClient, dest.AccessRef, "portal "+userID, constants.INVITE_LINK_TTL)
	if err == nil {
		return link, true
	}
	logger.Get().Warnf("resolveJoinLink: не удалось создать ссылку для %s: %v", dest.AccessRef, err)
	return utils.ChatLinkFromRef(dest.AccessRef)
}
