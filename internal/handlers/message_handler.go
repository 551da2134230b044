// Файл: internal/handlers/message_handler.go

package handlers

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"

	"portalbot/internal/constants"
	"portalbot/internal/db"
	"portalbot/internal/formatters"
	"portalbot/internal/logger"
	"portalbot/internal/models"
	"portalbot/internal/utils"
)

// HandleUpdate распределяет обновление по обработчикам.
func (bh *BotHandler) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.Message != nil:
		bh.HandleMessage(ctx, update)
	case update.CallbackQuery != nil:
		bh.HandleCallback(ctx, update)
	}
}

// HandleMessage обрабатывает входящие сообщения от Telegram.
func (bh *BotHandler) HandleMessage(ctx context.Context, update tgbotapi.Update) {
	message := update.Message
	if message == nil || message.From == nil {
		return
	}
	// Бот работает только в личных чатах.
	if message.Chat.Type != "" && message.Chat.Type != "private" {
		return
	}

	chatID := message.Chat.ID
	userID := message.From.ID
	text := strings.TrimSpace(message.Text)

	logger.Get().Debugf("HandleMessage: ChatID=%d, UserID=%d, Text='%.50s', Photo: %v, Video: %v",
		chatID, userID, text, message.Photo != nil, message.Video != nil)

	if message.IsCommand() {
		switch message.Command() {
		case "start":
			bh.handleStart(ctx, message)
		case "admin":
			if !bh.isAdmin(userID) {
				logger.Get().Warnf("HandleMessage: попытка доступа к админ-панели от %d (%s)", userID,
					utils.GetUserDisplayName(message.From.FirstName, message.From.LastName, message.From.UserName))
				bh.sendMessage(chatID, "❌ Access denied. You are not authorized to use this command.")
				return
			}
			bh.Deps.SessionManager.Reset(chatID)
			bh.SendAdminPanel(ctx, chatID, 0, "")
			logger.Get().Infof("Админ %d открыл админ-панель", userID)
		case "cancel":
			bh.Deps.SessionManager.Reset(chatID)
			bh.sendMessage(chatID, "✅ Operation cancelled.")
		case "mylink":
			bh.SendMyLink(ctx, chatID, userID)
		default:
			logger.Get().Debugf("HandleMessage: неизвестная команда '%s' от chatID %d", message.Command(), chatID)
			bh.sendMessage(chatID, "Unknown command. Send /start to see the groups.")
		}
		return
	}

	state := bh.Deps.SessionManager.GetState(chatID)
	if state == constants.STATE_IDLE {
		return
	}
	if !bh.isAdmin(userID) {
		// Состояние могло остаться после удаления из ADMIN_IDS.
		bh.Deps.SessionManager.Reset(chatID)
		return
	}

	switch state {
	case constants.STATE_EDITING_WELCOME:
		bh.handleWelcomeTextInput(ctx, chatID, userID, message)
	case constants.STATE_AWAITING_MEDIA:
		bh.handleWelcomeMediaInput(ctx, chatID, userID, message)
	case constants.STATE_ADDING_GROUP_NAME:
		bh.handleGroupNameInput(chatID, text)
	case constants.STATE_ADDING_GROUP_REF:
		bh.handleGroupRefInput(ctx, chatID, userID, text)
	default:
		logger.Get().Debugf("HandleMessage: сообщение в состоянии %s проигнорировано (chatID %d)", state, chatID)
	}
}

// handleStart регистрирует пользователя (с пригласившим из deep link) и показывает приветствие.
func (bh *BotHandler) handleStart(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	userID := strconv.FormatInt(message.From.ID, 10)

	referredBy, ok := utils.ParseReferralPayload(message.CommandArguments())
	if ok && referredBy == userID {
		logger.Get().Infof("handleStart: пользователь %s перешел по собственной ссылке, пригласивший не учитывается.", userID)
		referredBy = ""
	}

	if _, err := bh.Deps.Ledger.Register(ctx, userID, referredBy); err != nil {
		// Регистрация не критична для показа приветствия: запись создастся при первом вступлении.
		logger.Get().Errorf("handleStart: ошибка регистрации пользователя %s: %v", userID, err)
	}

	bh.Deps.SessionManager.Reset(chatID)
	bh.SendWelcomeScreen(ctx, chatID)
	logger.Get().Infof("Пользователь %s (%s) использовал /start", userID,
		utils.GetUserDisplayName(message.From.FirstName, message.From.LastName, message.From.UserName))
}

func (bh *BotHandler) handleWelcomeTextInput(ctx context.Context, chatID, userID int64, message *tgbotapi.Message) {
	if strings.TrimSpace(message.Text) == "" {
		bh.sendMessage(chatID, "❌ Please send the welcome message as text.\n\nSend /cancel to abort.")
		return
	}
	if err := bh.Deps.Welcome.SetMessage(ctx, message.Text); err != nil {
		logger.Get().Errorf("handleWelcomeTextInput: ошибка сохранения приветствия от %d: %v", userID, err)
		bh.sendErrorMessageHelper(chatID, 0, "❌ Error updating welcome message. Please try again.")
		return
	}
	bh.Deps.SessionManager.Reset(chatID)
	result := "✅ *Welcome message updated successfully!*\n\nNew message:\n_" + utils.EscapeTelegramMarkdown(message.Text) + "_"
	bh.SendAdminPanel(ctx, chatID, 0, result)
	logger.Get().Infof("Админ %d обновил приветствие", userID)
}

func (bh *BotHandler) handleWelcomeMediaInput(ctx context.Context, chatID, userID int64, message *tgbotapi.Message) {
	ref, kind, ok := utils.GetWelcomeMedia(message)
	if !ok {
		bh.sendMessage(chatID, "❌ Please send a photo or a video.\n\nSend /cancel to abort.")
		return
	}
	if err := bh.Deps.Welcome.SetMedia(ctx, ref, kind); err != nil {
		logger.Get().Errorf("handleWelcomeMediaInput: ошибка сохранения медиа от %d: %v", userID, err)
		bh.sendErrorMessageHelper(chatID, 0, "❌ Error saving welcome media. Please try again.")
		return
	}
	bh.Deps.SessionManager.Reset(chatID)
	bh.SendAdminPanel(ctx, chatID, 0, "✅ *Welcome "+string(kind)+" saved!*")
	logger.Get().Infof("Админ %d установил медиа приветствия (%s)", userID, kind)
}

func (bh *BotHandler) handleGroupNameInput(chatID int64, name string) {
	if name == "" {
		bh.sendMessage(chatID, "❌ Group name cannot be empty. Please try again.")
		return
	}
	if utf8.RuneCountInString(name) > constants.MAX_DESTINATION_NAME_LEN {
		bh.sendMessage(chatID, "❌ Group name is too long. Please use at most "+strconv.Itoa(constants.MAX_DESTINATION_NAME_LEN)+" characters.")
		return
	}

	tempData := bh.Deps.SessionManager.GetTempAdmin(chatID)
	tempData.PendingGroupName = name
	bh.Deps.SessionManager.UpdateTempAdmin(chatID, tempData)
	bh.Deps.SessionManager.SetState(chatID, constants.STATE_ADDING_GROUP_REF)

	bh.sendOrEditMessageHelper(chatID, 0, formatters.FormatAddGroupRefPrompt(name, bh.Deps.Registry.Mode()), nil, tgbotapi.ModeMarkdown)
}

func (bh *BotHandler) handleGroupRefInput(ctx context.Context, chatID, userID int64, accessRef string) {
	mode := bh.Deps.Registry.Mode()
	if accessRef == "" {
		bh.sendMessage(chatID, "❌ Please send the group's "+refNoun(mode)+".\n\nSend /cancel to abort.")
		return
	}

	name := bh.Deps.SessionManager.GetTempAdmin(chatID).PendingGroupName
	if name == "" {
		// Сессия потерялась (например, после перезапуска) - начинаем заново.
		bh.Deps.SessionManager.Reset(chatID)
		bh.sendErrorMessageHelper(chatID, 0, "❌ Session expired. Please start adding the group again from /admin.")
		return
	}

	if err := utils.ValidateDestination(models.Destination{Name: name, AccessRef: accessRef}, mode); err != nil {
		logger.Get().Debugf("handleGroupRefInput: невалидная ссылка %q от %d: %v", accessRef, userID, err)
		bh.sendMessage(chatID, invalidRefHint(mode))
		return
	}

	if bh.Deps.Registry.Exists(ctx, accessRef) {
		bh.Deps.SessionManager.Reset(chatID)
		bh.sendMessage(chatID, "❌ A group with this "+refNoun(mode)+" already exists.\n\nPlease check your groups or use a different one.")
		return
	}

	dest, err := bh.Deps.Registry.Add(ctx, name, accessRef)
	if err != nil {
		logger.Get().Errorf("handleGroupRefInput: ошибка добавления группы %q от %d: %v", name, userID, err)
		if errors.Is(err, db.ErrValidation) {
			bh.sendMessage(chatID, invalidRefHint(mode))
			return
		}
		bh.Deps.SessionManager.Reset(chatID)
		bh.sendErrorMessageHelper(chatID, 0, "❌ Error saving the group. Please try again.")
		return
	}

	bh.Deps.SessionManager.Reset(chatID)
	bh.SendAdminPanel(ctx, chatID, 0, formatters.FormatDestinationAdded(dest))
	logger.Get().Infof("Админ %d добавил группу %q", userID, dest.Name)
}

func refNoun(mode string) string {
	if mode == constants.DESTINATION_MODE_CHAT {
		return "chat identifier"
	}
	return "invite link"
}

func invalidRefHint(mode string) string {
	if mode == constants.DESTINATION_MODE_CHAT {
		return "❌ Invalid chat identifier.\n\n" +
			"Send the public @username or the numeric chat ID.\n\n" +
			"Example: -1001234567890\n\n" +
			"Please try again or send /cancel to abort."
	}
	return "❌ Invalid invite link format.\n\n" +
		"The link should start with https://t.me/ or http://t.me/\n\n" +
		"Example: https://t.me/+xxxxxxxxxxxx\n\n" +
		"Please try again or send /cancel to abort."
}
