package handlers

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"

	"portalbot/internal/constants"
	"portalbot/internal/logger"
	"portalbot/internal/utils"
)

// dispatchAdminCallback обрабатывает кнопки админ-панели. Права уже проверены.
func (bh *BotHandler) dispatchAdminCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	chatID := query.Message.Chat.ID
	messageID := query.Message.MessageID
	adminID := query.From.ID
	data := query.Data

	if strings.HasPrefix(data, constants.CALLBACK_PREFIX_DELETE) {
		dest, ok := bh.Deps.Registry.Get(ctx, strings.TrimPrefix(data, constants.CALLBACK_PREFIX_DELETE))
		if !ok {
			bh.Deps.SessionManager.Reset(chatID)
			bh.sendOrEditMessageHelper(chatID, messageID, "❌ Group not found.", nil, "")
			return
		}
		bh.SendDeleteConfirmation(chatID, messageID, dest)
		return
	}

	switch data {
	case constants.CALLBACK_ADMIN_EDIT_WELCOME:
		bh.SendWelcomeEditPrompt(ctx, chatID, messageID)

	case constants.CALLBACK_ADMIN_WELCOME_MEDIA:
		bh.SendWelcomeMediaPrompt(ctx, chatID, messageID)

	case constants.CALLBACK_ADMIN_CLEAR_MEDIA:
		bh.Deps.SessionManager.Reset(chatID)
		if err := bh.Deps.Welcome.ClearMedia(ctx); err != nil {
			logger.Get().Errorf("dispatchAdminCallback: ошибка удаления медиа приветствия: %v", err)
			bh.sendErrorMessageHelper(chatID, messageID, "❌ Error removing welcome media. Please try again.")
			return
		}
		logger.Get().Infof("Админ %d удалил медиа приветствия", adminID)
		bh.SendAdminPanel(ctx, chatID, messageID, "✅ Welcome media removed.")

	case constants.CALLBACK_ADMIN_MANAGE_GROUPS:
		bh.SendGroupManagementMenu(chatID, messageID)

	case constants.CALLBACK_ADMIN_ADD_GROUP:
		bh.SendAddGroupPrompt(chatID, messageID)

	case constants.CALLBACK_ADMIN_VIEW_GROUPS:
		bh.SendDestinationList(ctx, chatID, messageID)

	case constants.CALLBACK_ADMIN_DELETE_GROUP:
		bh.SendDeleteGroupMenu(ctx, chatID, messageID)

	case constants.CALLBACK_CONFIRM_DELETE_YES:
		bh.confirmDelete(ctx, chatID, messageID, adminID)

	case constants.CALLBACK_CONFIRM_DELETE_NO:
		bh.Deps.SessionManager.Reset(chatID)
		bh.SendAdminPanel(ctx, chatID, messageID, "✅ Deletion cancelled.")

	case constants.CALLBACK_ADMIN_STATS:
		bh.Deps.SessionManager.Reset(chatID)
		bh.SendReferralStats(ctx, chatID, messageID)

	case constants.CALLBACK_ADMIN_STATS_EXCEL:
		bh.generateAndSendReferralsExcel(ctx, chatID)

	case constants.CALLBACK_ADMIN_RESET_REFS:
		bh.SendResetConfirmation(ctx, chatID, messageID)

	case constants.CALLBACK_CONFIRM_RESET_YES:
		if bh.Deps.SessionManager.GetState(chatID) != constants.STATE_CONFIRMING_REF_RESET {
			bh.SendAdminPanel(ctx, chatID, messageID, "")
			return
		}
		bh.Deps.SessionManager.Reset(chatID)
		reset, err := bh.Deps.Ledger.ResetAllCounts(ctx)
		if err != nil {
			bh.sendErrorMessageHelper(chatID, messageID, "❌ Error resetting referral counts. Please try again.")
			return
		}
		logger.Get().Infof("Админ %d обнулил реферальные счетчики (%d записей)", adminID, reset)
		bh.SendAdminPanel(ctx, chatID, messageID, fmt.Sprintf("✅ Referral counts reset for %d users.", reset))

	case constants.CALLBACK_CONFIRM_RESET_NO:
		bh.Deps.SessionManager.Reset(chatID)
		bh.SendAdminPanel(ctx, chatID, messageID, "✅ Reset cancelled.")

	case constants.CALLBACK_ADMIN_BACK:
		bh.Deps.SessionManager.Reset(chatID)
		bh.SendAdminPanel(ctx, chatID, messageID, "")

	case constants.CALLBACK_ADMIN_CLOSE:
		bh.Deps.SessionManager.Reset(chatID)
		bh.sendOrEditMessageHelper(chatID, messageID, "✅ Admin panel closed.", nil, "")

	default:
		logger.Get().Warnf("dispatchAdminCallback: неизвестный callback '%s' от %d", data, adminID)
	}
}

func (bh *BotHandler) confirmDelete(ctx context.Context, chatID int64, messageID int, adminID int64) {
	groupID := bh.Deps.SessionManager.GetTempAdmin(chatID).PendingDeleteID
	bh.Deps.SessionManager.Reset(chatID)
	if groupID == "" {
		bh.sendOrEditMessageHelper(chatID, messageID, "❌ Error: No group selected for deletion.", nil, "")
		return
	}

	groupName := "Unknown"
	if dest, ok := bh.Deps.Registry.Get(ctx, groupID); ok {
		groupName = dest.Name
	}

	removed, err := bh.Deps.Registry.Delete(ctx, groupID)
	if err != nil {
		bh.sendErrorMessageHelper(chatID, messageID, "❌ Error deleting group.")
		return
	}
	if !removed {
		bh.sendOrEditMessageHelper(chatID, messageID, "❌ Group not found.", nil, "")
		return
	}
	logger.Get().Infof("Админ %d удалил группу %q", adminID, groupName)
	bh.SendAdminPanel(ctx, chatID, messageID, "✅ Successfully deleted group: *"+utils.EscapeTelegramMarkdown(groupName)+"*")
}
