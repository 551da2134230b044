package handlers

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"

	"portalbot/internal/constants"
	"portalbot/internal/formatters"
	"portalbot/internal/logger"
	"portalbot/internal/models"
	"portalbot/internal/reports"
)

// SendAdminPanel показывает главное меню администратора.
// result - текст результата предыдущей операции, выводится над меню (может быть пустым).
func (bh *BotHandler) SendAdminPanel(ctx context.Context, chatID int64, messageIDToEdit int, result string) {
	hasMedia := bh.Deps.Welcome.Media(ctx) != nil
	count := bh.Deps.Registry.Count(ctx)
	mode := bh.Deps.Registry.Mode()

	text := formatters.FormatAdminPanel(count, mode, hasMedia)
	if result != "" {
		text = formatters.FormatWithAdminPanel(result, count, mode, hasMedia)
	}
	keyboard := adminPanelKeyboard(hasMedia)
	if _, err := bh.sendOrEditMessageHelper(chatID, messageIDToEdit, text, &keyboard, tgbotapi.ModeMarkdown); err != nil {
		logger.Get().Errorf("SendAdminPanel: ошибка для chatID %d: %v", chatID, err)
	}
}

// SendWelcomeEditPrompt переводит администратора в режим ввода текста приветствия.
func (bh *BotHandler) SendWelcomeEditPrompt(ctx context.Context, chatID int64, messageIDToEdit int) {
	bh.Deps.SessionManager.SetState(chatID, constants.STATE_EDITING_WELCOME)
	text := formatters.FormatWelcomeEditPrompt(bh.Deps.Welcome.Message(ctx))
	keyboard := tgbotapi.NewInlineKeyboardMarkup(backButtonRow("⬅️ Back", constants.CALLBACK_ADMIN_BACK))
	bh.sendOrEditMessageHelper(chatID, messageIDToEdit, text, &keyboard, tgbotapi.ModeMarkdown)
}

// SendWelcomeMediaPrompt переводит администратора в режим ожидания фото/видео.
func (bh *BotHandler) SendWelcomeMediaPrompt(ctx context.Context, chatID int64, messageIDToEdit int) {
	bh.Deps.SessionManager.SetState(chatID, constants.STATE_AWAITING_MEDIA)
	media := bh.Deps.Welcome.Media(ctx)
	rows := [][]tgbotapi.InlineKeyboardButton{}
	if media != nil {
		rows = append(rows, backButtonRow("🚫 Remove Current Media", constants.CALLBACK_ADMIN_CLEAR_MEDIA))
	}
	rows = append(rows, backButtonRow("⬅️ Back", constants.CALLBACK_ADMIN_BACK))
	keyboard := tgbotapi.NewInlineKeyboardMarkup(rows...)
	bh.sendOrEditMessageHelper(chatID, messageIDToEdit, formatters.FormatWelcomeMediaPrompt(media), &keyboard, tgbotapi.ModeMarkdown)
}

// SendGroupManagementMenu - подменю управления группами.
func (bh *BotHandler) SendGroupManagementMenu(chatID int64, messageIDToEdit int) {
	bh.Deps.SessionManager.Reset(chatID)
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		backButtonRow("➕ Add New Group", constants.CALLBACK_ADMIN_ADD_GROUP),
		backButtonRow("📋 View All Groups", constants.CALLBACK_ADMIN_VIEW_GROUPS),
		backButtonRow("🗑️ Delete Group", constants.CALLBACK_ADMIN_DELETE_GROUP),
		backButtonRow("⬅️ Back to Main Menu", constants.CALLBACK_ADMIN_BACK),
	)
	bh.sendOrEditMessageHelper(chatID, messageIDToEdit, "🔗 *Group Management*\n\nSelect an option:", &keyboard, tgbotapi.ModeMarkdown)
}

// SendAddGroupPrompt - первый шаг добавления группы: название.
func (bh *BotHandler) SendAddGroupPrompt(chatID int64, messageIDToEdit int) {
	bh.Deps.SessionManager.SetState(chatID, constants.STATE_ADDING_GROUP_NAME)
	text := "➕ *Add New Group*\n\nStep 1: Enter the group name\n(This will appear on the button for users)\n\nSend /cancel to abort."
	bh.sendOrEditMessageHelper(chatID, messageIDToEdit, text, nil, tgbotapi.ModeMarkdown)
}

// SendDestinationList выводит все группы.
func (bh *BotHandler) SendDestinationList(ctx context.Context, chatID int64, messageIDToEdit int) {
	keyboard := tgbotapi.NewInlineKeyboardMarkup(backButtonRow("⬅️ Back", constants.CALLBACK_ADMIN_MANAGE_GROUPS))
	text := formatters.FormatDestinationList(bh.Deps.Registry.List(ctx))
	bh.sendOrEditMessageHelper(chatID, messageIDToEdit, text, &keyboard, tgbotapi.ModeMarkdown)
}

// SendDeleteGroupMenu - список групп с кнопками удаления.
func (bh *BotHandler) SendDeleteGroupMenu(ctx context.Context, chatID int64, messageIDToEdit int) {
	dests := bh.Deps.Registry.List(ctx)
	if len(dests) == 0 {
		keyboard := tgbotapi.NewInlineKeyboardMarkup(backButtonRow("⬅️ Back", constants.CALLBACK_ADMIN_MANAGE_GROUPS))
		bh.sendOrEditMessageHelper(chatID, messageIDToEdit, "🗑️ *Delete Group*\n\nNo groups to delete.", &keyboard, tgbotapi.ModeMarkdown)
		return
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(dests)+1)
	for _, d := range dests {
		rows = append(rows, backButtonRow("🗑️ "+d.Name, constants.CALLBACK_PREFIX_DELETE+d.ID))
	}
	rows = append(rows, backButtonRow("⬅️ Back", constants.CALLBACK_ADMIN_MANAGE_GROUPS))
	keyboard := tgbotapi.NewInlineKeyboardMarkup(rows...)

	bh.Deps.SessionManager.SetState(chatID, constants.STATE_CONFIRMING_DELETE)
	bh.sendOrEditMessageHelper(chatID, messageIDToEdit, "🗑️ *Delete Group*\n\nSelect a group to delete:", &keyboard, tgbotapi.ModeMarkdown)
}

// SendDeleteConfirmation запоминает выбранную группу и просит подтверждение.
func (bh *BotHandler) SendDeleteConfirmation(chatID int64, messageIDToEdit int, dest models.Destination) {
	tempData := bh.Deps.SessionManager.GetTempAdmin(chatID)
	tempData.PendingDeleteID = dest.ID
	bh.Deps.SessionManager.UpdateTempAdmin(chatID, tempData)
	bh.Deps.SessionManager.SetState(chatID, constants.STATE_CONFIRMING_DELETE)

	keyboard := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("✅ Yes, Delete", constants.CALLBACK_CONFIRM_DELETE_YES),
		tgbotapi.NewInlineKeyboardButtonData("❌ No, Cancel", constants.CALLBACK_CONFIRM_DELETE_NO),
	))
	bh.sendOrEditMessageHelper(chatID, messageIDToEdit, formatters.FormatDeleteConfirmation(dest), &keyboard, tgbotapi.ModeMarkdown)
}

// SendExcelFile отправляет xlsx-файл из памяти.
func (bh *BotHandler) SendExcelFile(chatID int64, fileName string, data []byte, caption string) error {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: fileName, Bytes: data})
	doc.Caption = caption
	if _, err := bh.Deps.BotClient.Send(doc); err != nil {
		logger.Get().Errorf("SendExcelFile: ошибка отправки файла %s в chatID %d: %v", fileName, chatID, err)
		return err
	}
	return nil
}

// generateAndSendReferralsExcel генерирует и отправляет Excel отчет по рефералам.
func (bh *BotHandler) generateAndSendReferralsExcel(ctx context.Context, chatID int64) {
	now := time.Now()
	data, err := reports.BuildReferralWorkbook(bh.Deps.Ledger.Stats(ctx), bh.Deps.Ledger.Totals(ctx), now)
	if err != nil {
		logger.Get().Errorf("generateAndSendReferralsExcel: ошибка создания Excel файла: %v", err)
		bh.sendErrorMessageHelper(chatID, 0, "❌ Error creating the Excel report.")
		return
	}
	caption := fmt.Sprintf("Referral report for %s", now.UTC().Format("02.01.2006 15:04 UTC"))
	if err := bh.SendExcelFile(chatID, reports.ReferralReportFileName(now), data, caption); err != nil {
		bh.sendErrorMessageHelper(chatID, 0, "❌ Could not send the Excel report.")
	}
}
