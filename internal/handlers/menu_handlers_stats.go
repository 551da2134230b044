package handlers

import (
	"context"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"

	"portalbot/internal/constants"
	"portalbot/internal/formatters"
)

// SendReferralStats показывает итоги и топ пригласивших.
func (bh *BotHandler) SendReferralStats(ctx context.Context, chatID int64, messageIDToEdit int) {
	totals := bh.Deps.Ledger.Totals(ctx)
	top := bh.Deps.Ledger.Leaderboard(ctx, constants.STATS_TOP_LIMIT)
	text := formatters.FormatReferralStats(totals, top, bh.Deps.Registry.Count(ctx))

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		backButtonRow("📥 Export to Excel", constants.CALLBACK_ADMIN_STATS_EXCEL),
		backButtonRow("♻️ Reset Referral Counts", constants.CALLBACK_ADMIN_RESET_REFS),
		backButtonRow("⬅️ Back", constants.CALLBACK_ADMIN_BACK),
	)
	bh.sendOrEditMessageHelper(chatID, messageIDToEdit, text, &keyboard, tgbotapi.ModeMarkdown)
}

// SendResetConfirmation просит подтвердить обнуление счетчиков.
func (bh *BotHandler) SendResetConfirmation(ctx context.Context, chatID int64, messageIDToEdit int) {
	bh.Deps.SessionManager.SetState(chatID, constants.STATE_CONFIRMING_REF_RESET)
	keyboard := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("✅ Yes, Reset", constants.CALLBACK_CONFIRM_RESET_YES),
		tgbotapi.NewInlineKeyboardButtonData("❌ No, Cancel", constants.CALLBACK_CONFIRM_RESET_NO),
	))
	text := formatters.FormatResetConfirmation(bh.Deps.Ledger.Totals(ctx))
	bh.sendOrEditMessageHelper(chatID, messageIDToEdit, text, &keyboard, tgbotapi.ModeMarkdown)
}
