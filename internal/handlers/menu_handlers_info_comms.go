package handlers

import (
	"context"
	"fmt"
	"strconv"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"

	"portalbot/internal/formatters"
	"portalbot/internal/logger"
	"portalbot/internal/utils"
)

// SendMyLink отправляет пользователю его реферальную ссылку с QR-кодом и текущим счетом.
// SendMyLink sends the user's referral deep link as a QR code with the current count.
func (bh *BotHandler) SendMyLink(ctx context.Context, chatID int64, userID int64) {
	uid := strconv.FormatInt(userID, 10)
	link, err := utils.GenerateReferralLink(bh.Deps.Config.BotUsername, uid)
	if err != nil {
		logger.Get().Warnf("SendMyLink: ошибка генерации реферальной ссылки для %s: %v", uid, err)
		bh.sendErrorMessageHelper(chatID, 0, "❌ Referral links are not available right now.")
		return
	}
	text := formatters.FormatMyLink(link, bh.Deps.Ledger.ReferralCount(ctx, uid))

	qrCodeBytes, err := utils.GenerateQRCode(bh.Deps.Config.BotUsername, uid)
	if err != nil {
		logger.Get().Warnf("SendMyLink: ошибка генерации QR-кода для %s: %v. Отправляем текст.", uid, err)
		msg := tgbotapi.NewMessage(chatID, text)
		msg.ParseMode = tgbotapi.ModeMarkdown
		if _, errSend := bh.Deps.BotClient.Send(msg); errSend != nil {
			logger.Get().Errorf("SendMyLink: ошибка отправки ссылки в chatID %d: %v", chatID, errSend)
		}
		return
	}

	photoMsg := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{
		Name:  "referral_qr.png",
		Bytes: qrCodeBytes,
	})
	photoMsg.Caption = text
	photoMsg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := bh.Deps.BotClient.Send(photoMsg); err != nil {
		logger.Get().Errorf("SendMyLink: ошибка отправки QR-кода в chatID %d: %v", chatID, err)
		bh.sendErrorMessageHelper(chatID, 0, "❌ Could not send your referral link. Please try again.")
	}
}

// notifyReferrer сообщает пригласившему, что приглашенный прошел все группы.
// Ошибки только логируются: пользователь мог не открывать чат с ботом.
func (bh *BotHandler) notifyReferrer(ctx context.Context, referrerID string) {
	chatID, err := strconv.ParseInt(referrerID, 10, 64)
	if err != nil {
		return
	}
	count := bh.Deps.Ledger.ReferralCount(ctx, referrerID)
	text := fmt.Sprintf("🎉 A friend you invited has joined all groups!\nReferrals counted: %d", count)
	if _, err := bh.Deps.BotClient.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		logger.Get().Infof("notifyReferrer: не удалось уведомить %s: %v", referrerID, err)
	}
}
