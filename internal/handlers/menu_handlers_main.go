package handlers

import (
	"context"
	"unicode/utf8"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"

	"portalbot/internal/constants"
	"portalbot/internal/logger"
	"portalbot/internal/models"
)

// Лимит подписи к фото/видео в Telegram.
const maxCaptionLen = 1024

const noDestinationsNotice = "⚠️ No groups available at the moment. Please check back later."

// SendWelcomeScreen отправляет приветствие с кнопками назначений.
// SendWelcomeScreen sends the welcome text (with optional media) and one button per destination.
func (bh *BotHandler) SendWelcomeScreen(ctx context.Context, chatID int64) {
	text := bh.Deps.Welcome.Message(ctx)
	media := bh.Deps.Welcome.Media(ctx)
	dests := bh.Deps.Registry.List(ctx)

	var keyboard *tgbotapi.InlineKeyboardMarkup
	if len(dests) == 0 {
		text = text + "\n\n" + noDestinationsNotice
	} else {
		kb := bh.welcomeKeyboard(dests)
		keyboard = &kb
	}

	if media != nil {
		if bh.sendWelcomeMedia(chatID, media, text, keyboard) {
			return
		}
		// Медиа не отправилось (например, file_id устарел) - показываем хотя бы текст.
	}

	msg := tgbotapi.NewMessage(chatID, text)
	if keyboard != nil {
		msg.ReplyMarkup = keyboard
	}
	if _, err := bh.Deps.BotClient.Send(msg); err != nil {
		logger.Get().Errorf("SendWelcomeScreen: ошибка отправки приветствия в chatID %d: %v", chatID, err)
	}
}

// sendWelcomeMedia отправляет фото/видео. Если текст не помещается в подпись,
// медиа уходит без подписи, а текст с кнопками - отдельным сообщением.
func (bh *BotHandler) sendWelcomeMedia(chatID int64, media *models.WelcomeMedia, text string, keyboard *tgbotapi.InlineKeyboardMarkup) bool {
	caption := text
	fitsCaption := utf8.RuneCountInString(text) <= maxCaptionLen
	if !fitsCaption {
		caption = ""
	}

	var chattable tgbotapi.Chattable
	switch media.Kind {
	case models.MediaPhoto:
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(media.Ref))
		photo.Caption = caption
		if fitsCaption && keyboard != nil {
			photo.ReplyMarkup = keyboard
		}
		chattable = photo
	case models.MediaVideo:
		video := tgbotapi.NewVideo(chatID, tgbotapi.FileID(media.Ref))
		video.Caption = caption
		if fitsCaption && keyboard != nil {
			video.ReplyMarkup = keyboard
		}
		chattable = video
	default:
		return false
	}

	if _, err := bh.Deps.BotClient.Send(chattable); err != nil {
		logger.Get().Warnf("SendWelcomeScreen: не удалось отправить медиа (%s) в chatID %d: %v", media.Kind, chatID, err)
		return false
	}
	if fitsCaption {
		return true
	}

	msg := tgbotapi.NewMessage(chatID, text)
	if keyboard != nil {
		msg.ReplyMarkup = keyboard
	}
	if _, err := bh.Deps.BotClient.Send(msg); err != nil {
		logger.Get().Errorf("SendWelcomeScreen: ошибка отправки текста после медиа в chatID %d: %v", chatID, err)
	}
	return true
}

func (bh *BotHandler) welcomeKeyboard(dests []models.Destination) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(dests)+1)
	for _, d := range dests {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(d.Name, constants.CALLBACK_PREFIX_JOIN+d.ID),
		))
	}
	if bh.Deps.Config.BotUsername != "" {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🎁 My referral link", constants.CALLBACK_MY_LINK),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
