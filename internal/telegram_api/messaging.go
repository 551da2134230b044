package telegram_api

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"

	"portalbot/internal/logger"
)

// SendOrEditMessage пытается отредактировать существующее сообщение или отправляет новое.
// Если редактирование не удалось из-за "message is not modified", возвращает
// Message с ID оригинального сообщения и nil в качестве ошибки.
func SendOrEditMessage(
	sender Sender,
	chatID int64,
	messageIDToTryEdit int,
	text string,
	keyboard *tgbotapi.InlineKeyboardMarkup,
	parseMode string,
) (tgbotapi.Message, error) {
	if sender == nil {
		return tgbotapi.Message{}, fmt.Errorf("BotClient не инициализирован")
	}

	if messageIDToTryEdit != 0 {
		var editMsgConfig tgbotapi.EditMessageTextConfig
		if keyboard != nil {
			editMsgConfig = tgbotapi.NewEditMessageTextAndMarkup(chatID, messageIDToTryEdit, text, *keyboard)
		} else {
			editMsgConfig = tgbotapi.NewEditMessageText(chatID, messageIDToTryEdit, text)
		}
		if parseMode != "" {
			editMsgConfig.ParseMode = parseMode
		}

		var edited tgbotapi.Message
		edited.Chat.ID = chatID
		edited.MessageID = messageIDToTryEdit
		edited.Text = text

		_, err := sender.Request(editMsgConfig)
		if err == nil {
			return edited, nil
		}
		if strings.Contains(err.Error(), "message is not modified") {
			return edited, nil
		}
		// Сообщение могло быть удалено или содержать медиа - отправляем новое.
		logger.Get().Warnf("SendOrEditMessage: ошибка редактирования chatID=%d, MessageID=%d: %v. Будет отправлено новое.", chatID, messageIDToTryEdit, err)
	}

	newMsg := tgbotapi.NewMessage(chatID, text)
	if keyboard != nil {
		newMsg.ReplyMarkup = keyboard
	}
	if parseMode != "" {
		newMsg.ParseMode = parseMode
	}

	sent, err := sender.Send(newMsg)
	if err != nil {
		logger.Get().Errorf("SendOrEditMessage: ОШИБКА отправки нового сообщения для chatID %d: %v", chatID, err)
		return tgbotapi.Message{}, err
	}
	return sent, nil
}

// SendErrorMessage отправляет стандартизированное сообщение об ошибке пользователю.
func SendErrorMessage(sender Sender, chatID int64, messageIDToTryEdit int, errorText string) (tgbotapi.Message, error) {
	logger.Get().Infof("Отправка сообщения об ошибке для chatID %d: %s", chatID, errorText)
	return SendOrEditMessage(sender, chatID, messageIDToTryEdit, errorText, nil, "")
}

// DeleteMessage удаляет сообщение.
func DeleteMessage(sender Sender, chatID int64, messageID int) bool {
	if sender == nil || messageID == 0 {
		return false
	}

	response, err := sender.Request(tgbotapi.NewDeleteMessage(chatID, messageID))
	if err != nil {
		logger.Get().Warnf("DeleteMessage: ChatID=%d, MessageID=%d, Error: %v", chatID, messageID, err)
		return false
	}
	if response != nil && !response.Ok {
		if response.Description != "Bad Request: message to delete not found" &&
			response.Description != "Bad Request: message can't be deleted" {
			logger.Get().Warnf("DeleteMessage: Telegram API не смог удалить сообщение %d для chatID %d: %s (ErrorCode: %d)", messageID, chatID, response.Description, response.ErrorCode)
		}
		return false
	}
	return true
}

// chatInviteLink - часть ответа createChatInviteLink, которая нам нужна.
type chatInviteLink struct {
	InviteLink string `json:"invite_link"`
}

// CreateChatInviteLink создает одноразовую ссылку-приглашение в чат.
// Бот должен быть администратором чата с правом приглашать пользователей.
func CreateChatInviteLink(sender Sender, chatRef string, name string, ttl time.Duration) (string, error) {
	params := tgbotapi.Params{}
	params.AddNonEmpty("chat_id", chatRef)
	params.AddNonEmpty("name", name)
	params.AddNonZero("member_limit", 1)
	if ttl > 0 {
		params.AddNonZero64("expire_date", time.Now().Add(ttl).Unix())
	}

	resp, err := sender.MakeRequest("createChatInviteLink", params)
	if err != nil {
		return "", fmt.Errorf("createChatInviteLink для %s: %w", chatRef, err)
	}
	if resp == nil || !resp.Ok {
		desc := ""
		if resp != nil {
			desc = resp.Description
		}
		return "", fmt.Errorf("createChatInviteLink для %s отклонен: %s", chatRef, desc)
	}

	var link chatInviteLink
	if err := json.Unmarshal(resp.Result, &link); err != nil {
		return "", fmt.Errorf("разбор ответа createChatInviteLink: %w", err)
	}
	if link.InviteLink == "" {
		return "", fmt.Errorf("createChatInviteLink вернул пустую ссылку")
	}
	return link.InviteLink, nil
}
