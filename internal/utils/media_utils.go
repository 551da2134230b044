// internal/utils/media_utils.go
package utils

import (
	tgbotapi "github.com/OvyFlash/telegram-bot-api"

	"portalbot/internal/models"
)

// GetWelcomeMedia извлекает file_id и тип медиа из сообщения администратора.
// Для фото берется самый большой размер.
func GetWelcomeMedia(msg *tgbotapi.Message) (string, models.MediaKind, bool) {
	if msg == nil {
		return "", "", false
	}
	if len(msg.Photo) > 0 {
		largest := msg.Photo[len(msg.Photo)-1]
		return largest.FileID, models.MediaPhoto, true
	}
	if msg.Video != nil {
		return msg.Video.FileID, models.MediaVideo, true
	}
	return "", "", false
}
