package utils

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/skip2/go-qrcode"

	"portalbot/internal/constants"
	"portalbot/internal/logger"
)

// GenerateReferralLink генерирует реферальную deep-link ссылку для пользователя.
// botUsername должен передаваться, так как это конфигурационное значение.
func GenerateReferralLink(botUsername string, userID string) (string, error) {
	if botUsername == "" {
		logger.Get().Warn("GenerateReferralLink: botUsername не предоставлен.")
		return "", fmt.Errorf("имя пользователя бота не настроено")
	}
	if _, err := strconv.ParseInt(userID, 10, 64); err != nil {
		return "", fmt.Errorf("невалидный ID пользователя для реферальной ссылки: %q", userID)
	}
	return fmt.Sprintf("https://t.me/%s?start=%s%s", botUsername, constants.REFERRAL_PAYLOAD_PREFIX, userID), nil
}

// ParseReferralPayload извлекает ID пригласившего из параметра /start.
// Возвращает false для пустого или некорректного параметра.
func ParseReferralPayload(payload string) (string, bool) {
	payload = strings.TrimSpace(payload)
	if !strings.HasPrefix(payload, constants.REFERRAL_PAYLOAD_PREFIX) {
		return "", false
	}
	id := strings.TrimPrefix(payload, constants.REFERRAL_PAYLOAD_PREFIX)
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n <= 0 {
		return "", false
	}
	return strconv.FormatInt(n, 10), true
}

// GenerateQRCode генерирует PNG QR-кода для реферальной ссылки.
func GenerateQRCode(botUsername string, userID string) ([]byte, error) {
	link, err := GenerateReferralLink(botUsername, userID)
	if err != nil {
		return nil, err
	}

	// qrcode.Medium - уровень коррекции ошибок, 256 - размер QR-кода в пикселях.
	qrBytes, err := qrcode.Encode(link, qrcode.Medium, 256)
	if err != nil {
		logger.Get().Errorf("GenerateQRCode: ошибка кодирования QR-кода для ссылки '%s': %v", link, err)
		return nil, err
	}
	return qrBytes, nil
}
