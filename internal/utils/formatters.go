// Файл: internal/utils/formatters.go

package utils

import (
	"fmt"
	"strings"
)

// EscapeTelegramMarkdown экранирует специальные символы для Telegram Markdown (v1).
func EscapeTelegramMarkdown(text string) string {
	var replacer = strings.NewReplacer(
		"_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[",
	)
	return replacer.Replace(text)
}

// GetUserDisplayName собирает имя пользователя для логов и сообщений.
func GetUserDisplayName(firstName, lastName, userName string) string {
	name := strings.TrimSpace(strings.Join([]string{firstName, lastName}, " "))
	if userName != "" {
		if name == "" {
			return "@" + userName
		}
		return fmt.Sprintf("%s (@%s)", name, userName)
	}
	if name == "" {
		return "Unknown"
	}
	return name
}

// ChatLinkFromRef строит публичную ссылку t.me для @username. Для числового ID ссылки нет.
func ChatLinkFromRef(ref string) (string, bool) {
	if strings.HasPrefix(ref, "@") && chatUsernameRegex.MatchString(ref) {
		return "https://t.me/" + strings.TrimPrefix(ref, "@"), true
	}
	return "", false
}
