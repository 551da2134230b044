package formatters

import (
	"fmt"
	"strings"

	"portalbot/internal/constants"
	"portalbot/internal/models"
	"portalbot/internal/utils"
)

const (
	separator = "━━━━━━━━━━━━━━━━━━━━"
)

// FormatAdminPanel - заголовок админ-панели.
func FormatAdminPanel(destinationCount int, mode string, hasMedia bool) string {
	var sb strings.Builder
	sb.WriteString("🔧 *Admin Panel*\n\n")
	sb.WriteString(fmt.Sprintf("Groups configured: %d\n", destinationCount))
	sb.WriteString(fmt.Sprintf("Destination mode: `%s`\n", mode))
	if hasMedia {
		sb.WriteString("Welcome media: set\n")
	} else {
		sb.WriteString("Welcome media: none\n")
	}
	sb.WriteString("\nSelect an option:")
	return sb.String()
}

// FormatWithAdminPanel приклеивает результат операции над админ-панелью.
func FormatWithAdminPanel(result string, destinationCount int, mode string, hasMedia bool) string {
	return result + "\n\n" + separator + "\n\n" + FormatAdminPanel(destinationCount, mode, hasMedia)
}

// FormatWelcomeEditPrompt - приглашение ввести новый текст приветствия.
func FormatWelcomeEditPrompt(current string) string {
	return "📝 *Edit Welcome Message*\n\n" +
		"Send me the new welcome message.\n\n" +
		"Current message:\n" +
		"_" + utils.EscapeTelegramMarkdown(current) + "_\n\n" +
		"Send /cancel to abort."
}

// FormatWelcomeMediaPrompt - приглашение прислать фото или видео.
func FormatWelcomeMediaPrompt(current *models.WelcomeMedia) string {
	var sb strings.Builder
	sb.WriteString("🖼 *Welcome Media*\n\n")
	if current != nil {
		sb.WriteString(fmt.Sprintf("Current media: %s\n\n", current.Kind))
	} else {
		sb.WriteString("No media is set.\n\n")
	}
	sb.WriteString("Send a photo or a video to show above the welcome message.\n\n")
	sb.WriteString("Send /cancel to abort.")
	return sb.String()
}

// FormatAddGroupRefPrompt - второй шаг добавления группы. Текст зависит от режима назначений.
func FormatAddGroupRefPrompt(name, mode string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("✅ Group name: *%s*\n\n", utils.EscapeTelegramMarkdown(name)))
	if mode == constants.DESTINATION_MODE_CHAT {
		sb.WriteString("Step 2: Send the chat identifier\n\n")
		sb.WriteString("Use the public @username or the numeric chat ID (looks like: -1001234567890).\n\n")
		sb.WriteString("⚠️ Note: The bot must be an admin of the chat with the right to invite users!\n\n")
	} else {
		sb.WriteString("Step 2: Send the group's invite link\n\n")
		sb.WriteString("📋 To get the invite link:\n")
		sb.WriteString("1. Open your private group\n")
		sb.WriteString("2. Tap the group name → 'Invite to Group via Link'\n")
		sb.WriteString("3. Copy the invite link (looks like: https://t.me/+xxxxxxxxxxxx)\n")
		sb.WriteString("4. Send it to me\n\n")
		sb.WriteString("⚠️ Note: The bot does NOT need to be added to the group!\n\n")
	}
	sb.WriteString("Send /cancel to abort.")
	return sb.String()
}

// FormatDestinationAdded - сообщение об успешном добавлении.
func FormatDestinationAdded(dest models.Destination) string {
	return fmt.Sprintf("✅ *Group added successfully!*\n\nName: *%s*\nAccess: `%s`\n\nUsers will receive this link when they click the '%s' button.",
		utils.EscapeTelegramMarkdown(dest.Name), dest.AccessRef, utils.EscapeTelegramMarkdown(dest.Name))
}

// FormatDestinationList выводит все назначения в порядке добавления.
func FormatDestinationList(dests []models.Destination) string {
	var sb strings.Builder
	sb.WriteString("📋 *All Groups*\n\n")
	if len(dests) == 0 {
		sb.WriteString("No groups configured yet.")
		return sb.String()
	}
	for i, d := range dests {
		sb.WriteString(fmt.Sprintf("%d. *%s*\n", i+1, utils.EscapeTelegramMarkdown(d.Name)))
		sb.WriteString(fmt.Sprintf("   Access: `%s`\n", d.AccessRef))
		sb.WriteString(fmt.Sprintf("   ID: `%s`\n\n", d.ID))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// FormatDeleteConfirmation - подтверждение удаления назначения.
func FormatDeleteConfirmation(dest models.Destination) string {
	return fmt.Sprintf("⚠️ *Confirm Deletion*\n\nAre you sure you want to delete:\n*%s*\nAccess: `%s`\n\nThis action cannot be undone!",
		utils.EscapeTelegramMarkdown(dest.Name), dest.AccessRef)
}

// FormatReferralStats - экран статистики: итоги и топ пригласивших.
func FormatReferralStats(totals models.ReferralTotals, top []models.LedgerEntry, destinationCount int) string {
	var sb strings.Builder
	sb.WriteString("📊 *Referral Stats*\n\n")
	sb.WriteString(fmt.Sprintf("Users: %d\n", totals.Users))
	sb.WriteString(fmt.Sprintf("Joined all %d groups: %d\n", destinationCount, totals.Completed))
	sb.WriteString(fmt.Sprintf("Referral credits: %d\n\n", totals.Credits))

	if len(top) == 0 {
		sb.WriteString("No referrals counted yet.")
		return sb.String()
	}
	sb.WriteString(fmt.Sprintf("🏆 *Top %d*\n", len(top)))
	for i, e := range top {
		sb.WriteString(fmt.Sprintf("%d. `%s` - %d\n", i+1, e.UserID, e.ReferralCount))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// FormatResetConfirmation - подтверждение сброса счетчиков.
func FormatResetConfirmation(totals models.ReferralTotals) string {
	return fmt.Sprintf("⚠️ *Reset Referral Counts*\n\nThis sets the referral count of all %d users to zero (%d credits in total).\nCompletion progress is kept.\n\nContinue?",
		totals.Users, totals.Credits)
}

// FormatMyLink - реферальная ссылка пользователя с текущим счетом.
func FormatMyLink(link string, count int) string {
	return fmt.Sprintf("🔗 *Your referral link*\n\n`%s`\n\nFriends who open it and join all groups count for you.\nReferrals counted: *%d*", link, count)
}

// FormatInviteMessage - текст сообщения с кнопкой перехода в назначение.
func FormatInviteMessage(dest models.Destination, outcome models.JoinOutcome, joined, total int) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("✅ Click the button below to join *%s*:", utils.EscapeTelegramMarkdown(dest.Name)))
	if total > 1 && outcome == models.JoinNotYetCounted {
		sb.WriteString(fmt.Sprintf("\n\nProgress: %d/%d groups.", joined, total))
	}
	if outcome == models.JoinCounted && total > 0 {
		sb.WriteString("\n\n🎉 You have joined all groups!")
	}
	return sb.String()
}
