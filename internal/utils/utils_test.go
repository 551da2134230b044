package utils

import (
	"bytes"
	"image/png"
	"testing"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portalbot/internal/constants"
	"portalbot/internal/models"
)

func TestValidateDestinationLinkMode(t *testing.T) {
	ok := []string{"https://t.me/+AbCdEf123", "http://t.me/joinchat/xyz", "https://t.me/public_channel"}
	for _, ref := range ok {
		assert.NoError(t, ValidateDestination(models.Destination{Name: "A", AccessRef: ref}, constants.DESTINATION_MODE_LINK), ref)
	}
	bad := []string{"t.me/+abc", "https://telegram.me/+abc", "https://t.me/", "@channel"}
	for _, ref := range bad {
		assert.Error(t, ValidateDestination(models.Destination{Name: "A", AccessRef: ref}, constants.DESTINATION_MODE_LINK), ref)
	}
}

func TestValidateDestinationChatMode(t *testing.T) {
	assert.NoError(t, ValidateDestination(models.Destination{Name: "A", AccessRef: "@channel_1"}, constants.DESTINATION_MODE_CHAT))
	assert.NoError(t, ValidateDestination(models.Destination{Name: "A", AccessRef: "-1001234567890"}, constants.DESTINATION_MODE_CHAT))

	err := ValidateDestination(models.Destination{Name: "A", AccessRef: "https://t.me/+abc"}, constants.DESTINATION_MODE_CHAT)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "@username")
}

func TestValidateDestinationFieldErrors(t *testing.T) {
	err := ValidateDestination(models.Destination{AccessRef: "https://t.me/+abc"}, constants.DESTINATION_MODE_LINK)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "название не может быть пустым")

	err = ValidateDestination(models.Destination{Name: "A"}, constants.DESTINATION_MODE_LINK)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ссылка или ID чата не указаны")
}

func TestParseReferralPayload(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"ref_12345", "12345", true},
		{" ref_42 ", "42", true},
		{"", "", false},
		{"12345", "", false},
		{"ref_", "", false},
		{"ref_abc", "", false},
		{"ref_-5", "", false},
		{"ref_0", "", false},
	}
	for _, c := range cases {
		got, ok := ParseReferralPayload(c.in)
		assert.Equal(t, c.ok, ok, c.in)
		assert.Equal(t, c.want, got, c.in)
	}
}

func TestGenerateReferralLink(t *testing.T) {
	link, err := GenerateReferralLink("portal_bot", "777")
	require.NoError(t, err)
	assert.Equal(t, "https://t.me/portal_bot?start=ref_777", link)

	payload := link[len("https://t.me/portal_bot?start="):]
	id, ok := ParseReferralPayload(payload)
	require.True(t, ok)
	assert.Equal(t, "777", id)

	_, err = GenerateReferralLink("", "777")
	assert.Error(t, err)
	_, err = GenerateReferralLink("portal_bot", "abc")
	assert.Error(t, err)
}

func TestGenerateQRCode(t *testing.T) {
	data, err := GenerateQRCode("portal_bot", "777")
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 256, img.Bounds().Dx())

	_, err = GenerateQRCode("", "777")
	assert.Error(t, err)
}

func TestChatLinkFromRef(t *testing.T) {
	link, ok := ChatLinkFromRef("@my_channel")
	assert.True(t, ok)
	assert.Equal(t, "https://t.me/my_channel", link)

	_, ok = ChatLinkFromRef("-1001234567890")
	assert.False(t, ok)
}

func TestGetWelcomeMedia(t *testing.T) {
	ref, kind, ok := GetWelcomeMedia(&tgbotapi.Message{Photo: []tgbotapi.PhotoSize{{FileID: "small"}, {FileID: "big"}}})
	assert.True(t, ok)
	assert.Equal(t, "big", ref)
	assert.Equal(t, models.MediaPhoto, kind)

	ref, kind, ok = GetWelcomeMedia(&tgbotapi.Message{Video: &tgbotapi.Video{FileID: "vid"}})
	assert.True(t, ok)
	assert.Equal(t, "vid", ref)
	assert.Equal(t, models.MediaVideo, kind)

	_, _, ok = GetWelcomeMedia(&tgbotapi.Message{Text: "hello"})
	assert.False(t, ok)
	_, _, ok = GetWelcomeMedia(nil)
	assert.False(t, ok)
}

func TestEscapeTelegramMarkdown(t *testing.T) {
	assert.Equal(t, `a\_b \*c\* \`+"`"+`d\`+"`"+` \[e]`, EscapeTelegramMarkdown("a_b *c* `d` [e]"))
}

func TestGetUserDisplayName(t *testing.T) {
	assert.Equal(t, "Ivan Petrov (@ivan)", GetUserDisplayName("Ivan", "Petrov", "ivan"))
	assert.Equal(t, "@ivan", GetUserDisplayName("", "", "ivan"))
	assert.Equal(t, "Ivan", GetUserDisplayName("Ivan", "", ""))
	assert.Equal(t, "Unknown", GetUserDisplayName("", "", ""))
}
