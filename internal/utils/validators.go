package utils

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"portalbot/internal/constants"
	"portalbot/internal/models"
)

var (
	// inviteLinkRegex - ссылка-приглашение Telegram (https://t.me/+xxxx, https://t.me/joinchat/xxxx, https://t.me/name).
	inviteLinkRegex = regexp.MustCompile(`^https?://t\.me/\S+$`)
	// chatUsernameRegex - публичное имя чата вида @channel_name.
	chatUsernameRegex = regexp.MustCompile(`^@[A-Za-z][A-Za-z0-9_]{3,31}$`)
	// chatIDRegex - числовой ID группы/канала (обычно -100...).
	chatIDRegex = regexp.MustCompile(`^-\d{5,20}$`)

	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("tglink", func(fl validator.FieldLevel) bool {
			return IsInviteLink(fl.Field().String())
		})
		_ = validate.RegisterValidation("tgchat", func(fl validator.FieldLevel) bool {
			return IsChatReference(fl.Field().String())
		})
	})
	return validate
}

// IsInviteLink проверяет формат ссылки-приглашения.
func IsInviteLink(s string) bool {
	return inviteLinkRegex.MatchString(s)
}

// IsChatReference проверяет, что строка - @username или числовой ID чата.
func IsChatReference(s string) bool {
	return chatUsernameRegex.MatchString(s) || chatIDRegex.MatchString(s)
}

// ValidateDestination проверяет имя и access_ref назначения для заданного режима.
// ValidateDestination checks destination name and access_ref for the given mode.
func ValidateDestination(dest models.Destination, mode string) error {
	v := getValidator()
	if err := v.Struct(dest); err != nil {
		return describeValidationError(err)
	}

	tag := "tglink"
	if mode == constants.DESTINATION_MODE_CHAT {
		tag = "tgchat"
	}
	if err := v.Var(dest.AccessRef, tag); err != nil {
		if tag == "tgchat" {
			return fmt.Errorf("идентификатор чата должен быть @username или числовым ID (например, -1001234567890)")
		}
		return fmt.Errorf("ссылка должна начинаться с https://t.me/ или http://t.me/")
	}
	return nil
}

func describeValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch {
		case fe.Field() == "Name" && fe.Tag() == "required":
			msgs = append(msgs, "название не может быть пустым")
		case fe.Field() == "Name" && fe.Tag() == "max":
			msgs = append(msgs, fmt.Sprintf("название длиннее %d символов", constants.MAX_DESTINATION_NAME_LEN))
		case fe.Field() == "AccessRef" && fe.Tag() == "required":
			msgs = append(msgs, "ссылка или ID чата не указаны")
		default:
			msgs = append(msgs, fmt.Sprintf("поле %s не прошло проверку %s", fe.Field(), fe.Tag()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}
