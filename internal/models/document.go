package models

import (
	"encoding/json"
)

// DefaultWelcomeMessage - текст приветствия для нового документа.
const DefaultWelcomeMessage = "👋 Welcome to our community portal!\n\nPlease select a group below to get your invite link:"

// MediaKind - тип медиа приветственного экрана.
type MediaKind string

const (
	MediaPhoto MediaKind = "photo"
	MediaVideo MediaKind = "video"
)

// Valid сообщает, поддерживается ли тип медиа.
func (k MediaKind) Valid() bool {
	return k == MediaPhoto || k == MediaVideo
}

// WelcomeMedia - ссылка на медиа (file_id в Telegram) и его тип.
// Поля задаются и очищаются только вместе.
type WelcomeMedia struct {
	Ref  string    `json:"ref"`
	Kind MediaKind `json:"kind"`
}

// ReferralBook хранит записи реферального учета по ID пользователя.
type ReferralBook struct {
	Users map[string]LedgerEntry `json:"users"`
}

// Document - все сохраняемое состояние бота. Загружается и перезаписывается целиком.
// Document is the whole persisted state of the bot, loaded and rewritten wholesale.
type Document struct {
	WelcomeMessage string        `json:"welcome_message"`
	WelcomeMedia   *WelcomeMedia `json:"welcome_media"`
	Destinations   []Destination `json:"destinations"`
	Referrals      ReferralBook  `json:"referrals"`
}

// DefaultDocument возвращает документ по умолчанию.
func DefaultDocument() Document {
	return Document{
		WelcomeMessage: DefaultWelcomeMessage,
		Destinations:   []Destination{},
		Referrals:      ReferralBook{Users: map[string]LedgerEntry{}},
	}
}

// Normalize заполняет пустые коллекции, чтобы документ можно было мутировать без проверок на nil.
func (d *Document) Normalize() {
	if d.Destinations == nil {
		d.Destinations = []Destination{}
	}
	if d.Referrals.Users == nil {
		d.Referrals.Users = map[string]LedgerEntry{}
	}
	for id, entry := range d.Referrals.Users {
		entry.CompletedDestinations = uniqueIDs(entry.CompletedDestinations)
		if entry.UserID == "" {
			entry.UserID = id
		}
		d.Referrals.Users[id] = entry
	}
	if d.WelcomeMedia != nil && (d.WelcomeMedia.Ref == "" || !d.WelcomeMedia.Kind.Valid()) {
		d.WelcomeMedia = nil
	}
}

// uniqueIDs убирает повторы, сохраняя порядок первого появления.
// completed_destinations - множество: порог завершения считается по его длине.
func uniqueIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// UnmarshalJSON понимает и старый формат файла: welcome_media был строкой
// с file_id, тип лежал отдельно в welcome_media_type, а назначения - под ключом groups.
func (d *Document) UnmarshalJSON(b []byte) error {
	type documentAlias Document
	var raw struct {
		documentAlias
		WelcomeMedia     json.RawMessage `json:"welcome_media"`
		WelcomeMediaType *string         `json:"welcome_media_type"`
		LegacyGroups     []Destination   `json:"groups"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*d = Document(raw.documentAlias)
	d.WelcomeMedia = nil
	if d.Destinations == nil {
		d.Destinations = raw.LegacyGroups
	}

	if len(raw.WelcomeMedia) > 0 && string(raw.WelcomeMedia) != "null" {
		var legacyRef string
		if err := json.Unmarshal(raw.WelcomeMedia, &legacyRef); err == nil {
			if legacyRef != "" && raw.WelcomeMediaType != nil {
				d.WelcomeMedia = &WelcomeMedia{Ref: legacyRef, Kind: MediaKind(*raw.WelcomeMediaType)}
			}
		} else {
			var media WelcomeMedia
			if err := json.Unmarshal(raw.WelcomeMedia, &media); err != nil {
				return err
			}
			d.WelcomeMedia = &media
		}
	}
	d.Normalize()
	return nil
}
