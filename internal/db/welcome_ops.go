package db

import (
	"context"
	"fmt"
	"strings"

	"portalbot/internal/models"
)

// WelcomeStore - текст и медиа приветственного экрана.
type WelcomeStore struct {
	store *Store
}

func NewWelcomeStore(store *Store) *WelcomeStore {
	return &WelcomeStore{store: store}
}

// Message возвращает текст приветствия; пустой текст заменяется текстом по умолчанию.
func (w *WelcomeStore) Message(ctx context.Context) string {
	var msg string
	w.store.View(ctx, func(doc models.Document) {
		msg = doc.WelcomeMessage
	})
	if msg == "" {
		return models.DefaultWelcomeMessage
	}
	return msg
}

func (w *WelcomeStore) SetMessage(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: пустой текст приветствия", ErrValidation)
	}
	return w.store.Update(ctx, func(doc *models.Document) error {
		doc.WelcomeMessage = text
		return nil
	})
}

// Media возвращает медиа приветствия или nil.
func (w *WelcomeStore) Media(ctx context.Context) *models.WelcomeMedia {
	var media *models.WelcomeMedia
	w.store.View(ctx, func(doc models.Document) {
		media = doc.WelcomeMedia
	})
	return media
}

func (w *WelcomeStore) SetMedia(ctx context.Context, ref string, kind models.MediaKind) error {
	if strings.TrimSpace(ref) == "" || !kind.Valid() {
		return fmt.Errorf("%w: медиа должно быть фото или видео с непустым file_id", ErrValidation)
	}
	return w.store.Update(ctx, func(doc *models.Document) error {
		doc.WelcomeMedia = &models.WelcomeMedia{Ref: ref, Kind: kind}
		return nil
	})
}

func (w *WelcomeStore) ClearMedia(ctx context.Context) error {
	return w.store.Update(ctx, func(doc *models.Document) error {
		if doc.WelcomeMedia == nil {
			return errNoChange
		}
		doc.WelcomeMedia = nil
		return nil
	})
}
