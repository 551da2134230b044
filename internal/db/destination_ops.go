package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"portalbot/internal/logger"
	"portalbot/internal/models"
	"portalbot/internal/utils"
)

// DestinationRegistry - CRUD над списком групп/каналов документа.
type DestinationRegistry struct {
	store *Store
	mode  string // constants.DESTINATION_MODE_LINK или constants.DESTINATION_MODE_CHAT
}

// NewDestinationRegistry создает реестр назначений.
func NewDestinationRegistry(store *Store, mode string) *DestinationRegistry {
	return &DestinationRegistry{store: store, mode: mode}
}

// Mode возвращает режим, в котором интерпретируется AccessRef.
func (r *DestinationRegistry) Mode() string {
	return r.mode
}

// List возвращает назначения в порядке добавления.
func (r *DestinationRegistry) List(ctx context.Context) []models.Destination {
	var out []models.Destination
	r.store.View(ctx, func(doc models.Document) {
		out = doc.Destinations
	})
	return out
}

// Count возвращает текущее количество назначений.
func (r *DestinationRegistry) Count(ctx context.Context) int {
	return len(r.List(ctx))
}

// Get ищет назначение по ID.
func (r *DestinationRegistry) Get(ctx context.Context, id string) (models.Destination, bool) {
	for _, d := range r.List(ctx) {
		if d.ID == id {
			return d, true
		}
	}
	return models.Destination{}, false
}

// Exists проверяет, есть ли назначение с такой ссылкой/идентификатором.
func (r *DestinationRegistry) Exists(ctx context.Context, accessRef string) bool {
	accessRef = strings.TrimSpace(accessRef)
	for _, d := range r.List(ctx) {
		if d.AccessRef == accessRef {
			return true
		}
	}
	return false
}

// Add добавляет назначение в конец списка.
// Дубликаты не отклоняются: вызывающий проверяет Exists заранее.
func (r *DestinationRegistry) Add(ctx context.Context, name, accessRef string) (models.Destination, error) {
	dest := models.Destination{
		Name:      strings.TrimSpace(name),
		AccessRef: strings.TrimSpace(accessRef),
	}
	if err := utils.ValidateDestination(dest, r.mode); err != nil {
		return models.Destination{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	dest.ID = uuid.New().String()

	err := r.store.Update(ctx, func(doc *models.Document) error {
		doc.Destinations = append(doc.Destinations, dest)
		return nil
	})
	if err != nil {
		logger.Get().Errorf("DestinationRegistry.Add: ошибка сохранения назначения %q: %v", dest.Name, err)
		return models.Destination{}, err
	}
	logger.Get().Infof("Назначение %q (%s) добавлено.", dest.Name, dest.ID)
	return dest, nil
}

// Delete удаляет назначение. Возвращает false, если такого ID нет.
// Реферальные записи, ссылающиеся на назначение, не трогаются.
func (r *DestinationRegistry) Delete(ctx context.Context, id string) (bool, error) {
	removed := false
	err := r.store.Update(ctx, func(doc *models.Document) error {
		kept := make([]models.Destination, 0, len(doc.Destinations))
		for _, d := range doc.Destinations {
			if d.ID == id {
				removed = true
				continue
			}
			kept = append(kept, d)
		}
		if !removed {
			return errNoChange
		}
		doc.Destinations = kept
		return nil
	})
	if err != nil {
		logger.Get().Errorf("DestinationRegistry.Delete: ошибка удаления назначения %s: %v", id, err)
		return false, err
	}
	if removed {
		logger.Get().Infof("Назначение %s удалено.", id)
	}
	return removed, nil
}
