// Файл: internal/db/db.go
package db

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"portalbot/internal/logger"
	"portalbot/internal/models"
)

var (
	// ErrNoDocument - бэкенд еще ни разу не сохранял документ.
	ErrNoDocument = errors.New("документ еще не сохранен")
	// ErrNotFound - запись не найдена.
	ErrNotFound = errors.New("запись не найдена")
	// ErrPersistence - не удалось записать документ.
	ErrPersistence = errors.New("не удалось сохранить документ")
	// ErrValidation - входные данные отклонены до любой мутации.
	ErrValidation = errors.New("некорректные данные")

	// errNoChange прерывает Update без записи и без ошибки для вызывающего.
	errNoChange = errors.New("документ не изменился")
)

// Backend - место хранения сериализованного документа.
// Write должен быть атомарным: Read никогда не видит наполовину записанный документ.
type Backend interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
	Close() error
}

// Store - единственный вход к документу. Каждый цикл загрузка→изменение→запись
// выполняется под одним мьютексом.
// Store is the only access path to the document; every load→mutate→save cycle runs under one mutex.
type Store struct {
	mu      sync.Mutex
	backend Backend
	now     func() time.Time

	// unreadable выставляется, когда сохраненный документ не удалось прочитать.
	// В этом состоянии запись запрещена, чтобы не затереть данные значением по умолчанию.
	unreadable bool
}

// NewStore создает Store поверх бэкенда.
func NewStore(backend Backend) *Store {
	return NewStoreWithClock(backend, time.Now)
}

// NewStoreWithClock создает Store с заданным источником времени (для тестов).
// Часы задаются только при создании и дальше не меняются.
func NewStoreWithClock(backend Backend, now func() time.Time) *Store {
	return &Store{backend: backend, now: now}
}

// Now возвращает текущее время хранилища.
func (s *Store) Now() time.Time {
	return s.now()
}

// Close закрывает бэкенд.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend.Close()
}

// Load возвращает текущий документ. При первом обращении сохраняет документ по умолчанию.
// Ошибка чтения не пробрасывается: возвращается документ по умолчанию.
func (s *Store) Load(ctx context.Context) models.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx)
}

// Save целиком перезаписывает документ.
func (s *Store) Save(ctx context.Context, doc models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(ctx, doc)
}

// View передает в fn свежезагруженную копию документа.
func (s *Store) View(ctx context.Context, fn func(doc models.Document)) {
	s.mu.Lock()
	doc := s.loadLocked(ctx)
	s.mu.Unlock()
	fn(doc)
}

// Update загружает документ, применяет fn и сохраняет результат, не отпуская мьютекс.
// Если fn вернула ошибку, ничего не сохраняется.
func (s *Store) Update(ctx context.Context, fn func(doc *models.Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.loadLocked(ctx)
	if err := fn(&doc); err != nil {
		if errors.Is(err, errNoChange) {
			return nil
		}
		return err
	}
	return s.saveLocked(ctx, doc)
}

func (s *Store) loadLocked(ctx context.Context) models.Document {
	data, err := s.backend.Read(ctx)
	if errors.Is(err, ErrNoDocument) {
		doc := models.DefaultDocument()
		s.unreadable = false
		if errSave := s.saveLocked(ctx, doc); errSave != nil {
			logger.Get().Warnf("Store.Load: не удалось сохранить документ по умолчанию: %v", errSave)
		}
		return doc
	}
	if err != nil {
		logger.Get().Errorf("Store.Load: ошибка чтения документа, используется документ по умолчанию: %v", err)
		s.unreadable = true
		return models.DefaultDocument()
	}

	var doc models.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		logger.Get().Errorf("Store.Load: документ поврежден (%d байт), используется документ по умолчанию: %v", len(data), err)
		s.unreadable = true
		return models.DefaultDocument()
	}
	s.unreadable = false
	doc.Normalize()
	return doc
}

func (s *Store) saveLocked(ctx context.Context, doc models.Document) error {
	if s.unreadable {
		return fmt.Errorf("%w: сохраненный документ не читается, запись отклонена", ErrPersistence)
	}
	data, err := EncodeDocument(doc)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if err := s.backend.Write(ctx, data); err != nil {
		logger.Get().Errorf("Store.Save: ошибка записи документа: %v", err)
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

// EncodeDocument сериализует документ в читаемый UTF-8 JSON с отступом в два пробела.
func EncodeDocument(doc models.Document) ([]byte, error) {
	doc.Normalize()
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
