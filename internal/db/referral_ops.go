package db

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"portalbot/internal/logger"
	"portalbot/internal/models"
)

// ReferralLedger ведет реферальный учет: регистрацию, привязку к пригласившему,
// отметки о вступлении в группы и начисление реферальных очков.
// ReferralLedger tracks registration, referrer linkage, per-destination joins and referral credit.
type ReferralLedger struct {
	store *Store
}

// NewReferralLedger создает реферальный учет поверх Store.
func NewReferralLedger(store *Store) *ReferralLedger {
	return &ReferralLedger{store: store}
}

// Register создает запись пользователя. Если запись уже есть, ничего не меняет и возвращает false.
// referredBy может быть пустым. Проверка referredBy != userID - обязанность вызывающего.
// Очки пригласившему здесь не начисляются.
func (l *ReferralLedger) Register(ctx context.Context, userID, referredBy string) (bool, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return false, fmt.Errorf("%w: пустой ID пользователя", ErrValidation)
	}
	referredBy = strings.TrimSpace(referredBy)

	created := false
	err := l.store.Update(ctx, func(doc *models.Document) error {
		if _, exists := doc.Referrals.Users[userID]; exists {
			return errNoChange
		}
		doc.Referrals.Users[userID] = models.NewLedgerEntry(userID, referredBy, l.store.Now())
		created = true
		return nil
	})
	if err != nil {
		logger.Get().Errorf("ReferralLedger.Register: ошибка регистрации пользователя %s: %v", userID, err)
		return false, err
	}
	if created {
		if referredBy != "" {
			logger.Get().Infof("Пользователь %s зарегистрирован по приглашению %s.", userID, referredBy)
		} else {
			logger.Get().Infof("Пользователь %s зарегистрирован без пригласившего.", userID)
		}
	}
	return created, nil
}

// RecordDestinationJoin отмечает вступление пользователя в назначение и, когда пройдены
// все totalDestinations, один раз засчитывает его пригласившему.
// totalDestinations - размер реестра на момент вызова.
func (l *ReferralLedger) RecordDestinationJoin(ctx context.Context, userID, destinationID string, totalDestinations int) (models.JoinOutcome, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" || destinationID == "" {
		return models.JoinNotYetCounted, fmt.Errorf("%w: пустой ID пользователя или назначения", ErrValidation)
	}

	outcome := models.JoinNotYetCounted
	var creditedReferrer string
	err := l.store.Update(ctx, func(doc *models.Document) error {
		users := doc.Referrals.Users

		entry, exists := users[userID]
		if !exists {
			// Вступление раньше регистрации: запись создается на лету, без пригласившего.
			entry = models.NewLedgerEntry(userID, "", l.store.Now())
		}
		added := entry.AddDestination(destinationID)

		if entry.HasCompleted {
			outcome = models.JoinAlreadyCounted
			if !added && exists {
				return errNoChange
			}
			users[userID] = entry
			return nil
		}

		if len(entry.CompletedDestinations) < totalDestinations {
			outcome = models.JoinNotYetCounted
			users[userID] = entry
			return nil
		}

		entry.HasCompleted = true
		users[userID] = entry
		outcome = models.JoinCounted

		if entry.ReferredBy == "" {
			return nil
		}
		referrer, ok := users[entry.ReferredBy]
		if !ok {
			// Записи пригласившего нет - создаем ее, очко не теряется.
			referrer = models.NewLedgerEntry(entry.ReferredBy, "", l.store.Now())
		}
		referrer.ReferralCount++
		users[entry.ReferredBy] = referrer
		creditedReferrer = entry.ReferredBy
		return nil
	})
	if err != nil {
		logger.Get().Errorf("ReferralLedger.RecordDestinationJoin: ошибка для пользователя %s, назначение %s: %v", userID, destinationID, err)
		return models.JoinNotYetCounted, err
	}

	if creditedReferrer != "" {
		logger.Get().Infof("Пользователь %s прошел все назначения, очко начислено пригласившему %s.", userID, creditedReferrer)
	} else {
		logger.Get().Debugf("RecordDestinationJoin: пользователь %s, назначение %s, всего %d: %s", userID, destinationID, totalDestinations, outcome)
	}
	return outcome, nil
}

// ReferralCount возвращает число засчитанных приглашений пользователя (0, если записи нет).
func (l *ReferralLedger) ReferralCount(ctx context.Context, userID string) int {
	entry, ok := l.Entry(ctx, userID)
	if !ok {
		return 0
	}
	return entry.ReferralCount
}

// Entry возвращает запись пользователя.
func (l *ReferralLedger) Entry(ctx context.Context, userID string) (models.LedgerEntry, bool) {
	var (
		entry models.LedgerEntry
		ok    bool
	)
	l.store.View(ctx, func(doc models.Document) {
		entry, ok = doc.Referrals.Users[userID]
	})
	return entry, ok
}

// Stats возвращает все записи по убыванию referral_count.
// При равенстве - раньше зарегистрированные выше, затем по user_id.
func (l *ReferralLedger) Stats(ctx context.Context) []models.LedgerEntry {
	var entries []models.LedgerEntry
	l.store.View(ctx, func(doc models.Document) {
		entries = make([]models.LedgerEntry, 0, len(doc.Referrals.Users))
		for _, e := range doc.Referrals.Users {
			entries = append(entries, e)
		}
	})
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.ReferralCount != b.ReferralCount {
			return a.ReferralCount > b.ReferralCount
		}
		if !a.JoinedAt.Equal(b.JoinedAt) {
			return a.JoinedAt.Before(b.JoinedAt)
		}
		return a.UserID < b.UserID
	})
	return entries
}

// Leaderboard возвращает первые n записей Stats с ненулевым счетом.
func (l *ReferralLedger) Leaderboard(ctx context.Context, n int) []models.LedgerEntry {
	var top []models.LedgerEntry
	for _, e := range l.Stats(ctx) {
		if e.ReferralCount <= 0 || len(top) >= n {
			break
		}
		top = append(top, e)
	}
	return top
}

// TotalUsers - количество записей.
func (l *ReferralLedger) TotalUsers(ctx context.Context) int {
	return l.Totals(ctx).Users
}

// TotalCompleted - сколько пользователей прошли все назначения.
func (l *ReferralLedger) TotalCompleted(ctx context.Context) int {
	return l.Totals(ctx).Completed
}

// TotalReferralCredits - сумма referral_count по всем записям.
func (l *ReferralLedger) TotalReferralCredits(ctx context.Context) int {
	return l.Totals(ctx).Credits
}

// Totals считает все агрегаты за один проход.
func (l *ReferralLedger) Totals(ctx context.Context) models.ReferralTotals {
	var totals models.ReferralTotals
	l.store.View(ctx, func(doc models.Document) {
		totals.Users = len(doc.Referrals.Users)
		for _, e := range doc.Referrals.Users {
			if e.HasCompleted {
				totals.Completed++
			}
			totals.Credits += e.ReferralCount
		}
	})
	return totals
}

// ResetAllCounts обнуляет referral_count у всех записей. has_completed и
// completed_destinations не меняются. Возвращает число обнуленных записей.
func (l *ReferralLedger) ResetAllCounts(ctx context.Context) (int, error) {
	reset := 0
	err := l.store.Update(ctx, func(doc *models.Document) error {
		for id, e := range doc.Referrals.Users {
			if e.ReferralCount == 0 {
				continue
			}
			e.ReferralCount = 0
			doc.Referrals.Users[id] = e
			reset++
		}
		if reset == 0 {
			return errNoChange
		}
		return nil
	})
	if err != nil {
		logger.Get().Errorf("ReferralLedger.ResetAllCounts: %v", err)
		return 0, err
	}
	logger.Get().Infof("Реферальные счетчики обнулены у %d пользователей.", reset)
	return reset, nil
}
