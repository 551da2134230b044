package models

import (
	"time"
)

// LedgerEntry - реферальная запись пользователя.
// LedgerEntry is the per-user referral bookkeeping record.
type LedgerEntry struct {
	UserID        string `json:"user_id"`
	ReferralCount int    `json:"referral_count"` // Сколько других пользователей засчитано этому пользователю
	// ReferredBy задается не более одного раза; пустая строка - пригласившего нет.
	ReferredBy            string    `json:"referred_by,omitempty"`
	JoinedAt              time.Time `json:"joined_at"`
	HasCompleted          bool      `json:"has_completed"`
	CompletedDestinations []string  `json:"completed_destinations"`
}

// NewLedgerEntry создает пустую запись.
func NewLedgerEntry(userID, referredBy string, joinedAt time.Time) LedgerEntry {
	return LedgerEntry{
		UserID:                userID,
		ReferredBy:            referredBy,
		JoinedAt:              joinedAt.UTC(),
		CompletedDestinations: []string{},
	}
}

// HasDestination проверяет, отмечен ли уже вход в назначение.
func (e LedgerEntry) HasDestination(destinationID string) bool {
	for _, id := range e.CompletedDestinations {
		if id == destinationID {
			return true
		}
	}
	return false
}

// AddDestination добавляет назначение во множество пройденных. Возвращает false, если оно уже было.
func (e *LedgerEntry) AddDestination(destinationID string) bool {
	if e.HasDestination(destinationID) {
		return false
	}
	e.CompletedDestinations = append(e.CompletedDestinations, destinationID)
	return true
}

// JoinOutcome - результат RecordDestinationJoin.
type JoinOutcome int

const (
	JoinNotYetCounted JoinOutcome = iota
	JoinCounted
	JoinAlreadyCounted
)

func (o JoinOutcome) String() string {
	switch o {
	case JoinCounted:
		return "counted"
	case JoinAlreadyCounted:
		return "already counted"
	default:
		return "not yet counted"
	}
}

// ReferralTotals - агрегаты для экрана статистики.
type ReferralTotals struct {
	Users     int `json:"total_users"`
	Completed int `json:"total_completed"`
	Credits   int `json:"total_referral_credits"`
}
