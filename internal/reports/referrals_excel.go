// Package reports - выгрузки для администраторов.
package reports

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"portalbot/internal/models"
)

const (
	ReferralsSheet = "Рефералы"
	SummarySheet   = "Итого"
)

var referralHeaders = []string{"Место", "User ID", "Приглашений", "Пригласил", "Прошел все группы", "Пройдено групп", "Дата регистрации"}

// BuildReferralWorkbook собирает xlsx-отчет по реферальным записям.
// entries ожидаются уже отсортированными (см. ReferralLedger.Stats).
func BuildReferralWorkbook(entries []models.LedgerEntry, totals models.ReferralTotals, generatedAt time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(ReferralsSheet)
	if err != nil {
		return nil, fmt.Errorf("создание листа %s: %w", ReferralsSheet, err)
	}
	f.DeleteSheet("Sheet1") // Удаляем стандартный лист
	f.SetActiveSheet(index)

	for i, header := range referralHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(ReferralsSheet, cell, header)
	}

	for i, e := range entries {
		row := i + 2
		referredBy := e.ReferredBy
		if referredBy == "" {
			referredBy = "-"
		}
		completed := "нет"
		if e.HasCompleted {
			completed = "да"
		}
		values := []interface{}{i + 1, e.UserID, e.ReferralCount, referredBy, completed, len(e.CompletedDestinations), e.JoinedAt.UTC().Format("02.01.2006 15:04")}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(ReferralsSheet, cell, v)
		}
	}
	f.SetColWidth(ReferralsSheet, "B", "B", 16)
	f.SetColWidth(ReferralsSheet, "G", "G", 18)

	if _, err := f.NewSheet(SummarySheet); err != nil {
		return nil, fmt.Errorf("создание листа %s: %w", SummarySheet, err)
	}
	summary := [][]interface{}{
		{"Сформирован", generatedAt.UTC().Format("02.01.2006 15:04")},
		{"Пользователей", totals.Users},
		{"Прошли все группы", totals.Completed},
		{"Всего приглашений", totals.Credits},
	}
	for i, row := range summary {
		f.SetCellValue(SummarySheet, fmt.Sprintf("A%d", i+1), row[0])
		f.SetCellValue(SummarySheet, fmt.Sprintf("B%d", i+1), row[1])
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("запись xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

// ReferralReportFileName - имя файла отчета.
func ReferralReportFileName(at time.Time) string {
	return fmt.Sprintf("referrals_report_%s.xlsx", at.UTC().Format("20060102_150405"))
}
