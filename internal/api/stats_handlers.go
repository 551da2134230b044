package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"portalbot/internal/logger"
	"portalbot/internal/models"
	"portalbot/internal/reports"
)

// StatsResponse - итоги реферального учета.
type StatsResponse struct {
	Totals       models.ReferralTotals `json:"totals"`
	Destinations int                   `json:"destinations"`
	Entries      []models.LedgerEntry  `json:"entries"`
}

// GetStats возвращает итоги и записи, отсортированные как в админ-панели.
// ?limit=N ограничивает число записей.
func (h *apiHandlers) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	entries := h.deps.Ledger.Stats(ctx)

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 0 {
			writeJSONError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		if limit < len(entries) {
			entries = entries[:limit]
		}
	}

	writeJSONSuccess(w, "Statistics retrieved successfully", StatsResponse{
		Totals:       h.deps.Ledger.Totals(ctx),
		Destinations: h.deps.Registry.Count(ctx),
		Entries:      entries,
	})
}

// GetStatsExcel отдает xlsx-отчет.
func (h *apiHandlers) GetStatsExcel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	now := time.Now()
	data, err := reports.BuildReferralWorkbook(h.deps.Ledger.Stats(ctx), h.deps.Ledger.Totals(ctx), now)
	if err != nil {
		logger.Get().Errorf("GetStatsExcel: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to build report")
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", reports.ReferralReportFileName(now)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// ResetReferrals обнуляет все счетчики.
func (h *apiHandlers) ResetReferrals(w http.ResponseWriter, r *http.Request) {
	reset, err := h.deps.Ledger.ResetAllCounts(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if user, ok := UserFromContext(r.Context()); ok {
		logger.Get().Infof("API: админ %d обнулил реферальные счетчики (%d)", user.ID, reset)
	}
	writeJSONSuccess(w, "Referral counts reset", map[string]int{"reset": reset})
}
