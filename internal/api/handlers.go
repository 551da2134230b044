package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"portalbot/internal/db"
	"portalbot/internal/logger"
	"portalbot/internal/models"
)

type jsonResponse struct {
	Status  string      `json:"status"` // "success" или "error"
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// CreateDestinationRequest - тело POST /api/admin/destinations.
type CreateDestinationRequest struct {
	Name      string `json:"name"`
	AccessRef string `json:"access_ref"`
}

// UpdateWelcomeRequest - тело PUT /api/admin/welcome. Пустые поля не меняются.
type UpdateWelcomeRequest struct {
	Message *string              `json:"message,omitempty"`
	Media   *models.WelcomeMedia `json:"media,omitempty"`
}

// WelcomeResponse - текущее приветствие.
type WelcomeResponse struct {
	Message string               `json:"message"`
	Media   *models.WelcomeMedia `json:"media"`
}

func writeJSONError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(jsonResponse{Status: "error", Message: message})
}

func writeJSONSuccess(w http.ResponseWriter, message string, data interface{}) {
	writeJSONStatus(w, http.StatusOK, message, data)
}

func writeJSONStatus(w http.ResponseWriter, statusCode int, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(jsonResponse{Status: "success", Message: message, Data: data})
}

// writeStoreError переводит ошибки хранилища в HTTP-статус.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, db.ErrValidation):
		writeJSONError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, db.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, "Not found")
	default:
		writeJSONError(w, http.StatusInternalServerError, "Failed to save changes")
	}
}

// ListDestinations возвращает все назначения.
func (h *apiHandlers) ListDestinations(w http.ResponseWriter, r *http.Request) {
	dests := h.deps.Registry.List(r.Context())
	if dests == nil {
		dests = []models.Destination{}
	}
	writeJSONSuccess(w, "Destinations retrieved successfully", dests)
}

// CreateDestination добавляет назначение. Дубликат access_ref - 409.
func (h *apiHandlers) CreateDestination(w http.ResponseWriter, r *http.Request) {
	var req CreateDestinationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.AccessRef = strings.TrimSpace(req.AccessRef)

	ctx := r.Context()
	if h.deps.Registry.Exists(ctx, req.AccessRef) {
		writeJSONError(w, http.StatusConflict, "Destination with this access_ref already exists")
		return
	}

	dest, err := h.deps.Registry.Add(ctx, req.Name, req.AccessRef)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if user, ok := UserFromContext(ctx); ok {
		logger.Get().Infof("API: админ %d добавил назначение %q", user.ID, dest.Name)
	}
	writeJSONStatus(w, http.StatusCreated, "Destination created", dest)
}

// DeleteDestination удаляет назначение по ID.
func (h *apiHandlers) DeleteDestination(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	removed, err := h.deps.Registry.Delete(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if !removed {
		writeJSONError(w, http.StatusNotFound, "Destination not found")
		return
	}
	writeJSONSuccess(w, "Destination deleted", map[string]string{"id": id})
}

// GetWelcome возвращает текст и медиа приветствия.
func (h *apiHandlers) GetWelcome(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	writeJSONSuccess(w, "Welcome retrieved successfully", WelcomeResponse{
		Message: h.deps.Welcome.Message(ctx),
		Media:   h.deps.Welcome.Media(ctx),
	})
}

// UpdateWelcome меняет текст и/или медиа приветствия.
func (h *apiHandlers) UpdateWelcome(w http.ResponseWriter, r *http.Request) {
	var req UpdateWelcomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Message == nil && req.Media == nil {
		writeJSONError(w, http.StatusBadRequest, "Nothing to update")
		return
	}

	ctx := r.Context()
	if req.Message != nil {
		if err := h.deps.Welcome.SetMessage(ctx, *req.Message); err != nil {
			writeStoreError(w, err)
			return
		}
	}
	if req.Media != nil {
		if err := h.deps.Welcome.SetMedia(ctx, req.Media.Ref, req.Media.Kind); err != nil {
			writeStoreError(w, err)
			return
		}
	}
	h.GetWelcome(w, r)
}

// ClearWelcomeMedia убирает медиа приветствия.
func (h *apiHandlers) ClearWelcomeMedia(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Welcome.ClearMedia(r.Context()); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSONSuccess(w, "Welcome media cleared", nil)
}
