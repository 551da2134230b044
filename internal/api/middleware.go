// Файл: internal/api/middleware.go
package api

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"portalbot/internal/config"
	"portalbot/internal/logger"
)

// UserContextKey - ключ для сохранения данных пользователя в контексте запроса.
var UserContextKey = &contextKey{"User"}

type contextKey struct {
	name string
}

// Сколько живет initData WebApp.
const initDataMaxAge = 24 * time.Hour

// TelegramUser - пользователь из initData.
type TelegramUser struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
}

// AuthMiddleware проверяет заголовок X-Telegram-Auth с initData.
func AuthMiddleware(secretKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("X-Telegram-Auth")
			if authHeader == "" {
				writeJSONError(w, http.StatusUnauthorized, "Unauthorized: Missing X-Telegram-Auth header")
				return
			}

			isValid, userData, err := validateInitData(authHeader, secretKey, time.Now())
			if err != nil || !isValid {
				logger.Get().Warnf("AuthMiddleware: Invalid initData. Error: %v", err)
				writeJSONError(w, http.StatusUnauthorized, "Unauthorized: Invalid initData")
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, userData)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminMiddleware пропускает только пользователей из ADMIN_IDS.
func AdminMiddleware(cfg *config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				writeJSONError(w, http.StatusForbidden, "Forbidden: User data not found in context")
				return
			}
			if !cfg.IsAdmin(strconv.FormatInt(user.ID, 10)) {
				logger.Get().Warnf("AdminMiddleware: пользователь %d не администратор, %s %s", user.ID, r.Method, r.URL.Path)
				writeJSONError(w, http.StatusForbidden, "Forbidden: Insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UserFromContext возвращает пользователя, положенного AuthMiddleware.
func UserFromContext(ctx context.Context) (TelegramUser, bool) {
	user, ok := ctx.Value(UserContextKey).(TelegramUser)
	return user, ok
}

// validateInitData - функция для проверки подлинности данных от Telegram.
func validateInitData(initData, secret string, now time.Time) (bool, TelegramUser, error) {
	var userData TelegramUser

	q, err := url.ParseQuery(initData)
	if err != nil {
		return false, userData, fmt.Errorf("failed to parse initData: %w", err)
	}

	hash := q.Get("hash")
	if hash == "" {
		return false, userData, fmt.Errorf("hash is not present in initData")
	}

	// Извлекаем JSON с данными пользователя
	userJSON := q.Get("user")
	if userJSON == "" {
		return false, userData, fmt.Errorf("user data is not present in initData")
	}
	if err := json.Unmarshal([]byte(userJSON), &userData); err != nil {
		return false, userData, fmt.Errorf("failed to unmarshal user data: %w", err)
	}

	if authDate := q.Get("auth_date"); authDate != "" {
		ts, err := strconv.ParseInt(authDate, 10, 64)
		if err != nil {
			return false, userData, fmt.Errorf("invalid auth_date: %w", err)
		}
		if now.Sub(time.Unix(ts, 0)) > initDataMaxAge {
			return false, userData, fmt.Errorf("initData expired")
		}
	}

	calculatedHash := signInitData(q, secret)
	return hmac.Equal([]byte(calculatedHash), []byte(hash)), userData, nil
}

// signInitData считает hash по правилам Telegram WebApp.
func signInitData(q url.Values, secret string) string {
	var pairs []string
	for k, v := range q {
		if k != "hash" {
			pairs = append(pairs, fmt.Sprintf("%s=%s", k, v[0]))
		}
	}
	sort.Strings(pairs)
	dataCheckString := strings.Join(pairs, "\n")

	secretKey := hmac.New(sha256.New, []byte("WebAppData"))
	secretKey.Write([]byte(secret))

	h := hmac.New(sha256.New, secretKey.Sum(nil))
	h.Write([]byte(dataCheckString))
	return hex.EncodeToString(h.Sum(nil))
}
