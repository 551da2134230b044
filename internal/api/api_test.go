package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"portalbot/internal/config"
	"portalbot/internal/constants"
	"portalbot/internal/db"
)

const testSecret = "123456:TEST-TOKEN"

func initDataFor(userID int64, authDate time.Time) string {
	q := url.Values{}
	q.Set("user", fmt.Sprintf(`{"id":%d,"first_name":"Admin"}`, userID))
	q.Set("auth_date", strconv.FormatInt(authDate.Unix(), 10))
	q.Set("query_id", "AAE")
	q.Set("hash", signInitData(q, testSecret))
	return q.Encode()
}

type apiEnv struct {
	router http.Handler
	deps   ApiDependencies
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()
	store := db.NewStore(db.NewMemoryBackend())
	cfg := &config.Config{DestinationMode: constants.DESTINATION_MODE_LINK}
	cfg.SetAdminIDs("1")

	deps := ApiDependencies{
		Config:    cfg,
		SecretKey: testSecret,
		Registry:  db.NewDestinationRegistry(store, constants.DESTINATION_MODE_LINK),
		Ledger:    db.NewReferralLedger(store),
		Welcome:   db.NewWelcomeStore(store),
	}
	r := chi.NewRouter()
	SetupRoutes(r, deps)
	return &apiEnv{router: r, deps: deps}
}

func (e *apiEnv) do(t *testing.T, method, path string, userID int64, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if userID != 0 {
		req.Header.Set("X-Telegram-Auth", initDataFor(userID, time.Now()))
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) jsonResponse {
	t.Helper()
	var resp jsonResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestValidateInitData(t *testing.T) {
	now := time.Now()
	ok, user, err := validateInitData(initDataFor(42, now), testSecret, now)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(42), user.ID)

	ok, _, err = validateInitData(initDataFor(42, now), "other-secret", now)
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = validateInitData(initDataFor(42, now.Add(-48*time.Hour)), testSecret, now)
	assert.Error(t, err)

	_, _, err = validateInitData("user=%7B%7D", testSecret, now)
	assert.Error(t, err)
}

func TestHealthIsPublic(t *testing.T) {
	env := newAPIEnv(t)
	rec := env.do(t, http.MethodGet, "/api/health", 0, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminRoutesRequireAuth(t *testing.T) {
	env := newAPIEnv(t)

	rec := env.do(t, http.MethodGet, "/api/admin/stats", 0, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/admin/stats", 2, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/admin/stats", 1, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDestinationsCRUD(t *testing.T) {
	env := newAPIEnv(t)

	rec := env.do(t, http.MethodPost, "/api/admin/destinations", 1, CreateDestinationRequest{Name: "Main", AccessRef: "https://t.me/+main"})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode(t, rec).Data.(map[string]interface{})
	id := created["id"].(string)
	assert.NotEmpty(t, id)

	rec = env.do(t, http.MethodPost, "/api/admin/destinations", 1, CreateDestinationRequest{Name: "Dup", AccessRef: "https://t.me/+main"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/admin/destinations", 1, CreateDestinationRequest{Name: "Bad", AccessRef: "ftp://nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/admin/destinations", 1, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec).Data.([]interface{}), 1)

	rec = env.do(t, http.MethodDelete, "/api/admin/destinations/"+id, 1, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/admin/destinations/"+id, 1, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWelcomeEndpoints(t *testing.T) {
	env := newAPIEnv(t)
	msg := "Hi!"

	rec := env.do(t, http.MethodPut, "/api/admin/welcome", 1, map[string]interface{}{
		"message": msg,
		"media":   map[string]string{"ref": "file-1", "kind": "video"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	data := decode(t, rec).Data.(map[string]interface{})
	assert.Equal(t, msg, data["message"])
	assert.Equal(t, "video", data["media"].(map[string]interface{})["kind"])

	rec = env.do(t, http.MethodPut, "/api/admin/welcome", 1, map[string]interface{}{
		"media": map[string]string{"ref": "file-1", "kind": "audio"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPut, "/api/admin/welcome", 1, map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/admin/welcome/media", 1, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, env.deps.Welcome.Media(context.Background()))
}

func TestStatsAndReset(t *testing.T) {
	env := newAPIEnv(t)
	ctx := context.Background()

	dest, err := env.deps.Registry.Add(ctx, "A", "https://t.me/+a")
	require.NoError(t, err)
	_, err = env.deps.Ledger.Register(ctx, "200", "100")
	require.NoError(t, err)
	_, err = env.deps.Ledger.RecordDestinationJoin(ctx, "200", dest.ID, 1)
	require.NoError(t, err)

	rec := env.do(t, http.MethodGet, "/api/admin/stats?limit=1", 1, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data StatsResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Data.Totals.Users)
	assert.Equal(t, 1, resp.Data.Totals.Credits)
	require.Len(t, resp.Data.Entries, 1)
	assert.Equal(t, "100", resp.Data.Entries[0].UserID)

	rec = env.do(t, http.MethodGet, "/api/admin/stats?limit=x", 1, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/admin/stats.xlsx", 1, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	f.Close()

	rec = env.do(t, http.MethodPost, "/api/admin/referrals/reset", 1, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, env.deps.Ledger.ReferralCount(ctx, "100"))
}
