package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"portalbot/internal/config"
	"portalbot/internal/db"
)

// ApiDependencies содержит зависимости для обработчиков API.
type ApiDependencies struct {
	Config    *config.Config
	SecretKey string

	Registry *db.DestinationRegistry
	Ledger   *db.ReferralLedger
	Welcome  *db.WelcomeStore
}

type apiHandlers struct {
	deps ApiDependencies
}

// SetupRoutes настраивает все маршруты для API.
func SetupRoutes(r chi.Router, deps ApiDependencies) {
	h := &apiHandlers{deps: deps}

	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSONSuccess(w, "ok", nil)
	})

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(deps.SecretKey))

		r.Route("/api/admin", func(r chi.Router) {
			r.Use(AdminMiddleware(deps.Config))

			r.Get("/stats", h.GetStats)
			r.Get("/stats.xlsx", h.GetStatsExcel)
			r.Post("/referrals/reset", h.ResetReferrals)

			r.Get("/destinations", h.ListDestinations)
			r.Post("/destinations", h.CreateDestination)
			r.Delete("/destinations/{id}", h.DeleteDestination)

			r.Get("/welcome", h.GetWelcome)
			r.Put("/welcome", h.UpdateWelcome)
			r.Delete("/welcome/media", h.ClearWelcomeMedia)
		})
	})
}
