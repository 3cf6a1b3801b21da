package api

import (
	"net/http"

	db "jandon-server/src/db/sql"
	"jandon-server/src/handlers"
	"jandon-server/src/middleware"
	"jandon-server/src/syncer"

	"github.com/go-chi/chi/v5"
)

func NewRouter(store *db.Store, svc *syncer.Service) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.CORSMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		// Protected routes
		r.With(middleware.JWTAuthMiddleware).Group(func(r chi.Router) {
			// Debug
			r.Post("/debug/sync-now", handlers.SyncNow(svc))

			// Spare change
			r.Get("/spare-change", handlers.GetSpareChanges(store))
			r.Get("/spare-change/summary", handlers.GetSpareChangeSummary(store))
			r.Get("/spare-change/round-up-unit", handlers.GetRoundUpUnit(store))
			r.Patch("/spare-change/round-up-unit", handlers.UpdateRoundUpUnit(store))

			// Transactions
			r.Get("/accounts/{account_id}/transactions", handlers.GetTransactions(store))
		})
	})

	return r
}
