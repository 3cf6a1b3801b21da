package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	db "jandon-server/src/db/sql"
)

func GetRoundUpUnit(store *db.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		unit, err := store.GetRoundUpUnit(r.Context(), userID)
		if err != nil {
			http.Error(w, "Failed to retrieve round-up unit", http.StatusInternalServerError)
			log.Printf("ERROR: Failed to get round-up unit for user %d: %v", userID, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]int{"round_up_unit": unit})
	}
}

// UpdateRoundUpUnit changes the user's rounding unit. Only future ingestions
// use the new unit; existing spare change rows are untouched.
func UpdateRoundUpUnit(store *db.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		var req struct {
			Unit int `json:"unit"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("ERROR: Failed to decode round-up unit request body: %v", err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		if req.Unit <= 0 {
			http.Error(w, "unit must be a positive integer", http.StatusBadRequest)
			return
		}

		if err := store.UpdateRoundUpUnit(r.Context(), userID, req.Unit); err != nil {
			http.Error(w, "Failed to update round-up unit", http.StatusInternalServerError)
			log.Printf("ERROR: Failed to update round-up unit for user %d: %v", userID, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]int{"round_up_unit": req.Unit})
	}
}

func GetSpareChanges(store *db.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		changes, err := store.ListSpareChanges(r.Context(), userID)
		if err != nil {
			http.Error(w, "Failed to retrieve spare change", http.StatusInternalServerError)
			log.Printf("ERROR: Failed to get spare change for user %d: %v", userID, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(changes)
	}
}

// GetSpareChangeSummary sums the user's round-ups over [start, end), both
// query params in YYYY-MM-DD form.
func GetSpareChangeSummary(store *db.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		start, err := time.Parse("2006-01-02", r.URL.Query().Get("start"))
		if err != nil {
			http.Error(w, "start must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		end, err := time.Parse("2006-01-02", r.URL.Query().Get("end"))
		if err != nil {
			http.Error(w, "end must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		total, err := store.SpareChangeSummary(r.Context(), userID, start, end)
		if err != nil {
			http.Error(w, "Failed to compute summary", http.StatusInternalServerError)
			log.Printf("ERROR: Failed to compute spare change summary for user %d: %v", userID, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"total_round_up": total,
			"period_start":   start.Format("2006-01-02"),
			"period_end":     end.Format("2006-01-02"),
		})
	}
}
