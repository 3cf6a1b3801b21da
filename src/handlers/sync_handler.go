package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"jandon-server/src/models"
	"jandon-server/src/syncer"
)

// SyncNow triggers a sync run on demand. The body may carry an explicit
// {start_date, end_date} window; an empty body uses the default window. The
// run is synchronous: the caller gets either a success acknowledgment or the
// propagated error.
func SyncNow(svc *syncer.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		var req models.SyncRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			log.Printf("ERROR: Failed to decode sync request body: %v", err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		log.Printf("INFO: Sync requested by user %d", userID)

		var err error
		if req.StartDate != "" || req.EndDate != "" {
			if err := syncer.ValidateWindow(req.StartDate, req.EndDate); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			err = svc.SyncRange(r.Context(), req.StartDate, req.EndDate)
		} else {
			err = svc.SyncAll(r.Context())
		}

		switch {
		case errors.Is(err, syncer.ErrSyncInProgress):
			http.Error(w, "a sync run is already in progress", http.StatusConflict)
			return
		case err != nil:
			log.Printf("ERROR: On-demand sync failed for user %d: %v", userID, err)
			http.Error(w, "sync failed", http.StatusBadGateway)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"detail": "sync completed"})
	}
}
