package scheduler

import (
	"context"
	"errors"
	"log"
	"time"

	"jandon-server/src/syncer"
)

// Run triggers a full sync every interval until ctx is cancelled. It blocks;
// callers start it in a goroutine. The timer and the on-demand endpoint share
// the same orchestrator, so an overlap simply skips the timed run.
func Run(ctx context.Context, svc *syncer.Service, interval time.Duration) {
	log.Printf("INFO: Scheduler started, interval %s", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Print("INFO: Scheduler stopped")
			return
		case <-ticker.C:
			err := svc.SyncAll(ctx)
			switch {
			case errors.Is(err, syncer.ErrSyncInProgress):
				log.Print("WARN: Scheduled sync skipped, a run is already in progress")
			case err != nil:
				log.Printf("ERROR: Scheduled sync failed: %v", err)
			}
		}
	}
}
