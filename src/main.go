package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"jandon-server/src/api"
	"jandon-server/src/codef"
	"jandon-server/src/config"
	"jandon-server/src/db"
	sql "jandon-server/src/db/sql"
	"jandon-server/src/scheduler"
	"jandon-server/src/syncer"
	"jandon-server/src/util"
)

func main() {
	cfg := config.Load()

	// Connect to database
	pool, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("DB connection failed: %v", err)
	}
	defer pool.Close()
	store := sql.NewStore(pool)

	// CODEF feed client
	tokenCache, err := db.NewTokenCache()
	if err != nil {
		log.Fatalf("Token cache init failed: %v", err)
	}
	tokens := codef.NewTokenManager(tokenCache, cfg.CodefTokenURL, cfg.CodefClientID, cfg.CodefClientSecret)

	box, err := util.NewCredentialBox(cfg.CredentialSecret)
	if err != nil {
		log.Fatalf("Credential key setup failed: %v", err)
	}
	providerKey, err := util.ParseProviderKey(cfg.CodefPublicKey)
	if err != nil {
		log.Fatalf("Provider public key setup failed: %v", err)
	}
	feed := codef.NewClient(cfg.CodefAPIURL, cfg.CodefConnectedID, tokens, box, providerKey)

	// Sync orchestrator + scheduler
	loc, err := time.LoadLocation(cfg.SyncTimezone)
	if err != nil {
		log.Fatalf("Invalid SYNC_TIMEZONE %q: %v", cfg.SyncTimezone, err)
	}
	svc := syncer.New(store, feed, cfg.DefaultRoundUpUnit, loc)
	go scheduler.Run(context.Background(), svc, cfg.SyncInterval)

	// Router
	router := api.NewRouter(store, svc)

	log.Println("API server running on port", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		log.Fatal(err)
	}
}
