package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DatabaseURL string

	// CODEF provider
	CodefTokenURL     string
	CodefAPIURL       string
	CodefClientID     string
	CodefClientSecret string
	CodefPublicKey    string // base64-encoded DER
	CodefConnectedID  string

	// Symmetric key material for banking credentials at rest
	CredentialSecret string

	JWTSecret string

	DefaultRoundUpUnit int
	SyncInterval       time.Duration
	SyncTimezone       string
}

func Load() Config {
	// Load .env file if present
	_ = godotenv.Load()

	cfg := Config{
		Port:               getEnv("PORT", "8080"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		CodefTokenURL:      getEnv("CODEF_TOKEN_URL", "https://oauth.codef.io/oauth/token"),
		CodefAPIURL:        getEnv("CODEF_API_URL", "https://development.codef.io/v1/kr/bank/p/fast-account/transaction-list"),
		CodefClientID:      getEnv("CODEF_CLIENT_ID", ""),
		CodefClientSecret:  getEnv("CODEF_CLIENT_SECRET", ""),
		CodefPublicKey:     getEnv("CODEF_PUBLIC_KEY", ""),
		CodefConnectedID:   getEnv("CODEF_CONNECTED_ID", ""),
		CredentialSecret:   getEnv("CREDENTIAL_SECRET", ""),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		DefaultRoundUpUnit: getEnvInt("DEFAULT_ROUND_UP_UNIT", 100),
		SyncInterval:       getEnvDuration("SYNC_INTERVAL", 24*time.Hour),
		SyncTimezone:       getEnv("SYNC_TIMEZONE", "Asia/Seoul"),
	}

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}
	if cfg.CodefClientID == "" || cfg.CodefClientSecret == "" {
		log.Fatal("CODEF_CLIENT_ID and CODEF_CLIENT_SECRET are required")
	}
	if cfg.CodefPublicKey == "" {
		log.Fatal("CODEF_PUBLIC_KEY is required")
	}
	if cfg.CredentialSecret == "" {
		log.Fatal("CREDENTIAL_SECRET is required")
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		n, err := strconv.Atoi(value)
		if err != nil {
			log.Fatalf("%s must be an integer, got %q", key, value)
		}
		return n
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		d, err := time.ParseDuration(value)
		if err != nil {
			log.Fatalf("%s must be a duration like \"24h\", got %q", key, value)
		}
		return d
	}
	return fallback
}
