package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config is the server-process configuration, distinct from the per-run
// engine.GameConfig that travels in game state.
type Config struct {
	Addr        string
	DatabaseURL string
	CatalogDir  string
	Dev         bool
}

// Load reads .env if present, then the environment. Missing values fall back
// to dev defaults; an empty DatabaseURL selects the in-memory store.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Addr:        getenv("HELLDRAFT_ADDR", ":8080"),
		DatabaseURL: os.Getenv("HELLDRAFT_DATABASE_URL"),
		CatalogDir:  getenv("HELLDRAFT_CATALOG_DIR", "content"),
		Dev:         os.Getenv("HELLDRAFT_DEV") == "1",
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
