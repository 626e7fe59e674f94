package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	DatabaseURL    string
	CatalogURL     string
	CatalogRefresh time.Duration
	TurnSeconds    int
	LogLevel       string
}

// Load reads .env if present, then the environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:           getenv("PORT", "8080"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		CatalogURL:     getenv("CATALOG_URL", "https://ddragon.leagueoflegends.com/cdn/14.1.1/data/en_US/champion.json"),
		CatalogRefresh: time.Duration(getenvInt("CATALOG_REFRESH_MINUTES", 60)) * time.Minute,
		TurnSeconds:    getenvInt("TURN_SECONDS", 30),
		LogLevel:       getenv("LOG_LEVEL", "info"),
	}
	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required")
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
