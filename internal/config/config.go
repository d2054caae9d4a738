package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/lacandula/weather-dashboard/internal/weather"
)

type AppConfig struct {
	Port string

	// DBPath is the SQLite database file.
	DBPath string

	// UploadDir is the blob store root for note images and city photos.
	UploadDir string

	// WeatherAPIURL is the provider base; requests go to <base>/<city>.
	WeatherAPIURL string

	// HTTPTimeout bounds outbound provider calls.
	HTTPTimeout time.Duration

	// DefaultCity is auto-loaded on startup and exempt from history
	// recording.
	DefaultCity string

	// Orphan blob reconciliation.
	SweepInterval time.Duration
	SweepMinAge   time.Duration
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &AppConfig{}

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.DBPath = getenvDefault("DB_PATH", "weather-dashboard.db")
	cfg.UploadDir = getenvDefault("UPLOAD_DIR", "uploads")
	cfg.WeatherAPIURL = getenvDefault("WEATHER_API_URL", weather.DefaultBaseURL)
	cfg.DefaultCity = getenvDefault("DEFAULT_CITY", "Davao")

	timeout, err := getenvDuration("HTTP_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	cfg.HTTPTimeout = timeout

	// Sweep every hour; leave fresh blobs alone so an upload whose row write
	// is still in flight is not reclaimed out from under it.
	cfg.SweepInterval, err = getenvDuration("SWEEP_INTERVAL", "1h")
	if err != nil {
		return nil, err
	}
	cfg.SweepMinAge, err = getenvDuration("SWEEP_MIN_AGE", "30m")
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	v := getenvDefault(key, def)
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
