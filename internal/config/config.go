package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/i474232898/agro-weather/internal/common"
	"github.com/i474232898/agro-weather/internal/weather"
)

// ErrMissingJWTSecret is returned when JWT_SECRET is not set.
var ErrMissingJWTSecret = errors.New("JWT_SECRET is required")

type AppConfig struct {
	OpenWeatherAPIKey string
	WeatherAPIKey     string

	// Providers lists provider names in fallback order.
	Providers   []string
	HTTPTimeout time.Duration

	// FetchInterval controls how often we refresh data for each location.
	FetchInterval time.Duration

	// Locations to track.
	Locations []weather.Location

	// Forecast cache retention.
	CacheTTL        time.Duration
	CacheMaxEntries int // max number of cached locations (0 = unlimited)

	// Optional backends; empty means in-memory or log only.
	RedisURL     string
	DatabaseURL  string
	KafkaBrokers []string
	KafkaTopic   string

	JWTSecret string
	JWTTTL    time.Duration

	Calendar        *time.Location
	DigestSkipToday bool
	DefaultLang     string

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.WeatherAPIKey = os.Getenv("WEATHERAPI_API_KEY")
	cfg.Providers = common.SplitList(strings.ToLower(getenvDefault("WEATHER_PROVIDERS", "openweather,weatherapi,openmeteo")))

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	// Scheduler interval: default 15 minutes.
	if cfg.FetchInterval, err = getenvDuration("FETCH_INTERVAL", 15*time.Minute); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = getenvDuration("CACHE_TTL", 30*time.Minute); err != nil {
		return nil, err
	}
	cfg.CacheMaxEntries = getenvInt("CACHE_MAX_ENTRIES", 256)

	cfg.RedisURL = os.Getenv("REDIS_URL")
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.KafkaBrokers = common.SplitList(os.Getenv("KAFKA_BROKERS"))
	cfg.KafkaTopic = getenvDefault("KAFKA_TOPIC", "rain-alerts")

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, ErrMissingJWTSecret
	}
	if cfg.JWTTTL, err = getenvDuration("JWT_TTL", 7*24*time.Hour); err != nil {
		return nil, err
	}

	tz := getenvDefault("CALENDAR_TZ", "UTC")
	if cfg.Calendar, err = time.LoadLocation(tz); err != nil {
		return nil, fmt.Errorf("invalid CALENDAR_TZ: %w", err)
	}
	cfg.DigestSkipToday = getenvBool("DIGEST_SKIP_TODAY", false)
	cfg.DefaultLang = getenvDefault("DEFAULT_LANG", "en")
	cfg.Port = getenvDefault("PORT", "8080")

	locs, err := loadLocations()
	if err != nil {
		return nil, err
	}
	cfg.Locations = locs

	return cfg, nil
}

// loadLocations pairs WEATHER_LOCATION_CITY with WEATHER_LOCATION_COUNTRY.
// The country list may be empty; otherwise it must match the city list.
func loadLocations() ([]weather.Location, error) {
	cities := common.SplitList(os.Getenv("WEATHER_LOCATION_CITY"))
	countries := common.SplitList(os.Getenv("WEATHER_LOCATION_COUNTRY"))
	if len(countries) > 0 && len(cities) != len(countries) {
		return nil, fmt.Errorf("number of cities and countries must be the same")
	}
	var locs []weather.Location
	for i := range cities {
		loc := weather.Location{City: cities[i]}
		if len(countries) > 0 {
			loc.Country = countries[i]
		}
		locs = append(locs, loc)
	}

	return locs, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}
