package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultTimezone = "America/Bogota"

type Config struct {
	Port          string
	AllowedOrigin string

	DatabaseURL   string
	AutoMigrate   bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	// RedisInvoiceSequence moves invoice numbering to a Redis INCR counter.
	RedisInvoiceSequence   bool
	ProductCacheTTLSeconds int

	AuthSecret            string
	AccessTokenTTLMinutes int
	ManagerPIN            string

	Timezone        string
	LowStockDefault int
}

// Load reads the environment. A .env file in the working directory is applied
// first but never overrides variables that are already set.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:                   getEnv("PORT", "8080"),
		AllowedOrigin:          getEnv("ALLOWED_ORIGIN", "http://127.0.0.1:3000"),
		DatabaseURL:            strings.TrimSpace(os.Getenv("DATABASE_URL")),
		AutoMigrate:            getBool("DB_AUTO_MIGRATE", true),
		RedisAddr:              strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RedisPassword:          os.Getenv("REDIS_PASSWORD"),
		RedisDB:                getInt("REDIS_DB", 0, 0),
		RedisInvoiceSequence:   getBool("REDIS_INVOICE_SEQUENCE", false),
		ProductCacheTTLSeconds: getInt("PRODUCT_CACHE_TTL_SECONDS", 30, 1),
		AuthSecret:             strings.TrimSpace(os.Getenv("AUTH_SECRET")),
		AccessTokenTTLMinutes:  getInt("ACCESS_TOKEN_TTL_MINUTES", 480, 1),
		ManagerPIN:             strings.TrimSpace(os.Getenv("MANAGER_PIN")),
		Timezone:               getEnv("TIMEZONE", defaultTimezone),
		LowStockDefault:        getInt("LOW_STOCK_DEFAULT_LIMIT", 10, 1),
	}
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}

// Location is the business time zone invoice dates are taken in.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func getEnv(key string, fallback string) string {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	return val
}

// getInt falls back when the value is missing, malformed or below min.
func getInt(key string, fallback int, min int) int {
	parsed, err := strconv.Atoi(getEnv(key, ""))
	if err != nil || parsed < min {
		return fallback
	}
	return parsed
}

func getBool(key string, fallback bool) bool {
	parsed, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return parsed
}
