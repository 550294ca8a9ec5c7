package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultJWTSecret is only acceptable outside prod.
const DefaultJWTSecret = "supersecretkey"

type Config struct {
	Port string

	DBHost string
	DBPort string
	DBName string
	DBUser string
	DBPass string

	// DBMaxOpenConns is the maximum number of open connections to the database (default 25).
	DBMaxOpenConns int
	// DBMaxIdleConns is the maximum number of idle connections (default 5).
	DBMaxIdleConns int

	JWTSecret string

	// Env is "dev" (default) or "prod". When "prod", JWT_SECRET must be set and not the default.
	Env string

	// JWTExpireHours is the token lifetime in hours (default 24). Set via JWT_EXPIRE_HOURS.
	JWTExpireHours int

	// MaxPeriodLimit is the highest period number a schedule entry may use. MAX_PERIOD_LIMIT is required.
	MaxPeriodLimit int

	// TLSCertFile and TLSKeyFile enable HTTPS when both are set.
	// When empty, the API listens with plain HTTP.
	TLSCertFile string
	TLSKeyFile  string

	// LogFormat is "text" (default) or "json" for structured logging.
	LogFormat string
	LogLevel  string

	// CORSAllowedOrigins is a list of origins allowed for CORS (e.g. https://app.example.com, http://localhost:3000).
	// Set via CORS_ALLOWED_ORIGINS (comma-separated). When empty, no CORS headers are sent (same-origin only).
	CORSAllowedOrigins []string

	// StatsCron is the robfig/cron spec for refreshing table-size gauges. Empty disables the job.
	StatsCron string

	// TrustProxy keys the auth rate limiter on X-Forwarded-For. Set TRUST_PROXY=true only behind
	// a reverse proxy that overwrites that header.
	TrustProxy bool

	// loadErr holds values Load could not parse; Validate reports it.
	loadErr error
}

// Load reads the environment, after merging a .env file from the working directory if one exists.
func Load() Config {
	_ = godotenv.Load()

	var errs []error
	cfg := Config{
		Port: getEnv("PORT", "8080"),

		DBHost: getEnv("DB_HOST", "localhost"),
		DBPort: getEnv("DB_PORT", "5432"),
		DBName: getEnv("DB_NAME", "timetable"),
		DBUser: getEnv("DB_USER", "timetable"),
		DBPass: getEnv("DB_PASS", "timetable"),

		DBMaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),

		JWTSecret:      getEnv("JWT_SECRET", DefaultJWTSecret),
		Env:            getEnv("ENV", "dev"),
		JWTExpireHours: getEnvIntStrict("JWT_EXPIRE_HOURS", 24, &errs),

		MaxPeriodLimit: getEnvIntStrict("MAX_PERIOD_LIMIT", 0, &errs),

		// Optional TLS configuration for HTTPS.
		TLSCertFile: getEnv("TLS_CERT_FILE", ""),
		TLSKeyFile:  getEnv("TLS_KEY_FILE", ""),

		LogFormat: getEnv("LOG_FORMAT", "text"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),

		CORSAllowedOrigins: parseCORSOrigins(getEnv("CORS_ALLOWED_ORIGINS", "")),

		StatsCron: getEnv("STATS_CRON", "@every 1m"),

		TrustProxy: getEnv("TRUST_PROXY", "false") == "true",
	}
	cfg.loadErr = errors.Join(errs...)
	return cfg
}

// Validate reports configuration that must stop the process at startup.
func (c Config) Validate() error {
	if c.loadErr != nil {
		return c.loadErr
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.Env == "prod" && c.JWTSecret == DefaultJWTSecret {
		return errors.New("JWT_SECRET must be changed from the default in prod")
	}
	if c.MaxPeriodLimit <= 0 {
		return fmt.Errorf("MAX_PERIOD_LIMIT must be set to a positive integer, got %d", c.MaxPeriodLimit)
	}
	if c.JWTExpireHours <= 0 {
		return fmt.Errorf("JWT_EXPIRE_HOURS must be positive, got %d", c.JWTExpireHours)
	}
	return nil
}

// DatabaseURL returns the postgres URL form of the DB settings, as used by migrations.
func (c Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPass, c.DBHost, c.DBPort, c.DBName)
}

// parseCORSOrigins splits a comma-separated list of origins and trims spaces. Empty strings are omitted.
func parseCORSOrigins(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if o := strings.TrimSpace(p); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

// getEnvIntStrict returns fallback only when key is unset. A value that is not an integer
// is recorded in errs and read as 0.
func getEnvIntStrict(key string, fallback int, errs *[]error) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s must be an integer, got %q", key, v))
		return 0
	}
	return n
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
