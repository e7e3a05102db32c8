package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/srgjo27/tripdesk/internal/platform/database"
)

type Config struct {
	AppEnv   string
	LogLevel string
	HTTPAddr string

	DB database.Config

	RedisAddr string
	RedisDB   int

	BackendBaseURL string
	BackendTimeout time.Duration
	// BackendToken, when set, is sent verbatim; otherwise a service token
	// is signed with JWTSecret.
	BackendToken string
	JWTSecret    string
	JWTTTL       time.Duration

	SeatLockRefreshInterval time.Duration
	SessionIdleTimeout      time.Duration
	SessionSweepInterval    time.Duration

	LeadOwners          []string
	OwnerAssignInterval time.Duration
	AutomationRulesFile string
}

// Load reads an optional .env file and then the process environment.
// Values already present in the environment win over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		} else if err != nil {
			slog.Info(".env file not found, using process environment", "path", envFile)
		}
	}

	cfg := &Config{
		AppEnv:   get("APP_ENV", "development"),
		LogLevel: get("LOG_LEVEL", "info"),
		HTTPAddr: get("HTTP_ADDR", ":8080"),
		DB: database.Config{
			Host:     get("DB_HOST", "localhost"),
			Port:     get("DB_PORT", "5432"),
			User:     get("DB_USER", "postgres"),
			Password: get("DB_PASSWORD", ""),
			DBName:   get("DB_NAME", "tripdesk"),
		},
		RedisAddr:      get("REDIS_HOST", "localhost") + ":" + get("REDIS_PORT", "6379"),
		BackendBaseURL: strings.TrimRight(get("BACKEND_BASE_URL", "http://localhost:8000"), "/"),
		BackendToken:   get("BACKEND_TOKEN", ""),
		JWTSecret:      get("JWT_SECRET", ""),
		LeadOwners:     splitList(get("LEAD_OWNERS", "")),

		AutomationRulesFile: get("AUTOMATION_RULES_FILE", ""),
	}

	var err error
	if cfg.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	durations := []struct {
		key  string
		def  time.Duration
		dest *time.Duration
	}{
		{"BACKEND_TIMEOUT", 10 * time.Second, &cfg.BackendTimeout},
		{"JWT_TTL", 24 * time.Hour, &cfg.JWTTTL},
		{"SEATLOCK_REFRESH_INTERVAL", 120 * time.Second, &cfg.SeatLockRefreshInterval},
		{"SESSION_IDLE_TIMEOUT", 30 * time.Minute, &cfg.SessionIdleTimeout},
		{"SESSION_SWEEP_INTERVAL", time.Minute, &cfg.SessionSweepInterval},
		{"OWNER_ASSIGN_INTERVAL", time.Minute, &cfg.OwnerAssignInterval},
	}
	for _, d := range durations {
		if *d.dest, err = getDuration(d.key, d.def); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is empty")
	}
	if c.SeatLockRefreshInterval <= 0 {
		return fmt.Errorf("SEATLOCK_REFRESH_INTERVAL must be positive")
	}
	if c.SessionIdleTimeout <= 0 {
		return fmt.Errorf("SESSION_IDLE_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

func get(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func getInt(key string, def int) (int, error) {
	raw := get(key, "")
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	raw := get(key, "")
	if raw == "" {
		return def, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
