package app

import (
	"os"
	"strconv"
	"strings"
)

// DefaultJWTSecret is only meant for local development.
const DefaultJWTSecret = "mocktest-dev-secret-change-me"

// Config stores runtime configuration loaded from environment variables.
type Config struct {
	AppEnv            string
	HTTPAddr          string
	DBDriver          string
	DBDSN             string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifeMins int

	JWTSecret     string
	TokenTTLHours int
	BcryptCost    int

	QuestionCacheTTLSeconds int
	AuthRateLimitPerMin     int
	LoginMaxFailures        int
	LoginLockMinutes        int
	CORSOrigins             []string

	AllowAdminRegistration bool
	SingleAttempt          bool
	// TrustProxyHeaders makes X-Forwarded-For and X-Real-IP the client address.
	// Only enable it behind a reverse proxy that overwrites those headers.
	TrustProxyHeaders bool
}

func LoadConfig() Config {
	return Config{
		AppEnv:                  envOrDefault("APP_ENV", "development"),
		HTTPAddr:                envOrDefault("HTTP_ADDR", ":8080"),
		DBDriver:                envOrDefault("DB_DRIVER", "postgres"),
		DBDSN:                   os.Getenv("DB_DSN"),
		DBMaxOpenConns:          intOrDefault("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:          intOrDefault("DB_MAX_IDLE_CONNS", 25),
		DBConnMaxLifeMins:       intOrDefault("DB_CONN_MAX_LIFETIME_MINUTES", 30),
		JWTSecret:               envOrDefault("JWT_SECRET", DefaultJWTSecret),
		TokenTTLHours:           intOrDefault("TOKEN_TTL_HOURS", 168),
		BcryptCost:              intOrDefault("BCRYPT_COST", 0),
		QuestionCacheTTLSeconds: nonNegativeIntOrDefault("QUESTION_CACHE_TTL_SECONDS", 30),
		AuthRateLimitPerMin:     intOrDefault("AUTH_RATE_LIMIT_PER_MINUTE", 60),
		LoginMaxFailures:        intOrDefault("LOGIN_MAX_FAILURES", 5),
		LoginLockMinutes:        intOrDefault("LOGIN_LOCK_MINUTES", 15),
		CORSOrigins:             csvOrDefault("CORS_ORIGINS", []string{"*"}),
		AllowAdminRegistration:  boolOrDefault("ALLOW_ADMIN_REGISTRATION", false),
		SingleAttempt:           boolOrDefault("SINGLE_ATTEMPT", false),
		TrustProxyHeaders:       boolOrDefault("TRUST_PROXY_HEADERS", false),
	}
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

func envOrDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func stringsToInt(v string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(v))
	return n
}

func intOrDefault(key string, fallback int) int {
	v := stringsToInt(os.Getenv(key))
	if v <= 0 {
		return fallback
	}
	return v
}

// nonNegativeIntOrDefault treats an explicit 0 as a real value.
func nonNegativeIntOrDefault(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func boolOrDefault(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return fallback
	}
}

func csvOrDefault(key string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
