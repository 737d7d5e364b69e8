package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret        string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration

	// Redis (optional; quota and realtime fall back to in-process when empty)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Report policy
	ReportEditWindow       time.Duration
	CommentEditWindow      time.Duration
	SpamFlagThreshold      int
	ReportRateLimitPerHour int

	// Observability
	SentryDSN string
	DevMode   bool

	// Server
	Port        string
	CORSOrigins string
}

func Load() *Config {
	// Missing .env is fine; real env vars win either way.
	_ = godotenv.Load()

	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "campuswatch"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret:        getEnv("JWT_SECRET", ""),
		JWTAccessExpiry:  parseDuration(getEnv("JWT_ACCESS_EXPIRY", "15m"), 15*time.Minute),
		JWTRefreshExpiry: parseDuration(getEnv("JWT_REFRESH_EXPIRY", "168h"), 168*time.Hour),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       parseInt(getEnv("REDIS_DB", "0"), 0),

		ReportEditWindow:       parseDuration(getEnv("REPORT_EDIT_WINDOW", "30m"), 30*time.Minute),
		CommentEditWindow:      parseDuration(getEnv("COMMENT_EDIT_WINDOW", "10m"), 10*time.Minute),
		SpamFlagThreshold:      parseInt(getEnv("SPAM_FLAG_THRESHOLD", "5"), 5),
		ReportRateLimitPerHour: parseInt(getEnv("REPORT_RATE_LIMIT_PER_HOUR", "5"), 5),

		SentryDSN: getEnv("SENTRY_DSN", ""),
		DevMode:   getEnv("DEV_MODE", "false") == "true",

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}
