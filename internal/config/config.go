package config

import (
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

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

	// JWT + session cookie
	JWTSecret           string
	JWTAccessExpiry     time.Duration
	JWTRefreshExpiry    time.Duration
	SessionCookieName   string
	SessionCookieSecure bool

	// Bootstrap admin (created at start-up if missing)
	AdminEmail    string
	AdminPassword string
	AdminName     string

	// Clinic
	ClinicTimezone string
	DailyCapacity  int

	// Stats cache
	RedisURL      string
	StatsCacheTTL time.Duration

	// Appointment reminders
	ReminderWebhookURL string
	ReminderTimeout    time.Duration

	// Server
	Port        string
	CORSOrigins string
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "lifedrop"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret:           getEnv("JWT_SECRET", ""),
		JWTAccessExpiry:     parseDuration(getEnv("JWT_ACCESS_EXPIRY", "15m"), 15*time.Minute),
		JWTRefreshExpiry:    parseDuration(getEnv("JWT_REFRESH_EXPIRY", "168h"), 168*time.Hour),
		SessionCookieName:   getEnv("SESSION_COOKIE_NAME", "session"),
		SessionCookieSecure: parseBool(getEnv("SESSION_COOKIE_SECURE", "false")),

		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		AdminName:     getEnv("ADMIN_NAME", "Administrator"),

		ClinicTimezone: getEnv("CLINIC_TIMEZONE", "UTC"),
		DailyCapacity:  parseInt(getEnv("DAILY_CAPACITY", "50"), 50),

		RedisURL:      getEnv("REDIS_URL", ""),
		StatsCacheTTL: parseDuration(getEnv("STATS_CACHE_TTL", "60s"), time.Minute),

		ReminderWebhookURL: getEnv("REMINDER_WEBHOOK_URL", ""),
		ReminderTimeout:    parseDuration(getEnv("REMINDER_TIMEOUT", "10s"), 10*time.Second),

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

// Location returns the clinic timezone, falling back to UTC when the
// configured name is unknown.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.ClinicTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
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
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func parseBool(s string) bool {
	b, _ := strconv.ParseBool(s)
	return b
}
