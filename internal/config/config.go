package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	APIBaseURL     string
	DatabasePath   string
	Environment    string
	AllowedOrigins string
	LogLevel       string

	SessionDuration time.Duration
	RequestTimeout  time.Duration

	// Two variants of the category form exist; the default keeps description optional.
	RequireCategoryDescription bool

	MailgunDomain      string
	MailgunAPIKey      string
	MailgunSenderEmail string
	MailgunSenderName  string
}

func Load() *Config {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		APIBaseURL:     strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:3000/api"), "/"),
		DatabasePath:   getEnv("DATABASE_PATH", "inventaris.db"),
		Environment:    getEnv("ENVIRONMENT", "production"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:8080"),
		LogLevel:       getEnv("LOG_LEVEL", "INFO"),

		SessionDuration: getDuration("SESSION_DURATION", 24*time.Hour),
		RequestTimeout:  getDuration("REQUEST_TIMEOUT", 10*time.Second),

		RequireCategoryDescription: getBool("REQUIRE_CATEGORY_DESCRIPTION", false),

		MailgunDomain:      getEnv("MAILGUN_DOMAIN", ""),
		MailgunAPIKey:      getEnv("MAILGUN_API_KEY", ""),
		MailgunSenderEmail: getEnv("MAILGUN_SENDER_EMAIL", "noreply@inventaris.local"),
		MailgunSenderName:  getEnv("MAILGUN_SENDER_NAME", "Inventaris"),
	}
	return cfg
}

func (c *Config) IsDevelopment() bool {
	env := strings.ToLower(c.Environment)
	return env == "development" || env == "dev"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}

func getBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}
