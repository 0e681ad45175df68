package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Database
	DatabaseURL    string
	MigrateOnStart bool

	// Auth0 (optional, enables JWT login alongside session tokens)
	Auth0Domain   string
	Auth0Audience string

	// Server
	Port        string
	PublicURL   string
	CORSOrigins []string
	Env         string

	// Sessions
	SessionTTL time.Duration

	// Registration writes per user per minute
	RegistrationRateLimit int

	Reminder ReminderConfig

	// S3 Storage
	S3 S3Config

	Kafka KafkaConfig
	SMTP  SMTPConfig
}

// ReminderConfig holds the reminder scheduler cadence
type ReminderConfig struct {
	Interval  time.Duration
	Lookahead time.Duration
}

// S3Config holds AWS S3 configuration
type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string // Optional: for MinIO/LocalStack local dev
}

// Enabled reports whether image storage is configured
func (c S3Config) Enabled() bool {
	return c.Bucket != ""
}

// KafkaConfig holds the notification event stream configuration
type KafkaConfig struct {
	Brokers           []string
	NotificationTopic string
}

// Enabled reports whether notification events should be streamed
func (c KafkaConfig) Enabled() bool {
	return len(c.Brokers) > 0 && c.NotificationTopic != ""
}

// SMTPConfig holds the e-mail notification configuration
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// Enabled reports whether notification e-mails should be sent
func (c SMTPConfig) Enabled() bool {
	return c.Host != ""
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:           getEnv("DATABASE_URL", ""),
		MigrateOnStart:        getBoolEnv("MIGRATE_ON_START", true),
		Auth0Domain:           getEnv("AUTH0_DOMAIN", ""),
		Auth0Audience:         getEnv("AUTH0_AUDIENCE", ""),
		Port:                  getEnv("PORT", "8080"),
		PublicURL:             strings.TrimSuffix(getEnv("PUBLIC_URL", ""), "/"),
		CORSOrigins:           splitAndTrim(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		Env:                   getEnv("ENV", "development"),
		SessionTTL:            getDurationEnv("SESSION_TTL", 2*time.Hour),
		RegistrationRateLimit: getIntEnv("REGISTRATION_RATE_LIMIT", 30),
		Reminder: ReminderConfig{
			Interval:  getDurationEnv("REMINDER_INTERVAL", 5*time.Minute),
			Lookahead: getDurationEnv("REMINDER_LOOKAHEAD", time.Hour),
		},
		S3: S3Config{
			Region:          getEnv("S3_REGION", "us-east-1"),
			Bucket:          getEnv("S3_BUCKET", ""),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			Endpoint:        getEnv("S3_ENDPOINT", ""), // Empty = use AWS, set for MinIO/LocalStack
		},
		Kafka: KafkaConfig{
			Brokers:           splitAndTrim(getEnv("KAFKA_BROKERS", "")),
			NotificationTopic: getEnv("KAFKA_NOTIFICATION_TOPIC", "gym.notifications"),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getIntEnv("SMTP_PORT", 587),
			User:     getEnv("SMTP_USER", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", "no-reply@fitnessformula.local"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Auth0Enabled reports whether JWT login is configured
func (c *Config) Auth0Enabled() bool {
	return c.Auth0Domain != "" && c.Auth0Audience != ""
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Reminder.Interval <= 0 {
		return fmt.Errorf("REMINDER_INTERVAL must be positive")
	}
	if c.Reminder.Lookahead <= 0 {
		return fmt.Errorf("REMINDER_LOOKAHEAD must be positive")
	}
	if (c.Auth0Domain == "") != (c.Auth0Audience == "") {
		return fmt.Errorf("AUTH0_DOMAIN and AUTH0_AUDIENCE must be set together")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBoolEnv(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func splitAndTrim(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
