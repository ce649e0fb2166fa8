package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Resale      ProviderConfig
	Theatre     ProviderConfig
	Attractions ProviderConfig
	Discovery   ProviderConfig
	LLM         LLMConfig
	Stripe      StripeConfig
	Email       EmailConfig
	Admin       AdminConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Addr is the listen address for the HTTP server. PORT is accepted with
// or without a leading colon.
func (s ServerConfig) Addr() string {
	return ":" + strings.TrimPrefix(s.Port, ":")
}

// ProviderConfig holds the base URL and credential for one external API.
type ProviderConfig struct {
	BaseURL string
	APIKey  string
}

type LLMConfig struct {
	BaseURL string
	APIKey  string
	Model   string
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
}

type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	From         string
}

type AdminConfig struct {
	JWTSecret string
	// QRSecret keys the encrypted ticket QR payloads.
	QRSecret string
}

type DatabaseConfig struct {
	// DSN is the service-role connection string; it bypasses the row-level
	// policies the public storefront credential is subject to.
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Database: DatabaseConfig{
			DSN:          getEnv("POSTGRES_DSN", ""),
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  time.Duration(getEnvInt("DB_MAX_LIFETIME_MINUTES", 5)) * time.Minute,
		},
		Resale: ProviderConfig{
			BaseURL: getEnv("RESALE_API_URL", "https://api.tixfeed.example.com/v1"),
			APIKey:  getEnv("RESALE_API_KEY", ""),
		},
		Theatre: ProviderConfig{
			BaseURL: getEnv("THEATRE_API_URL", "https://api.theatredirect.example.com/v2"),
			APIKey:  getEnv("THEATRE_API_KEY", ""),
		},
		Attractions: ProviderConfig{
			BaseURL: getEnv("ATTRACTIONS_API_URL", "https://api.attractions.example.com/v1"),
			APIKey:  getEnv("ATTRACTIONS_API_KEY", ""),
		},
		Discovery: ProviderConfig{
			BaseURL: getEnv("DISCOVERY_API_URL", "https://app.ticketdiscovery.example.com/discovery/v2"),
			APIKey:  getEnv("DISCOVERY_API_KEY", ""),
		},
		LLM: LLMConfig{
			BaseURL: getEnv("LLM_API_URL", "https://api.openai.com/v1"),
			APIKey:  getEnv("LLM_API_KEY", ""),
			Model:   getEnv("LLM_MODEL", "gpt-4o-mini"),
		},
		Stripe: StripeConfig{
			SecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
			WebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
		},
		Email: EmailConfig{
			SMTPHost:     getEnv("SMTP_HOST", "smtp.gmail.com"),
			SMTPPort:     getEnvInt("SMTP_PORT", 587),
			SMTPUsername: getEnv("SMTP_USERNAME", ""),
			SMTPPassword: getEnv("SMTP_PASSWORD", ""),
			From:         getEnv("SMTP_FROM", "tickets@example.com"),
		},
		Admin: AdminConfig{
			JWTSecret: getEnv("ADMIN_JWT_SECRET", ""),
			QRSecret:  getEnv("TICKET_QR_SECRET", "ticket-marketplace-dev"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
