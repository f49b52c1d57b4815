package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Email       EmailConfig
	CORS        CORSConfig
	RateLimit   RateLimitConfig
	Logging     LoggingConfig
	Validation  ValidationConfig
	Tracing     TracingConfig
	Environment string
}

type ServerConfig struct {
	Host string
	Port int
}

type DatabaseConfig struct {
	URL            string
	MaxConnections int
	MigrateOnStart bool
}

// EmailConfig selects the notification provider and the fixed addressing used
// for contact-form notifications.
type EmailConfig struct {
	Enabled        bool
	Provider       string // resend, sendgrid, log
	ResendAPIKey   string
	SendGridAPIKey string
	Recipient      string
	FromDomain     string
	SiteName       string
}

type CORSConfig struct {
	AllowAllOrigins bool
	AllowedOrigins  []string
}

type RateLimitConfig struct {
	PublicPerMinute   int
	TrustedProxyCIDRs []string
}

type LoggingConfig struct {
	Level  string
	Format string
}

type ValidationConfig struct {
	DefaultPhoneRegion string
}

// TracingConfig controls OpenTelemetry span export. Tracing is off unless
// TRACING_ENABLED is set.
type TracingConfig struct {
	Enabled      bool
	Exporter     string // stdout, otlp, none
	ServiceName  string
	OTLPEndpoint string
	SampleRate   float64
}

const (
	ProviderResend   = "resend"
	ProviderSendGrid = "sendgrid"
	ProviderLog      = "log"
)

func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvInt("PORT", getEnvInt("SERVER_PORT", 5000)),
		},
		Database: DatabaseConfig{
			URL:            getEnv("DATABASE_URL", ""),
			MaxConnections: getEnvInt("DATABASE_MAX_CONNECTIONS", 10),
			MigrateOnStart: getEnvBool("MIGRATE_ON_START", true),
		},
		Email: EmailConfig{
			Provider:       strings.ToLower(getEnv("EMAIL_PROVIDER", ProviderResend)),
			ResendAPIKey:   getEnv("RESEND_API_KEY", ""),
			SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),
			Recipient:      getEnv("PASTOR_EMAIL", ""),
			FromDomain:     getEnv("EMAIL_FROM_DOMAIN", "example.org"),
			SiteName:       getEnv("SITE_NAME", "Conference"),
		},
		RateLimit: RateLimitConfig{
			PublicPerMinute:   getEnvInt("RATE_LIMIT_PUBLIC", 60),
			TrustedProxyCIDRs: splitList(getEnv("TRUSTED_PROXY_CIDRS", "")),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Validation: ValidationConfig{
			DefaultPhoneRegion: strings.ToUpper(getEnv("DEFAULT_PHONE_REGION", "US")),
		},
		Tracing: TracingConfig{
			Enabled:      getEnvBool("TRACING_ENABLED", false),
			Exporter:     strings.ToLower(getEnv("TRACING_EXPORTER", "stdout")),
			ServiceName:  getEnv("OTEL_SERVICE_NAME", "missionconf-server"),
			OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			SampleRate:   getEnvFloat("TRACING_SAMPLE_RATE", 1.0),
		},
		Environment: getEnv("ENVIRONMENT", getEnv("NODE_ENV", "development")),
	}

	if cfg.Database.URL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required")
	}

	switch cfg.Email.Provider {
	case ProviderResend:
		cfg.Email.Enabled = cfg.Email.ResendAPIKey != ""
	case ProviderSendGrid:
		cfg.Email.Enabled = cfg.Email.SendGridAPIKey != ""
	case ProviderLog:
		cfg.Email.Enabled = false
	default:
		return Config{}, fmt.Errorf("EMAIL_PROVIDER must be one of resend, sendgrid, log (got %q)", cfg.Email.Provider)
	}
	if cfg.Email.Enabled && cfg.Email.Recipient == "" {
		return Config{}, fmt.Errorf("PASTOR_EMAIL is required when email delivery is enabled")
	}

	origins := splitList(getEnv("CORS_ALLOWED_ORIGINS", ""))
	if cfg.IsProduction() {
		if len(origins) == 0 {
			return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS is required in production")
		}
		cfg.CORS = CORSConfig{AllowedOrigins: origins}
	} else {
		cfg.CORS = CORSConfig{AllowAllOrigins: len(origins) == 0, AllowedOrigins: origins}
	}

	return cfg, nil
}

// IsProduction reports whether raw error detail must be hidden from clients.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
