package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// LLM providers understood by the completion factory.
const (
	ProviderOpenAI = "openai"
	ProviderCompat = "compat"
)

// Config stores runtime configuration loaded from environment variables.
type Config struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Chat relay
	RelayBaseURL    string        `env:"BASE_URL" envDefault:"https://yoai.yophone.com/api/pub"`
	RelayAPIKey     string        `env:"YOAI_API_KEY"`
	RelayTimeout    time.Duration `env:"RELAY_TIMEOUT" envDefault:"30s"`
	PollingInterval time.Duration `env:"POLLING_INTERVAL" envDefault:"5s"`

	// Completion service
	LLMProvider        string        `env:"LLM_PROVIDER" envDefault:"openai"`
	OpenAIAPIKey       string        `env:"OPENAI_API_KEY"`
	OpenAIBaseURL      string        `env:"OPENAI_BASE_URL"`
	OpenAIModel        string        `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	LLMTimeout         time.Duration `env:"LLM_TIMEOUT" envDefault:"15s"`
	OpenRouterReferrer string        `env:"OPENROUTER_REFERRER"`
	OpenRouterTitle    string        `env:"OPENROUTER_TITLE"`

	// Persistence
	Database DatabaseConfig

	// Twilio WhatsApp channel (optional)
	TwilioAccountSID     string `env:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken      string `env:"TWILIO_AUTH_TOKEN"`
	TwilioWhatsAppNumber string `env:"TWILIO_WHATSAPP_NUMBER"`
	TwilioWebhookURL     string `env:"TWILIO_WEBHOOK_URL"`

	CORSAllowOrigins []string `env:"CORS_ALLOW_ORIGINS" envSeparator:"," envDefault:"*"`

	TimezoneName  string `env:"LOCAL_TIMEZONE" envDefault:"Local"`
	LocalTimezone *time.Location
}

// DatabaseConfig describes how to reach the relational store.
// URL wins over the individual fields when set.
type DatabaseConfig struct {
	URL      string `env:"DATABASE_URL"`
	Name     string `env:"DATABASE" envDefault:"reminder_bot"`
	User     string `env:"DATABASE_USER" envDefault:"postgres"`
	Password string `env:"DATABASE_PASSWORD" envDefault:"postgres"`
	Host     string `env:"DATABASE_HOST" envDefault:"localhost"`
	Port     int    `env:"DATABASE_PORT" envDefault:"5432"`
	Dialect  string `env:"DATABASE_DIALECT" envDefault:"postgres"`
}

// TwilioEnabled reports whether the WhatsApp channel has credentials.
func (c *Config) TwilioEnabled() bool {
	return c.TwilioAccountSID != "" && c.TwilioAuthToken != "" && c.TwilioWhatsAppNumber != ""
}

// Load reads configuration values and prepares defaults where applicable.
// Fallbacks are reported on l.
func Load(l *log.Logger) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: parse env: %w", err)
	}

	location, err := time.LoadLocation(cfg.TimezoneName)
	if err != nil {
		l.Printf("config: invalid LOCAL_TIMEZONE %q, defaulting to system local: %v", cfg.TimezoneName, err)
		location = time.Local
	}
	cfg.LocalTimezone = location

	if cfg.PollingInterval < time.Second {
		l.Printf("config: POLLING_INTERVAL %s below 1s, using 1s", cfg.PollingInterval)
		cfg.PollingInterval = time.Second
	}
	return cfg, nil
}
