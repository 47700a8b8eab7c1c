package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/mailblast/mailblast/internal/model"
)

// Config holds all configuration for the application
type Config struct {
	Sender SenderConfig `mapstructure:"sender"`
	SMTP   SMTPConfig   `mapstructure:"smtp"`
	Gmail  GmailConfig  `mapstructure:"gmail"`
	Send   SendConfig   `mapstructure:"send"`
	Log    LogConfig    `mapstructure:"log"`
}

// SenderConfig identifies the sending account
type SenderConfig struct {
	// Address is the "From" email address
	Address string `mapstructure:"address"`
	// Name is the display name for the sender
	Name string `mapstructure:"name"`
	// Provider selects the mail transport: "smtp" or "gmail"
	Provider string `mapstructure:"provider"`
}

// SMTPConfig holds mail-relay configuration
type SMTPConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	// Username defaults to the sender address when empty
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	// TLSMode is one of "auto", "starttls", "ssl", "none"
	TLSMode string `mapstructure:"tls_mode"`
	// InsecureSkipVerify disables certificate verification (dev only)
	InsecureSkipVerify bool `mapstructure:"insecure_skip_verify"`
}

// Addr returns the relay address
func (c SMTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// GmailConfig holds Gmail API configuration
type GmailConfig struct {
	// CredentialsJSON is the service account credentials JSON content
	CredentialsJSON string `mapstructure:"credentials_json"`
	// ClientID for OAuth2 token-based auth (alternative to service account)
	ClientID string `mapstructure:"client_id"`
	// ClientSecret for OAuth2 token-based auth
	ClientSecret string `mapstructure:"client_secret"`
	// RefreshToken for OAuth2 token-based auth
	RefreshToken string `mapstructure:"refresh_token"`
}

// HasCredentials reports whether either Gmail auth path is configured
func (c GmailConfig) HasCredentials() bool {
	if c.CredentialsJSON != "" {
		return true
	}
	return c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != ""
}

// SendConfig holds dispatch settings
type SendConfig struct {
	// DefaultSubject is used when neither flag nor template provides one
	DefaultSubject string `mapstructure:"default_subject"`
	// RateLimitDelay is the pause between consecutive sends
	RateLimitDelay time.Duration `mapstructure:"rate_limit_delay"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from .env, config file and environment variables
func Load() (*Config, error) {
	// .env is optional; environment variables win either way
	_ = godotenv.Load()

	v := viper.New()

	// Set config file name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/mailblast")

	// Set defaults
	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	// Bind environment variables
	v.SetEnvPrefix("MAILBLAST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unmarshal config
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration can drive a send run.
// It runs before any recipient is loaded or any message rendered.
func (c *Config) Validate() error {
	if c.Sender.Address == "" {
		return errors.New("sender address is required")
	}
	if !model.IsValidAddress(c.Sender.Address) {
		return fmt.Errorf("sender address %q is not a valid email address", c.Sender.Address)
	}

	switch c.Sender.Provider {
	case "smtp":
		if c.SMTP.Host == "" {
			return errors.New("smtp host is required")
		}
		if c.SMTP.Port <= 0 || c.SMTP.Port > 65535 {
			return fmt.Errorf("smtp port %d is out of range", c.SMTP.Port)
		}
		if c.SMTP.Password == "" {
			return errors.New("smtp password is required")
		}
	case "gmail":
		if !c.Gmail.HasCredentials() {
			return errors.New("gmail credentials are required: credentials_json or client_id/client_secret/refresh_token")
		}
	default:
		return fmt.Errorf("unknown provider %q (expected \"smtp\" or \"gmail\")", c.Sender.Provider)
	}

	if c.Send.RateLimitDelay < 0 {
		return errors.New("rate limit delay cannot be negative")
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	// Sender defaults
	v.SetDefault("sender.address", "")
	v.SetDefault("sender.name", "")
	v.SetDefault("sender.provider", "smtp")

	// SMTP defaults
	v.SetDefault("smtp.host", "smtp.gmail.com")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.tls_mode", "auto")
	v.SetDefault("smtp.insecure_skip_verify", false)

	// Gmail defaults
	v.SetDefault("gmail.credentials_json", "")
	v.SetDefault("gmail.client_id", "")
	v.SetDefault("gmail.client_secret", "")
	v.SetDefault("gmail.refresh_token", "")

	// Send defaults
	v.SetDefault("send.default_subject", "Hello {name}")
	v.SetDefault("send.rate_limit_delay", "1s")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}
