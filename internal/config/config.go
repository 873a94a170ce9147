package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config centralises all environment and runtime configuration.
type Config struct {
	Port        string `mapstructure:"PORT"`
	Environment string `mapstructure:"ENVIRONMENT"`

	UseMemoryStore bool   `mapstructure:"USE_MEMORY_STORE"`
	DatabaseURL    string `mapstructure:"DATABASE_URL"`
	DBHost         string `mapstructure:"DB_HOST"`
	DBPort         int    `mapstructure:"DB_PORT"`
	DBUser         string `mapstructure:"DB_USER"`
	DBPass         string `mapstructure:"DB_PASS"`
	DBName         string `mapstructure:"DB_NAME"`

	SessionBackend string        `mapstructure:"SESSION_BACKEND"`
	RedisURL       string        `mapstructure:"REDIS_URL"`
	SessionTTL     time.Duration `mapstructure:"SESSION_TTL"`

	GeminiAPIKey string `mapstructure:"GEMINI_API_KEY"`
	GeminiModel  string `mapstructure:"GEMINI_MODEL"`

	SecretKey         string `mapstructure:"SECRET_KEY"`
	AdminUsername     string `mapstructure:"ADMIN_USERNAME"`
	AdminPassword     string `mapstructure:"ADMIN_PASSWORD"`
	AdminPasswordHash string `mapstructure:"ADMIN_PASSWORD_HASH"`

	TwilioAccountSID         string `mapstructure:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken          string `mapstructure:"TWILIO_AUTH_TOKEN"`
	TwilioWhatsAppFrom       string `mapstructure:"TWILIO_WHATSAPP_FROM"`
	DisableWebhookValidation bool   `mapstructure:"DISABLE_WEBHOOK_VALIDATION"`

	NominatimURL     string        `mapstructure:"NOMINATIM_URL"`
	OverpassURL      string        `mapstructure:"OVERPASS_URL"`
	SearchRadiusM    int           `mapstructure:"SEARCH_RADIUS_M"`
	SearchLimit      int           `mapstructure:"SEARCH_LIMIT"`
	ReminderInterval time.Duration `mapstructure:"REMINDER_INTERVAL"`
}

var keys = []string{
	"PORT", "ENVIRONMENT",
	"USE_MEMORY_STORE", "DATABASE_URL", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASS", "DB_NAME",
	"SESSION_BACKEND", "REDIS_URL", "SESSION_TTL",
	"GEMINI_API_KEY", "GEMINI_MODEL",
	"SECRET_KEY", "ADMIN_USERNAME", "ADMIN_PASSWORD", "ADMIN_PASSWORD_HASH",
	"TWILIO_ACCOUNT_SID", "TWILIO_AUTH_TOKEN", "TWILIO_WHATSAPP_FROM", "DISABLE_WEBHOOK_VALIDATION",
	"NOMINATIM_URL", "OVERPASS_URL", "SEARCH_RADIUS_M", "SEARCH_LIMIT", "REMINDER_INTERVAL",
}

// Load reads configuration from the process environment. Callers load .env
// files beforehand with godotenv.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("USE_MEMORY_STORE", false)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_NAME", "sehat_saathi")
	v.SetDefault("SESSION_BACKEND", "memory")
	v.SetDefault("SESSION_TTL", "30m")
	v.SetDefault("GEMINI_MODEL", "gemini-flash-latest")
	v.SetDefault("SECRET_KEY", "sehat_saathi_secret_key_2024")
	v.SetDefault("ADMIN_USERNAME", "admin")
	v.SetDefault("ADMIN_PASSWORD", "sehat123")
	v.SetDefault("NOMINATIM_URL", "https://nominatim.openstreetmap.org")
	v.SetDefault("OVERPASS_URL", "https://overpass-api.de/api/interpreter")
	v.SetDefault("SEARCH_RADIUS_M", 30000)
	v.SetDefault("SEARCH_LIMIT", 15)
	v.SetDefault("REMINDER_INTERVAL", "1h")

	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.SessionBackend = strings.ToLower(strings.TrimSpace(cfg.SessionBackend))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch c.SessionBackend {
	case "memory":
	case "redis":
		if strings.TrimSpace(c.RedisURL) == "" {
			return fmt.Errorf("SESSION_BACKEND is redis but REDIS_URL is empty")
		}
	default:
		return fmt.Errorf("unknown SESSION_BACKEND %q", c.SessionBackend)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.SearchRadiusM <= 0 || c.SearchLimit <= 0 {
		return fmt.Errorf("SEARCH_RADIUS_M and SEARCH_LIMIT must be positive")
	}
	return nil
}

// DSN returns DATABASE_URL when set, otherwise builds a key/value DSN.
func (c *Config) DSN() string {
	if strings.TrimSpace(c.DatabaseURL) != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		c.DBHost, c.DBUser, c.DBPass, c.DBName, c.DBPort)
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) GeminiEnabled() bool {
	return strings.TrimSpace(c.GeminiAPIKey) != ""
}

func (c *Config) TwilioEnabled() bool {
	return c.TwilioAccountSID != "" && c.TwilioAuthToken != "" && c.TwilioWhatsAppFrom != ""
}

// StorageMode is reported by the health endpoint.
func (c *Config) StorageMode() string {
	if c.UseMemoryStore {
		return "memory"
	}
	return "database"
}
