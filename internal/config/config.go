package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers.
const (
	StoreMongoDB = "mongodb"
	StoreMemory  = "memory"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	MongoDB   MongoDBConfig
	AI        AIConfig
	WhatsApp  WhatsAppConfig
	Sheets    SheetsConfig
	ImageKit  ImageKitConfig
	Reminders RemindersConfig
	Reporting ReportingConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port     string
	LogLevel string
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Driver string
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// AIConfig holds settings for LLM providers. An empty key disables reminders.
type AIConfig struct {
	AnthropicKey string
	Model        string
	BaseURL      string
}

// Enabled reports whether reminders can be generated.
func (c AIConfig) Enabled() bool { return c.AnthropicKey != "" }

// WhatsAppConfig contains credentials and options for the Meta WhatsApp Cloud API.
type WhatsAppConfig struct {
	AccessToken   string
	PhoneNumberID string
	VerifyToken   string
	BaseURL       string
	APIVersion    string

	// AllowedSenders lists the phone numbers whose commands are applied.
	// Empty accepts every sender.
	AllowedSenders []string
}

// Enabled reports whether outbound WhatsApp messages can be sent.
func (c WhatsAppConfig) Enabled() bool {
	return c.AccessToken != "" && c.PhoneNumberID != ""
}

// SheetsConfig contains configuration required to export statements to Google Sheets.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// Enabled reports whether statement export is configured.
func (c SheetsConfig) Enabled() bool {
	return c.CredentialsPath != "" && c.SpreadsheetID != ""
}

// ImageKitConfig holds the keys used to sign receipt uploads.
type ImageKitConfig struct {
	PublicKey   string
	PrivateKey  string
	URLEndpoint string
	TokenTTL    time.Duration
}

// Enabled reports whether upload authentication can be issued.
func (c ImageKitConfig) Enabled() bool { return c.PrivateKey != "" }

// RemindersConfig drives the scheduled reorder reminder.
type RemindersConfig struct {
	CronSchedule        string
	Recipient           string
	DeliverySchedule    string
	ConsumptionPatterns string
}

// ReportingConfig holds scheduler-related settings.
type ReportingConfig struct {
	CronSchedule string
	Recipient    string
	Timezone     string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// A missing .env file is fine when the environment is set directly.
		_ = godotenv.Load()
	}

	ttl, err := getenvDuration("IMAGEKIT_TOKEN_TTL", 30*time.Minute)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:     getenvWithDefault("APP_PORT", "8080"),
			LogLevel: getenvWithDefault("LOG_LEVEL", "info"),
		},
		Store: StoreConfig{
			Driver: getenvWithDefault("STORE_DRIVER", StoreMongoDB),
		},
		MongoDB: MongoDBConfig{
			URI:    getenvWithDefault("MONGODB_URI", "mongodb://localhost:27017"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "household"),
		},
		AI: AIConfig{
			AnthropicKey: os.Getenv("ANTHROPIC_API_KEY"),
			Model:        os.Getenv("ANTHROPIC_MODEL"),
			BaseURL:      os.Getenv("ANTHROPIC_BASE_URL"),
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:   os.Getenv("WHATSAPP_TOKEN"),
			PhoneNumberID: os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
			VerifyToken:   os.Getenv("META_VERIFY_TOKEN"),
			BaseURL:       getenvWithDefault("WHATSAPP_BASE_URL", "https://graph.facebook.com"),
			APIVersion:    getenvWithDefault("WHATSAPP_API_VERSION", "v20.0"),

			AllowedSenders: getenvList("WHATSAPP_ALLOWED_SENDERS"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_STATEMENT_ID"),
		},
		ImageKit: ImageKitConfig{
			PublicKey:   os.Getenv("IMAGEKIT_PUBLIC_KEY"),
			PrivateKey:  os.Getenv("IMAGEKIT_PRIVATE_KEY"),
			URLEndpoint: os.Getenv("IMAGEKIT_URL_ENDPOINT"),
			TokenTTL:    ttl,
		},
		Reminders: RemindersConfig{
			CronSchedule:        getenvWithDefault("REMINDER_CRON_SCHEDULE", "0 8 * * *"),
			Recipient:           os.Getenv("REMINDER_RECIPIENT"),
			DeliverySchedule:    os.Getenv("REMINDER_DELIVERY_SCHEDULE"),
			ConsumptionPatterns: os.Getenv("REMINDER_CONSUMPTION_PATTERNS"),
		},
		Reporting: ReportingConfig{
			CronSchedule: getenvWithDefault("REPORT_CRON_SCHEDULE", "0 20 * * 5"),
			Recipient:    os.Getenv("REPORT_RECIPIENT"),
			Timezone:     getenvWithDefault("REPORT_TIMEZONE", "UTC"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated. Optional
// integrations are only checked once they are partly configured.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	switch c.Store.Driver {
	case StoreMemory:
	case StoreMongoDB:
		if c.MongoDB.URI == "" {
			return errors.New("MONGODB_URI must be provided")
		}
		if c.MongoDB.DBName == "" {
			return errors.New("MONGODB_DB_NAME must be provided")
		}
	default:
		return fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StoreMongoDB, StoreMemory, c.Store.Driver)
	}

	if c.WhatsApp.AccessToken != "" || c.WhatsApp.PhoneNumberID != "" {
		switch {
		case c.WhatsApp.AccessToken == "":
			return errors.New("WHATSAPP_TOKEN must be provided")
		case c.WhatsApp.PhoneNumberID == "":
			return errors.New("WHATSAPP_PHONE_NUMBER_ID must be provided")
		case c.WhatsApp.BaseURL == "":
			return errors.New("WHATSAPP_BASE_URL must not be empty")
		case c.WhatsApp.APIVersion == "":
			return errors.New("WHATSAPP_API_VERSION must not be empty")
		}
	}

	if (c.Sheets.CredentialsPath == "") != (c.Sheets.SpreadsheetID == "") {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH and GOOGLE_SHEET_STATEMENT_ID must be provided together")
	}

	if c.ImageKit.PrivateKey != "" && c.ImageKit.TokenTTL <= 0 {
		return errors.New("IMAGEKIT_TOKEN_TTL must be positive")
	}

	if _, err := time.LoadLocation(c.Reporting.Timezone); err != nil {
		return fmt.Errorf("REPORT_TIMEZONE is invalid: %w", err)
	}

	if c.Reminders.Recipient != "" && c.Reminders.CronSchedule == "" {
		return errors.New("REMINDER_CRON_SCHEDULE must be provided")
	}

	if c.Reporting.Recipient != "" && c.Reporting.CronSchedule == "" {
		return errors.New("REPORT_CRON_SCHEDULE must be provided")
	}

	return nil
}

// Location returns the configured reporting time zone.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Reporting.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getenvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d, nil
	}
	seconds, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration or a number of seconds: %w", key, err)
	}
	return time.Duration(seconds) * time.Second, nil
}
