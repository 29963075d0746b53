package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server      ServerConfig
	RecordStore RecordStoreConfig
	Session     SessionConfig
	Reporting   ReportingConfig
	Sheets      SheetsConfig
	MongoDB     MongoDBConfig
	WhatsApp    WhatsAppConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port        string
	Environment string
}

// RecordStoreConfig points at the external REST service that owns every record.
type RecordStoreConfig struct {
	BaseURL string
	Timeout time.Duration
}

// SessionConfig controls per-browser page state.
type SessionConfig struct {
	TTL           time.Duration
	SweepSchedule string
	// NoticeAutoDismiss is how long success banners stay on screen. Errors always
	// wait for a manual dismissal.
	NoticeAutoDismiss time.Duration
}

// ReportingConfig holds scheduler-related settings.
type ReportingConfig struct {
	ExportSchedule    string
	BroadcastSchedule string
	Timezone          string
}

// SheetsConfig contains configuration required to interact with Google Sheets.
// The export is disabled when either field is empty.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// MongoDBConfig holds settings for the activity log. Empty URI disables it.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// WhatsAppConfig contains credentials for the daily rate broadcast.
type WhatsAppConfig struct {
	AccessToken   string
	PhoneNumberID string
	BaseURL       string
	APIVersion    string
	GroupID       string
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
		// Ignore the returned error here; missing .env files are acceptable when
		// configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:        getenvWithDefault("APP_PORT", "8080"),
			Environment: getenvWithDefault("APP_ENV", "production"),
		},
		RecordStore: RecordStoreConfig{
			BaseURL: strings.TrimSuffix(os.Getenv("RECORD_STORE_URL"), "/"),
		},
		Session: SessionConfig{
			SweepSchedule: getenvWithDefault("SESSION_SWEEP_SCHEDULE", "@every 10m"),
		},
		Reporting: ReportingConfig{
			ExportSchedule:    getenvWithDefault("REPORT_CRON_SCHEDULE", "0 6 1 * *"),
			BroadcastSchedule: getenvWithDefault("BROADCAST_CRON_SCHEDULE", "0 20 * * *"),
			Timezone:          getenvWithDefault("TIMEZONE", "Asia/Dhaka"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "boilerdesk"),
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:   os.Getenv("WHATSAPP_TOKEN"),
			PhoneNumberID: os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
			BaseURL:       getenvWithDefault("WHATSAPP_BASE_URL", "https://graph.facebook.com"),
			APIVersion:    getenvWithDefault("WHATSAPP_API_VERSION", "v20.0"),
			GroupID:       os.Getenv("WHATSAPP_GROUP_ID"),
		},
	}

	var err error
	if cfg.RecordStore.Timeout, err = getDuration("RECORD_STORE_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.Session.TTL, err = getDuration("SESSION_TTL", 12*time.Hour); err != nil {
		return nil, err
	}
	if cfg.Session.NoticeAutoDismiss, err = getDuration("NOTICE_AUTO_DISMISS", 2*time.Second); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	if c.RecordStore.BaseURL == "" {
		return errors.New("RECORD_STORE_URL must be provided")
	}
	if !strings.HasPrefix(c.RecordStore.BaseURL, "http://") && !strings.HasPrefix(c.RecordStore.BaseURL, "https://") {
		return fmt.Errorf("RECORD_STORE_URL must be an http(s) url, got %q", c.RecordStore.BaseURL)
	}
	if c.RecordStore.Timeout <= 0 {
		return errors.New("RECORD_STORE_TIMEOUT must be positive")
	}

	if c.Session.TTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	if c.Session.NoticeAutoDismiss < 0 {
		return errors.New("NOTICE_AUTO_DISMISS must not be negative")
	}

	if _, err := time.LoadLocation(c.Reporting.Timezone); err != nil {
		return fmt.Errorf("TIMEZONE %q is invalid: %w", c.Reporting.Timezone, err)
	}

	// Optional integrations must be configured completely or not at all.
	if (c.Sheets.CredentialsPath == "") != (c.Sheets.SpreadsheetID == "") {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH and GOOGLE_SHEET_DATABASE_ID must be provided together")
	}

	if c.WhatsApp.AccessToken != "" {
		switch {
		case c.WhatsApp.PhoneNumberID == "":
			return errors.New("WHATSAPP_PHONE_NUMBER_ID must be provided")
		case c.WhatsApp.GroupID == "":
			return errors.New("WHATSAPP_GROUP_ID must be provided")
		case c.WhatsApp.BaseURL == "":
			return errors.New("WHATSAPP_BASE_URL must not be empty")
		case c.WhatsApp.APIVersion == "":
			return errors.New("WHATSAPP_API_VERSION must not be empty")
		}
	}

	return nil
}

// SheetsEnabled reports whether the Google Sheets export is configured.
func (c *Config) SheetsEnabled() bool {
	return c.Sheets.CredentialsPath != "" && c.Sheets.SpreadsheetID != ""
}

// BroadcastEnabled reports whether the WhatsApp rate broadcast is configured.
func (c *Config) BroadcastEnabled() bool {
	return c.WhatsApp.AccessToken != ""
}

// Location returns the configured business timezone.
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

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	return parsed, nil
}
