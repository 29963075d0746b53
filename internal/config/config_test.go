package config

import (
	"strings"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("RECORD_STORE_URL", "http://records.local/api/")
	t.Setenv("GOOGLE_SHEETS_CREDENTIALS_PATH", "")
	t.Setenv("GOOGLE_SHEET_DATABASE_ID", "")
	t.Setenv("WHATSAPP_TOKEN", "")
	t.Setenv("MONGODB_URI", "")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load("testdata/missing.env")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.RecordStore.BaseURL != "http://records.local/api" {
		t.Fatalf("trailing slash not trimmed: %q", cfg.RecordStore.BaseURL)
	}
	if cfg.Server.Port != "8080" {
		t.Fatalf("expected default port, got %q", cfg.Server.Port)
	}
	if cfg.RecordStore.Timeout != 15*time.Second {
		t.Fatalf("unexpected timeout %s", cfg.RecordStore.Timeout)
	}
	if cfg.SheetsEnabled() || cfg.BroadcastEnabled() {
		t.Fatal("optional integrations should be disabled by default")
	}
	if cfg.Location().String() != "Asia/Dhaka" {
		t.Fatalf("unexpected location %s", cfg.Location())
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	setRequired(t)
	t.Setenv("SESSION_TTL", "forever")

	if _, err := Load("testdata/missing.env"); err == nil || !strings.Contains(err.Error(), "SESSION_TTL") {
		t.Fatalf("expected SESSION_TTL error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Server:      ServerConfig{Port: "8080"},
			RecordStore: RecordStoreConfig{BaseURL: "https://records.local", Timeout: time.Second},
			Session:     SessionConfig{TTL: time.Hour},
			Reporting:   ReportingConfig{Timezone: "UTC"},
			WhatsApp:    WhatsAppConfig{BaseURL: "https://graph.facebook.com", APIVersion: "v20.0"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid"},
		{name: "missing store", mutate: func(c *Config) { c.RecordStore.BaseURL = "" }, wantErr: "RECORD_STORE_URL"},
		{name: "store not http", mutate: func(c *Config) { c.RecordStore.BaseURL = "records.local" }, wantErr: "http(s)"},
		{name: "bad timezone", mutate: func(c *Config) { c.Reporting.Timezone = "Mars/Olympus" }, wantErr: "TIMEZONE"},
		{name: "half sheets", mutate: func(c *Config) { c.Sheets.SpreadsheetID = "sheet" }, wantErr: "together"},
		{name: "whatsapp without group", mutate: func(c *Config) {
			c.WhatsApp.AccessToken = "token"
			c.WhatsApp.PhoneNumberID = "123"
		}, wantErr: "WHATSAPP_GROUP_ID"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			if tc.mutate != nil {
				tc.mutate(cfg)
			}
			err := cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}
