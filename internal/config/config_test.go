package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Server:    ServerConfig{Port: "8080"},
		Store:     StoreConfig{Driver: StoreMemory},
		Reminders: RemindersConfig{CronSchedule: "0 8 * * *"},
		Reporting: ReportingConfig{CronSchedule: "0 20 * * 5", Timezone: "UTC"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"minimal memory config", func(c *Config) {}, ""},
		{"missing port", func(c *Config) { c.Server.Port = "" }, "APP_PORT"},
		{"unknown driver", func(c *Config) { c.Store.Driver = "sqlite" }, "STORE_DRIVER"},
		{"mongo needs uri", func(c *Config) { c.Store.Driver = StoreMongoDB; c.MongoDB.DBName = "h" }, "MONGODB_URI"},
		{"whatsapp half configured", func(c *Config) { c.WhatsApp.AccessToken = "t" }, "WHATSAPP_PHONE_NUMBER_ID"},
		{"sheets half configured", func(c *Config) { c.Sheets.SpreadsheetID = "sheet" }, "GOOGLE_SHEETS_CREDENTIALS_PATH"},
		{"bad timezone", func(c *Config) { c.Reporting.Timezone = "Mars/Olympus" }, "REPORT_TIMEZONE"},
		{"reminder recipient without schedule", func(c *Config) {
			c.Reminders.Recipient = "224600000000"
			c.Reminders.CronSchedule = ""
		}, "REMINDER_CRON_SCHEDULE"},
		{"imagekit ttl", func(c *Config) { c.ImageKit.PrivateKey = "k" }, "IMAGEKIT_TOKEN_TTL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_FromEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	content := "STORE_DRIVER=memory\nREPORT_TIMEZONE=Africa/Conakry\nIMAGEKIT_PRIVATE_KEY=private\nIMAGEKIT_TOKEN_TTL=600\nWHATSAPP_ALLOWED_SENDERS=224600000001, 224600000002\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))

	for _, key := range []string{"STORE_DRIVER", "REPORT_TIMEZONE", "IMAGEKIT_PRIVATE_KEY", "IMAGEKIT_TOKEN_TTL", "WHATSAPP_ALLOWED_SENDERS"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	cfg, err := Load(envFile)
	require.NoError(t, err)

	assert.Equal(t, StoreMemory, cfg.Store.Driver)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "0 8 * * *", cfg.Reminders.CronSchedule)
	assert.Equal(t, "0 20 * * 5", cfg.Reporting.CronSchedule)
	assert.Equal(t, 10*time.Minute, cfg.ImageKit.TokenTTL)
	assert.True(t, cfg.ImageKit.Enabled())
	assert.Equal(t, "Africa/Conakry", cfg.Location().String())
	assert.Equal(t, []string{"224600000001", "224600000002"}, cfg.WhatsApp.AllowedSenders)
}

func TestLoad_MissingEnvFileIsIgnored(t *testing.T) {
	t.Setenv("STORE_DRIVER", StoreMemory)
	t.Setenv("REPORT_TIMEZONE", "UTC")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("WHATSAPP_TOKEN", "")
	t.Setenv("WHATSAPP_PHONE_NUMBER_ID", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
	assert.False(t, cfg.AI.Enabled())
	assert.False(t, cfg.WhatsApp.Enabled())
}
