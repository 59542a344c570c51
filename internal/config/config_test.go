package config

import (
	"os"
	"path/filepath"
	"testing"

	"poputka/internal/models"
)

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
telegram:
  bot_token: "test_token"
database:
  path: "test.db"
managers:
  - 111
blacklist:
  - 222
bot:
  pagination_size: 5
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Telegram.BotToken != "test_token" {
		t.Errorf("expected bot_token test_token, got %s", cfg.Telegram.BotToken)
	}
	if cfg.Bot.PaginationSize != 5 {
		t.Errorf("expected pagination size 5, got %d", cfg.Bot.PaginationSize)
	}
	if !cfg.IsManager(111) || cfg.IsManager(333) {
		t.Errorf("manager list not applied")
	}
	if !cfg.IsBlacklisted(222) || cfg.IsBlacklisted(111) {
		t.Errorf("blacklist not applied")
	}
}

func TestLoadConfigExpandsEnv(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	t.Setenv("TEST_BOT_TOKEN", "env_token")

	yamlContent := `
telegram:
  bot_token: "${TEST_BOT_TOKEN}"
database:
  path: "test.db"
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Telegram.BotToken != "env_token" {
		t.Errorf("expected env_token, got %s", cfg.Telegram.BotToken)
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "valid config",
			cfg: Config{
				Telegram: TelegramConfig{BotToken: "token"},
				Database: DatabaseConfig{Path: "path"},
			},
			wantErr: false,
		},
		{
			name: "missing token",
			cfg: Config{
				Telegram: TelegramConfig{BotToken: ""},
				Database: DatabaseConfig{Path: "path"},
			},
			wantErr: true,
		},
		{
			name: "missing database path",
			cfg: Config{
				Telegram: TelegramConfig{BotToken: "token"},
			},
			wantErr: true,
		},
		{
			name: "api auth without keys",
			cfg: Config{
				Telegram: TelegramConfig{BotToken: "token"},
				Database: DatabaseConfig{Path: "path"},
				API: APIConfig{
					Enabled: true,
					Auth:    APIAuthConfig{Enabled: true},
				},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()

	expectedReminder := "09:00"
	if cfg.Bot.ReminderTime != expectedReminder {
		t.Errorf("expected default reminder time %s, got %s", expectedReminder, cfg.Bot.ReminderTime)
	}
	if cfg.Bot.PaginationSize != models.DefaultPaginationSize {
		t.Errorf("expected default pagination size %d, got %d", models.DefaultPaginationSize, cfg.Bot.PaginationSize)
	}
	if cfg.API.HTTP.Port != 8080 {
		t.Errorf("expected default HTTP port 8080, got %d", cfg.API.HTTP.Port)
	}
	if cfg.API.Auth.HeaderUserID != "x-telegram-user-id" {
		t.Errorf("expected default user header, got %s", cfg.API.Auth.HeaderUserID)
	}
	if cfg.Bot.RateLimitMessages != models.RateLimitMessages {
		t.Errorf("expected default rate limit messages %d, got %d", models.RateLimitMessages, cfg.Bot.RateLimitMessages)
	}
}
