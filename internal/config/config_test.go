package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Monitor.DaysThreshold != 30 {
		t.Errorf("default days threshold = %d, want 30", cfg.Monitor.DaysThreshold)
	}
	if cfg.Store.Path != "data/domains.json" {
		t.Errorf("default store path = %q", cfg.Store.Path)
	}
}

func TestLoadConfig_FileAndEnvLayers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := "monitor:\n  days_threshold: 45\nserver:\n  port: \"8080\"\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("DAYS", "15")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	// Env wins over file, file wins over default
	if cfg.Monitor.DaysThreshold != 15 {
		t.Errorf("days threshold = %d, want env override 15", cfg.Monitor.DaysThreshold)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("port = %q, want file value 8080", cfg.Server.Port)
	}
}

func TestApplySettings(t *testing.T) {
	cfg := Default()
	ApplySettings(cfg, map[string]string{
		"monitor.days_threshold": "60",
		"site.name":              "My Domains",
		"telegram.bot_token":     "tok",
		"telegram.chat_id":       "42",
		"webdav.auto_backup":     "true",
		"unknown.key":            "ignored",
		"auth.password":          "",
	})

	if cfg.Monitor.DaysThreshold != 60 {
		t.Errorf("days threshold = %d, want 60", cfg.Monitor.DaysThreshold)
	}
	if cfg.Site.Name != "My Domains" {
		t.Errorf("site name = %q", cfg.Site.Name)
	}
	if !cfg.Notifications.Telegram.Enabled {
		t.Error("telegram should enable once token and chat id are both set")
	}
	if !cfg.WebDAV.AutoBackup {
		t.Error("webdav auto backup should be on")
	}
	if cfg.Auth.Password != Default().Auth.Password {
		t.Error("empty setting value must not clear the password")
	}
}

func TestApplySettings_BadNumberIgnored(t *testing.T) {
	cfg := Default()
	ApplySettings(cfg, map[string]string{"monitor.days_threshold": "soon"})
	if cfg.Monitor.DaysThreshold != 30 {
		t.Errorf("unparseable threshold should keep default, got %d", cfg.Monitor.DaysThreshold)
	}
}

func TestAllowedSettingKey(t *testing.T) {
	if !AllowedSettingKey("monitor.days_threshold") {
		t.Error("monitor.days_threshold should be allowed")
	}
	if AllowedSettingKey("database.path") {
		t.Error("database.path must not be settable at runtime")
	}
}
