package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Host != "0.0.0.0" || cfg.Server.Port != 8080 {
		t.Errorf("server = %s, want 0.0.0.0:8080", cfg.Server.Address())
	}
	if cfg.Notion.BaseURL != "https://api.notion.com/v1" {
		t.Errorf("notion base URL = %q", cfg.Notion.BaseURL)
	}
	if cfg.Notion.Version != "2022-06-28" {
		t.Errorf("notion version = %q", cfg.Notion.Version)
	}
	if cfg.IMDB.BaseURL != "https://api.imdbapi.dev" {
		t.Errorf("imdb base URL = %q", cfg.IMDB.BaseURL)
	}
	if cfg.IMDB.SearchLimit != 10 {
		t.Errorf("imdb search limit = %d, want 10", cfg.IMDB.SearchLimit)
	}
	if cfg.Auth.SessionMaxAge != 7*24*60*60 {
		t.Errorf("session max age = %d, want seven days of seconds", cfg.Auth.SessionMaxAge)
	}
	if cfg.Cache.StaleMinutes != 5 {
		t.Errorf("cache stale minutes = %d, want 5", cfg.Cache.StaleMinutes)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("WATCHDECK_SERVER_PORT", "9090")
	t.Setenv("WATCHDECK_NOTION_API_KEY", "secret-key")
	t.Setenv("WATCHDECK_AUTH_PASSWORD", "hunter2")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want env override 9090", cfg.Server.Port)
	}
	if cfg.Notion.APIKey != "secret-key" {
		t.Errorf("notion key = %q, want env override", cfg.Notion.APIKey)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v with secrets set", err)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte("server:\n  port: 3000\nnotion:\n  database_ids:\n    - db-1\n    - db-2\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("port = %d, want 3000 from file", cfg.Server.Port)
	}
	if len(cfg.Notion.DatabaseIDs) != 2 || cfg.Notion.DatabaseIDs[0] != "db-1" {
		t.Errorf("database IDs = %v", cfg.Notion.DatabaseIDs)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{"missing notion key", Config{Auth: AuthConfig{Password: "x"}}, ErrNotionKeyMissing},
		{"missing password", Config{Notion: NotionConfig{APIKey: "k"}}, ErrPasswordMissing},
		{"complete", Config{Notion: NotionConfig{APIKey: "k"}, Auth: AuthConfig{Password: "x"}}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestServerConfig_Address(t *testing.T) {
	cfg := ServerConfig{Host: "127.0.0.1", Port: 8080}
	if got := cfg.Address(); got != "127.0.0.1:8080" {
		t.Errorf("Address() = %q", got)
	}
}
