package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BaseURL() != DefaultBaseURL {
		t.Fatalf("base url = %q", cfg.BaseURL())
	}
	interval, err := cfg.ParsePollInterval()
	if err != nil || interval != 3*time.Second {
		t.Fatalf("poll interval = %v err = %v", interval, err)
	}
}

func TestBaseURLPrecedence(t *testing.T) {
	tests := []struct {
		name string
		cfg  FileConfig
		want string
	}{
		{"explicit override wins", FileConfig{APIBaseURL: "https://api.example.com/", FunctionsBaseURL: "https://fn.example.com"}, "https://api.example.com"},
		{"functions base gets api suffix", FileConfig{FunctionsBaseURL: "https://fn.example.com"}, "https://fn.example.com/api"},
		{"default without any setting", FileConfig{}, DefaultBaseURL},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.BaseURL(); got != tt.want {
				t.Fatalf("base url = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoadReadsYAMLAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "functionsBaseURL: https://fn.example.com\nlogLevel: debug\npollInterval: 5s\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("MNEMONIQ_API_BASE_URL", "https://override.example.com")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BaseURL() != "https://override.example.com" {
		t.Fatalf("env override lost: %q", cfg.BaseURL())
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("log level = %q", cfg.LogLevel)
	}
	interval, err := cfg.ParsePollInterval()
	if err != nil || interval != 5*time.Second {
		t.Fatalf("poll interval = %v err = %v", interval, err)
	}
}

func TestValidateRejectsRelativeURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("apiBaseURL: localhost:7071\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected relative apiBaseURL to fail validation")
	}
}

func TestExtensionsDefaultAndEnv(t *testing.T) {
	cfg := FileConfig{}
	exts := cfg.Extensions()
	if len(exts) != 4 || exts[0] != ".pdf" {
		t.Fatalf("default extensions = %v", exts)
	}
	t.Setenv("MNEMONIQ_ALLOWED_EXTENSIONS", ".pdf, .txt")
	loaded, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := loaded.Extensions(); len(got) != 2 || got[1] != ".txt" {
		t.Fatalf("csv extensions = %v", got)
	}
}
