package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigPath is the default config file location.
const ConfigPath = "config.yaml"

// DefaultBaseURL is the local development API endpoint.
const DefaultBaseURL = "http://localhost:7071/api"

const defaultPollInterval = 3 * time.Second

// FileConfig represents configuration loaded from YAML.
type FileConfig struct {
	APIBaseURL        string   `yaml:"apiBaseURL"`
	FunctionsBaseURL  string   `yaml:"functionsBaseURL"`
	LogLevel          string   `yaml:"logLevel"`
	LogFile           string   `yaml:"logFile"`
	TokenPath         string   `yaml:"tokenPath"`
	PollInterval      string   `yaml:"pollInterval"`
	AllowedExtensions []string `yaml:"allowedExtensions"`
}

// Load reads config from path (defaults to config.yaml). A missing file is
// not an error: the client runs on defaults plus environment variables.
func Load(path string) (FileConfig, error) {
	cfg := FileConfig{}
	if path == "" {
		path = ConfigPath
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	case os.IsNotExist(err):
		// defaults only
	default:
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if v := os.Getenv("MNEMONIQ_API_BASE_URL"); v != "" {
		cfg.APIBaseURL = strings.TrimSpace(v)
	}
	if v := os.Getenv("MNEMONIQ_FUNCTIONS_BASE_URL"); v != "" {
		cfg.FunctionsBaseURL = strings.TrimSpace(v)
	}
	if v := os.Getenv("MNEMONIQ_LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.TrimSpace(v)
	}
	if v := os.Getenv("MNEMONIQ_LOG_FILE"); v != "" {
		cfg.LogFile = strings.TrimSpace(v)
	}
	if v := os.Getenv("MNEMONIQ_TOKEN_PATH"); v != "" {
		cfg.TokenPath = strings.TrimSpace(v)
	}
	if v := os.Getenv("MNEMONIQ_POLL_INTERVAL"); v != "" {
		cfg.PollInterval = strings.TrimSpace(v)
	}
	if v := os.Getenv("MNEMONIQ_ALLOWED_EXTENSIONS"); v != "" {
		cfg.AllowedExtensions = splitCSV(v)
	}
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// BaseURL resolves the API endpoint with the defined precedence:
// explicit override > functions base URL + /api suffix > local default.
func (c FileConfig) BaseURL() string {
	if c.APIBaseURL != "" {
		return strings.TrimRight(c.APIBaseURL, "/")
	}
	if c.FunctionsBaseURL != "" {
		return strings.TrimRight(c.FunctionsBaseURL, "/") + "/api"
	}
	return DefaultBaseURL
}

// ParsePollInterval parses the optional processing-status poll period.
func (c FileConfig) ParsePollInterval() (time.Duration, error) {
	if c.PollInterval == "" {
		return defaultPollInterval, nil
	}
	dur, err := time.ParseDuration(c.PollInterval)
	if err != nil {
		return 0, fmt.Errorf("invalid pollInterval duration: %w", err)
	}
	if dur <= 0 {
		return 0, errors.New("pollInterval must be positive")
	}
	return dur, nil
}

// ResolveTokenPath returns the credential file location, defaulting to the
// user config directory.
func (c FileConfig) ResolveTokenPath() (string, error) {
	if c.TokenPath != "" {
		return c.TokenPath, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "mnemoniq", "token"), nil
}

// Extensions returns the upload extension allowlist.
func (c FileConfig) Extensions() []string {
	if len(c.AllowedExtensions) > 0 {
		return c.AllowedExtensions
	}
	return []string{".pdf", ".txt", ".docx", ".md"}
}

func validateConfig(cfg FileConfig) error {
	if cfg.APIBaseURL != "" && !strings.Contains(cfg.APIBaseURL, "://") {
		return errors.New("config: apiBaseURL must be an absolute URL")
	}
	if cfg.FunctionsBaseURL != "" && !strings.Contains(cfg.FunctionsBaseURL, "://") {
		return errors.New("config: functionsBaseURL must be an absolute URL")
	}
	for _, ext := range cfg.AllowedExtensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("config: allowed extension %q must start with a dot", ext)
		}
	}
	return nil
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
