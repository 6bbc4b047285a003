package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"m2b4a/internal/migration"
	"m2b4a/internal/platform/api"
	"m2b4a/internal/report"
	"m2b4a/internal/restore"
	"m2b4a/internal/session"
	"m2b4a/internal/upload"
)

const (
	// RuntimeProcess runs the restore executable on the host.
	RuntimeProcess = "process"
	// RuntimeDocker runs the restore inside a container.
	RuntimeDocker = "docker"
)

// Config holds the tool configuration
type Config struct {
	Log     LogConfig
	API     APIConfig
	Session SessionConfig
	Restore RestoreConfig
	Policy  PolicyConfig
	// Secret is the account password for unattended runs (M2B4A_SECRET).
	Secret string
}

type LogConfig struct {
	Level  string
	Format string
}

// APIConfig locates the platform endpoints.
type APIConfig struct {
	DashboardURL string
	ParseURL     string
	FilesURL     string
	ConsoleURL   string
	Timeout      time.Duration
}

type SessionConfig struct {
	Path string
}

// RestoreConfig selects how the database dump is restored.
type RestoreConfig struct {
	Runtime  string
	ToolsDir string
	Image    string
	// Preflight pings the target database before the restore starts.
	Preflight bool
}

// PolicyConfig bounds the polling and retry loops.
type PolicyConfig struct {
	VerifyAttempts int
	VerifyDelay    time.Duration
	UploadRetries  int
	UploadDelay    time.Duration
}

// Load reads the configuration from, in increasing priority: defaults,
// the config file and M2B4A_* environment variables. An empty path looks
// for m2b4a.yaml in the working directory and in ~/.config/m2b4a; a
// missing file is not an error unless path names it explicitly.
func Load(path string) (Config, error) {
	v := viper.New()

	v.SetEnvPrefix("M2B4A")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("m2b4a")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "m2b4a"))
		}
	}

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("api.dashboard_url", api.DefaultDashboardURL)
	v.SetDefault("api.parse_url", api.DefaultParseURL)
	v.SetDefault("api.files_url", api.DefaultFilesURL)
	v.SetDefault("api.console_url", report.DefaultConsoleURL)
	v.SetDefault("api.timeout", api.DefaultTimeout)
	v.SetDefault("session.path", session.DefaultPath)
	v.SetDefault("restore.runtime", RuntimeProcess)
	v.SetDefault("restore.tools_dir", defaultToolsDir())
	v.SetDefault("restore.image", restore.DefaultImage)
	v.SetDefault("restore.preflight", false)
	v.SetDefault("policy.verify_attempts", migration.DefaultVerifyAttempts)
	v.SetDefault("policy.verify_delay", migration.DefaultVerifyDelay)
	v.SetDefault("policy.upload_retries", upload.DefaultRetries)
	v.SetDefault("policy.upload_delay", upload.DefaultDelay)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := Config{
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		API: APIConfig{
			DashboardURL: v.GetString("api.dashboard_url"),
			ParseURL:     v.GetString("api.parse_url"),
			FilesURL:     v.GetString("api.files_url"),
			ConsoleURL:   v.GetString("api.console_url"),
			Timeout:      v.GetDuration("api.timeout"),
		},
		Session: SessionConfig{
			Path: v.GetString("session.path"),
		},
		Restore: RestoreConfig{
			Runtime:   strings.ToLower(v.GetString("restore.runtime")),
			ToolsDir:  v.GetString("restore.tools_dir"),
			Image:     v.GetString("restore.image"),
			Preflight: v.GetBool("restore.preflight"),
		},
		Policy: PolicyConfig{
			VerifyAttempts: v.GetInt("policy.verify_attempts"),
			VerifyDelay:    v.GetDuration("policy.verify_delay"),
			UploadRetries:  v.GetInt("policy.upload_retries"),
			UploadDelay:    v.GetDuration("policy.upload_delay"),
		},
		Secret: v.GetString("secret"),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Endpoints returns the control API base URLs.
func (c Config) Endpoints() api.Endpoints {
	return api.Endpoints{
		Dashboard: c.API.DashboardURL,
		Parse:     c.API.ParseURL,
		Files:     c.API.FilesURL,
	}
}

// Validate rejects settings no run could work with.
func (c Config) Validate() error {
	switch {
	case c.Restore.Runtime != RuntimeProcess && c.Restore.Runtime != RuntimeDocker:
		return fmt.Errorf("restore.runtime must be %q or %q, got %q", RuntimeProcess, RuntimeDocker, c.Restore.Runtime)
	case c.Policy.VerifyAttempts <= 0:
		return fmt.Errorf("policy.verify_attempts must be positive, got %d", c.Policy.VerifyAttempts)
	case c.Policy.VerifyDelay <= 0:
		return fmt.Errorf("policy.verify_delay must be positive, got %s", c.Policy.VerifyDelay)
	case c.Policy.UploadRetries < 0:
		return fmt.Errorf("policy.upload_retries must not be negative, got %d", c.Policy.UploadRetries)
	case c.Policy.UploadDelay <= 0:
		return fmt.Errorf("policy.upload_delay must be positive, got %s", c.Policy.UploadDelay)
	case c.API.Timeout <= 0:
		return fmt.Errorf("api.timeout must be positive, got %s", c.API.Timeout)
	}
	for key, url := range map[string]string{
		"api.dashboard_url": c.API.DashboardURL,
		"api.parse_url":     c.API.ParseURL,
		"api.files_url":     c.API.FilesURL,
	} {
		if url == "" {
			return fmt.Errorf("%s is required", key)
		}
	}
	return nil
}

// defaultToolsDir is the mongodb directory shipped next to the executable.
func defaultToolsDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "mongodb"
	}
	return filepath.Join(filepath.Dir(exe), "mongodb")
}
