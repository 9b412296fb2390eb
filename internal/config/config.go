// Package config loads settings for the dashboard, the CLI and the dev
// backend.
//
// Sources, lowest to highest priority: built-in defaults, the YAML config
// file, a .env file in the working directory, then COMPLAINT_DESK_*
// environment variables. Command-line flags are applied on top by the cli
// package.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const EnvPrefix = "COMPLAINT_DESK_"

// Output formats accepted by the CLI.
const (
	FormatTable = "table"
	FormatJSON  = "json"
)

type Config struct {
	ServerURL       string        `yaml:"server_url"`
	Email           string        `yaml:"email"`
	Password        string        `yaml:"password"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	NotificationTTL time.Duration `yaml:"notification_ttl"`
	LogFile         string        `yaml:"log_file"`
	LogLevel        string        `yaml:"log_level"`
	ListenAddr      string        `yaml:"listen_addr"`
	DBPath          string        `yaml:"db_path"`
	SessionSecret   string        `yaml:"session_secret"`
	Format          string        `yaml:"format"`
}

// Dir is the per-user configuration directory.
func Dir() string {
	if d, err := os.UserConfigDir(); err == nil && d != "" {
		return filepath.Join(d, "complaint-desk")
	}
	return ".complaint-desk"
}

func DefaultPath() string { return filepath.Join(Dir(), "config.yaml") }

// SessionPath is where the CLI keeps the backend session token between runs.
func SessionPath() string { return filepath.Join(Dir(), "session") }

func Defaults() Config {
	return Config{
		ServerURL:       "http://127.0.0.1:5000",
		RequestTimeout:  15 * time.Second,
		NotificationTTL: 4 * time.Second,
		LogLevel:        "info",
		ListenAddr:      "127.0.0.1:5000",
		DBPath:          filepath.Join(Dir(), "desk.sqlite"),
		Format:          FormatTable,
	}
}

type LoadOptions struct {
	// Path of the YAML file. Empty means DefaultPath, which may be absent.
	Path string
	// EnvFile is the dotenv file to overlay. Empty means ".env"; a missing
	// file is ignored.
	EnvFile string
	// Getenv defaults to os.Getenv.
	Getenv func(string) string
}

// Load builds a Config from every source and validates it.
func Load(opts LoadOptions) (Config, error) {
	cfg := Defaults()

	path := strings.TrimSpace(opts.Path)
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}

	envFile := strings.TrimSpace(opts.EnvFile)
	if envFile == "" {
		envFile = ".env"
	}
	dotenv, err := godotenv.Read(envFile)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("config: reading %s: %w", envFile, err)
	}
	if err := applyEnv(&cfg, func(k string) string { return dotenv[k] }); err != nil {
		return Config{}, err
	}

	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	if err := applyEnv(&cfg, getenv); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: validation: %w", err)
	}
	return cfg, nil
}

// Validate checks value ranges. Credentials are not required here; commands
// that need them check for themselves.
func (c Config) Validate() error {
	var errs []string
	if strings.TrimSpace(c.ServerURL) == "" {
		errs = append(errs, "server_url is required")
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, "request_timeout must be positive")
	}
	if c.NotificationTTL <= 0 {
		errs = append(errs, "notification_ttl must be positive")
	}
	switch c.Format {
	case FormatTable, FormatJSON:
	default:
		errs = append(errs, fmt.Sprintf("format must be %q or %q", FormatTable, FormatJSON))
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, "log_level must be one of debug, info, warn, error")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func applyEnv(cfg *Config, getenv func(string) string) error {
	str := map[string]*string{
		"SERVER_URL":     &cfg.ServerURL,
		"EMAIL":          &cfg.Email,
		"PASSWORD":       &cfg.Password,
		"LOG_FILE":       &cfg.LogFile,
		"LOG_LEVEL":      &cfg.LogLevel,
		"LISTEN_ADDR":    &cfg.ListenAddr,
		"DB_PATH":        &cfg.DBPath,
		"SESSION_SECRET": &cfg.SessionSecret,
		"FORMAT":         &cfg.Format,
	}
	for k, dst := range str {
		if v := strings.TrimSpace(getenv(EnvPrefix + k)); v != "" {
			*dst = v
		}
	}
	dur := map[string]*time.Duration{
		"REQUEST_TIMEOUT":  &cfg.RequestTimeout,
		"NOTIFICATION_TTL": &cfg.NotificationTTL,
	}
	for k, dst := range dur {
		v := strings.TrimSpace(getenv(EnvPrefix + k))
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: %s%s: %w", EnvPrefix, k, err)
		}
		*dst = d
	}
	return nil
}
