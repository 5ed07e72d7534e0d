package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// File names looked up by Load.
const (
	FileName    = ".offercrm.yaml"
	EnvFileName = ".env"
	appDir      = "offercrm"
)

// Defaults.
const (
	DefaultBackend      = "airtable"
	DefaultCacheTTL     = 60 * time.Second
	DefaultTimeout      = 15 * time.Second
	DefaultLocale       = "en"
	DefaultHighPriority = 8.0
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "text"
	DefaultSQLitePath   = "offercrm.db"
)

// Config is the resolved application configuration.
type Config struct {
	Backend   string            `yaml:"backend"`
	Airtable  AirtableConfig    `yaml:"airtable"`
	Notion    NotionConfig      `yaml:"notion"`
	SQLite    SQLiteConfig      `yaml:"sqlite"`
	Columns   map[string]string `yaml:"columns"`
	Cache     CacheConfig       `yaml:"cache"`
	Remote    RemoteConfig      `yaml:"remote"`
	Dashboard DashboardConfig   `yaml:"dashboard"`
	Log       LogConfig         `yaml:"log"`
	Theme     ThemeConfig       `yaml:"theme"`

	// Source is the YAML file that was loaded, empty when none was found.
	Source string `yaml:"-"`
}

// AirtableConfig holds the three Airtable secrets.
type AirtableConfig struct {
	APIKey    string `yaml:"api_key" env:"AIRTABLE_API_KEY" validate:"required"`
	BaseID    string `yaml:"base_id" env:"AIRTABLE_BASE_ID" validate:"required"`
	TableName string `yaml:"table_name" env:"AIRTABLE_TABLE_NAME" validate:"required"`
}

// NotionConfig holds the Notion integration token and database id.
type NotionConfig struct {
	Token      string `yaml:"token" env:"NOTION_TOKEN" validate:"required"`
	DatabaseID string `yaml:"database_id" env:"NOTION_DB_ID" validate:"required"`
}

// SQLiteConfig points at a local database file.
type SQLiteConfig struct {
	Path string `yaml:"path" env:"OFFERCRM_SQLITE_PATH" validate:"required"`
}

type CacheConfig struct {
	TTL time.Duration `yaml:"ttl" validate:"gte=0"`
}

type RemoteConfig struct {
	Timeout time.Duration `yaml:"timeout" validate:"gt=0"`
}

// DashboardConfig tunes the aggregation views.
type DashboardConfig struct {
	Locale            string  `yaml:"locale"`
	HighPriorityScore float64 `yaml:"high_priority_score" validate:"gte=0,lte=10"`
}

// LogConfig configures log/slog.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
	File   string `yaml:"file"`
}

// ThemeConfig is the dashboard palette. Empty fields keep the built-in
// values.
type ThemeConfig struct {
	Colors  ThemeColors  `yaml:"colors"`
	Icons   ThemeIcons   `yaml:"icons"`
	Title   ThemeTitle   `yaml:"title"`
	Spinner ThemeSpinner `yaml:"spinner"`
}

type ThemeColors struct {
	Primary   string `yaml:"primary"`
	Success   string `yaml:"success"`
	Error     string `yaml:"error"`
	Warning   string `yaml:"warning"`
	Muted     string `yaml:"muted"`
	Text      string `yaml:"text"`
	Border    string `yaml:"border"`
	Highlight string `yaml:"highlight"`
}

type ThemeIcons struct {
	Select    string `yaml:"select"`
	Dashboard string `yaml:"dashboard"`
	Inbox     string `yaml:"inbox"`
	Pipeline  string `yaml:"pipeline"`
	Warning   string `yaml:"warning"`
}

type ThemeTitle struct {
	Text       string `yaml:"text"`
	Icon       string `yaml:"icon"`
	Background string `yaml:"background"`
}

type ThemeSpinner struct {
	Frames   string `yaml:"frames"`
	Interval int    `yaml:"interval"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Backend: DefaultBackend,
		SQLite:  SQLiteConfig{Path: DefaultSQLitePath},
		Cache:   CacheConfig{TTL: DefaultCacheTTL},
		Remote:  RemoteConfig{Timeout: DefaultTimeout},
		Dashboard: DashboardConfig{
			Locale:            DefaultLocale,
			HighPriorityScore: DefaultHighPriority,
		},
		Log: LogConfig{Level: DefaultLogLevel, Format: DefaultLogFormat},
	}
}

// Flags are the command-line overrides. Empty values leave the lower
// layers alone.
type Flags struct {
	ConfigPath string
	EnvFile    string
	Backend    string
	Locale     string
	LogLevel   string
}

// Load resolves the configuration from defaults, the YAML file, the .env
// file, the environment and flags, in increasing order of priority, then
// validates it for the selected backend.
func Load(flags Flags) (*Config, error) {
	return load(flags, os.LookupEnv)
}

func load(flags Flags, lookupEnv func(string) (string, bool)) (*Config, error) {
	cfg := Default()

	path := flags.ConfigPath
	if path == "" {
		path = findConfigPath()
	}
	if path != "" {
		if err := cfg.readFile(path, flags.ConfigPath != ""); err != nil {
			return nil, err
		}
	}

	dotenv, err := readEnvFile(flags.EnvFile)
	if err != nil {
		return nil, err
	}
	lookup := func(key string) (string, bool) {
		if v, ok := lookupEnv(key); ok && v != "" {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok && v != ""
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}
	cfg.applyFlags(flags)
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// readFile merges a YAML file onto cfg. A missing file is only an error when
// the path was given explicitly.
func (c *Config) readFile(path string, explicit bool) error {
	// #nosec G304 -- path is the user's --config flag or a fixed lookup location
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return nil
		}
		return &ConfigurationError{Source: path, Err: err}
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return &ConfigurationError{Source: path, Err: fmt.Errorf("parse: %w", err)}
	}
	c.Source = path
	return nil
}

// readEnvFile reads KEY=VALUE pairs without touching the process
// environment, so real environment variables keep priority.
func readEnvFile(path string) (map[string]string, error) {
	explicit := path != ""
	if !explicit {
		path = EnvFileName
	}
	vals, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return map[string]string{}, nil
		}
		return nil, &ConfigurationError{Source: path, Err: err}
	}
	return vals, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"OFFERCRM_BACKEND":     &c.Backend,
		"AIRTABLE_API_KEY":     &c.Airtable.APIKey,
		"AIRTABLE_BASE_ID":     &c.Airtable.BaseID,
		"AIRTABLE_TABLE_NAME":  &c.Airtable.TableName,
		"NOTION_TOKEN":         &c.Notion.Token,
		"NOTION_DB_ID":         &c.Notion.DatabaseID,
		"OFFERCRM_SQLITE_PATH": &c.SQLite.Path,
		"OFFERCRM_LOCALE":      &c.Dashboard.Locale,
		"OFFERCRM_LOG_LEVEL":   &c.Log.Level,
		"OFFERCRM_LOG_FORMAT":  &c.Log.Format,
		"OFFERCRM_LOG_FILE":    &c.Log.File,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}

	durations := map[string]*time.Duration{
		"OFFERCRM_CACHE_TTL": &c.Cache.TTL,
		"OFFERCRM_TIMEOUT":   &c.Remote.Timeout,
	}
	for key, dst := range durations {
		v, ok := lookup(key)
		if !ok {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return &ConfigurationError{Source: key, Err: err}
		}
		*dst = d
	}
	return nil
}

func (c *Config) applyFlags(f Flags) {
	if f.Backend != "" {
		c.Backend = f.Backend
	}
	if f.Locale != "" {
		c.Dashboard.Locale = f.Locale
	}
	if f.LogLevel != "" {
		c.Log.Level = f.LogLevel
	}
}

func (c *Config) normalize() {
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
	c.Airtable.APIKey = strings.TrimSpace(c.Airtable.APIKey)
	c.Notion.Token = strings.TrimSpace(c.Notion.Token)
}

// findConfigPath looks for the config file in the working directory, then
// in the user config directory.
func findConfigPath() string {
	if _, err := os.Stat(FileName); err == nil {
		return FileName
	}

	configHome, err := os.UserConfigDir()
	if err != nil || configHome == "" || configHome == "/" {
		return ""
	}
	xdgPath := filepath.Join(configHome, appDir, FileName)
	if _, err := os.Stat(xdgPath); err == nil {
		return xdgPath
	}
	return ""
}

// StateDir is where the log file goes by default: $XDG_STATE_HOME/offercrm,
// falling back to the user cache directory.
func StateDir() (string, error) {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, appDir), nil
	}
	cache, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("locate state dir: %w", err)
	}
	return filepath.Join(cache, appDir), nil
}
