package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

const (
	dirName        = ".eagleeye"
	dbFileName     = "operations.db"
	configFileName = "config.toml"
	slotsDirName   = "slots"
	envPath        = "EAGLEEYE_PATH"
)

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
)

// Config holds resolved configuration for the data directory and database.
type Config struct {
	Dir        string // resolved .eagleeye directory path
	DBPath     string // full path to operations.db
	ConfigPath string // full path to config.toml
	EnvVarSet  bool   // whether EAGLEEYE_PATH was used
	Settings   Settings
}

// Settings is the contents of config.toml.
type Settings struct {
	Storage StorageSettings `toml:"storage" json:"storage"`
	Images  ImageSettings   `toml:"images" json:"images"`
	Export  ExportSettings  `toml:"export" json:"export"`
}

type StorageSettings struct {
	Backend    string `toml:"backend" json:"backend"`
	QuotaBytes int64  `toml:"quota_bytes" json:"quota_bytes"` // 0 disables the limit
}

type ImageSettings struct {
	MaxWidth  int    `toml:"max_width" json:"max_width"`
	MaxHeight int    `toml:"max_height" json:"max_height"`
	Quality   int    `toml:"quality" json:"quality"`
	Timeout   string `toml:"timeout" json:"timeout"`
}

type ExportSettings struct {
	Dir string `toml:"dir" json:"dir"` // empty means the working directory
}

// DefaultSettings returns the settings used when config.toml is absent.
func DefaultSettings() Settings {
	return Settings{
		Storage: StorageSettings{
			Backend:    BackendSQLite,
			QuotaBytes: 5 << 20,
		},
		Images: ImageSettings{
			MaxWidth:  400,
			MaxHeight: 400,
			Quality:   70,
			Timeout:   "5s",
		},
	}
}

// Resolve returns the current configuration by checking EAGLEEYE_PATH first,
// then falling back to $PWD/.eagleeye. Settings are read from config.toml
// when it exists.
func Resolve() (*Config, error) {
	var dir string
	var envVarSet bool

	if p := os.Getenv(envPath); p != "" {
		dir = p
		envVarSet = true
	} else {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(cwd, dirName)
	}

	cfg := &Config{
		Dir:        dir,
		DBPath:     filepath.Join(dir, dbFileName),
		ConfigPath: filepath.Join(dir, configFileName),
		EnvVarSet:  envVarSet,
	}

	settings, err := LoadSettings(cfg.ConfigPath)
	if err != nil {
		return nil, err
	}
	cfg.Settings = settings
	return cfg, nil
}

// LoadSettings reads path over the defaults. A missing file yields the
// defaults unchanged.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("failed to read config: %w", err)
	}

	if err := toml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return s, fmt.Errorf("invalid %s: %w", path, err)
	}
	return s, nil
}

// Validate reports the first setting that is out of range.
func (s Settings) Validate() error {
	switch s.Storage.Backend {
	case BackendSQLite, BackendFile:
	default:
		return fmt.Errorf("storage.backend must be %q or %q, got %q", BackendSQLite, BackendFile, s.Storage.Backend)
	}
	if s.Storage.QuotaBytes < 0 {
		return fmt.Errorf("storage.quota_bytes must not be negative")
	}
	if s.Images.MaxWidth <= 0 || s.Images.MaxHeight <= 0 {
		return fmt.Errorf("images.max_width and images.max_height must be positive")
	}
	if s.Images.Quality < 1 || s.Images.Quality > 100 {
		return fmt.Errorf("images.quality must be between 1 and 100, got %d", s.Images.Quality)
	}
	if _, err := s.ImageTimeout(); err != nil {
		return err
	}
	return nil
}

// ImageTimeout parses the images.timeout setting.
func (s Settings) ImageTimeout() (time.Duration, error) {
	d, err := time.ParseDuration(s.Images.Timeout)
	if err != nil {
		return 0, fmt.Errorf("images.timeout: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("images.timeout must be positive")
	}
	return d, nil
}

// SlotsDir is where the file backend keeps its slots.
func (c *Config) SlotsDir() string {
	return filepath.Join(c.Dir, slotsDirName)
}

// ExportDir returns the configured export directory, or the working
// directory when none is set.
func (c *Config) ExportDir() string {
	if c.Settings.Export.Dir != "" {
		return c.Settings.Export.Dir
	}
	if cwd, err := os.Getwd(); err == nil {
		return cwd
	}
	return "."
}

// Exists checks if the data directory and its config file both exist.
// It returns an error for non-existence failures (e.g. permission errors).
func (c *Config) Exists() (bool, error) {
	for _, p := range []string{c.Dir, c.ConfigPath} {
		if _, err := os.Stat(p); err != nil {
			if os.IsNotExist(err) {
				return false, nil
			}
			return false, err
		}
	}
	return true, nil
}

// Save writes the current settings to config.toml, creating the data
// directory if needed.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", c.Dir, err)
	}
	data, err := toml.Marshal(c.Settings)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(c.ConfigPath, data, 0o644)
}
