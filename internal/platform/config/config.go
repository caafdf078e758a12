package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	FileName = "segdesk.yaml"

	AnchorStoreSQLite = "sqlite"
	AnchorStoreFile   = "file"
	AnchorStoreMemory = "memory"

	// TokenEnv overrides the bearer token from the config file.
	TokenEnv = "SEGDESK_TOKEN"
)

type Config struct {
	StateDir string `yaml:"-"`
	Path     string `yaml:"-"`

	BaseURL               string   `yaml:"base_url"`
	Token                 string   `yaml:"token"`
	UserID                string   `yaml:"user_id"`
	WindowSize            int      `yaml:"window_size"`
	AnchorStore           string   `yaml:"anchor_store"`
	RequestTimeoutSeconds int      `yaml:"request_timeout_seconds"`
	LogLevel              string   `yaml:"log_level"`
	LogFormat             string   `yaml:"log_format"`
	Emotions              []string `yaml:"emotions"`
	JournalDir            string   `yaml:"journal_dir"`
}

// Overrides carries command-line values; empty fields leave the file value.
type Overrides struct {
	BaseURL    string
	Token      string
	UserID     string
	LogLevel   string
	WindowSize int
}

// DefaultStateDir is <user config dir>/segdesk.
func DefaultStateDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(base, "segdesk"), nil
}

// Load reads path, or <stateDir>/segdesk.yaml when path is empty, on top of
// the defaults. A missing file is not an error.
func Load(stateDir, path string) (Config, error) {
	if strings.TrimSpace(stateDir) == "" {
		return Config{}, fmt.Errorf("state dir is required")
	}
	cfg := Default(stateDir)
	if path == "" {
		path = filepath.Join(stateDir, FileName)
	}
	cfg.Path = path

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if token := strings.TrimSpace(os.Getenv(TokenEnv)); token != "" {
		cfg.Token = token
	}
	cfg.normalize()
	return cfg, nil
}

func (c *Config) Apply(o Overrides) {
	if v := strings.TrimSpace(o.BaseURL); v != "" {
		c.BaseURL = v
	}
	if v := strings.TrimSpace(o.Token); v != "" {
		c.Token = v
	}
	if v := strings.TrimSpace(o.UserID); v != "" {
		c.UserID = v
	}
	if v := strings.TrimSpace(o.LogLevel); v != "" {
		c.LogLevel = v
	}
	if o.WindowSize > 0 {
		c.WindowSize = o.WindowSize
	}
	c.normalize()
}

func (c *Config) normalize() {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	c.AnchorStore = strings.ToLower(strings.TrimSpace(c.AnchorStore))
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	emotions := c.Emotions[:0]
	for _, e := range c.Emotions {
		if e = strings.TrimSpace(e); e != "" {
			emotions = append(emotions, e)
		}
	}
	c.Emotions = emotions
}

func (c Config) DBPath() string { return filepath.Join(c.StateDir, "segdesk.db") }

func (c Config) AnchorFilePath() string { return filepath.Join(c.StateDir, "anchor.json") }

func (c Config) LockPath() string { return filepath.Join(c.StateDir, "segdesk.lock") }

func (c Config) LogPath() string { return filepath.Join(c.StateDir, "logs", "segdesk.log") }

func (c Config) JournalPath() string {
	if c.JournalDir != "" {
		return c.JournalDir
	}
	return filepath.Join(c.StateDir, "journal")
}

func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// Redacted returns a copy safe to print.
func (c Config) Redacted() Config {
	if c.Token != "" {
		c.Token = "********"
	}
	return c
}

// Marshal renders the config as yaml.
func (c Config) Marshal() (string, error) {
	raw, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}
	return string(raw), nil
}
