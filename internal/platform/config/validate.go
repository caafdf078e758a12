package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate ensures the configuration is usable. The base URL is optional
// here because offline commands never reach the backend.
func (c *Config) Validate() error {
	if c.WindowSize < 1 {
		return errors.New("window_size must be at least 1")
	}
	switch c.AnchorStore {
	case AnchorStoreSQLite, AnchorStoreFile, AnchorStoreMemory:
	default:
		return fmt.Errorf("anchor_store must be one of sqlite, file, memory (got %q)", c.AnchorStore)
	}
	if c.RequestTimeoutSeconds < 1 {
		return errors.New("request_timeout_seconds must be positive")
	}
	switch c.LogFormat {
	case "text", "console", "json":
	default:
		return fmt.Errorf("log_format must be text or json (got %q)", c.LogFormat)
	}
	if c.BaseURL != "" {
		u, err := url.Parse(c.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("base_url must be an absolute http(s) url (got %q)", c.BaseURL)
		}
	}
	return nil
}
