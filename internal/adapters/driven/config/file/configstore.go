package file

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Default locations.
const (
	DefaultDirName  = ".perplexity-mcp"
	DefaultFileName = "config.toml"
)

// Settings are the values a configuration file may provide.
// A nil field means the key was not present in the file.
type Settings struct {
	Model     *string `toml:"model"`
	BaseURL   *string `toml:"base_url"`
	Timeout   *string `toml:"timeout"`
	Port      *int    `toml:"port"`
	Transport *string `toml:"transport"`
}

// ConfigStore reads server settings from a TOML file.
// The API key is deliberately not a recognised key.
type ConfigStore struct {
	filePath string
	explicit bool
	loaded   bool
	settings Settings
}

// DefaultPath returns ~/.perplexity-mcp/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, DefaultDirName, DefaultFileName), nil
}

// NewConfigStore loads configuration from path.
// If path is empty the default location is used and a missing file is not an error.
// An explicitly named file must exist.
func NewConfigStore(path string) (*ConfigStore, error) {
	s := &ConfigStore{filePath: path, explicit: path != ""}
	if !s.explicit {
		p, err := DefaultPath()
		if err != nil {
			// No home directory: nothing to load.
			return s, nil //nolint:nilerr // default file is optional
		}
		s.filePath = p
	}

	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Load reads and validates the TOML file. Unknown keys are rejected.
func (s *ConfigStore) Load() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !s.explicit {
			s.settings = Settings{}
			s.loaded = false
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}

	var loaded Settings
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&loaded); err != nil {
		return fmt.Errorf("parse config %s: %w", s.filePath, err)
	}

	if loaded.Timeout != nil {
		if _, err := time.ParseDuration(*loaded.Timeout); err != nil {
			return fmt.Errorf("parse config %s: timeout: %w", s.filePath, err)
		}
	}

	s.settings = loaded
	s.loaded = true
	return nil
}

// Loaded reports whether a file was read.
func (s *ConfigStore) Loaded() bool {
	return s.loaded
}

// Settings returns the loaded values.
func (s *ConfigStore) Settings() Settings {
	return s.settings
}

// GetString returns the string value for key, or "" when unset.
func (s *ConfigStore) GetString(key string) string {
	var p *string
	switch key {
	case "model":
		p = s.settings.Model
	case "base_url":
		p = s.settings.BaseURL
	case "timeout":
		p = s.settings.Timeout
	case "transport":
		p = s.settings.Transport
	}
	if p == nil {
		return ""
	}
	return *p
}

// GetInt returns the integer value for key, or 0 when unset.
func (s *ConfigStore) GetInt(key string) int {
	if key == "port" && s.settings.Port != nil {
		return *s.settings.Port
	}
	return 0
}

// GetDuration returns the timeout value, or 0 when unset.
func (s *ConfigStore) GetDuration(key string) time.Duration {
	v := s.GetString(key)
	if v == "" {
		return 0
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0
	}
	return d
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}
