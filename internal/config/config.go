// Package config loads run options from a yaml file, the environment, and
// flag overrides applied by the command layer.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"gopkg.in/yaml.v3"
)

// envPrefix namespaces the credential environment variables, e.g.
// BANKSYNC_SOURCE_USERNAME.
const envPrefix = "BANKSYNC_"

// dateFormat is the accepted format for an explicit sync date.
const dateFormat = "2006-01-02"

// Config is the top-level banksync.yaml configuration.
type Config struct {
	// Bank selects the source adapter from the registry.
	Bank string `yaml:"bank"`
	// Date, when set, overrides the default sync boundary (YYYY-MM-DD).
	Date string `yaml:"date,omitempty"`
	// Headless hides the browser window. 2FA flows usually want it off.
	Headless bool `yaml:"headless"`
	// Interactive asks before each write.
	Interactive bool `yaml:"interactive"`
	// AuditLog, when set, is the CSV file verified writes are appended to.
	AuditLog    string      `yaml:"audit_log,omitempty"`
	Credentials Credentials `yaml:"credentials,omitempty"`
}

// Credentials holds optional inline credentials for both sites. Anything
// left empty is prompted for at run time.
type Credentials struct {
	Source      SiteCredentials `yaml:"source,omitempty"`
	Destination SiteCredentials `yaml:"destination,omitempty"`
}

// SiteCredentials is one site's login pair.
type SiteCredentials struct {
	Username string `yaml:"username,omitempty" koanf:"username"`
	Password string `yaml:"password,omitempty" koanf:"password"`
}

// Default returns the configuration a fresh run starts from.
func Default() *Config {
	return &Config{
		Headless:    true,
		Interactive: true,
	}
}

// Load reads a banksync.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes a Config to a yaml file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// LoadEnvCredentials fills any credential fields still empty from
// BANKSYNC_{SOURCE,DESTINATION}_{USERNAME,PASSWORD}.
func LoadEnvCredentials(cfg *Config) error {
	k := koanf.New(".")
	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", ".")
	}), nil)
	if err != nil {
		return fmt.Errorf("loading environment: %w", err)
	}

	fill := func(dst *SiteCredentials, key string) {
		if dst.Username == "" {
			dst.Username = k.String(key + ".username")
		}
		if dst.Password == "" {
			dst.Password = k.String(key + ".password")
		}
	}
	fill(&cfg.Credentials.Source, "source")
	fill(&cfg.Credentials.Destination, "destination")
	return nil
}

// SyncDate parses the explicit boundary date. The second result is false
// when none is configured.
func (c *Config) SyncDate() (time.Time, bool, error) {
	if c.Date == "" {
		return time.Time{}, false, nil
	}
	t, err := time.ParseInLocation(dateFormat, c.Date, time.Local)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parsing date %q: %w", c.Date, err)
	}
	return t, true, nil
}
