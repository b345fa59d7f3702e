// Package config loads the plantuml CLI settings.
//
// Settings come from three layers, later ones winning: built-in defaults,
// a TOML file (config.toml in the user config directory, or --config), and
// PLANTUML_* environment variables. Command-line flags are applied on top by
// the cli package.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/plantuml/pkg/client"
	"github.com/matzehuels/plantuml/pkg/errors"
)

const (
	appName = "plantuml"

	// DefaultCacheTTL is how long rendered images are reused.
	DefaultCacheTTL = 30 * 24 * time.Hour
)

// Duration is a time.Duration written as a string such as "60s" in TOML.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Config is the file representation of the CLI settings.
type Config struct {
	Server    string            `toml:"server"`
	Timeout   Duration          `toml:"timeout"`
	UserAgent string            `toml:"user_agent"`
	Retries   int               `toml:"retries"`
	OutputDir string            `toml:"output_dir"`
	Ext       string            `toml:"ext"`
	Headers   map[string]string `toml:"headers"`
	BasicAuth *BasicAuth        `toml:"basic_auth"`
	FormAuth  *FormAuth         `toml:"form_auth"`
	Cache     CacheConfig       `toml:"cache"`
}

// BasicAuth mirrors client.BasicAuth.
type BasicAuth struct {
	Username string `toml:"username"`
	Password string `toml:"password"`
}

// FormAuth mirrors client.FormAuth.
type FormAuth struct {
	URL     string            `toml:"url"`
	Method  string            `toml:"method"`
	Body    map[string]string `toml:"body"`
	Headers map[string]string `toml:"headers"`
}

// CacheConfig selects and tunes the image cache.
type CacheConfig struct {
	Enabled  bool     `toml:"enabled"`
	TTL      Duration `toml:"ttl"`
	Dir      string   `toml:"dir"`
	RedisURL string   `toml:"redis_url"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Server:  client.DefaultBaseURL,
		Timeout: Duration(client.DefaultTimeout),
		Ext:     client.DefaultExt,
		Cache: CacheConfig{
			Enabled: true,
			TTL:     Duration(DefaultCacheTTL),
		},
	}
}

// DefaultPath returns the config file location using the XDG convention
// (~/.config/plantuml/config.toml).
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Load reads the TOML file at path over the defaults, then applies
// environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, cfg); err != nil {
				return nil, errors.Wrap(errors.ErrCodeConfiguration, err, "reading config %s", path)
			}
		} else if !os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeConfiguration, err, "accessing config %s", path)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays PLANTUML_* variables.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("PLANTUML_SERVER"); ok && v != "" {
		c.Server = v
	}
	if v, ok := lookup("PLANTUML_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.Wrap(errors.ErrCodeConfiguration, err, "PLANTUML_TIMEOUT")
		}
		c.Timeout = Duration(d)
	}
	if v, ok := lookup("PLANTUML_RETRIES"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrap(errors.ErrCodeConfiguration, err, "PLANTUML_RETRIES")
		}
		c.Retries = n
	}
	if v, ok := lookup("PLANTUML_USERNAME"); ok && v != "" {
		if c.BasicAuth == nil {
			c.BasicAuth = &BasicAuth{}
		}
		c.BasicAuth.Username = v
	}
	if v, ok := lookup("PLANTUML_PASSWORD"); ok && c.BasicAuth != nil {
		c.BasicAuth.Password = v
	}
	if v, ok := lookup("PLANTUML_REDIS_URL"); ok && v != "" {
		c.Cache.RedisURL = v
	}
	if v, ok := lookup("PLANTUML_NO_CACHE"); ok && v != "" && v != "0" && v != "false" {
		c.Cache.Enabled = false
	}
	return nil
}

// Validate checks the settings, including the derived client configuration.
func (c *Config) Validate() error {
	if c.Timeout < 0 {
		return errors.New(errors.ErrCodeConfiguration, "timeout must be non-negative")
	}
	if c.Cache.TTL < 0 {
		return errors.New(errors.ErrCodeConfiguration, "cache ttl must be non-negative")
	}
	cfg := c.ClientConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = client.DefaultBaseURL
	}
	return cfg.Validate()
}

// ClientConfig converts the file settings into a client configuration.
func (c *Config) ClientConfig() client.Config {
	cfg := client.Config{
		BaseURL:   c.Server,
		Timeout:   time.Duration(c.Timeout),
		UserAgent: c.UserAgent,
		Headers:   c.Headers,
		Retries:   c.Retries,
	}
	if c.BasicAuth != nil {
		cfg.BasicAuth = &client.BasicAuth{Username: c.BasicAuth.Username, Password: c.BasicAuth.Password}
	}
	if c.FormAuth != nil {
		cfg.FormAuth = &client.FormAuth{
			URL:     c.FormAuth.URL,
			Method:  c.FormAuth.Method,
			Body:    c.FormAuth.Body,
			Headers: c.FormAuth.Headers,
		}
	}
	return cfg
}

// String renders the settings as TOML with secrets masked.
func (c *Config) String() string {
	masked := *c
	if c.BasicAuth != nil {
		ba := *c.BasicAuth
		if ba.Password != "" {
			ba.Password = "********"
		}
		masked.BasicAuth = &ba
	}
	if c.FormAuth != nil {
		fa := *c.FormAuth
		fa.Body = make(map[string]string, len(c.FormAuth.Body))
		for k := range c.FormAuth.Body {
			fa.Body[k] = "********"
		}
		masked.FormAuth = &fa
	}
	var sb strings.Builder
	if err := toml.NewEncoder(&sb).Encode(masked); err != nil {
		return fmt.Sprintf("<unprintable config: %v>", err)
	}
	return sb.String()
}
