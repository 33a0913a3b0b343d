// Package config loads application configuration from defaults, an optional
// TOML file, and RFDPANEL_* environment variables, in that order of precedence.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment variable Load reads.
const EnvPrefix = "RFDPANEL_"

// ConfigFileEnv names a TOML config file when Load is given no path.
const ConfigFileEnv = EnvPrefix + "CONFIG_FILE"

// Config holds the application configuration.
type Config struct {
	GitHubToken  string
	RFDAPIURL    string
	RFDAPIToken  string
	RFDAPIRPS    float64
	ListenAddr   string
	DBPath       string
	CacheTTL     time.Duration
	PollInterval time.Duration
}

// HasGitHubToken reports whether GitHub requests are authenticated. Without a
// token the client runs at the anonymous rate limit.
func (c *Config) HasGitHubToken() bool {
	return c.GitHubToken != ""
}

func defaults() map[string]any {
	return map[string]any{
		"github_token":  "",
		"rfd_api_url":   "https://rfd-api.example.com",
		"rfd_api_token": "",
		"rfd_api_rps":   "10",
		"listen_addr":   "127.0.0.1:8080",
		"db_path":       "rfdpanel.db",
		"cache_ttl":     "2m",
		"poll_interval": "5m",
	}
}

// Load builds a validated Config. path names a TOML file; when empty,
// RFDPANEL_CONFIG_FILE is consulted, and when that is unset too no file is
// read. Environment variables such as RFDPANEL_CACHE_TTL override the file.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path == "" {
		path = os.Getenv(ConfigFileEnv)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	cfg := &Config{
		GitHubToken: k.String("github_token"),
		RFDAPIURL:   strings.TrimRight(k.String("rfd_api_url"), "/"),
		RFDAPIToken: k.String("rfd_api_token"),
		ListenAddr:  k.String("listen_addr"),
		DBPath:      k.String("db_path"),
	}

	if cfg.RFDAPIURL == "" {
		return nil, fmt.Errorf("rfd_api_url must not be empty")
	}

	rps := k.String("rfd_api_rps")
	cfg.RFDAPIRPS, err = strconv.ParseFloat(rps, 64)
	if err != nil || cfg.RFDAPIRPS <= 0 {
		return nil, fmt.Errorf("rfd_api_rps has invalid rate %q: must be a positive number", rps)
	}

	if cfg.CacheTTL, err = positiveDuration(k, "cache_ttl"); err != nil {
		return nil, err
	}
	if cfg.PollInterval, err = positiveDuration(k, "poll_interval"); err != nil {
		return nil, err
	}

	return cfg, nil
}

func positiveDuration(k *koanf.Koanf, key string) (time.Duration, error) {
	v := k.String(key)
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s has invalid duration %q: %w", key, v, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, v)
	}
	return d, nil
}
