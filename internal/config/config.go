package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/ini.v1"

	"github.com/leadpanel/panelctl/internal/constants"
)

// EnvPrefix prefixes every environment override, e.g. PANELCTL_SERVER_BASE_URL.
const EnvPrefix = "PANELCTL"

// Proxy modes.
const (
	ProxyNone   = "no-proxy"
	ProxySystem = "system"
	ProxyBasic  = "basic"
	ProxyNTLM   = "ntlm"
)

// Validation errors.
var (
	ErrMissingBaseURL   = errors.New("server base_url is required")
	ErrInvalidBaseURL   = errors.New("server base_url must be an absolute http(s) URL")
	ErrInvalidTimeout   = errors.New("server timeout_seconds must be between 1 and 600")
	ErrInvalidRetryMax  = errors.New("server retry_max must be between 0 and 10")
	ErrInvalidProxyMode = errors.New("proxy mode must be one of no-proxy, system, basic, ntlm")
	ErrMissingProxyHost = errors.New("proxy host is required for basic and ntlm modes")
	ErrInvalidPageSize  = errors.New("views page_size must be between 1 and 500")
	ErrInvalidSortOrder = errors.New("views sort orders must be ASC or DESC")
	ErrInvalidLogFormat = errors.New("logging format must be console or json")
)

// ServerConfig locates the dashboard backend.
type ServerConfig struct {
	BaseURL        string
	APIToken       string
	TimeoutSeconds int
	RetryMax       int
}

// Timeout returns the per-request timeout.
func (s ServerConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// ProxyConfig selects how outbound requests reach the backend.
type ProxyConfig struct {
	Mode     string
	Host     string
	Port     int
	User     string
	Password string
	NoProxy  string
}

// ViewsConfig holds list defaults. The sort orders are applied when a list
// is sorted by a column it was not sorted by before.
type ViewsConfig struct {
	PageSize           int
	ProspectsSortOrder string
	ActiveSortOrder    string
}

// LoggingConfig controls the stderr logger.
type LoggingConfig struct {
	Level  string
	Format string
}

// Config is the full settings file.
type Config struct {
	Server  ServerConfig
	Proxy   ProxyConfig
	Views   ViewsConfig
	Logging LoggingConfig

	// Path is the file the config was read from, empty if none existed.
	Path string
}

// defaults is keyed the way viper sees the INI file: section.key.
var defaults = map[string]any{
	"server.base_url":            "http://localhost:5000",
	"server.api_token":           "",
	"server.timeout_seconds":     int(constants.HTTPClientTimeout / time.Second),
	"server.retry_max":           0,
	"proxy.mode":                 ProxyNone,
	"proxy.host":                 "",
	"proxy.port":                 8080,
	"proxy.user":                 "",
	"proxy.password":             "",
	"proxy.no_proxy":             "",
	"views.page_size":            constants.DefaultPageSize,
	"views.prospects_sort_order": "DESC",
	"views.active_sort_order":    "ASC",
	"logging.level":              "info",
	"logging.format":             "console",
}

// FlagKeys maps command-line flag names onto config keys. Flags that were
// set on the command line win over the environment and the file.
var FlagKeys = map[string]string{
	"base-url":   "server.base_url",
	"token":      "server.api_token",
	"timeout":    "server.timeout_seconds",
	"retries":    "server.retry_max",
	"proxy-mode": "proxy.mode",
	"page-size":  "views.page_size",
	"log-level":  "logging.level",
	"log-format": "logging.format",
}

// Default returns the built-in configuration.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	return fromViper(v)
}

// Load reads the settings file at path (DefaultConfigPath when empty),
// applies PANELCTL_* environment overrides and then any flags in fs that
// appear in FlagKeys. A missing file is not an error.
func Load(path string, fs *pflag.FlagSet) (*Config, error) {
	if path == "" {
		path = DefaultConfigPath()
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigType("ini")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	found := false
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		found = true
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to stat config file %s: %w", path, err)
	}

	if fs != nil {
		for name, key := range FlagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag --%s: %w", name, err)
				}
			}
		}
	}

	cfg := fromViper(v)
	if found {
		cfg.Path = path
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Server: ServerConfig{
			BaseURL:        strings.TrimRight(strings.TrimSpace(v.GetString("server.base_url")), "/"),
			APIToken:       strings.TrimSpace(v.GetString("server.api_token")),
			TimeoutSeconds: v.GetInt("server.timeout_seconds"),
			RetryMax:       v.GetInt("server.retry_max"),
		},
		Proxy: ProxyConfig{
			Mode:     strings.ToLower(strings.TrimSpace(v.GetString("proxy.mode"))),
			Host:     strings.TrimSpace(v.GetString("proxy.host")),
			Port:     v.GetInt("proxy.port"),
			User:     v.GetString("proxy.user"),
			Password: v.GetString("proxy.password"),
			NoProxy:  v.GetString("proxy.no_proxy"),
		},
		Views: ViewsConfig{
			PageSize:           v.GetInt("views.page_size"),
			ProspectsSortOrder: strings.ToUpper(v.GetString("views.prospects_sort_order")),
			ActiveSortOrder:    strings.ToUpper(v.GetString("views.active_sort_order")),
		},
		Logging: LoggingConfig{
			Level:  strings.ToLower(v.GetString("logging.level")),
			Format: strings.ToLower(v.GetString("logging.format")),
		},
	}
}

// Validate checks the config for errors.
func (c *Config) Validate() error {
	if c.Server.BaseURL == "" {
		return ErrMissingBaseURL
	}
	u, err := url.Parse(c.Server.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidBaseURL
	}
	if c.Server.TimeoutSeconds < 1 || c.Server.TimeoutSeconds > 600 {
		return ErrInvalidTimeout
	}
	if c.Server.RetryMax < 0 || c.Server.RetryMax > 10 {
		return ErrInvalidRetryMax
	}

	switch c.Proxy.Mode {
	case "", ProxyNone, ProxySystem:
	case ProxyBasic, ProxyNTLM:
		if c.Proxy.Host == "" {
			return ErrMissingProxyHost
		}
	default:
		return ErrInvalidProxyMode
	}

	if c.Views.PageSize < 1 || c.Views.PageSize > constants.MaxPageSize {
		return ErrInvalidPageSize
	}
	for _, o := range []string{c.Views.ProspectsSortOrder, c.Views.ActiveSortOrder} {
		if o != "ASC" && o != "DESC" {
			return ErrInvalidSortOrder
		}
	}
	if c.Logging.Format != "console" && c.Logging.Format != "json" {
		return ErrInvalidLogFormat
	}
	return nil
}

// MaskedToken returns the token with all but its last four characters hidden.
func (c *Config) MaskedToken() string {
	t := c.Server.APIToken
	if t == "" {
		return "(not set)"
	}
	if len(t) <= 4 {
		return strings.Repeat("*", len(t))
	}
	return strings.Repeat("*", len(t)-4) + t[len(t)-4:]
}

// Save writes cfg to path (DefaultConfigPath when empty). The file is
// written to a temp file, restricted to 0600 and renamed into place.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f := ini.Empty()
	sections := []struct {
		name string
		keys [][2]string
	}{
		{"server", [][2]string{
			{"base_url", cfg.Server.BaseURL},
			{"api_token", cfg.Server.APIToken},
			{"timeout_seconds", strconv.Itoa(cfg.Server.TimeoutSeconds)},
			{"retry_max", strconv.Itoa(cfg.Server.RetryMax)},
		}},
		{"proxy", [][2]string{
			{"mode", cfg.Proxy.Mode},
			{"host", cfg.Proxy.Host},
			{"port", strconv.Itoa(cfg.Proxy.Port)},
			{"user", cfg.Proxy.User},
			{"password", cfg.Proxy.Password},
			{"no_proxy", cfg.Proxy.NoProxy},
		}},
		{"views", [][2]string{
			{"page_size", strconv.Itoa(cfg.Views.PageSize)},
			{"prospects_sort_order", cfg.Views.ProspectsSortOrder},
			{"active_sort_order", cfg.Views.ActiveSortOrder},
		}},
		{"logging", [][2]string{
			{"level", cfg.Logging.Level},
			{"format", cfg.Logging.Format},
		}},
	}
	for _, s := range sections {
		sec, err := f.NewSection(s.name)
		if err != nil {
			return fmt.Errorf("failed to create %s section: %w", s.name, err)
		}
		for _, kv := range s.keys {
			sec.Key(kv[0]).SetValue(kv[1])
		}
	}

	tmpPath := path + ".tmp"
	if err := f.SaveTo(tmpPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := os.Chmod(tmpPath, 0600); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to set config permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// Set assigns one key in section.key form, as used by "config set".
func (c *Config) Set(key, value string) error {
	atoi := func(dst *int) error {
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%s: expected an integer, got %q", key, value)
		}
		*dst = n
		return nil
	}

	switch strings.ToLower(key) {
	case "server.base_url":
		c.Server.BaseURL = strings.TrimRight(strings.TrimSpace(value), "/")
	case "server.api_token":
		c.Server.APIToken = strings.TrimSpace(value)
	case "server.timeout_seconds":
		return atoi(&c.Server.TimeoutSeconds)
	case "server.retry_max":
		return atoi(&c.Server.RetryMax)
	case "proxy.mode":
		c.Proxy.Mode = strings.ToLower(strings.TrimSpace(value))
	case "proxy.host":
		c.Proxy.Host = strings.TrimSpace(value)
	case "proxy.port":
		return atoi(&c.Proxy.Port)
	case "proxy.user":
		c.Proxy.User = value
	case "proxy.password":
		c.Proxy.Password = value
	case "proxy.no_proxy":
		c.Proxy.NoProxy = value
	case "views.page_size":
		return atoi(&c.Views.PageSize)
	case "views.prospects_sort_order":
		c.Views.ProspectsSortOrder = strings.ToUpper(strings.TrimSpace(value))
	case "views.active_sort_order":
		c.Views.ActiveSortOrder = strings.ToUpper(strings.TrimSpace(value))
	case "logging.level":
		c.Logging.Level = strings.ToLower(strings.TrimSpace(value))
	case "logging.format":
		c.Logging.Format = strings.ToLower(strings.TrimSpace(value))
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return nil
}

// Keys lists the keys accepted by Set, in file order.
func Keys() []string {
	return []string{
		"server.base_url", "server.api_token", "server.timeout_seconds", "server.retry_max",
		"proxy.mode", "proxy.host", "proxy.port", "proxy.user", "proxy.password", "proxy.no_proxy",
		"views.page_size", "views.prospects_sort_order", "views.active_sort_order",
		"logging.level", "logging.format",
	}
}
