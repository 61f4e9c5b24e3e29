package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/BurntSushi/toml"
	log "github.com/sirupsen/logrus"

	"github.com/lu-zhengda/aliases/internal/chat"
)

// Config holds all aliases configuration.
type Config struct {
	API     APIConfig     `toml:"api"`
	UI      UIConfig      `toml:"ui"`
	Command CommandConfig `toml:"command"`
	Lobby   LobbyConfig   `toml:"lobby"`
	Server  ServerConfig  `toml:"server"`
	Log     LogConfig     `toml:"log"`
}

// APIConfig points at the identity service.
type APIConfig struct {
	ProfilesURL string `toml:"profiles_url"`
	HistoryURL  string `toml:"history_url"`
	Timeout     string `toml:"timeout"`
}

// UIConfig holds report rendering settings.
type UIConfig struct {
	Format   string `toml:"format"`
	Order    string `toml:"order"`
	Timezone string `toml:"timezone"`
}

// CommandConfig controls the permission gate on the aliases command. An
// empty Permission registers the ungated variant.
type CommandConfig struct {
	Permission        string `toml:"permission"`
	PermissionDefault bool   `toml:"permission_default"`
}

// LobbyConfig holds lobby listener settings.
type LobbyConfig struct {
	Listen       string `toml:"listen"`
	Color        bool   `toml:"color"`
	WriteTimeout string `toml:"write_timeout"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	HTTPAddr string `toml:"http_addr"`
}

// LogConfig holds logrus settings.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

const defaultAPIURL = "https://api.mojang.com"

func defaults() Config {
	return Config{
		API: APIConfig{
			ProfilesURL: defaultAPIURL,
			HistoryURL:  defaultAPIURL,
		},
		UI: UIConfig{
			Format:   "ansi",
			Order:    "oldest-first",
			Timezone: "UTC",
		},
		Command: CommandConfig{
			Permission:        "aliases.use",
			PermissionDefault: true,
		},
		Lobby: LobbyConfig{
			Listen:       "127.0.0.1:4000",
			Color:        true,
			WriteTimeout: "10s",
		},
		Server: ServerConfig{
			HTTPAddr: "127.0.0.1:8080",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads config from path. If path is empty or missing, returns
// defaults. ALIASES_API_URL overrides both API base URLs.
func Load(path string) (*Config, error) {
	cfg := defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case os.IsNotExist(err):
		default:
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if u := os.Getenv("ALIASES_API_URL"); u != "" {
		cfg.API.ProfilesURL = u
		cfg.API.HistoryURL = u
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail later at runtime.
func (c *Config) Validate() error {
	switch c.UI.Format {
	case "ansi", "plain", "json":
	default:
		return fmt.Errorf("ui.format must be ansi, plain or json, got %q", c.UI.Format)
	}
	if _, err := chat.ParseOrder(c.UI.Order); err != nil {
		return fmt.Errorf("ui.order: %w", err)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.LobbyWriteTimeout(); err != nil {
		return err
	}
	if _, err := c.Timeout(); err != nil {
		return err
	}
	if c.Log.Level != "" {
		if _, err := log.ParseLevel(c.Log.Level); err != nil {
			return fmt.Errorf("log.level: %w", err)
		}
	}
	if strings.TrimSpace(c.API.ProfilesURL) == "" || strings.TrimSpace(c.API.HistoryURL) == "" {
		return fmt.Errorf("api.profiles_url and api.history_url must be set")
	}
	return nil
}

// Location resolves ui.timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.UI.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.UI.Timezone)
	if err != nil {
		return nil, fmt.Errorf("ui.timezone: %w", err)
	}
	return loc, nil
}

// Timeout parses api.timeout. Empty means no timeout.
func (c *Config) Timeout() (time.Duration, error) {
	if c.API.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.API.Timeout)
	if err != nil {
		return 0, fmt.Errorf("api.timeout: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("api.timeout must not be negative")
	}
	return d, nil
}

// LobbyWriteTimeout parses lobby.write_timeout. Empty means the lobby
// default.
func (c *Config) LobbyWriteTimeout() (time.Duration, error) {
	if c.Lobby.WriteTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Lobby.WriteTimeout)
	if err != nil {
		return 0, fmt.Errorf("lobby.write_timeout: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("lobby.write_timeout must be positive")
	}
	return d, nil
}

// ReportOptions derives chat rendering options. Call after Validate.
func (c *Config) ReportOptions() chat.ReportOptions {
	order, _ := chat.ParseOrder(c.UI.Order)
	loc, err := c.Location()
	if err != nil {
		loc = time.UTC
	}
	return chat.ReportOptions{Location: loc, Order: order}
}

// ConfigDir returns the aliases config directory path.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "aliases")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "aliases")
}

// DataDir returns the aliases data directory path.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "aliases")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "aliases")
}
