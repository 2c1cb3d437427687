package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Dir is the per-workspace directory holding config, preferences, logs and the database.
const Dir = ".shopchat"

// Config holds all shopchat configuration.
type Config struct {
	Name string `yaml:"name"`

	// Simulated chatbot behaviour
	Chat ChatConfig `yaml:"chat"`

	// Catalog database
	Store StoreConfig `yaml:"store"`

	// HTTP / WebSocket bridge
	Server ServerConfig `yaml:"server"`

	Logging LoggingConfig `yaml:"logging"`
}

// ChatConfig configures the chat session.
type ChatConfig struct {
	ReplyDelay  string   `yaml:"reply_delay"`
	Responses   []string `yaml:"responses,omitempty"` // empty = built-in set
	Placeholder string   `yaml:"placeholder"`
}

// StoreConfig selects the SQLite driver and database file.
type StoreConfig struct {
	Driver string `yaml:"driver"` // sqlite3 (cgo) or sqlite (pure Go)
	Path   string `yaml:"path"`   // relative paths resolve against the workspace
}

// ServerConfig configures the echo server and WebSocket pumps.
type ServerConfig struct {
	Addr           string `yaml:"addr"`
	ReadTimeout    string `yaml:"read_timeout"`
	WriteTimeout   string `yaml:"write_timeout"`
	PingInterval   string `yaml:"ping_interval"`
	MaxMessageSize int64  `yaml:"max_message_size"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name: "shopchat",

		Chat: ChatConfig{
			ReplyDelay:  "1s",
			Placeholder: "Type your message…",
		},

		Store: StoreConfig{
			Driver: "sqlite3",
			Path:   filepath.Join(Dir, "shop.db"),
		},

		Server: ServerConfig{
			Addr:           ":8080",
			ReadTimeout:    "60s",
			WriteTimeout:   "10s",
			PingInterval:   "30s",
			MaxMessageSize: 64 * 1024,
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Path returns the config file location for a workspace.
func Path(workspace string) string {
	return filepath.Join(workspace, Dir, "config.yaml")
}

// Load loads configuration from a YAML file. A missing file yields defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("SHOPCHAT_REPLY_DELAY"); v != "" {
		c.Chat.ReplyDelay = v
	}
	if v := os.Getenv("SHOPCHAT_DB_DRIVER"); v != "" {
		c.Store.Driver = v
	}
	if v := os.Getenv("SHOPCHAT_DB_PATH"); v != "" {
		c.Store.Path = v
	}
	if v := os.Getenv("SHOPCHAT_ADDR"); v != "" {
		c.Server.Addr = v
	}
}

// GetReplyDelay returns the simulated reply delay as a duration.
func (c *Config) GetReplyDelay() time.Duration {
	return parseDuration(c.Chat.ReplyDelay, time.Second)
}

// GetReadTimeout returns the WebSocket read deadline.
func (c *Config) GetReadTimeout() time.Duration {
	return parseDuration(c.Server.ReadTimeout, 60*time.Second)
}

// GetWriteTimeout returns the WebSocket write deadline.
func (c *Config) GetWriteTimeout() time.Duration {
	return parseDuration(c.Server.WriteTimeout, 10*time.Second)
}

// GetPingInterval returns the WebSocket keepalive interval.
func (c *Config) GetPingInterval() time.Duration {
	return parseDuration(c.Server.PingInterval, 30*time.Second)
}

// DatabasePath resolves the store path against the workspace.
func (c *Config) DatabasePath(workspace string) string {
	if c.Store.Path == ":memory:" || filepath.IsAbs(c.Store.Path) {
		return c.Store.Path
	}
	return filepath.Join(workspace, c.Store.Path)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return fallback
	}
	return d
}

// ValidDrivers lists the registered SQLite driver names.
var ValidDrivers = []string{"sqlite3", "sqlite"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if _, err := time.ParseDuration(c.Chat.ReplyDelay); err != nil {
		return fmt.Errorf("invalid chat.reply_delay %q: %w", c.Chat.ReplyDelay, err)
	}

	validDriver := false
	for _, d := range ValidDrivers {
		if c.Store.Driver == d {
			validDriver = true
			break
		}
	}
	if !validDriver {
		return fmt.Errorf("invalid store driver: %s (valid: %v)", c.Store.Driver, ValidDrivers)
	}

	if c.Server.MaxMessageSize <= 0 {
		return fmt.Errorf("server.max_message_size must be positive, got %d", c.Server.MaxMessageSize)
	}

	return nil
}
