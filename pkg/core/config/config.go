package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	rgerror "github.com/msto63/robogrid/foundation/core/error"
)

// EnvConfigPath names the environment variable holding the config path
const EnvConfigPath = "ROBOGRID_CONFIG"

// Config holds the complete application configuration
type Config struct {
	General GeneralConfig `toml:"general" yaml:"general"`
	Grid    GridConfig    `toml:"grid" yaml:"grid"`
	Engine  EngineConfig  `toml:"engine" yaml:"engine"`
	Journal JournalConfig `toml:"journal" yaml:"journal"`
	Server  ServerConfig  `toml:"server" yaml:"server"`
	TUI     TUIConfig     `toml:"tui" yaml:"tui"`
}

// GeneralConfig holds general application settings
type GeneralConfig struct {
	Name      string `toml:"name" yaml:"name"`
	DataDir   string `toml:"data_dir" yaml:"data_dir"`
	LogLevel  string `toml:"log_level" yaml:"log_level"`
	LogFormat string `toml:"log_format" yaml:"log_format"`
}

// GridConfig holds the board dimensions
type GridConfig struct {
	Width  int `toml:"width" yaml:"width"`
	Height int `toml:"height" yaml:"height"`
}

// EngineConfig holds execution settings
type EngineConfig struct {
	StepDelay Duration `toml:"step_delay" yaml:"step_delay"`
}

// JournalConfig holds the outcome journal settings
type JournalConfig struct {
	Enabled       bool   `toml:"enabled" yaml:"enabled"`
	Path          string `toml:"path" yaml:"path"`
	RetentionDays int    `toml:"retention_days" yaml:"retention_days"`
}

// ServerConfig holds HTTP and gRPC listener settings
type ServerConfig struct {
	Host            string   `toml:"host" yaml:"host"`
	Port            int      `toml:"port" yaml:"port"`
	GRPCPort        int      `toml:"grpc_port" yaml:"grpc_port"`
	ReadTimeout     Duration `toml:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    Duration `toml:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout Duration `toml:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// TUIConfig holds terminal UI settings
type TUIConfig struct {
	LogFile string `toml:"log_file" yaml:"log_file"`
}

// Duration wraps time.Duration for TOML and YAML parsing
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration as a string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// DefaultConfig returns the configuration used when no file is given
func DefaultConfig() *Config {
	cfg := &Config{Journal: JournalConfig{Enabled: true}}
	cfg.applyDefaults()
	return cfg
}

// Load loads configuration from a TOML or YAML file, chosen by extension
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, rgerror.Newf("config file not found: %s", path).WithCode(rgerror.CodeNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Config{Journal: JournalConfig{Enabled: true}}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		_, err = toml.Decode(string(data), &cfg)
	}
	if err != nil {
		return nil, rgerror.Wrap(err, "failed to parse config").WithCode(rgerror.CodeInvalidConfig)
	}

	cfg.applyDefaults()
	cfg.expandEnvVars()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromEnv loads from $ROBOGRID_CONFIG or the default locations. Without
// any file the defaults are returned.
func LoadFromEnv() (*Config, error) {
	path := os.Getenv(EnvConfigPath)
	if path == "" {
		for _, p := range DefaultPaths() {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}
	if path == "" {
		return DefaultConfig(), nil
	}
	return Load(path)
}

// DefaultPaths lists the locations searched by LoadFromEnv
func DefaultPaths() []string {
	return []string{
		"./configs/robogrid.toml",
		"./robogrid.toml",
		"./robogrid.yaml",
		filepath.Join(os.Getenv("HOME"), ".config/robogrid/config.toml"),
	}
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	if c.General.Name == "" {
		c.General.Name = "robogrid"
	}
	if c.General.DataDir == "" {
		c.General.DataDir = "./data"
	}
	if c.General.LogLevel == "" {
		c.General.LogLevel = "info"
	}
	if c.General.LogFormat == "" {
		c.General.LogFormat = "text"
	}

	if c.Grid.Width == 0 {
		c.Grid.Width = 15
	}
	if c.Grid.Height == 0 {
		c.Grid.Height = 15
	}

	if c.Engine.StepDelay.Duration == 0 {
		c.Engine.StepDelay.Duration = 500 * time.Millisecond
	}

	if c.Journal.Path == "" {
		c.Journal.Path = filepath.Join(c.General.DataDir, "journal.db")
	}
	if c.Journal.RetentionDays == 0 {
		c.Journal.RetentionDays = 30
	}

	if c.Server.Host == "" {
		c.Server.Host = "127.0.0.1"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8420
	}
	if c.Server.GRPCPort == 0 {
		c.Server.GRPCPort = 9420
	}
	if c.Server.ReadTimeout.Duration == 0 {
		c.Server.ReadTimeout.Duration = 15 * time.Second
	}
	if c.Server.WriteTimeout.Duration == 0 {
		c.Server.WriteTimeout.Duration = 15 * time.Second
	}
	if c.Server.ShutdownTimeout.Duration == 0 {
		c.Server.ShutdownTimeout.Duration = 5 * time.Second
	}

	if c.TUI.LogFile == "" {
		c.TUI.LogFile = filepath.Join(c.General.DataDir, "robogrid-tui.log")
	}
}

// expandEnvVars expands environment variables in path values
func (c *Config) expandEnvVars() {
	c.General.DataDir = os.ExpandEnv(c.General.DataDir)
	c.Journal.Path = os.ExpandEnv(c.Journal.Path)
	c.TUI.LogFile = os.ExpandEnv(c.TUI.LogFile)
}

// Validate checks values that defaults cannot repair
func (c *Config) Validate() error {
	invalid := func(format string, args ...interface{}) error {
		return rgerror.Newf(format, args...).WithCode(rgerror.CodeInvalidConfig)
	}
	if c.Grid.Width < 1 || c.Grid.Height < 1 {
		return invalid("grid size must be positive, got %dx%d", c.Grid.Width, c.Grid.Height)
	}
	if c.Engine.StepDelay.Duration < 0 {
		return invalid("engine.step_delay must not be negative")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return invalid("server.port out of range: %d", c.Server.Port)
	}
	if c.Server.GRPCPort < 1 || c.Server.GRPCPort > 65535 {
		return invalid("server.grpc_port out of range: %d", c.Server.GRPCPort)
	}
	if c.Server.GRPCPort == c.Server.Port {
		return invalid("server.port and server.grpc_port must differ")
	}
	if c.Journal.RetentionDays < 0 {
		return invalid("journal.retention_days must not be negative")
	}
	return nil
}

// HTTPAddress returns host:port of the HTTP API
func (c *Config) HTTPAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// GRPCAddress returns host:port of the gRPC health endpoint
func (c *Config) GRPCAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.GRPCPort)
}
