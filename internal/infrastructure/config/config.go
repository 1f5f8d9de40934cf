package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for wardrive-core.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Converter ConverterConfig `yaml:"converter"`
	Database  DatabaseConfig  `yaml:"database"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	API       APIConfig       `yaml:"api"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ConverterConfig controls format detection and table output.
type ConverterConfig struct {
	// SampleSize is the number of leading bytes inspected by the classifier.
	SampleSize int `yaml:"sample_size"`

	// Delimiter selects the output separator: "comma", "tab" or "semicolon".
	Delimiter string `yaml:"delimiter"`

	// OutputDir is the default folder-mode output directory.
	// Empty means "<input folder>/converted".
	OutputDir string `yaml:"output_dir"`

	// Merge combines every converted file of a folder into one table.
	Merge bool `yaml:"merge"`

	// Recursive scans subfolders in folder mode.
	Recursive bool `yaml:"recursive"`

	// ProgressEvery logs a progress line every N written rows. 0 disables it.
	ProgressEvery int `yaml:"progress_every"`

	// InputDir is the only folder remote convert commands may read from.
	// Their tables are written to OutputDir, or "<InputDir>/converted".
	// Empty disables remote convert commands.
	InputDir string `yaml:"input_dir"`
}

// CommandOutputDir is where tables requested by remote convert commands go.
func (c ConverterConfig) CommandOutputDir() string {
	if c.OutputDir != "" {
		return c.OutputDir
	}
	if c.InputDir == "" {
		return ""
	}
	return filepath.Join(c.InputDir, "converted")
}

// DatabaseConfig contains SQLite catalog settings.
type DatabaseConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host        string           `yaml:"host"`
	Port        int              `yaml:"port"`
	Timeouts    APITimeoutConfig `yaml:"timeouts"`
	MaxUploadMB int              `yaml:"max_upload_mb"`
}

// APITimeoutConfig contains HTTP timeout settings.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Supported output delimiters.
const (
	DelimiterComma     = "comma"
	DelimiterTab       = "tab"
	DelimiterSemicolon = "semicolon"
)

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: WARDRIVE_SECTION_KEY
// For example: WARDRIVE_DATABASE_PATH, WARDRIVE_MQTT_HOST
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Defaults returns the built-in configuration with environment overrides
// applied. Used when no config file is given.
func Defaults() *Config {
	cfg := defaultConfig()
	applyEnvOverrides(cfg)
	return cfg
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Converter: ConverterConfig{
			SampleSize:    512,
			Delimiter:     DelimiterComma,
			ProgressEvery: 1000,
		},
		Database: DatabaseConfig{
			Enabled:     false,
			Path:        "./data/wardrive.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Enabled: false,
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "wardrive-core",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		API: APIConfig{
			Host: "127.0.0.1",
			Port: 8090,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 60,
				Idle:  60,
			},
			MaxUploadMB: 50,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: WARDRIVE_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Converter
	if v := os.Getenv("WARDRIVE_CONVERTER_DELIMITER"); v != "" {
		cfg.Converter.Delimiter = v
	}
	if v := os.Getenv("WARDRIVE_CONVERTER_OUTPUT_DIR"); v != "" {
		cfg.Converter.OutputDir = v
	}
	if v := os.Getenv("WARDRIVE_CONVERTER_INPUT_DIR"); v != "" {
		cfg.Converter.InputDir = v
	}

	// Database
	if v := os.Getenv("WARDRIVE_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
		cfg.Database.Enabled = true
	}

	// MQTT
	if v := os.Getenv("WARDRIVE_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
		cfg.MQTT.Enabled = true
	}
	if v := os.Getenv("WARDRIVE_MQTT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.MQTT.Broker.Port = port
		}
	}
	if v := os.Getenv("WARDRIVE_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("WARDRIVE_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// API
	if v := os.Getenv("WARDRIVE_API_HOST"); v != "" {
		cfg.API.Host = v
	}

	// InfluxDB
	if v := os.Getenv("WARDRIVE_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	// Logging
	if v := os.Getenv("WARDRIVE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []string

	if c.Converter.SampleSize < 1 {
		errs = append(errs, "converter.sample_size must be positive")
	}
	switch strings.ToLower(c.Converter.Delimiter) {
	case DelimiterComma, DelimiterTab, DelimiterSemicolon:
	default:
		errs = append(errs, "converter.delimiter must be comma, tab or semicolon")
	}
	if c.Converter.ProgressEvery < 0 {
		errs = append(errs, "converter.progress_every cannot be negative")
	}

	if c.Database.Enabled && c.Database.Path == "" {
		errs = append(errs, "database.path is required when the catalog is enabled")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.Enabled && c.MQTT.Broker.Host == "" {
		errs = append(errs, "mqtt.broker.host is required when mqtt is enabled")
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}
	if c.API.MaxUploadMB < 1 {
		errs = append(errs, "api.max_upload_mb must be positive")
	}

	if c.InfluxDB.Enabled {
		if c.InfluxDB.URL == "" {
			errs = append(errs, "influxdb.url is required when influxdb is enabled")
		}
		if c.InfluxDB.Bucket == "" {
			errs = append(errs, "influxdb.bucket is required when influxdb is enabled")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// DelimiterRune maps the configured delimiter name to its separator rune.
func (c ConverterConfig) DelimiterRune() rune {
	switch strings.ToLower(c.Delimiter) {
	case DelimiterTab:
		return '\t'
	case DelimiterSemicolon:
		return ';'
	default:
		return ','
	}
}

// MaxUploadBytes returns the upload limit in bytes.
func (c APIConfig) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}
