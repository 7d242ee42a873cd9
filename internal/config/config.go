// Package config handles configuration loading, validation, and persistence
// for showtrack.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/caarlos0/env/v11"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/energizer-project/showtrack/internal/util"
)

const (
	DefaultConfigDir  = "config"
	DefaultConfigFile = "config.json"
	// YAMLConfigFile takes precedence over the JSON file when present.
	YAMLConfigFile = "config.yaml"
	// EnvPrefix is prepended to every environment override.
	EnvPrefix = "SHOWTRACK_"

	DefaultServerURL = "wss://sim3.psim.us/showdown/websocket"
	DefaultAPIPort   = 5080
	DefaultMQTTPort  = 8883
	DefaultDBPath    = "data/showtrack.db"
)

// Config is the root configuration structure.
type Config struct {
	mu   sync.RWMutex
	path string

	Server  ServerConfig   `json:"server" yaml:"server" envPrefix:"SERVER_"`
	API     APIConfig      `json:"api" yaml:"api" envPrefix:"API_"`
	MQTT    MQTTConfig     `json:"mqtt" yaml:"mqtt" envPrefix:"MQTT_"`
	Storage StorageConfig  `json:"storage" yaml:"storage" envPrefix:"DB_"`
	Logging util.LogConfig `json:"logging" yaml:"logging" envPrefix:"LOG_"`
}

// ServerConfig is the Showdown connection.
type ServerConfig struct {
	URL   string   `json:"url" yaml:"url" env:"URL"`
	Rooms []string `json:"rooms" yaml:"rooms" env:"ROOMS"`
	// Reconnect backoff bounds, in seconds.
	ReconnectMinSec int `json:"reconnect_min_sec" yaml:"reconnect_min_sec" env:"RECONNECT_MIN_SEC"`
	ReconnectMaxSec int `json:"reconnect_max_sec" yaml:"reconnect_max_sec" env:"RECONNECT_MAX_SEC"`
}

// APIConfig is the HTTP query API.
type APIConfig struct {
	Enabled        bool     `json:"enabled" yaml:"enabled" env:"ENABLED"`
	Port           int      `json:"port" yaml:"port" env:"PORT"`
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins" env:"ALLOWED_ORIGINS"`

	// RateLimitRPS is the per-client request rate; 0 disables limiting.
	RateLimitRPS int `json:"rate_limit_rps" yaml:"rate_limit_rps" env:"RATE_LIMIT_RPS"`
}

// MQTTConfig holds MQTT telemetry settings.
type MQTTConfig struct {
	Enabled     bool   `json:"enabled" yaml:"enabled" env:"ENABLED"`
	Broker      string `json:"broker" yaml:"broker" env:"BROKER"`
	Port        int    `json:"port" yaml:"port" env:"PORT"`
	UseTLS      bool   `json:"use_tls" yaml:"use_tls" env:"USE_TLS"`
	CertFile    string `json:"cert_file" yaml:"cert_file" env:"CERT_FILE"`
	KeyFile     string `json:"key_file" yaml:"key_file" env:"KEY_FILE"`
	CAFile      string `json:"ca_file" yaml:"ca_file" env:"CA_FILE"`
	ClientID    string `json:"client_id" yaml:"client_id" env:"CLIENT_ID"`
	TopicPrefix string `json:"topic_prefix" yaml:"topic_prefix" env:"TOPIC_PREFIX"`
}

// StorageConfig is the SQLite archive of finished battles.
type StorageConfig struct {
	Enabled    bool   `json:"enabled" yaml:"enabled" env:"ENABLED"`
	Path       string `json:"path" yaml:"path" env:"PATH"`
	KeepRawLog bool   `json:"keep_raw_log" yaml:"keep_raw_log" env:"KEEP_RAW_LOG"`

	// RetentionDays drops archived battles older than this; 0 keeps them.
	RetentionDays int `json:"retention_days" yaml:"retention_days" env:"RETENTION_DAYS"`
	// CleanupTime is the daily "HH:MM" at which old battles are dropped.
	CleanupTime string `json:"cleanup_time" yaml:"cleanup_time" env:"CLEANUP_TIME"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			URL:             DefaultServerURL,
			ReconnectMinSec: 1,
			ReconnectMaxSec: 60,
		},
		API: APIConfig{
			Enabled:        true,
			Port:           DefaultAPIPort,
			AllowedOrigins: []string{"*"},
			RateLimitRPS:   20,
		},
		MQTT: MQTTConfig{
			Port:        DefaultMQTTPort,
			UseTLS:      true,
			ClientID:    "showtrack",
			TopicPrefix: "showtrack",
		},
		Storage: StorageConfig{
			Enabled:       true,
			Path:          DefaultDBPath,
			KeepRawLog:    true,
			RetentionDays: 30,
			CleanupTime:   "04:00",
		},
		Logging: util.DefaultLogConfig(),
	}
}

// Load reads configuration from configDir. A config.yaml wins over
// config.json; when neither exists a default config.json is written.
// Environment variables prefixed with SHOWTRACK_ are applied last and are
// never written back to disk.
func Load(configDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.path = filepath.Join(configDir, DefaultConfigFile)

	yamlPath := filepath.Join(configDir, YAMLConfigFile)
	switch data, err := os.ReadFile(yamlPath); {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", yamlPath, err)
		}
		cfg.path = yamlPath
		log.Info().Str("path", yamlPath).Msg("configuration loaded")
	case errors.Is(err, os.ErrNotExist):
		if err := cfg.loadJSON(); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("failed to read config file %s: %w", yamlPath, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadJSON() error {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Info().Str("path", c.path).Msg("config file not found, creating default")
			if saveErr := c.Save(); saveErr != nil {
				return fmt.Errorf("failed to save default config: %w", saveErr)
			}
			return nil
		}
		return fmt.Errorf("failed to read config file %s: %w", c.path, err)
	}

	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", c.path, err)
	}
	log.Info().Str("path", c.path).Msg("configuration loaded")

	// Re-save so new default fields show up in the file.
	if saveErr := c.Save(); saveErr != nil {
		log.Warn().Err(saveErr).Msg("failed to re-save config with updated defaults")
	}
	return nil
}

// applyEnv overlays SHOWTRACK_* variables. Unset variables leave the loaded
// values alone.
func (c *Config) applyEnv() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("failed to parse environment overrides: %w", err)
	}
	return nil
}

// Save writes the current configuration to its file, as YAML or JSON
// depending on the extension.
func (c *Config) Save() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var (
		data []byte
		err  error
	)
	if filepath.Ext(c.path) == ".yaml" {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(c.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	log.Debug().Str("path", c.path).Msg("configuration saved")
	return nil
}

// GetServer returns a copy of the connection settings.
func (c *Config) GetServer() ServerConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := c.Server
	s.Rooms = append([]string(nil), c.Server.Rooms...)
	return s
}

// SetServer replaces the connection settings.
func (c *Config) SetServer(s ServerConfig) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Server = s
}

func (c *Config) GetAPI() APIConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	a := c.API
	a.AllowedOrigins = append([]string(nil), c.API.AllowedOrigins...)
	return a
}

func (c *Config) SetAPI(a APIConfig) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.API = a
}

func (c *Config) GetMQTT() MQTTConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.MQTT
}

func (c *Config) SetMQTT(m MQTTConfig) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.MQTT = m
}

func (c *Config) GetStorage() StorageConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Storage
}

func (c *Config) SetStorage(s StorageConfig) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Storage = s
}

func (c *Config) GetLogging() util.LogConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Logging
}

// Path returns the config file path.
func (c *Config) Path() string {
	return c.path
}

// IsFirstRun reports whether no rooms have been configured yet.
func (c *Config) IsFirstRun() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.Server.Rooms) == 0
}
