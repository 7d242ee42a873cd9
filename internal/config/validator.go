package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("config validation error [%s]: %s", e.Field, e.Message)
}

// ValidationResult holds the results of configuration validation.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// IsValid returns true if there are no validation errors.
func (r *ValidationResult) IsValid() bool {
	return len(r.Errors) == 0
}

// AddError adds a validation error.
func (r *ValidationResult) AddError(field, message string) {
	r.Errors = append(r.Errors, ValidationError{Field: field, Message: message})
}

// AddWarning adds a validation warning.
func (r *ValidationResult) AddWarning(field, message string) {
	r.Warnings = append(r.Warnings, ValidationError{Field: field, Message: message})
}

// Validate checks every section of the configuration.
func Validate(cfg *Config) *ValidationResult {
	result := &ValidationResult{}

	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	validateServer(&cfg.Server, result)
	validateAPI(&cfg.API, result)
	validateMQTT(&cfg.MQTT, result)
	validateStorage(&cfg.Storage, result)

	if _, err := zerolog.ParseLevel(cfg.Logging.Level); err != nil || cfg.Logging.Level == "" {
		result.AddError("logging.level", fmt.Sprintf("unknown log level %q", cfg.Logging.Level))
	}
	if strings.TrimSpace(cfg.Logging.Directory) == "" {
		result.AddError("logging.directory", "log directory is required")
	}

	return result
}

func validateServer(s *ServerConfig, result *ValidationResult) {
	u, err := url.Parse(s.URL)
	switch {
	case strings.TrimSpace(s.URL) == "":
		result.AddError("server.url", "server URL is required")
	case err != nil:
		result.AddError("server.url", fmt.Sprintf("invalid URL: %v", err))
	case u.Scheme != "ws" && u.Scheme != "wss":
		result.AddError("server.url", fmt.Sprintf("scheme must be ws or wss, got %q", u.Scheme))
	case u.Host == "":
		result.AddError("server.url", "URL has no host")
	}

	if len(s.Rooms) == 0 {
		result.AddWarning("server.rooms", "no rooms configured, only battles the account is invited to will be tracked")
	}
	for _, room := range s.Rooms {
		if strings.ContainsAny(room, "| \n") {
			result.AddError("server.rooms", fmt.Sprintf("invalid room id %q", room))
		}
	}

	if s.ReconnectMinSec < 1 {
		result.AddError("server.reconnect_min_sec", "must be at least 1 second")
	}
	if s.ReconnectMaxSec < s.ReconnectMinSec {
		result.AddError("server.reconnect_max_sec", "must not be lower than reconnect_min_sec")
	}
	if s.ReconnectMaxSec > 600 {
		result.AddWarning("server.reconnect_max_sec", "backoff above 10 minutes will miss most of a battle")
	}
}

func validateAPI(a *APIConfig, result *ValidationResult) {
	if !a.Enabled {
		return
	}
	validatePort(a.Port, "api.port", result)
	if a.RateLimitRPS < 0 {
		result.AddError("api.rate_limit_rps", "rate limit cannot be negative")
	}
	for _, origin := range a.AllowedOrigins {
		if origin == "*" {
			result.AddWarning("api.allowed_origins", "any origin may query the API")
			break
		}
	}
}

func validateMQTT(m *MQTTConfig, result *ValidationResult) {
	if !m.Enabled {
		return
	}
	if strings.TrimSpace(m.Broker) == "" {
		result.AddError("mqtt.broker", "MQTT broker is required when enabled")
	}
	if m.Port < 1 || m.Port > 65535 {
		result.AddError("mqtt.port", "invalid MQTT port")
	}
	if (m.CertFile == "") != (m.KeyFile == "") {
		result.AddError("mqtt.cert_file", "cert_file and key_file must be set together")
	}
	if m.UseTLS && m.Port == 1883 {
		result.AddWarning("mqtt.port", "TLS enabled on the plain MQTT port 1883")
	}
	if strings.TrimSpace(m.TopicPrefix) == "" {
		result.AddWarning("mqtt.topic_prefix", "empty topic prefix, topics will start with a slash")
	}
}

func validateStorage(s *StorageConfig, result *ValidationResult) {
	if s.Enabled && strings.TrimSpace(s.Path) == "" {
		result.AddError("storage.path", "database path is required when storage is enabled")
	}
	if s.RetentionDays < 0 {
		result.AddError("storage.retention_days", "retention cannot be negative")
	}
	if s.CleanupTime != "" {
		if _, err := time.Parse("15:04", s.CleanupTime); err != nil {
			result.AddError("storage.cleanup_time", fmt.Sprintf("expected HH:MM, got %q", s.CleanupTime))
		}
	}
}

func validatePort(port int, field string, result *ValidationResult) {
	if port < 1 || port > 65535 {
		result.AddError(field, fmt.Sprintf("invalid port number: %d (must be 1-65535)", port))
		return
	}
	if port < 1024 {
		result.AddWarning(field,
			fmt.Sprintf("port %d is a privileged port, may require elevated permissions", port))
	}
}

// IsPortAvailable checks if a port is available for binding.
func IsPortAvailable(port int) bool {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return false
	}
	ln.Close()
	return true
}
