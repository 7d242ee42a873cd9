package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadCreatesDefault(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Path() != filepath.Join(dir, DefaultConfigFile) {
		t.Errorf("path = %s", cfg.Path())
	}
	if _, err := os.Stat(cfg.Path()); err != nil {
		t.Errorf("default config not written: %v", err)
	}
	if got := cfg.GetAPI().Port; got != DefaultAPIPort {
		t.Errorf("api port = %d", got)
	}
	if !cfg.IsFirstRun() {
		t.Error("a fresh config has no rooms")
	}
}

func TestLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	server := cfg.GetServer()
	server.Rooms = []string{"lobby", "battle-gen9ou-1"}
	cfg.SetServer(server)
	if err := cfg.Save(); err != nil {
		t.Fatal(err)
	}

	again, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got := again.GetServer().Rooms; len(got) != 2 || got[1] != "battle-gen9ou-1" {
		t.Errorf("rooms = %v", got)
	}
}

func TestYAMLTakesPrecedence(t *testing.T) {
	dir := t.TempDir()
	yamlDoc := "server:\n  url: ws://localhost:8000/showdown/websocket\n  rooms: [lobby]\napi:\n  port: 6000\n"
	if err := os.WriteFile(filepath.Join(dir, YAMLConfigFile), []byte(yamlDoc), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.GetServer().URL != "ws://localhost:8000/showdown/websocket" {
		t.Errorf("url = %s", cfg.GetServer().URL)
	}
	if cfg.GetAPI().Port != 6000 {
		t.Errorf("port = %d", cfg.GetAPI().Port)
	}
	// Unset keys keep their defaults.
	if cfg.GetServer().ReconnectMaxSec != 60 {
		t.Errorf("reconnect max = %d", cfg.GetServer().ReconnectMaxSec)
	}
	if _, err := os.Stat(filepath.Join(dir, DefaultConfigFile)); !os.IsNotExist(err) {
		t.Error("no JSON file should be written when YAML is used")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SHOWTRACK_SERVER_URL", "ws://example.test/ws")
	t.Setenv("SHOWTRACK_API_PORT", "7001")
	t.Setenv("SHOWTRACK_LOG_LEVEL", "debug")
	t.Setenv("SHOWTRACK_MQTT_BROKER", "broker.test")
	t.Setenv("SHOWTRACK_DB_PATH", "/tmp/x.db")
	t.Setenv("SHOWTRACK_SERVER_ROOMS", "lobby,help")

	dir := t.TempDir()
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.GetServer().URL != "ws://example.test/ws" {
		t.Errorf("url = %s", cfg.GetServer().URL)
	}
	if got := cfg.GetServer().Rooms; len(got) != 2 || got[0] != "lobby" {
		t.Errorf("rooms = %v", got)
	}
	if cfg.GetAPI().Port != 7001 {
		t.Errorf("port = %d", cfg.GetAPI().Port)
	}
	if cfg.GetLogging().Level != "debug" {
		t.Errorf("level = %s", cfg.GetLogging().Level)
	}
	if cfg.GetMQTT().Broker != "broker.test" {
		t.Errorf("broker = %s", cfg.GetMQTT().Broker)
	}
	if cfg.GetStorage().Path != "/tmp/x.db" {
		t.Errorf("db path = %s", cfg.GetStorage().Path)
	}

	data, err := os.ReadFile(filepath.Join(dir, DefaultConfigFile))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "example.test") {
		t.Error("environment overrides must not be persisted")
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.Rooms = []string{"lobby"}
	if r := Validate(cfg); !r.IsValid() {
		t.Fatalf("default config invalid: %v", r.Errors)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"http scheme", func(c *Config) { c.Server.URL = "http://example.com" }, "server.url"},
		{"empty url", func(c *Config) { c.Server.URL = "" }, "server.url"},
		{"bad room", func(c *Config) { c.Server.Rooms = []string{"a|b"} }, "server.rooms"},
		{"backoff order", func(c *Config) { c.Server.ReconnectMaxSec = 0 }, "server.reconnect_max_sec"},
		{"api port", func(c *Config) { c.API.Port = 70000 }, "api.port"},
		{"mqtt broker", func(c *Config) { c.MQTT.Enabled = true; c.MQTT.Broker = "" }, "mqtt.broker"},
		{"storage path", func(c *Config) { c.Storage.Path = " " }, "storage.path"},
		{"log level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
	}
	for _, tt := range tests {
		tt := tt // per-iteration copy (Go 1.22 loop semantics)
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			c.Server.Rooms = []string{"lobby"}
			tt.mutate(c)
			r := Validate(c)
			found := false
			for _, e := range r.Errors {
				if e.Field == tt.field {
					found = true
				}
			}
			if !found {
				t.Errorf("expected an error on %s, got %v", tt.field, r.Errors)
			}
		})
	}
}

func TestValidateWarnings(t *testing.T) {
	cfg := DefaultConfig()
	r := Validate(cfg)
	var fields []string
	for _, w := range r.Warnings {
		fields = append(fields, w.Field)
	}
	joined := strings.Join(fields, ",")
	if !strings.Contains(joined, "server.rooms") || !strings.Contains(joined, "api.allowed_origins") {
		t.Errorf("warnings = %v", fields)
	}
}

func TestSetupWizard(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}

	answers := strings.Join([]string{
		"ws://localhost:8000/showdown/websocket",
		"lobby, battle-gen9ou-7",
		"yes",
		"6001",
		"no",
		"",
	}, "\n") + "\n"
	var out bytes.Buffer
	if err := RunSetupWizard(cfg, strings.NewReader(answers), &out); err != nil {
		t.Fatalf("wizard: %v\n%s", err, out.String())
	}

	again, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got := again.GetServer().Rooms; len(got) != 2 || got[1] != "battle-gen9ou-7" {
		t.Errorf("rooms = %v", got)
	}
	if again.GetAPI().Port != 6001 {
		t.Errorf("port = %d", again.GetAPI().Port)
	}
	if again.GetStorage().Enabled {
		t.Error("storage should be disabled")
	}
}

func TestSetupWizardRejectsInvalid(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	answers := "http://nope\n\n\n\n\n\n"
	var out bytes.Buffer
	if err := RunSetupWizard(cfg, strings.NewReader(answers), &out); err == nil {
		t.Error("expected validation failure")
	}
}
