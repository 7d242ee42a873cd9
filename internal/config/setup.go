package config

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// RunSetupWizard asks for the settings a first run needs and saves them.
// It reads answers line by line from in; an empty answer keeps the shown
// default.
func RunSetupWizard(cfg *Config, in io.Reader, out io.Writer) error {
	reader := bufio.NewReader(in)

	fmt.Fprintln(out, "showtrack first run setup")
	fmt.Fprintln(out)

	server := cfg.GetServer()
	fmt.Fprintln(out, "-- Showdown server --")
	server.URL = promptString(reader, out, "Websocket URL", server.URL)
	rooms := promptString(reader, out, "Rooms to join (comma separated)", strings.Join(server.Rooms, ","))
	server.Rooms = splitList(rooms)
	cfg.SetServer(server)

	fmt.Fprintln(out)
	fmt.Fprintln(out, "-- HTTP API --")
	api := cfg.GetAPI()
	api.Enabled = promptBool(reader, out, "Enable the query API", api.Enabled)
	if api.Enabled {
		api.Port = promptInt(reader, out, "API port", api.Port)
	}
	cfg.SetAPI(api)

	fmt.Fprintln(out)
	fmt.Fprintln(out, "-- Storage --")
	storage := cfg.GetStorage()
	storage.Enabled = promptBool(reader, out, "Archive finished battles", storage.Enabled)
	if storage.Enabled {
		storage.Path = promptString(reader, out, "Database path", storage.Path)
	}
	cfg.SetStorage(storage)

	fmt.Fprintln(out)
	fmt.Fprintln(out, "-- MQTT telemetry --")
	mqtt := cfg.GetMQTT()
	mqtt.Enabled = promptBool(reader, out, "Publish battle events over MQTT", mqtt.Enabled)
	if mqtt.Enabled {
		mqtt.Broker = promptString(reader, out, "Broker host", mqtt.Broker)
		mqtt.Port = promptInt(reader, out, "Broker port", mqtt.Port)
	}
	cfg.SetMQTT(mqtt)

	result := Validate(cfg)
	if !result.IsValid() {
		fmt.Fprintln(out, "\nConfiguration has errors:")
		for _, e := range result.Errors {
			fmt.Fprintf(out, "  - [%s] %s\n", e.Field, e.Message)
		}
		return fmt.Errorf("configuration validation failed with %d errors", len(result.Errors))
	}
	for _, w := range result.Warnings {
		log.Warn().Str("field", w.Field).Msg(w.Message)
	}

	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Fprintf(out, "\nConfiguration saved to %s\n", cfg.Path())
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func promptString(reader *bufio.Reader, out io.Writer, prompt string, defaultVal string) string {
	if defaultVal != "" {
		fmt.Fprintf(out, "  %s [%s]: ", prompt, defaultVal)
	} else {
		fmt.Fprintf(out, "  %s: ", prompt)
	}
	if input := readLine(reader); input != "" {
		return input
	}
	return defaultVal
}

func promptInt(reader *bufio.Reader, out io.Writer, prompt string, defaultVal int) int {
	fmt.Fprintf(out, "  %s [%d]: ", prompt, defaultVal)

	input := readLine(reader)
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil {
		fmt.Fprintf(out, "    Invalid number, using default: %d\n", defaultVal)
		return defaultVal
	}
	return val
}

func promptBool(reader *bufio.Reader, out io.Writer, prompt string, defaultVal bool) bool {
	defaultStr := "no"
	if defaultVal {
		defaultStr = "yes"
	}
	fmt.Fprintf(out, "  %s [%s]: ", prompt, defaultStr)

	input := strings.ToLower(readLine(reader))
	if input == "" {
		return defaultVal
	}
	return input == "yes" || input == "y" || input == "true" || input == "1"
}
