// showtrack - Pokémon Showdown battle tracker.
//
// showtrack connects to a Showdown server over websocket, decodes the
// battle protocol for every joined room, keeps a live model of each battle,
// archives finished battles in SQLite, and exposes the tracked state over a
// REST API, an interactive console and MQTT telemetry.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/energizer-project/showtrack/internal/api"
	"github.com/energizer-project/showtrack/internal/cli"
	"github.com/energizer-project/showtrack/internal/config"
	"github.com/energizer-project/showtrack/internal/events"
	"github.com/energizer-project/showtrack/internal/network"
	"github.com/energizer-project/showtrack/internal/protocol"
	"github.com/energizer-project/showtrack/internal/scheduler"
	"github.com/energizer-project/showtrack/internal/session"
	"github.com/energizer-project/showtrack/internal/store"
	"github.com/energizer-project/showtrack/internal/telemetry"
	"github.com/energizer-project/showtrack/internal/tracker"
	"github.com/energizer-project/showtrack/internal/util"
)

const (
	AppName    = "showtrack"
	AppVersion = api.Version
	Banner     = `
      _                   _                  _
  ___| |__   _____      _| |_ _ __ __ _  ___| | __
 / __| '_ \ / _ \ \ /\ / / __| '__/ _' |/ __| |/ /
 \__ \ | | | (_) \ V  V /| |_| | | (_| | (__|   <
 |___/_| |_|\___/ \_/\_/  \__|_|  \__,_|\___|_|\_\
                                          v%s
 Pokémon Showdown battle tracker
`
)

const usage = `usage: showtrack [-config dir] <command> [args]

commands:
  serve           connect to the server and track battles (default)
  replay <file>   decode a saved battle log and print the final state
  init            run the setup wizard and write the config file
`

func main() {
	fs := flag.NewFlagSet(AppName, flag.ExitOnError)
	configDir := fs.String("config", config.DefaultConfigDir, "configuration directory")
	fs.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	_ = fs.Parse(os.Args[1:])

	cmd := "serve"
	args := fs.Args()
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "serve":
		serve(*configDir)
	case "replay":
		os.Exit(replay(args))
	case "init":
		os.Exit(initConfig(*configDir))
	case "help", "-h":
		fmt.Fprint(os.Stdout, usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}
}

// replay decodes a battle log file and renders the resulting state.
func replay(args []string) int {
	fs := flag.NewFlagSet("replay", flag.ExitOnError)
	level := fs.String("level", "warn", "log level")
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		fmt.Fprint(os.Stderr, usage)
		return 2
	}
	util.InitConsoleLogger(*level, os.Stderr)

	frame, err := protocol.NewDecoder().ReadLogFile(fs.Arg(0))
	if err != nil {
		log.Error().Err(err).Msg("replay failed")
		return 1
	}
	for _, de := range frame.Errors {
		log.Warn().Err(de).Msg("skipped line")
	}

	battle := tracker.New()
	battle.ApplyFrame(frame)
	cli.RenderBattle(os.Stdout, battle)
	return 0
}

func initConfig(configDir string) int {
	util.InitConsoleLogger("info", os.Stderr)

	cfg, err := config.Load(configDir)
	if err != nil {
		log.Error().Err(err).Msg("failed to load configuration")
		return 1
	}
	if err := config.RunSetupWizard(cfg, os.Stdin, os.Stdout); err != nil {
		log.Error().Err(err).Msg("setup wizard failed")
		return 1
	}
	return 0
}

func serve(configDir string) {
	fmt.Printf(Banner, AppVersion)
	fmt.Println()

	// Defaults first, reconfigured once the config is loaded
	if err := util.InitLogger(util.DefaultLogConfig()); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	log.Info().
		Str("version", AppVersion).
		Str("platform", runtime.GOOS).
		Str("arch", runtime.GOARCH).
		Int("cpus", runtime.NumCPU()).
		Msg("starting showtrack")

	cfg, err := config.Load(configDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	if err := util.InitLogger(cfg.GetLogging()); err != nil {
		log.Warn().Err(err).Msg("failed to reconfigure logger, using defaults")
	}

	if cfg.IsFirstRun() {
		log.Info().Msg("no rooms configured, launching setup wizard")
		if err := config.RunSetupWizard(cfg, os.Stdin, os.Stdout); err != nil {
			log.Fatal().Err(err).Msg("setup wizard failed")
		}
	}

	validation := config.Validate(cfg)
	for _, w := range validation.Warnings {
		log.Warn().Str("field", w.Field).Msg(w.Message)
	}
	if !validation.IsValid() {
		for _, e := range validation.Errors {
			log.Error().Str("field", e.Field).Msg(e.Message)
		}
		log.Fatal().Msg("configuration validation failed, please fix the errors above")
	}

	sysInfo := util.GetSystemInfo()
	log.Info().
		Str("hostname", sysInfo.Hostname).
		Str("os", sysInfo.OS).
		Str("cpu", sysInfo.CPUModel).
		Int("cores", sysInfo.CPUCores).
		Uint64("memory_mb", sysInfo.TotalMemory).
		Msg("system information")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eventBus := events.NewEventBus()
	sessions := session.NewManager(eventBus)

	// Interface values stay nil when storage is off
	var (
		results api.ResultStore
		archive scheduler.Archive
		battles *store.BattleStore
	)
	if storage := cfg.GetStorage(); storage.Enabled {
		battles, err = store.NewBattleStore(storage.Path)
		if err != nil {
			log.Error().Err(err).Msg("failed to open battle archive, storage disabled")
		} else {
			battles.Subscribe(eventBus, storage.KeepRawLog)
			results, archive = battles, battles
		}
	}

	client := network.NewClient(cfg.GetServer(), eventBus, func(ctx context.Context, raw string) {
		sessions.HandleFrame(ctx, raw)
	})

	eventBus.Subscribe(events.EventConfigChanged, "main.rooms", func(_ context.Context, event events.Event) error {
		payload, ok := event.Payload.(events.ConfigChangedPayload)
		if !ok || payload.Section != "server" {
			return nil
		}
		return client.SetRooms(cfg.GetServer().Rooms)
	})

	shutdownCh := make(chan struct{})
	var shutdownOnce sync.Once
	eventBus.Subscribe(events.EventShutdown, "main.shutdown", func(_ context.Context, event events.Event) error {
		if event.Source != "main" {
			shutdownOnce.Do(func() { close(shutdownCh) })
		}
		return nil
	})

	var apiServer *api.Server
	if cfg.GetAPI().Enabled {
		apiServer = api.NewServer(cfg, eventBus, sessions, results)
	}

	mqttHandler, err := telemetry.NewMQTTHandler(cfg.GetMQTT(), eventBus)
	switch {
	case errors.Is(err, telemetry.ErrDisabled):
		log.Info().Msg("MQTT telemetry disabled")
	case err != nil:
		log.Warn().Err(err).Msg("failed to initialize MQTT, telemetry disabled")
	}

	sched := scheduler.NewScheduler(cfg, eventBus, sessions, archive, client)
	cliHandler := cli.NewCLI(eventBus, sessions, client, os.Stdin, os.Stdout)

	var wg sync.WaitGroup
	errCh := make(chan error, 4)

	// Task 1: Showdown connection, reconnects until ctx is cancelled
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info().Str("url", cfg.GetServer().URL).Msg("starting server connection")
		if err := client.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- fmt.Errorf("server connection: %w", err)
		}
	}()

	// Task 2: REST API (with retry for port binding)
	if apiServer != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			log.Info().Int("port", cfg.GetAPI().Port).Msg("starting REST API server")
			if err := startWithRetry(ctx, "API server", apiServer.Start, 15); err != nil {
				log.Warn().Err(err).Msg("API server failed after retries (non-fatal)")
			}
		}()
	}

	// Task 3: MQTT telemetry
	if mqttHandler != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			log.Info().Msg("starting MQTT telemetry")
			if err := mqttHandler.Start(ctx); err != nil {
				log.Warn().Err(err).Msg("MQTT telemetry failed")
			}
		}()
	}

	// Task 4: Scheduler (room pruning, archive retention, heartbeat)
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info().Msg("starting task scheduler")
		sched.Start(ctx)
	}()

	// Task 5: Interactive CLI
	wg.Add(1)
	go func() {
		defer wg.Done()
		cliHandler.Start(ctx)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
	case <-shutdownCh:
		log.Info().Msg("shutdown requested from console")
	case err := <-errCh:
		log.Error().Err(err).Msg("critical error, initiating shutdown")
	}

	log.Info().Msg("initiating graceful shutdown...")
	cancel()

	eventBus.Emit(context.Background(), events.Event{
		Type:   events.EventShutdown,
		Source: "main",
	})

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info().Msg("all tasks stopped gracefully")
	case <-time.After(30 * time.Second):
		log.Warn().Msg("shutdown timed out after 30 seconds, forcing exit")
	}

	eventBus.Stop()

	if battles != nil {
		if err := battles.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close battle archive")
		}
	}

	log.Info().Msg("showtrack stopped")
}

// startWithRetry calls startFn until it succeeds, ctx is cancelled, or
// maxRetries is exhausted. Used for listeners whose port may still be held
// by a previous instance.
func startWithRetry(ctx context.Context, name string, startFn func(context.Context) error, maxRetries int) error {
	var lastErr error
	for i := 0; i <= maxRetries; i++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		lastErr = startFn(ctx)
		if lastErr == nil {
			return nil
		}
		if i < maxRetries {
			log.Warn().Err(lastErr).Str("component", name).Int("retry", i+1).Int("max", maxRetries).Msg("bind failed, retrying in 3s...")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(3 * time.Second):
			}
		}
	}
	return lastErr
}
