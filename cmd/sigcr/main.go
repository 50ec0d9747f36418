package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dasparmv/FORTELV2/internal/bus"
	"github.com/Dasparmv/FORTELV2/internal/config"
	"github.com/Dasparmv/FORTELV2/internal/kv"
	"github.com/Dasparmv/FORTELV2/internal/router"
	"github.com/Dasparmv/FORTELV2/internal/simulator"
	"github.com/Dasparmv/FORTELV2/internal/store"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Configure logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Set log level
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Str("level", cfg.LogLevel).Msg("invalid log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	log.Info().
		Str("kv_backend", cfg.KV.Backend).
		Dur("tick_interval", cfg.TickInterval).
		Str("log_level", cfg.LogLevel).
		Msg("starting SIGCR")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Open the blob store and load or seed the demo document
	kvs, err := kv.Open(ctx, cfg.KVStore(), log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open blob store")
	}

	st := store.New(kvs, log.Logger)
	if err := st.Init(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to initialize store")
	}

	// Simulator follows the session and the realtime setting
	sim := simulator.New(st, simulator.Config{TickInterval: cfg.TickInterval}, log.Logger)
	defer st.On(bus.SessionChanged, func(any) { sim.Sync(ctx) })()
	defer st.On(bus.SettingsChanged, func(any) { sim.Sync(ctx) })()

	// Router over an in-process location with a logging chrome
	loc := router.NewMemoryLocation("")
	r := router.New(st, loc, newChrome(log.Logger), router.DefaultTable(pages(st, log.Logger)), log.Logger)
	r.Start(ctx)
	defer r.Stop()

	if cfg.AutoLogin != "" {
		if _, err := st.Login(ctx, cfg.AutoLogin, "Fortel2025!"); err != nil {
			log.Warn().Err(err).Str("email", cfg.AutoLogin).Msg("auto login failed")
		} else {
			r.Route()
		}
	}

	sim.Sync(ctx)

	// Wait for interrupt signal to gracefully shut down
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down...")

	sim.Stop()
	cancel()

	log.Info().Msg("stopped")
}
