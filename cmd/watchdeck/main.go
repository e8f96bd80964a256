package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/watchdeck/watchdeck/internal/api"
	"github.com/watchdeck/watchdeck/internal/config"
	"github.com/watchdeck/watchdeck/internal/logger"
	"github.com/watchdeck/watchdeck/internal/websocket"
	"github.com/watchdeck/watchdeck/web"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	// Secrets usually live in a .env file next to the binary.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Path:       cfg.Logging.Path,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
	})
	defer log.Close()

	log.Info().
		Str("logLevel", cfg.Logging.Level).
		Msg("starting WatchDeck")

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	hub := websocket.NewHub()
	go hub.Run()

	server, err := api.NewServer(cfg, hub, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize server")
	}

	staticFS, err := web.StaticFS()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load embedded frontend")
	}
	server.ServeFrontend(staticFS)

	go func() {
		if err := server.Start(cfg.Server.Address()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
}
