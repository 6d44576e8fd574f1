package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/DeveloperTechForest/nodevideocall/internal/adapters/httpapi"
	wssignal "github.com/DeveloperTechForest/nodevideocall/internal/adapters/signal"
	"github.com/DeveloperTechForest/nodevideocall/internal/config"
	"github.com/DeveloperTechForest/nodevideocall/internal/core"
	"github.com/DeveloperTechForest/nodevideocall/internal/metrics"
	"github.com/DeveloperTechForest/nodevideocall/internal/uploads"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	store, err := uploads.NewStore(cfg.UploadDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to prepare upload dir")
	}

	m := metrics.New()
	hub := wssignal.NewHub()
	engine := core.NewEngine(hub)
	m.ObserveEngine(engine.RoomCount, engine.ConnCount)
	ctl := wssignal.NewController(cfg, hub, engine, m)

	r := httpapi.SetupRouter(ctx, cfg, ctl, engine, store, m)
	addr := fmt.Sprintf(":%d", cfg.Port)

	// Open CORS: the browser clients live on arbitrary origins.
	handler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost},
		AllowCredentials: true,
	}).Handler(r)

	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("signaling server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
